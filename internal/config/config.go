package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// MarketSuffix is the Yahoo Finance suffix for Tokyo Stock Exchange listings.
const MarketSuffix = ".T"

type Yahoo struct {
	ChartBaseURL     string `json:"chart_base_url"`
	SearchBaseURL    string `json:"search_base_url"`
	UserAgent        string `json:"user_agent"`
	ChartTimeoutSec  int    `json:"chart_timeout_sec"`
	SearchTimeoutSec int    `json:"search_timeout_sec"`
	LookbackDays     int    `json:"lookback_days"`
}

type Router struct {
	CacheMaxAgeSec int `json:"cache_max_age_sec"`
}

type Batch struct {
	Attempts     int    `json:"attempts"`
	DelaySec     int    `json:"delay_sec"`
	LookbackDays int    `json:"lookback_days"`
	OutPath      string `json:"out_path"`
}

type Config struct {
	Yahoo  Yahoo  `json:"yahoo"`
	Router Router `json:"router"`
	Batch  Batch  `json:"batch"`
}

// Ticker pairs an exchange-qualified symbol with its display name.
type Ticker struct {
	Symbol string
	Name   string
}

// DefaultTickers is the fixed watch list used when the caller names no
// tickers. Order matters for deterministic batch output.
func DefaultTickers() []Ticker {
	return []Ticker{
		{Symbol: "7203.T", Name: "トヨタ自動車"},
		{Symbol: "6758.T", Name: "ソニーグループ"},
		{Symbol: "9984.T", Name: "ソフトバンクグループ"},
		{Symbol: "6861.T", Name: "キーエンス"},
		{Symbol: "8306.T", Name: "三菱UFJ"},
	}
}

func Default() Config {
	return Config{
		Yahoo: Yahoo{
			ChartBaseURL:  "https://query2.finance.yahoo.com",
			SearchBaseURL: "https://query2.finance.yahoo.com",
			// Yahoo rejects requests without a browser-like UA.
			UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			ChartTimeoutSec:  10,
			SearchTimeoutSec: 5,
			LookbackDays:     3650,
		},
		Router: Router{CacheMaxAgeSec: 300},
		Batch: Batch{
			Attempts:     3,
			DelaySec:     2,
			LookbackDays: 365,
			OutPath:      "data/stock_data.json",
		},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("YAHOO_CHART_BASE_URL"); v != "" {
		cfg.Yahoo.ChartBaseURL = v
	}
	if v := os.Getenv("YAHOO_SEARCH_BASE_URL"); v != "" {
		cfg.Yahoo.SearchBaseURL = v
	}
	if v := os.Getenv("YAHOO_USER_AGENT"); v != "" {
		cfg.Yahoo.UserAgent = v
	}
	if v := os.Getenv("CHART_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Yahoo.ChartTimeoutSec = x
		}
	}
	if v := os.Getenv("SEARCH_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Yahoo.SearchTimeoutSec = x
		}
	}
	if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Yahoo.LookbackDays = x
		}
	}
	if v := os.Getenv("CACHE_MAX_AGE_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.Router.CacheMaxAgeSec = x
		}
	}
	if v := os.Getenv("BATCH_ATTEMPTS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Batch.Attempts = x
		}
	}
	if v := os.Getenv("BATCH_DELAY_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.Batch.DelaySec = x
		}
	}
	if v := os.Getenv("BATCH_OUT_PATH"); v != "" {
		cfg.Batch.OutPath = v
	}
}

// NormalizeTicker appends the Tokyo market suffix when absent. Symbols
// already carrying it pass through unchanged.
func NormalizeTicker(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, MarketSuffix) {
		return s
	}
	return s + MarketSuffix
}
