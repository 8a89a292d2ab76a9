package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeTicker(t *testing.T) {
	cases := []struct{ in, want string }{
		{"7203", "7203.T"},
		{"7203.T", "7203.T"},
		{" 6758 ", "6758.T"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeTicker(c.in); got != c.want {
			t.Errorf("NormalizeTicker(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestDefaultTickers_FixedFive(t *testing.T) {
	tickers := DefaultTickers()
	if len(tickers) != 5 {
		t.Fatalf("len=%d, want 5", len(tickers))
	}
	for _, tk := range tickers {
		if NormalizeTicker(tk.Symbol) != tk.Symbol {
			t.Errorf("%s not suffix-qualified", tk.Symbol)
		}
		if tk.Name == "" {
			t.Errorf("%s has no display name", tk.Symbol)
		}
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"yahoo": {"chart_timeout_sec": 7}, "batch": {"attempts": 5}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("YAHOO_USER_AGENT", "test-agent")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Yahoo.ChartTimeoutSec != 7 {
		t.Errorf("chart_timeout_sec=%d, want 7 from file", cfg.Yahoo.ChartTimeoutSec)
	}
	if cfg.Batch.Attempts != 5 {
		t.Errorf("attempts=%d, want 5 from file", cfg.Batch.Attempts)
	}
	if cfg.Yahoo.UserAgent != "test-agent" {
		t.Errorf("user_agent=%q, want env override", cfg.Yahoo.UserAgent)
	}
	// Untouched fields keep defaults.
	if cfg.Yahoo.SearchTimeoutSec != 5 || cfg.Batch.OutPath != "data/stock_data.json" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}
