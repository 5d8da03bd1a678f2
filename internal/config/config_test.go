package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("unexpected default port %s", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Fatalf("unexpected default backend %s", cfg.DataBackend)
	}
	if len(cfg.Currencies) != 3 || cfg.Currencies[0] != "KRW" {
		t.Fatalf("unexpected default currencies %v", cfg.Currencies)
	}
	if cfg.FallbackCategory != "기타" {
		t.Fatalf("unexpected fallback category %s", cfg.FallbackCategory)
	}
	if cfg.FallbackRates["USD"] != 1400.0 || cfg.FallbackRates["TWD"] != 43.0 {
		t.Fatalf("unexpected fallback rates %v", cfg.FallbackRates)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CURRENCIES", "EUR, USD")
	t.Setenv("DEFAULT_CURRENCY", "EUR")
	t.Setenv("BASE_CURRENCY", "EUR")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("FALLBACK_RATE_USD", "1350.5")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("port override not applied: %s", cfg.Port)
	}
	if len(cfg.Currencies) != 2 || cfg.Currencies[1] != "USD" {
		t.Fatalf("currency list override not applied: %v", cfg.Currencies)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("session TTL override not applied: %v", cfg.SessionTTL)
	}
	if cfg.FallbackRates["USD"] != 1350.5 {
		t.Fatalf("fallback rate override not applied: %v", cfg.FallbackRates)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("overridden config must validate: %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"bad port", func(c *Config) { c.Port = "abc" }, "invalid port"},
		{"bad backend", func(c *Config) { c.DataBackend = "postgres" }, "invalid data backend"},
		{"sheets without spreadsheet", func(c *Config) { c.DataBackend = "sheets" }, "Spreadsheet ID"},
		{"default currency not tracked", func(c *Config) { c.DefaultCurrency = "JPY" }, "default currency"},
		{"base currency not tracked", func(c *Config) { c.BaseCurrency = "JPY" }, "base currency"},
		{"blank fallback category", func(c *Config) { c.FallbackCategory = " " }, "fallback category"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://broker" }, "AMQP URL scheme"},
		{"tiny session ttl", func(c *Config) { c.SessionTTL = time.Second }, "session TTL"},
	}
	for _, tc := range cases {
		cfg := Load()
		tc.mut(cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}
