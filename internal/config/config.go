package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Ledger store backend selection
	DataBackend string

	// Google Sheets
	GoogleSpreadsheetID string

	// Currencies
	Currencies        []string
	DefaultCurrency   string
	BaseCurrency      string
	ReferenceCurrency string

	// Categories
	DefaultCategories []string
	FallbackCategory  string

	// Rates
	RateAPIURL    string
	FallbackRates map[string]float64

	// Session
	SessionTTL time.Duration

	// Report cache
	CacheTTL     time.Duration
	CacheMaxSize int

	// AMQP (optional mirror pipeline)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// SQLite mirror
	SQLiteDBPath string
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8081"),
		DataBackend: getEnv("DATA_BACKEND", "memory"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),

		Currencies:        getEnvList("CURRENCIES", []string{"KRW", "TWD", "USD"}),
		DefaultCurrency:   getEnv("DEFAULT_CURRENCY", "KRW"),
		BaseCurrency:      getEnv("BASE_CURRENCY", "KRW"),
		ReferenceCurrency: getEnv("REFERENCE_CURRENCY", "USD"),

		DefaultCategories: getEnvList("DEFAULT_CATEGORIES",
			[]string{"식비", "교통비", "쇼핑", "통신비", "주거비", "의료비", "월급", "보너스", "배당금"}),
		FallbackCategory: getEnv("FALLBACK_CATEGORY", "기타"),

		RateAPIURL: getEnv("RATE_API_URL", "https://open.er-api.com/v6/latest"),
		FallbackRates: map[string]float64{
			"USD": getEnvFloat("FALLBACK_RATE_USD", 1400.0),
			"TWD": getEnvFloat("FALLBACK_RATE_TWD", 43.0),
		},

		SessionTTL: getEnvDuration("SESSION_TTL", 30*time.Minute),

		CacheTTL:     getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheMaxSize: getEnvInt("CACHE_MAX_SIZE", 100),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "myasset"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_mutations"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/myasset.db"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory", "sheets":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [memory sheets]", c.DataBackend))
	}

	if c.DataBackend == "sheets" && c.GoogleSpreadsheetID == "" {
		errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
	}

	if len(c.Currencies) == 0 {
		errs = append(errs, "at least one currency must be configured")
	}
	if !contains(c.Currencies, c.DefaultCurrency) {
		errs = append(errs, fmt.Sprintf("default currency '%s' is not among configured currencies %v", c.DefaultCurrency, c.Currencies))
	}
	if !contains(c.Currencies, c.BaseCurrency) {
		errs = append(errs, fmt.Sprintf("base currency '%s' is not among configured currencies %v", c.BaseCurrency, c.Currencies))
	}

	if strings.TrimSpace(c.FallbackCategory) == "" {
		errs = append(errs, "fallback category cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.CacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.CacheMaxSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid cache max size %d: must be at least 1", c.CacheMaxSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
