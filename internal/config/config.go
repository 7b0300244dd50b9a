package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string
	Timezone           string
	CurrencyCode       string

	DefaultSubsidyPct decimal.Decimal

	LoanMaxAmount        decimal.Decimal
	LoanInterestRatePct  decimal.Decimal
	LoanMaxTermMonths    int
	LoanAutoApproveLimit decimal.Decimal
	LoanMinSalary        decimal.Decimal
	LoanDeductionCap     decimal.Decimal
	LoanCapacityFraction decimal.Decimal
	LoanQuoteCacheTTL    time.Duration

	RateLimitWindow       time.Duration
	RateLimitMax          int
	RequestBodyLimitBytes int64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		Timezone:           valueOrDefault(k.String("BENEFITS_TIMEZONE"), "Asia/Colombo"),
		CurrencyCode:       strings.ToUpper(valueOrDefault(k.String("CURRENCY_CODE"), "LKR")),

		LoanMaxTermMonths: parseInt(k.String("LOAN_MAX_TERM_MONTHS"), 12),
		LoanQuoteCacheTTL: parseDuration(k.String("LOAN_QUOTE_CACHE_TTL"), "10m"),

		RateLimitWindow:       parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:          parseInt(k.String("RATE_LIMIT_MAX"), 120),
		RequestBodyLimitBytes: int64(parseInt(k.String("REQUEST_BODY_LIMIT_BYTES"), 65536)),
	}

	var errs []error
	decimals := []struct {
		key      string
		fallback string
		dst      *decimal.Decimal
	}{
		{"DEFAULT_SUBSIDY_PCT", "20", &cfg.DefaultSubsidyPct},
		{"LOAN_MAX_AMOUNT", "15000", &cfg.LoanMaxAmount},
		{"LOAN_INTEREST_RATE_PCT", "12", &cfg.LoanInterestRatePct},
		{"LOAN_AUTO_APPROVE_LIMIT", "5000", &cfg.LoanAutoApproveLimit},
		{"LOAN_MIN_SALARY", "50000", &cfg.LoanMinSalary},
		{"LOAN_DEDUCTION_CAP", "0.30", &cfg.LoanDeductionCap},
		{"LOAN_CAPACITY_FRACTION", "0.30", &cfg.LoanCapacityFraction},
	}
	for _, d := range decimals {
		v, err := parseDecimal(k.String(d.key), d.fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.key, err))
			continue
		}
		*d.dst = v
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("BENEFITS_TIMEZONE: %w", err))
	}
	hundred := decimal.NewFromInt(100)
	if cfg.DefaultSubsidyPct.IsNegative() || cfg.DefaultSubsidyPct.GreaterThan(hundred) {
		errs = append(errs, errors.New("DEFAULT_SUBSIDY_PCT must be between 0 and 100"))
	}
	if cfg.LoanInterestRatePct.IsNegative() || cfg.LoanInterestRatePct.GreaterThan(hundred) {
		errs = append(errs, errors.New("LOAN_INTEREST_RATE_PCT must be between 0 and 100"))
	}
	if cfg.LoanMaxTermMonths < 1 {
		errs = append(errs, errors.New("LOAN_MAX_TERM_MONTHS must be at least 1"))
	}
	if !cfg.LoanMaxAmount.IsPositive() {
		errs = append(errs, errors.New("LOAN_MAX_AMOUNT must be positive"))
	}
	for name, v := range map[string]decimal.Decimal{"LOAN_DEDUCTION_CAP": cfg.LoanDeductionCap, "LOAN_CAPACITY_FRACTION": cfg.LoanCapacityFraction} {
		if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1", name))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// Location resolves the configured benefits timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}

func parseDecimal(value, fallback string) (decimal.Decimal, error) {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	return decimal.NewFromString(base)
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
