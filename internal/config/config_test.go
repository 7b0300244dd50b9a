package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                   "",
		"LOAN_MAX_AMOUNT":        "",
		"LOAN_INTEREST_RATE_PCT": "",
		"BENEFITS_TIMEZONE":      "",
		"RATE_LIMIT_WINDOW":      "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.True(t, cfg.LoanMaxAmount.Equal(decimal.NewFromInt(15000)))
	require.True(t, cfg.LoanInterestRatePct.Equal(decimal.NewFromInt(12)))
	require.True(t, cfg.LoanDeductionCap.Equal(decimal.RequireFromString("0.3")))
	require.Equal(t, 12, cfg.LoanMaxTermMonths)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.Equal(t, "Asia/Colombo", cfg.Location().String())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                 ":9090",
		"LOAN_MAX_AMOUNT":      "20000",
		"DEFAULT_SUBSIDY_PCT":  "35.5",
		"CORS_ALLOWED_ORIGINS": "https://admin.example.com, https://app.example.com",
		"LOAN_QUOTE_CACHE_TTL": "30s",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.True(t, cfg.LoanMaxAmount.Equal(decimal.NewFromInt(20000)))
	require.True(t, cfg.DefaultSubsidyPct.Equal(decimal.RequireFromString("35.5")))
	require.Equal(t, []string{"https://admin.example.com", "https://app.example.com"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 30*time.Second, cfg.LoanQuoteCacheTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"subsidy above 100": {"DEFAULT_SUBSIDY_PCT": "120"},
		"bad decimal":       {"LOAN_MAX_AMOUNT": "lots"},
		"zero term":         {"LOAN_MAX_TERM_MONTHS": "0"},
		"cap above one":     {"LOAN_DEDUCTION_CAP": "1.5"},
		"unknown timezone":  {"BENEFITS_TIMEZONE": "Mars/Olympus"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadForTests(env)
			require.Error(t, err)
		})
	}
}
