package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/benefits-engine/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("benefits", []float64{1, 10}, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/health/ready"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rr.Code)
	}

	total := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/health/ready", "204"))
	if total != 1 {
		t.Fatalf("expected counter to be 1, got %v", total)
	}

	samples := testutil.CollectAndCount(metrics.ReqDur)
	if samples == 0 {
		t.Fatalf("expected histogram sample")
	}

	if val := testutil.ToFloat64(metrics.InFlight); val != 0 {
		t.Fatalf("expected no in-flight requests, got %v", val)
	}
}

func TestHTTPMetricsResolveChiPatternAfterRouting(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("benefits", nil, registry)

	r := chi.NewRouter()
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	r.Post("/api/v1/loans/{kind}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/loans/quote", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodPost, "/api/v1/loans/{kind}", "200")))
}

func TestNewHTTPMetricsReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewHTTPMetrics("benefits", nil, registry)
	second := obs.NewHTTPMetrics("benefits", nil, registry)
	require.Same(t, first.ReqTotal, second.ReqTotal)
	require.Equal(t, first.InFlight, second.InFlight)
}

func TestParseBucketsCSV(t *testing.T) {
	require.Nil(t, obs.ParseBucketsCSV(""))
	require.Equal(t, []float64{1, 5, 10}, obs.ParseBucketsCSV("10, 5,x,-2,1,5"))
}

func TestDomainMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("benefits", registry)

	obs.RecordQuote("loan", "")
	obs.RecordQuote("loan", "INVALID_TERM")
	obs.RecordLoanReview("approved")
	obs.RecordQuoteCache("hit")

	require.Equal(t, float64(1), testutil.ToFloat64(obs.QuoteTotal.WithLabelValues("loan", "ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(obs.QuoteTotal.WithLabelValues("loan", "INVALID_TERM")))
	require.Equal(t, float64(1), testutil.ToFloat64(obs.LoanReviewTotal.WithLabelValues("approved")))
	require.Equal(t, float64(1), testutil.ToFloat64(obs.QuoteCacheTotal.WithLabelValues("hit")))
}
