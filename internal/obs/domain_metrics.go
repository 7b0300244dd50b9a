package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts engine calls by calculation kind and outcome.
	QuoteTotal *prometheus.CounterVec
	// LoanReviewTotal counts loan review decisions by status.
	LoanReviewTotal *prometheus.CounterVec
	// QuoteCacheTotal counts loan quote cache lookups by result.
	QuoteCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_total",
			Help:      "Count of benefit calculations by kind and result.",
		}, []string{"kind", "result"}))
		LoanReviewTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loan_review_total",
			Help:      "Count of loan application reviews by decision status.",
		}, []string{"status"}))
		QuoteCacheTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loan_quote_cache_total",
			Help:      "Count of loan quote cache lookups by result.",
		}, []string{"result"}))
	})
}

// RecordQuote increments QuoteTotal. A blank result is recorded as "ok".
// It is a no-op until MustRegisterDomainMetrics has run.
func RecordQuote(kind, result string) {
	if QuoteTotal == nil {
		return
	}
	if result == "" {
		result = "ok"
	}
	QuoteTotal.WithLabelValues(kind, result).Inc()
}

// RecordLoanReview increments LoanReviewTotal.
func RecordLoanReview(status string) {
	if LoanReviewTotal == nil {
		return
	}
	LoanReviewTotal.WithLabelValues(status).Inc()
}

// RecordQuoteCache increments QuoteCacheTotal with hit, miss or error.
func RecordQuoteCache(result string) {
	if QuoteCacheTotal == nil {
		return
	}
	QuoteCacheTotal.WithLabelValues(result).Inc()
}
