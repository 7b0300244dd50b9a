package loan

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/benefits-engine/internal/money"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestMonthlyPayment(t *testing.T) {
	payment, err := MonthlyPayment(Terms{Principal: d("5000"), AnnualRatePct: d("12"), TermMonths: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payment.Equal(d("1700.11")) {
		t.Fatalf("expected 1700.11, got %s", payment)
	}

	interest, err := TotalInterest(Terms{Principal: d("5000"), AnnualRatePct: d("12"), TermMonths: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !interest.Equal(d("100.33")) {
		t.Fatalf("expected interest 100.33, got %s", interest)
	}
}

func TestMonthlyPaymentZeroRate(t *testing.T) {
	payment, err := MonthlyPayment(Terms{Principal: d("6000"), AnnualRatePct: decimal.Zero, TermMonths: 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payment.Equal(d("1000")) {
		t.Fatalf("expected 1000, got %s", payment)
	}
	interest, _ := TotalInterest(Terms{Principal: d("6000"), AnnualRatePct: decimal.Zero, TermMonths: 6})
	if !interest.IsZero() {
		t.Fatalf("expected zero interest, got %s", interest)
	}
}

func TestMonthlyPaymentRejectsInvalidTerms(t *testing.T) {
	cases := []struct {
		name  string
		terms Terms
		want  error
	}{
		{"zero term", Terms{Principal: d("1000"), AnnualRatePct: d("12"), TermMonths: 0}, ErrInvalidTerm},
		{"negative term", Terms{Principal: d("1000"), AnnualRatePct: d("12"), TermMonths: -2}, ErrInvalidTerm},
		{"zero principal", Terms{Principal: decimal.Zero, AnnualRatePct: d("12"), TermMonths: 3}, money.ErrInvalidAmount},
		{"negative rate", Terms{Principal: d("1000"), AnnualRatePct: d("-1"), TermMonths: 3}, money.ErrInvalidPercentage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MonthlyPayment(tc.terms); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAmortizeScheduleClosesAtZero(t *testing.T) {
	q, err := Amortize(Terms{Principal: d("5000"), AnnualRatePct: d("12"), TermMonths: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Schedule) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(q.Schedule))
	}
	if !q.TotalPayment.Equal(d("5100.33")) || !q.TotalInterest.Equal(d("100.33")) {
		t.Fatalf("unexpected totals %s / %s", q.TotalPayment, q.TotalInterest)
	}
	if !q.Schedule[0].Interest.Equal(d("50")) {
		t.Fatalf("expected first month interest 50, got %s", q.Schedule[0].Interest)
	}
	last := q.Schedule[len(q.Schedule)-1]
	if !last.Balance.IsZero() {
		t.Fatalf("schedule should close at zero, got %s", last.Balance)
	}
	paid := decimal.Zero
	for _, row := range q.Schedule {
		paid = paid.Add(row.Principal)
	}
	if !paid.Equal(d("5000")) {
		t.Fatalf("principal parts should sum to 5000, got %s", paid)
	}
}

func TestValidateRequest(t *testing.T) {
	max := d("15000")
	if _, err := ValidateRequest(d("11000"), max, d("5000")); !errors.Is(err, ErrExceedsAvailableCredit) {
		t.Fatalf("expected ErrExceedsAvailableCredit, got %v", err)
	}
	got, err := ValidateRequest(d("9000"), max, d("5000"))
	if err != nil || !got.Equal(d("9000")) {
		t.Fatalf("expected 9000 accepted, got %s %v", got, err)
	}
	if _, err := ValidateRequest(d("16000"), max, decimal.Zero); !errors.Is(err, ErrExceedsMaximum) {
		t.Fatalf("expected ErrExceedsMaximum, got %v", err)
	}
	if _, err := ValidateRequest(decimal.Zero, max, decimal.Zero); !errors.Is(err, money.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ValidateRequest(d("10000"), max, d("5000")); err != nil {
		t.Fatalf("request reaching the ceiling exactly should pass, got %v", err)
	}
	if code := ReasonCode(func() error { _, err := ValidateRequest(d("11000"), max, d("5000")); return err }()); code != "EXCEEDS_AVAILABLE_CREDIT" {
		t.Fatalf("unexpected reason code %q", code)
	}
}

func TestCalculateEligibility(t *testing.T) {
	p := DefaultPolicy()
	e, err := CalculateEligibility(d("15000"), d("5000"), d("20000"), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// capacity 6000, 10000 / 6000 -> 2 months.
	if !e.AvailableAmount.Equal(d("10000")) || !e.MonthlyCapacity.Equal(d("6000")) || e.RecommendedTerm != 2 {
		t.Fatalf("unexpected eligibility %+v", e)
	}

	e, _ = CalculateEligibility(d("15000"), decimal.Zero, d("1000"), p)
	if e.RecommendedTerm != p.MaxTermMonths {
		t.Fatalf("expected term capped at %d, got %d", p.MaxTermMonths, e.RecommendedTerm)
	}

	e, _ = CalculateEligibility(d("15000"), d("20000"), d("50000"), p)
	if !e.AvailableAmount.IsZero() || e.RecommendedTerm != 0 {
		t.Fatalf("over-borrowed employee should have nothing available, got %+v", e)
	}

	e, _ = CalculateEligibility(d("15000"), decimal.Zero, decimal.Zero, p)
	if e.RecommendedTerm != p.MaxTermMonths {
		t.Fatalf("zero income should fall back to max term, got %d", e.RecommendedTerm)
	}

	if _, err := CalculateEligibility(d("15000"), d("-1"), d("100"), p); !errors.Is(err, money.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSalaryDeduction(t *testing.T) {
	got, err := SalaryDeduction(d("1700"), d("3400"), d("3000"), d("0.30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d("900")) {
		t.Fatalf("expected 900, got %s", got)
	}

	got, _ = SalaryDeduction(d("1700"), d("250"), d("100000"), d("0.30"))
	if !got.Equal(d("250")) {
		t.Fatalf("expected remaining balance 250, got %s", got)
	}

	got, _ = SalaryDeduction(d("1700"), decimal.Zero, d("100000"), d("0.30"))
	if !got.IsZero() {
		t.Fatalf("expected zero when nothing remains, got %s", got)
	}
	got, _ = SalaryDeduction(d("1700"), d("3400"), decimal.Zero, d("0.30"))
	if !got.IsZero() {
		t.Fatalf("expected zero with no salary, got %s", got)
	}

	if _, err := SalaryDeduction(d("1700"), d("3400"), d("3000"), d("1.5")); !errors.Is(err, money.ErrInvalidPercentage) {
		t.Fatalf("expected ErrInvalidPercentage, got %v", err)
	}
	if _, err := SalaryDeduction(d("-1"), d("3400"), d("3000"), d("0.3")); !errors.Is(err, money.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestPolicyReview(t *testing.T) {
	p := DefaultPolicy()
	borrower := Borrower{Salary: d("80000"), Active: true, LoansEnabled: true}

	small := p.Review(Application{Amount: d("5000"), TermMonths: 3, Purpose: PurposeMeal}, borrower)
	if small.Status != StatusApproved || small.Quote == nil || !small.Quote.MonthlyPayment.Equal(d("1700.11")) {
		t.Fatalf("expected approval with quote, got %+v", small)
	}

	large := p.Review(Application{Amount: d("9000"), TermMonths: 6, Purpose: PurposeCatering}, borrower)
	if large.Status != StatusPending {
		t.Fatalf("expected pending for amount above auto-approve limit, got %s", large.Status)
	}

	cases := []struct {
		name     string
		app      Application
		borrower Borrower
		want     error
	}{
		{"disabled", Application{Amount: d("100"), TermMonths: 1}, Borrower{Salary: d("80000"), Active: true}, ErrLoansDisabled},
		{"inactive", Application{Amount: d("100"), TermMonths: 1}, Borrower{Salary: d("80000"), LoansEnabled: true}, ErrBorrowerInactive},
		{"low salary", Application{Amount: d("100"), TermMonths: 1}, Borrower{Salary: d("40000"), Active: true, LoansEnabled: true}, ErrSalaryBelowMinimum},
		{"long term", Application{Amount: d("100"), TermMonths: 13}, borrower, ErrInvalidTerm},
		{"over credit", Application{Amount: d("11000"), TermMonths: 3}, Borrower{Salary: d("80000"), OutstandingBalance: d("5000"), Active: true, LoansEnabled: true}, ErrExceedsAvailableCredit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.Review(tc.app, tc.borrower)
			if got.Status != StatusRejected || !errors.Is(got.Err, tc.want) {
				t.Fatalf("expected rejection with %v, got %+v", tc.want, got)
			}
			if got.ReasonCode == "" {
				t.Fatal("expected reason code on rejection")
			}
		})
	}
}
