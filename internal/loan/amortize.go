package loan

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/benefits-engine/internal/money"
)

var (
	// ErrInvalidTerm is returned when a term is below one month or above the configured maximum.
	ErrInvalidTerm = errors.New("invalid loan term")
	// ErrInvalidPrincipal is returned when the principal is not positive.
	ErrInvalidPrincipal = fmt.Errorf("invalid principal: %w", money.ErrInvalidAmount)
	// ErrInvalidRate is returned when the annual rate is negative or above 100.
	ErrInvalidRate = fmt.Errorf("invalid interest rate: %w", money.ErrInvalidPercentage)
)

var monthsPerYearPct = decimal.NewFromInt(1200)

// Terms describe a fixed-rate loan repaid in equal monthly installments.
type Terms struct {
	Principal     decimal.Decimal `json:"principal"`
	AnnualRatePct decimal.Decimal `json:"annualRatePct"`
	TermMonths    int             `json:"termMonths"`
}

// Installment is one row of a repayment schedule.
type Installment struct {
	Month     int             `json:"month"`
	Payment   decimal.Decimal `json:"payment"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Balance   decimal.Decimal `json:"balance"`
}

// Quote is the repayment summary for a set of terms.
type Quote struct {
	Terms
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	TotalPayment   decimal.Decimal `json:"totalPayment"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
	Schedule       []Installment   `json:"schedule"`
}

// Validate checks principal, rate and term against the engine's domain.
func (t Terms) Validate() error {
	if t.TermMonths < 1 {
		return fmt.Errorf("term %d months: %w", t.TermMonths, ErrInvalidTerm)
	}
	if !t.Principal.IsPositive() {
		return ErrInvalidPrincipal
	}
	if t.AnnualRatePct.IsNegative() || t.AnnualRatePct.GreaterThan(money.Hundred) {
		return ErrInvalidRate
	}
	return nil
}

func (t Terms) monthlyRate() decimal.Decimal {
	return t.AnnualRatePct.Div(monthsPerYearPct)
}

// MonthlyPayment returns the equal installment under reducing-balance
// amortization, rounded to 2dp.
func MonthlyPayment(t Terms) (decimal.Decimal, error) {
	if err := t.Validate(); err != nil {
		return decimal.Zero, err
	}
	n := decimal.NewFromInt(int64(t.TermMonths))
	r := t.monthlyRate()
	if r.IsZero() {
		return money.Round2(t.Principal.Div(n)), nil
	}
	growth := decimal.NewFromInt(1).Add(r).Pow(n)
	payment := t.Principal.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))
	return money.Round2(payment), nil
}

// TotalInterest is payment x term - principal, using the rounded payment.
func TotalInterest(t Terms) (decimal.Decimal, error) {
	payment, err := MonthlyPayment(t)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Round2(payment.Mul(decimal.NewFromInt(int64(t.TermMonths))).Sub(t.Principal)), nil
}

// Amortize builds the quote and month-by-month schedule. The final row
// settles whatever balance rounding has left so the schedule closes at zero.
func Amortize(t Terms) (Quote, error) {
	payment, err := MonthlyPayment(t)
	if err != nil {
		return Quote{}, err
	}
	term := decimal.NewFromInt(int64(t.TermMonths))
	total := money.Round2(payment.Mul(term))
	r := t.monthlyRate()

	schedule := make([]Installment, 0, t.TermMonths)
	balance := t.Principal
	for month := 1; month <= t.TermMonths; month++ {
		interest := money.Round2(balance.Mul(r))
		principal := payment.Sub(interest)
		due := payment
		if month == t.TermMonths || principal.GreaterThan(balance) {
			principal = balance
			due = principal.Add(interest)
		}
		balance = balance.Sub(principal)
		schedule = append(schedule, Installment{
			Month:     month,
			Payment:   due,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
		if balance.IsZero() {
			break
		}
	}

	return Quote{
		Terms:          t,
		MonthlyPayment: payment,
		TotalPayment:   total,
		TotalInterest:  total.Sub(t.Principal),
		Schedule:       schedule,
	}, nil
}
