package loan

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/benefits-engine/internal/money"
)

var (
	// ErrExceedsMaximum is returned when a request alone is above the per-employee ceiling.
	ErrExceedsMaximum = errors.New("loan amount exceeds maximum")
	// ErrExceedsAvailableCredit is returned when request plus outstanding balance is above the ceiling.
	ErrExceedsAvailableCredit = errors.New("loan amount exceeds available credit")
)

// ValidateRequest checks a requested amount against the ceiling and the
// borrower's outstanding balance. On success the amount is returned unchanged.
func ValidateRequest(requested, maxAmount, outstanding decimal.Decimal) (decimal.Decimal, error) {
	if err := money.ValidatePositive("requested amount", requested); err != nil {
		return decimal.Zero, err
	}
	if err := money.ValidateNonNegative("outstanding balance", outstanding); err != nil {
		return decimal.Zero, err
	}
	if requested.GreaterThan(maxAmount) {
		return decimal.Zero, fmt.Errorf("%s above %s: %w", requested, maxAmount, ErrExceedsMaximum)
	}
	if requested.Add(outstanding).GreaterThan(maxAmount) {
		return decimal.Zero, fmt.Errorf("%s with %s outstanding above %s: %w", requested, outstanding, maxAmount, ErrExceedsAvailableCredit)
	}
	return requested, nil
}

// Eligibility summarises how much a borrower may still take and over how long.
type Eligibility struct {
	MaxLoanAmount   decimal.Decimal `json:"maxLoanAmount"`
	AvailableAmount decimal.Decimal `json:"availableAmount"`
	MonthlyCapacity decimal.Decimal `json:"monthlyCapacity"`
	RecommendedTerm int             `json:"recommendedTerm"`
}

// CalculateEligibility derives available credit, monthly repayment capacity
// and a recommended term from the policy.
func CalculateEligibility(maxAmount, outstanding, income decimal.Decimal, p Policy) (Eligibility, error) {
	for name, v := range map[string]decimal.Decimal{"max loan amount": maxAmount, "outstanding balance": outstanding, "income": income} {
		if err := money.ValidateNonNegative(name, v); err != nil {
			return Eligibility{}, err
		}
	}
	available := money.Max(decimal.Zero, maxAmount.Sub(outstanding))
	capacity := money.Round2(income.Mul(p.CapacityFraction))

	term := 0
	switch {
	case !available.IsPositive():
		term = 0
	case !capacity.IsPositive():
		term = p.MaxTermMonths
	default:
		months := available.Div(capacity).Ceil()
		if months.GreaterThan(decimal.NewFromInt(int64(p.MaxTermMonths))) || months.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
			term = p.MaxTermMonths
		} else {
			term = int(months.IntPart())
		}
	}

	return Eligibility{
		MaxLoanAmount:   maxAmount,
		AvailableAmount: available,
		MonthlyCapacity: capacity,
		RecommendedTerm: term,
	}, nil
}

// SalaryDeduction is the amount to withhold from one salary payment:
// min(monthlyPayment, remaining, salary x capFraction).
func SalaryDeduction(monthlyPayment, remaining, salary, capFraction decimal.Decimal) (decimal.Decimal, error) {
	for name, v := range map[string]decimal.Decimal{"monthly payment": monthlyPayment, "remaining balance": remaining, "salary": salary} {
		if err := money.ValidateNonNegative(name, v); err != nil {
			return decimal.Zero, err
		}
	}
	if capFraction.IsNegative() || capFraction.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("cap fraction %s outside [0,1]: %w", capFraction, money.ErrInvalidPercentage)
	}
	if remaining.IsZero() || salary.IsZero() {
		return decimal.Zero, nil
	}
	return money.Round2(money.Min(monthlyPayment, remaining, salary.Mul(capFraction))), nil
}

// ReasonCode maps loan and money errors to stable codes for API consumers.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTerm):
		return "INVALID_TERM"
	case errors.Is(err, ErrExceedsMaximum):
		return "EXCEEDS_MAXIMUM"
	case errors.Is(err, ErrExceedsAvailableCredit):
		return "EXCEEDS_AVAILABLE_CREDIT"
	case errors.Is(err, ErrLoansDisabled):
		return "LOANS_DISABLED"
	case errors.Is(err, ErrBorrowerInactive):
		return "BORROWER_INACTIVE"
	case errors.Is(err, ErrSalaryBelowMinimum):
		return "SALARY_BELOW_MINIMUM"
	case errors.Is(err, money.ErrInvalidPercentage):
		return "INVALID_PERCENTAGE"
	case errors.Is(err, money.ErrInvalidAmount):
		return "INVALID_AMOUNT"
	}
	return ""
}
