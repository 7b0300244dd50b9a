package loan

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrLoansDisabled is returned when the employer has not enabled meal loans.
	ErrLoansDisabled = errors.New("loans disabled for company")
	// ErrBorrowerInactive is returned for suspended or terminated employees.
	ErrBorrowerInactive = errors.New("borrower is not active")
	// ErrSalaryBelowMinimum is returned when salary is under the policy floor.
	ErrSalaryBelowMinimum = errors.New("salary below loan minimum")
)

// Policy holds the company-level loan limits.
type Policy struct {
	MaxLoanAmount    decimal.Decimal
	AnnualRatePct    decimal.Decimal
	MaxTermMonths    int
	AutoApproveLimit decimal.Decimal
	MinSalary        decimal.Decimal
	CapacityFraction decimal.Decimal
	DeductionCap     decimal.Decimal
}

// DefaultPolicy mirrors the platform defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxLoanAmount:    decimal.NewFromInt(15000),
		AnnualRatePct:    decimal.NewFromInt(12),
		MaxTermMonths:    12,
		AutoApproveLimit: decimal.NewFromInt(5000),
		MinSalary:        decimal.NewFromInt(50000),
		CapacityFraction: decimal.RequireFromString("0.30"),
		DeductionCap:     decimal.RequireFromString("0.30"),
	}
}

// Purpose is what the borrowed funds are for.
type Purpose string

const (
	PurposeMeal      Purpose = "meal"
	PurposeSnack     Purpose = "snack"
	PurposeCatering  Purpose = "catering"
	PurposeEmergency Purpose = "emergency"
)

// Application is a borrower's loan request.
type Application struct {
	Amount     decimal.Decimal
	TermMonths int
	Purpose    Purpose
}

// Borrower is the employee state a review depends on.
type Borrower struct {
	Salary             decimal.Decimal
	OutstandingBalance decimal.Decimal
	Active             bool
	LoansEnabled       bool
}

// Status is the outcome of a review.
type Status string

const (
	StatusApproved Status = "approved"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
)

// Decision is the review result. Err is set only for rejections.
type Decision struct {
	Status     Status `json:"status"`
	ReasonCode string `json:"reasonCode,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Quote      *Quote `json:"quote,omitempty"`
	Err        error  `json:"-"`
}

func reject(err error) Decision {
	return Decision{Status: StatusRejected, ReasonCode: ReasonCode(err), Reason: err.Error(), Err: err}
}

// Review runs an application through the policy. Small loans are approved
// outright; anything above AutoApproveLimit is left pending for an approver.
func (p Policy) Review(app Application, b Borrower) Decision {
	if !b.LoansEnabled {
		return reject(ErrLoansDisabled)
	}
	if _, err := ValidateRequest(app.Amount, p.MaxLoanAmount, b.OutstandingBalance); err != nil {
		return reject(err)
	}
	if !b.Active {
		return reject(ErrBorrowerInactive)
	}
	if b.Salary.LessThan(p.MinSalary) {
		return reject(fmt.Errorf("salary %s under %s: %w", b.Salary, p.MinSalary, ErrSalaryBelowMinimum))
	}
	if app.TermMonths < 1 || app.TermMonths > p.MaxTermMonths {
		return reject(fmt.Errorf("term %d months outside 1..%d: %w", app.TermMonths, p.MaxTermMonths, ErrInvalidTerm))
	}

	quote, err := Amortize(Terms{Principal: app.Amount, AnnualRatePct: p.AnnualRatePct, TermMonths: app.TermMonths})
	if err != nil {
		return reject(err)
	}
	status := StatusPending
	if app.Amount.LessThanOrEqual(p.AutoApproveLimit) {
		status = StatusApproved
	}
	return Decision{Status: status, Quote: &quote}
}
