// Package wallet authorizes meal payments against an employee's wallet
// balance or loan headroom and sizes employer top-ups.
package wallet

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/benefits-engine/internal/money"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrLoanLimitExceeded   = errors.New("loan limit exceeded")
	ErrLoanDisabled        = errors.New("loan facility not enabled")
	ErrUnknownMethod       = errors.New("unknown payment method")
)

// Method is how an order is paid for.
type Method string

const (
	MethodWallet Method = "wallet"
	MethodLoan   Method = "loan"
	MethodCash   Method = "cash"
	MethodCard   Method = "card"
)

// Account is the employee's payment state at the time of checkout.
type Account struct {
	WalletBalance   decimal.Decimal `json:"walletBalance"`
	LoanLimit       decimal.Decimal `json:"loanLimit"`
	OutstandingLoan decimal.Decimal `json:"outstandingLoan"`
	LoansEnabled    bool            `json:"loansEnabled"`
}

// Authorization is the account state after a successful payment.
type Authorization struct {
	Method          Method          `json:"method"`
	Amount          decimal.Decimal `json:"amount"`
	WalletBalance   decimal.Decimal `json:"walletBalance"`
	OutstandingLoan decimal.Decimal `json:"outstandingLoan"`
}

// Authorize checks whether amount can be charged to the account via method
// and returns the resulting balances. The account itself is not modified.
func Authorize(method Method, acct Account, amount decimal.Decimal) (Authorization, error) {
	if err := money.ValidatePositive("amount", amount); err != nil {
		return Authorization{}, err
	}
	amount = money.Round2(amount)
	out := Authorization{
		Method:          method,
		Amount:          amount,
		WalletBalance:   acct.WalletBalance,
		OutstandingLoan: acct.OutstandingLoan,
	}
	switch method {
	case MethodWallet:
		if acct.WalletBalance.LessThan(amount) {
			return Authorization{}, fmt.Errorf("balance %s below %s: %w", acct.WalletBalance, amount, ErrInsufficientBalance)
		}
		out.WalletBalance = acct.WalletBalance.Sub(amount)
	case MethodLoan:
		if !acct.LoansEnabled {
			return Authorization{}, ErrLoanDisabled
		}
		if acct.OutstandingLoan.Add(amount).GreaterThan(acct.LoanLimit) {
			return Authorization{}, fmt.Errorf("%s on top of %s above limit %s: %w", amount, acct.OutstandingLoan, acct.LoanLimit, ErrLoanLimitExceeded)
		}
		out.OutstandingLoan = acct.OutstandingLoan.Add(amount)
	case MethodCash, MethodCard:
	default:
		return Authorization{}, fmt.Errorf("%q: %w", method, ErrUnknownMethod)
	}
	return out, nil
}

// TopUpAmount is what the employer must credit to restore the monthly allowance.
func TopUpAmount(allowance, used decimal.Decimal) (decimal.Decimal, error) {
	if err := money.ValidateNonNegative("allowance", allowance); err != nil {
		return decimal.Zero, err
	}
	if err := money.ValidateNonNegative("used", used); err != nil {
		return decimal.Zero, err
	}
	return money.Round2(money.Max(decimal.Zero, allowance.Sub(used))), nil
}

// ReasonCode maps wallet and money errors to stable codes.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientBalance):
		return "INSUFFICIENT_BALANCE"
	case errors.Is(err, ErrLoanLimitExceeded):
		return "LOAN_LIMIT_EXCEEDED"
	case errors.Is(err, ErrLoanDisabled):
		return "LOANS_DISABLED"
	case errors.Is(err, ErrUnknownMethod):
		return "UNKNOWN_METHOD"
	case errors.Is(err, money.ErrInvalidAmount):
		return "INVALID_AMOUNT"
	}
	return ""
}
