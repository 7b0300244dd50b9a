package wallet

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/benefits-engine/internal/money"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestAuthorizeWallet(t *testing.T) {
	acct := Account{WalletBalance: d("8500"), LoanLimit: d("15000"), LoansEnabled: true}
	auth, err := Authorize(MethodWallet, acct, d("1200"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !auth.WalletBalance.Equal(d("7300")) || !auth.OutstandingLoan.IsZero() {
		t.Fatalf("unexpected authorization %+v", auth)
	}
	if !acct.WalletBalance.Equal(d("8500")) {
		t.Fatal("authorize must not modify the account")
	}
	if _, err := Authorize(MethodWallet, acct, d("9000")); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestAuthorizeLoan(t *testing.T) {
	acct := Account{LoanLimit: d("15000"), OutstandingLoan: d("14000"), LoansEnabled: true}
	auth, err := Authorize(MethodLoan, acct, d("1000"))
	if err != nil {
		t.Fatalf("loan up to the limit should pass, got %v", err)
	}
	if !auth.OutstandingLoan.Equal(d("15000")) {
		t.Fatalf("expected outstanding 15000, got %s", auth.OutstandingLoan)
	}
	if _, err := Authorize(MethodLoan, acct, d("1000.01")); !errors.Is(err, ErrLoanLimitExceeded) {
		t.Fatalf("expected ErrLoanLimitExceeded, got %v", err)
	}
	acct.LoansEnabled = false
	if _, err := Authorize(MethodLoan, acct, d("10")); !errors.Is(err, ErrLoanDisabled) {
		t.Fatalf("expected ErrLoanDisabled, got %v", err)
	}
}

func TestAuthorizeOtherMethods(t *testing.T) {
	for _, m := range []Method{MethodCash, MethodCard} {
		if _, err := Authorize(m, Account{}, d("500")); err != nil {
			t.Fatalf("%s should always authorize, got %v", m, err)
		}
	}
	if _, err := Authorize("voucher", Account{}, d("500")); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
	if _, err := Authorize(MethodCash, Account{}, decimal.Zero); !errors.Is(err, money.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if code := ReasonCode(ErrInsufficientBalance); code != "INSUFFICIENT_BALANCE" {
		t.Fatalf("unexpected code %q", code)
	}
}

func TestTopUpAmount(t *testing.T) {
	got, err := TopUpAmount(d("10000"), d("6500.50"))
	if err != nil || !got.Equal(d("3499.5")) {
		t.Fatalf("expected 3499.50, got %s %v", got, err)
	}
	got, _ = TopUpAmount(d("10000"), d("12000"))
	if !got.IsZero() {
		t.Fatalf("overspent allowance should need no top-up, got %s", got)
	}
	if _, err := TopUpAmount(d("-1"), decimal.Zero); !errors.Is(err, money.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
