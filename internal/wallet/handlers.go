package wallet

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/benefits-engine/internal/common"
	"github.com/noah-isme/benefits-engine/internal/money"
	"github.com/noah-isme/benefits-engine/internal/obs"
)

// Handler exposes wallet checks over HTTP.
type Handler struct{}

type topUpRequest struct {
	MonthlyAllowance decimal.Decimal  `json:"monthlyAllowance"`
	AllowanceUsed    decimal.Decimal  `json:"allowanceUsed"`
	CurrentBalance   *decimal.Decimal `json:"currentBalance"`
}

type topUpResponse struct {
	TopUpAmount decimal.Decimal  `json:"topUpAmount"`
	NewBalance  *decimal.Decimal `json:"newBalance,omitempty"`
}

type authorizeRequest struct {
	Method  Method          `json:"method" validate:"required"`
	Account Account         `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// TopUp sizes the employer credit needed to restore the monthly allowance.
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	amount, err := TopUpAmount(req.MonthlyAllowance, req.AllowanceUsed)
	if err == nil && req.CurrentBalance != nil {
		err = money.ValidateNonNegative("current balance", *req.CurrentBalance)
	}
	obs.RecordQuote("wallet_topup", ReasonCode(err))
	if err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	resp := topUpResponse{TopUpAmount: amount}
	if req.CurrentBalance != nil {
		balance := money.Round2(req.CurrentBalance.Add(amount))
		resp.NewBalance = &balance
	}
	common.Data(w, http.StatusOK, resp)
}

// Authorize checks a payment against the account without mutating it.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	auth, err := Authorize(req.Method, req.Account, req.Amount)
	obs.RecordQuote("wallet_authorize", ReasonCode(err))
	if err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	common.Data(w, http.StatusOK, auth)
}
