package loan

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/benefits-engine/internal/cache"
	"github.com/noah-isme/benefits-engine/internal/common"
	"github.com/noah-isme/benefits-engine/internal/obs"
)

// Handler exposes the loan calculators over HTTP.
type Handler struct {
	Policy Policy
	Cache  cache.Store
	Logger zerolog.Logger
}

type quoteRequest struct {
	Principal     decimal.Decimal  `json:"principal"`
	AnnualRatePct *decimal.Decimal `json:"annualRatePct"`
	TermMonths    int              `json:"termMonths"`
}

type validateRequest struct {
	RequestedAmount   decimal.Decimal  `json:"requestedAmount"`
	MaxAmount         *decimal.Decimal `json:"maxAmount"`
	OutstandingAmount decimal.Decimal  `json:"outstandingAmount"`
}

type validateResponse struct {
	Valid      bool   `json:"valid"`
	ReasonCode string `json:"reasonCode,omitempty"`
	Message    string `json:"message,omitempty"`
}

type eligibilityRequest struct {
	MaxAmount     *decimal.Decimal `json:"maxAmount"`
	Outstanding   decimal.Decimal  `json:"outstanding"`
	MonthlyIncome decimal.Decimal  `json:"monthlyIncome"`
}

type reviewRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	TermMonths   int             `json:"termMonths"`
	Purpose      Purpose         `json:"purpose" validate:"required,oneof=meal snack catering emergency"`
	Salary       decimal.Decimal `json:"salary"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	Active       *bool           `json:"active"`
	LoansEnabled *bool           `json:"loansEnabled"`
}

type deductionRequest struct {
	MonthlyPayment   decimal.Decimal  `json:"monthlyPayment"`
	RemainingBalance decimal.Decimal  `json:"remainingBalance"`
	Salary           decimal.Decimal  `json:"salary"`
	CapFraction      *decimal.Decimal `json:"capFraction"`
}

// Quote returns the amortized repayment plan. Identical terms are served
// from the cache when one is configured.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	terms := Terms{Principal: req.Principal, AnnualRatePct: h.Policy.AnnualRatePct, TermMonths: req.TermMonths}
	if req.AnnualRatePct != nil {
		terms.AnnualRatePct = *req.AnnualRatePct
	}
	if terms.TermMonths > h.Policy.MaxTermMonths {
		err := fmt.Errorf("term %d months above %d: %w", terms.TermMonths, h.Policy.MaxTermMonths, ErrInvalidTerm)
		obs.RecordQuote("loan", ReasonCode(err))
		common.WriteError(w, err, ReasonCode)
		return
	}

	key := quoteKey(terms)
	var cached Quote
	if h.Cache != nil {
		hit, err := h.Cache.GetJSON(r.Context(), key, &cached)
		switch {
		case err != nil:
			obs.RecordQuoteCache("error")
			h.Logger.Warn().Err(err).Msg("read loan quote cache")
		case hit:
			obs.RecordQuoteCache("hit")
			obs.RecordQuote("loan", "")
			common.Data(w, http.StatusOK, cached)
			return
		default:
			obs.RecordQuoteCache("miss")
		}
	}

	quote, err := Amortize(terms)
	obs.RecordQuote("loan", ReasonCode(err))
	if err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	if h.Cache != nil {
		if err := h.Cache.SetJSON(r.Context(), key, quote); err != nil {
			h.Logger.Warn().Err(err).Msg("write loan quote cache")
		}
	}
	common.Data(w, http.StatusOK, quote)
}

// Validate reports whether a requested amount fits the borrower's limits.
// Limit breaches are a normal answer, not an error response.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	ceiling := h.Policy.MaxLoanAmount
	if req.MaxAmount != nil {
		ceiling = *req.MaxAmount
	}
	_, err := ValidateRequest(req.RequestedAmount, ceiling, req.OutstandingAmount)
	obs.RecordQuote("loan_validate", ReasonCode(err))
	resp := validateResponse{Valid: err == nil}
	if err != nil {
		resp.ReasonCode = ReasonCode(err)
		resp.Message = err.Error()
	}
	common.Data(w, http.StatusOK, resp)
}

// Eligibility returns available credit and a recommended term.
func (h *Handler) Eligibility(w http.ResponseWriter, r *http.Request) {
	var req eligibilityRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	ceiling := h.Policy.MaxLoanAmount
	if req.MaxAmount != nil {
		ceiling = *req.MaxAmount
	}
	e, err := CalculateEligibility(ceiling, req.Outstanding, req.MonthlyIncome, h.Policy)
	obs.RecordQuote("eligibility", ReasonCode(err))
	if err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	common.Data(w, http.StatusOK, e)
}

// Review runs a loan application through the company policy.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	b := Borrower{
		Salary:             req.Salary,
		OutstandingBalance: req.Outstanding,
		Active:             req.Active == nil || *req.Active,
		LoansEnabled:       req.LoansEnabled == nil || *req.LoansEnabled,
	}
	decision := h.Policy.Review(Application{Amount: req.Amount, TermMonths: req.TermMonths, Purpose: req.Purpose}, b)
	obs.RecordLoanReview(string(decision.Status))
	h.Logger.Info().
		Str("status", string(decision.Status)).
		Str("reason_code", decision.ReasonCode).
		Str("purpose", string(req.Purpose)).
		Str("amount", req.Amount.String()).
		Msg("loan_review")
	common.Data(w, http.StatusOK, decision)
}

// Deduction returns the amount to withhold from the next salary payment.
func (h *Handler) Deduction(w http.ResponseWriter, r *http.Request) {
	var req deductionRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	capFraction := h.Policy.DeductionCap
	if req.CapFraction != nil {
		capFraction = *req.CapFraction
	}
	amount, err := SalaryDeduction(req.MonthlyPayment, req.RemainingBalance, req.Salary, capFraction)
	obs.RecordQuote("deduction", ReasonCode(err))
	if err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	common.Data(w, http.StatusOK, map[string]decimal.Decimal{"deduction": amount})
}

func quoteKey(t Terms) string {
	return common.CacheKey(t.Principal.String(), t.AnnualRatePct.String(), strconv.Itoa(t.TermMonths))
}
