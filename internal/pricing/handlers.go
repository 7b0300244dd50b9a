package pricing

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/benefits-engine/internal/common"
	"github.com/noah-isme/benefits-engine/internal/discount"
	"github.com/noah-isme/benefits-engine/internal/obs"
)

// Handler exposes order pricing endpoints.
type Handler struct {
	DefaultSubsidyPct decimal.Decimal
	Currency          string
	Location          *time.Location
	Now               func() time.Time
}

type quoteRequest struct {
	Items      []LineItem       `json:"items" validate:"required,min=1,dive"`
	PartySize  int              `json:"partySize" validate:"gte=0"`
	At         *time.Time       `json:"at"`
	Rules      []discount.Rule  `json:"rules" validate:"dive"`
	SubsidyPct *decimal.Decimal `json:"subsidyPct"`
}

type totalRequest struct {
	Subtotal        decimal.Decimal  `json:"subtotal"`
	DiscountPercent decimal.Decimal  `json:"discountPercent"`
	FixedDiscount   decimal.Decimal  `json:"fixedDiscount"`
	SubsidyPct      *decimal.Decimal `json:"subsidyPct"`
}

type quoteResponse struct {
	Quote
	Currency string `json:"currency"`
}

type totalResponse struct {
	Totals
	Currency string `json:"currency"`
}

// Quote prices a cart: subtotal, matching discounts, subsidy and payable total.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err, discount.ReasonCode)
		return
	}
	order := Order{
		Items:     req.Items,
		PartySize: req.PartySize,
		Now:       discount.EvaluationTime(req.At, h.Now, h.Location),
	}
	q, err := QuoteOrder(order, req.Rules, h.subsidy(req.SubsidyPct))
	obs.RecordQuote("order", discount.ReasonCode(err))
	if err != nil {
		common.WriteError(w, err, discount.ReasonCode)
		return
	}
	common.Data(w, http.StatusOK, quoteResponse{Quote: q, Currency: h.Currency})
}

// Total runs the order total calculator on pre-aggregated inputs.
func (h *Handler) Total(w http.ResponseWriter, r *http.Request) {
	var req totalRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err, discount.ReasonCode)
		return
	}
	stack := discount.Stack{Percent: req.DiscountPercent, Fixed: req.FixedDiscount}
	totals, err := ComputeOrderTotal(req.Subtotal, stack, h.subsidy(req.SubsidyPct))
	obs.RecordQuote("order_total", discount.ReasonCode(err))
	if err != nil {
		common.WriteError(w, err, discount.ReasonCode)
		return
	}
	common.Data(w, http.StatusOK, totalResponse{Totals: totals, Currency: h.Currency})
}

func (h *Handler) subsidy(requested *decimal.Decimal) decimal.Decimal {
	if requested != nil {
		return *requested
	}
	return h.DefaultSubsidyPct
}
