package discount

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/benefits-engine/internal/common"
	"github.com/noah-isme/benefits-engine/internal/money"
	"github.com/noah-isme/benefits-engine/internal/obs"
)

// Handler exposes rule evaluation over HTTP.
type Handler struct {
	Location *time.Location
	Now      func() time.Time
}

type evaluateRequest struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	PartySize  int             `json:"partySize" validate:"gte=0"`
	At         *time.Time      `json:"at"`
	Categories []string        `json:"categories"`
	Rules      []Rule          `json:"rules" validate:"dive"`
}

// Rejection explains why a rule did not apply.
type Rejection struct {
	RuleID     string `json:"ruleId"`
	ReasonCode string `json:"reasonCode"`
}

type evaluateResponse struct {
	Matched  []Rule      `json:"matched"`
	Rejected []Rejection `json:"rejected"`
	Stack    Stack       `json:"stack"`
}

// Evaluate returns the matching rules and their combined stack.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err, ReasonCode)
		return
	}
	if err := money.ValidateNonNegative("subtotal", req.Subtotal); err != nil {
		obs.RecordQuote("discount", ReasonCode(err))
		common.WriteError(w, err, ReasonCode)
		return
	}
	for _, rule := range req.Rules {
		if err := rule.Validate(); err != nil {
			obs.RecordQuote("discount", ReasonCode(err))
			common.WriteError(w, err, ReasonCode)
			return
		}
	}

	ctx := Context{
		Subtotal:   req.Subtotal,
		PartySize:  req.PartySize,
		Now:        EvaluationTime(req.At, h.Now, h.Location),
		Categories: req.Categories,
	}
	matched := Evaluate(ctx, req.Rules)
	rejected := make([]Rejection, 0, len(req.Rules)-len(matched))
	for _, rule := range req.Rules {
		if err := rule.Check(ctx); err != nil {
			rejected = append(rejected, Rejection{RuleID: rule.ID, ReasonCode: ReasonCode(err)})
		}
	}
	obs.RecordQuote("discount", "")
	common.Data(w, http.StatusOK, evaluateResponse{Matched: matched, Rejected: rejected, Stack: Combine(matched)})
}

// EvaluationTime picks the instant rules are checked at: the requested time
// if given, otherwise now. The result is expressed in loc so time windows are
// read on the company's wall clock.
func EvaluationTime(requested *time.Time, now func() time.Time, loc *time.Location) time.Time {
	var t time.Time
	switch {
	case requested != nil:
		t = *requested
	case now != nil:
		t = now()
	default:
		t = time.Now()
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t
}
