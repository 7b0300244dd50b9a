package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/benefits-engine/internal/discount"
	"github.com/noah-isme/benefits-engine/internal/money"
)

// LineItem describes a cart line used for pricing calculation.
type LineItem struct {
	ID        string          `json:"id" validate:"required"`
	Category  string          `json:"category,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
}

// Totals aggregates computed pricing components.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	SubsidyAmount  decimal.Decimal `json:"subsidyAmount"`
	Total          decimal.Decimal `json:"total"`
}

// Subtotal sums price x quantity over the items, rounded to 2dp.
func Subtotal(items []LineItem) (decimal.Decimal, error) {
	sum := decimal.Zero
	for i, it := range items {
		if err := money.ValidateNonNegative(fmt.Sprintf("item %d unitPrice", i), it.UnitPrice); err != nil {
			return decimal.Zero, err
		}
		if it.Quantity < 1 {
			return decimal.Zero, fmt.Errorf("item %d quantity %d: %w", i, it.Quantity, money.ErrInvalidAmount)
		}
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return money.Round2(sum), nil
}

// ComputeOrderTotal applies a stacked discount and then the employer subsidy.
// Percent and fixed parts are both taken against the original subtotal and the
// combined discount never exceeds it. Out-of-range inputs are rejected, not clamped.
func ComputeOrderTotal(subtotal decimal.Decimal, d discount.Stack, subsidyPct decimal.Decimal) (Totals, error) {
	if err := money.ValidateNonNegative("subtotal", subtotal); err != nil {
		return Totals{}, err
	}
	if err := money.ValidatePercent("discount percentage", d.Percent); err != nil {
		return Totals{}, err
	}
	if err := money.ValidateNonNegative("fixed discount", d.Fixed); err != nil {
		return Totals{}, err
	}
	if err := money.ValidatePercent("subsidy percentage", subsidyPct); err != nil {
		return Totals{}, err
	}

	subtotal = money.Round2(subtotal)
	discountAmount := money.Percent(subtotal, d.Percent).Add(money.Round2(d.Fixed))
	discountAmount = money.Min(discountAmount, subtotal)
	postDiscount := subtotal.Sub(discountAmount)
	subsidy := money.Percent(postDiscount, subsidyPct)
	total := money.Max(decimal.Zero, postDiscount.Sub(subsidy))

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		SubsidyAmount:  subsidy,
		Total:          total,
	}, nil
}

// Order is the cart state a quote is computed for.
type Order struct {
	Items     []LineItem
	PartySize int
	Now       time.Time
}

// AppliedDiscount is one matching rule and what it contributed on its own.
type AppliedDiscount struct {
	RuleID string          `json:"ruleId"`
	Name   string          `json:"name"`
	Kind   discount.Kind   `json:"kind"`
	Value  decimal.Decimal `json:"value"`
	Amount decimal.Decimal `json:"amount"`
}

// Quote is the full breakdown for an order. DiscountCapped is set when the
// matching percentages summed past 100 and DiscountPercent was held at 100.
type Quote struct {
	Totals
	DiscountPercent decimal.Decimal   `json:"discountPercent"`
	DiscountCapped  bool              `json:"discountCapped"`
	Applied         []AppliedDiscount `json:"applied"`
}

// QuoteOrder evaluates the rules against the order, stacks every match and
// computes the payable total after subsidy.
func QuoteOrder(order Order, rules []discount.Rule, subsidyPct decimal.Decimal) (Quote, error) {
	subtotal, err := Subtotal(order.Items)
	if err != nil {
		return Quote{}, err
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return Quote{}, err
		}
	}

	matched := discount.Evaluate(discount.Context{
		Subtotal:   subtotal,
		PartySize:  order.PartySize,
		Now:        order.Now,
		Categories: categories(order.Items),
	}, rules)
	stack := discount.Combine(matched)
	capped := stack.Percent.GreaterThan(money.Hundred)
	if capped {
		stack.Percent = money.Hundred
	}

	totals, err := ComputeOrderTotal(subtotal, stack, subsidyPct)
	if err != nil {
		return Quote{}, err
	}
	applied := make([]AppliedDiscount, 0, len(matched))
	for _, r := range matched {
		applied = append(applied, AppliedDiscount{
			RuleID: r.ID,
			Name:   r.Name,
			Kind:   r.Kind,
			Value:  r.Value,
			Amount: r.Amount(subtotal),
		})
	}
	return Quote{Totals: totals, DiscountPercent: stack.Percent, DiscountCapped: capped, Applied: applied}, nil
}

func categories(items []LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		c := strings.TrimSpace(it.Category)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
