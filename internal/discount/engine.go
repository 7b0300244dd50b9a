package discount

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/benefits-engine/internal/money"
)

var (
	// ErrInvalidRule is returned when a rule is malformed (unknown kind, inverted dates, bad weekday).
	ErrInvalidRule = errors.New("invalid discount rule")
	// ErrRuleInactive is returned when the rule has been switched off.
	ErrRuleInactive = errors.New("discount rule inactive")
	// ErrRuleNotStarted is returned before the rule's start date.
	ErrRuleNotStarted = errors.New("discount rule not started")
	// ErrRuleExpired is returned after the rule's end date.
	ErrRuleExpired = errors.New("discount rule expired")
	// ErrUsageLimitReached indicates the rule has exhausted its usage quota.
	ErrUsageLimitReached = errors.New("discount rule usage limit reached")
	// ErrMinimumSubtotalUnmet indicates the subtotal is below the rule minimum.
	ErrMinimumSubtotalUnmet = errors.New("discount minimum subtotal not met")
	// ErrMaximumSubtotalExceeded indicates the subtotal is above the rule maximum.
	ErrMaximumSubtotalExceeded = errors.New("discount maximum subtotal exceeded")
	// ErrPartySizeUnmet indicates the party is smaller than the rule requires.
	ErrPartySizeUnmet = errors.New("discount minimum party size not met")
	// ErrDayNotAllowed indicates the rule does not run on the evaluation weekday.
	ErrDayNotAllowed = errors.New("discount not available on this day")
	// ErrOutsideTimeWindow indicates the evaluation time is outside the rule's window.
	ErrOutsideTimeWindow = errors.New("discount outside time window")
	// ErrCategoryUnmet indicates no line item belongs to the rule's categories.
	ErrCategoryUnmet = errors.New("discount category not present")
)

// Kind selects how a rule's value is interpreted.
type Kind string

const (
	// KindPercentage takes Value percent of the original subtotal.
	KindPercentage Kind = "percentage"
	// KindFixed subtracts Value as a flat amount.
	KindFixed Kind = "fixed"
)

// Conditions are the optional requirements of a rule. All declared
// conditions must hold; a rule with none always applies.
type Conditions struct {
	MinSubtotal  *decimal.Decimal `json:"minSubtotal,omitempty"`
	MaxSubtotal  *decimal.Decimal `json:"maxSubtotal,omitempty"`
	MinPartySize int              `json:"minPartySize,omitempty" validate:"gte=0"`
	Window       *Window          `json:"window,omitempty"`
	DaysOfWeek   []time.Weekday   `json:"daysOfWeek,omitempty" validate:"dive,gte=0,lte=6"`
	Categories   []string         `json:"categories,omitempty"`
}

// Rule is a company or restaurant discount.
type Rule struct {
	ID         string          `json:"id" validate:"required"`
	Name       string          `json:"name"`
	Kind       Kind            `json:"kind" validate:"required,oneof=percentage fixed"`
	Value      decimal.Decimal `json:"value"`
	Conditions Conditions      `json:"conditions"`
	Active     *bool           `json:"active,omitempty"`
	StartsAt   *time.Time      `json:"startsAt,omitempty"`
	EndsAt     *time.Time      `json:"endsAt,omitempty"`
	MaxUsage   *int32          `json:"maxUsage,omitempty"`
	UsageCount int32           `json:"usageCount,omitempty"`
}

// Context is the order state a rule is evaluated against.
type Context struct {
	Subtotal   decimal.Decimal
	PartySize  int
	Now        time.Time
	Categories []string
}

// Validate rejects rules the engine cannot apply meaningfully.
func (r Rule) Validate() error {
	switch r.Kind {
	case KindPercentage:
		if err := money.ValidatePercent("rule "+r.ID+" value", r.Value); err != nil {
			return err
		}
	case KindFixed:
		if err := money.ValidateNonNegative("rule "+r.ID+" value", r.Value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("rule %s kind %q: %w", r.ID, r.Kind, ErrInvalidRule)
	}
	c := r.Conditions
	if c.MinSubtotal != nil {
		if err := money.ValidateNonNegative("rule "+r.ID+" minSubtotal", *c.MinSubtotal); err != nil {
			return err
		}
	}
	if c.MaxSubtotal != nil {
		if err := money.ValidateNonNegative("rule "+r.ID+" maxSubtotal", *c.MaxSubtotal); err != nil {
			return err
		}
	}
	if c.MinPartySize < 0 {
		return fmt.Errorf("rule %s minPartySize %d: %w", r.ID, c.MinPartySize, ErrInvalidRule)
	}
	if c.Window != nil {
		if err := c.Window.validate(); err != nil {
			return fmt.Errorf("rule %s: %w", r.ID, err)
		}
	}
	for _, d := range c.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("rule %s weekday %d: %w", r.ID, d, ErrInvalidRule)
		}
	}
	if r.StartsAt != nil && r.EndsAt != nil && r.EndsAt.Before(*r.StartsAt) {
		return fmt.Errorf("rule %s ends before it starts: %w", r.ID, ErrInvalidRule)
	}
	if r.MaxUsage != nil && *r.MaxUsage < 0 {
		return fmt.Errorf("rule %s maxUsage %d: %w", r.ID, *r.MaxUsage, ErrInvalidRule)
	}
	return nil
}

// Check returns nil when every declared condition holds, otherwise the first
// unmet condition.
func (r Rule) Check(ctx Context) error {
	if r.Active != nil && !*r.Active {
		return ErrRuleInactive
	}
	if r.StartsAt != nil && ctx.Now.Before(*r.StartsAt) {
		return ErrRuleNotStarted
	}
	if r.EndsAt != nil && ctx.Now.After(*r.EndsAt) {
		return ErrRuleExpired
	}
	if r.MaxUsage != nil && r.UsageCount >= *r.MaxUsage {
		return ErrUsageLimitReached
	}
	c := r.Conditions
	if c.MinSubtotal != nil && ctx.Subtotal.LessThan(*c.MinSubtotal) {
		return ErrMinimumSubtotalUnmet
	}
	if c.MaxSubtotal != nil && ctx.Subtotal.GreaterThan(*c.MaxSubtotal) {
		return ErrMaximumSubtotalExceeded
	}
	if c.MinPartySize > 0 && partySize(ctx.PartySize) < c.MinPartySize {
		return ErrPartySizeUnmet
	}
	if len(c.DaysOfWeek) > 0 && !containsDay(c.DaysOfWeek, ctx.Now.Weekday()) {
		return ErrDayNotAllowed
	}
	if c.Window != nil && !c.Window.Contains(ctx.Now) {
		return ErrOutsideTimeWindow
	}
	if len(c.Categories) > 0 && !anyCategory(c.Categories, ctx.Categories) {
		return ErrCategoryUnmet
	}
	return nil
}

// Amount is the discount this rule alone grants on subtotal.
func (r Rule) Amount(subtotal decimal.Decimal) decimal.Decimal {
	if r.Kind == KindPercentage {
		return money.Percent(subtotal, r.Value)
	}
	return money.Round2(r.Value)
}

// Evaluate returns the rules whose conditions all hold, in input order.
func Evaluate(ctx Context, rules []Rule) []Rule {
	ctx.PartySize = partySize(ctx.PartySize)
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Check(ctx) == nil {
			out = append(out, r)
		}
	}
	return out
}

// Stack is the combined effect of several matching rules: percentages are
// summed against the original subtotal and fixed amounts are summed flat.
type Stack struct {
	Percent decimal.Decimal `json:"percent"`
	Fixed   decimal.Decimal `json:"fixed"`
}

// Combine stacks rules additively. Nothing compounds.
func Combine(rules []Rule) Stack {
	s := Stack{Percent: decimal.Zero, Fixed: decimal.Zero}
	for _, r := range rules {
		switch r.Kind {
		case KindPercentage:
			s.Percent = s.Percent.Add(r.Value)
		case KindFixed:
			s.Fixed = s.Fixed.Add(r.Value)
		}
	}
	return s
}

// ReasonCode maps evaluator errors to stable codes for API consumers.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRule), errors.Is(err, ErrInvalidClock):
		return "INVALID_RULE"
	case errors.Is(err, money.ErrInvalidPercentage):
		return "INVALID_PERCENTAGE"
	case errors.Is(err, money.ErrInvalidAmount):
		return "INVALID_AMOUNT"
	}
	return conditionCodes[err]
}

var conditionCodes = map[error]string{
	ErrRuleInactive:            "RULE_INACTIVE",
	ErrRuleNotStarted:          "RULE_NOT_STARTED",
	ErrRuleExpired:             "RULE_EXPIRED",
	ErrUsageLimitReached:       "USAGE_LIMIT_REACHED",
	ErrMinimumSubtotalUnmet:    "MIN_SUBTOTAL_UNMET",
	ErrMaximumSubtotalExceeded: "MAX_SUBTOTAL_EXCEEDED",
	ErrPartySizeUnmet:          "PARTY_SIZE_UNMET",
	ErrDayNotAllowed:           "DAY_NOT_ALLOWED",
	ErrOutsideTimeWindow:       "OUTSIDE_TIME_WINDOW",
	ErrCategoryUnmet:           "CATEGORY_UNMET",
}

func partySize(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func containsDay(days []time.Weekday, d time.Weekday) bool {
	for _, candidate := range days {
		if candidate == d {
			return true
		}
	}
	return false
}

func anyCategory(want, have []string) bool {
	for _, h := range have {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		for _, w := range want {
			if strings.EqualFold(strings.TrimSpace(w), h) {
				return true
			}
		}
	}
	return false
}
