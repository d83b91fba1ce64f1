// Package pricing holds the markdown policy every listed product must satisfy.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinimumDiscountPercent is the smallest markdown a listing may carry.
const MinimumDiscountPercent = 30

// Reason identifies which pricing rule rejected a listing.
type Reason string

const (
	ReasonNotLower Reason = "DISCOUNT_NOT_LOWER"
	ReasonTooSmall Reason = "DISCOUNT_TOO_SMALL"
)

var reasonMessages = map[Reason]string{
	ReasonNotLower: "discount price must be lower than original price",
	ReasonTooSmall: fmt.Sprintf("discount must be at least %d%%", MinimumDiscountPercent),
}

// RuleError is returned when a price pair violates the discount policy.
type RuleError struct {
	Reason   Reason
	Original decimal.Decimal
	Discount decimal.Decimal
}

func (e *RuleError) Error() string {
	return reasonMessages[e.Reason]
}

// Message is the human readable explanation for the rejected price pair.
func (e *RuleError) Message() string {
	return reasonMessages[e.Reason]
}

var (
	hundred    = decimal.NewFromInt(100)
	minPercent = decimal.NewFromInt(MinimumDiscountPercent)
)

// ValidateDiscount accepts the pair only when discount is strictly below
// original and the markdown is at least MinimumDiscountPercent. The
// comparison (o-d)*100 >= 30*o is exact, so 100/70 passes and 100/70.01 fails.
func ValidateDiscount(original, discount decimal.Decimal) error {
	if discount.GreaterThanOrEqual(original) {
		return &RuleError{Reason: ReasonNotLower, Original: original, Discount: discount}
	}
	markdown := original.Sub(discount).Mul(hundred)
	if markdown.LessThan(minPercent.Mul(original)) {
		return &RuleError{Reason: ReasonTooSmall, Original: original, Discount: discount}
	}
	return nil
}

// DiscountPercentage returns the markdown rounded half up to a whole percent.
// It is 0 when original is zero.
func DiscountPercentage(original, discount decimal.Decimal) int {
	if original.IsZero() {
		return 0
	}
	pct := original.Sub(discount).Mul(hundred).DivRound(original, 4).Round(0)
	return int(pct.IntPart())
}
