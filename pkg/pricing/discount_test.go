package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestValidateDiscount(t *testing.T) {
	tests := []struct {
		name     string
		original string
		discount string
		reason   Reason
	}{
		{name: "exactly thirty percent", original: "100", discount: "70"},
		{name: "one cent short of thirty", original: "100", discount: "70.01", reason: ReasonTooSmall},
		{name: "deep discount", original: "250.00", discount: "99.90"},
		{name: "equal prices", original: "50", discount: "50", reason: ReasonNotLower},
		{name: "discount above original", original: "50", discount: "60", reason: ReasonNotLower},
		{name: "small markdown", original: "10", discount: "9.50", reason: ReasonTooSmall},
		{name: "thirty percent on odd cents", original: "0.10", discount: "0.07"},
		{name: "just under thirty on odd cents", original: "33.33", discount: "23.34", reason: ReasonTooSmall},
		{name: "free giveaway", original: "12.40", discount: "0"},
		{name: "zero original", original: "0", discount: "0", reason: ReasonNotLower},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDiscount(d(tt.original), d(tt.discount))
			if tt.reason == "" {
				if err != nil {
					t.Fatalf("expected accept, got %v", err)
				}
				return
			}
			var ruleErr *RuleError
			if !errors.As(err, &ruleErr) {
				t.Fatalf("expected RuleError, got %v", err)
			}
			if ruleErr.Reason != tt.reason {
				t.Fatalf("expected reason %s, got %s", tt.reason, ruleErr.Reason)
			}
		})
	}
}

func TestValidateDiscountNotLowerWinsOverTooSmall(t *testing.T) {
	err := ValidateDiscount(d("20"), d("25"))
	var ruleErr *RuleError
	if !errors.As(err, &ruleErr) || ruleErr.Reason != ReasonNotLower {
		t.Fatalf("expected DISCOUNT_NOT_LOWER, got %v", err)
	}
	if ruleErr.Message() != "discount price must be lower than original price" {
		t.Fatalf("unexpected message %q", ruleErr.Message())
	}
}

func TestRuleErrorMessages(t *testing.T) {
	err := ValidateDiscount(d("100"), d("80"))
	if err == nil || err.Error() != "discount must be at least 30%" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDiscountPercentage(t *testing.T) {
	tests := []struct {
		original string
		discount string
		want     int
	}{
		{"0", "0", 0},
		{"0", "5", 0},
		{"100", "70", 30},
		{"100", "69.50", 31},
		{"3", "2", 33},
		{"200", "49.99", 75},
		{"8", "7", 13},
	}
	for _, tt := range tests {
		if got := DiscountPercentage(d(tt.original), d(tt.discount)); got != tt.want {
			t.Fatalf("DiscountPercentage(%s, %s) = %d, want %d", tt.original, tt.discount, got, tt.want)
		}
	}
}
