// Package money formats and parses won amounts.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/budgetbook/budgetbook/internal/api"
)

// ErrInvalidAmount rejects input that is not a whole amount of at least 1.
var ErrInvalidAmount = errors.New("amount must be a number of at least 1")

const symbol = "₩"

// Format renders amount as won with thousands separators and no minor units.
func Format(amount decimal.Decimal) string {
	amount = amount.Round(0)
	if amount.IsNegative() {
		return "-" + symbol + group(amount.Neg().String())
	}
	return symbol + group(amount.String())
}

// Signed prefixes the formatted magnitude with + for income and - for expense.
func Signed(amount decimal.Decimal, typ api.TransactionType) string {
	sign := "-"
	if typ == api.Income {
		sign = "+"
	}
	return sign + Format(amount.Abs())
}

// Parse reads user input such as "12,500" or "₩ 3000".
func Parse(text string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(",", "", " ", "", symbol, "", "원", "").Replace(strings.TrimSpace(text))
	if clean == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(clean)
	if err != nil || d.LessThan(decimal.NewFromInt(1)) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func group(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
