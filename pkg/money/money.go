package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// minorUnitExponents lists currencies whose minor unit is not 1/100
var minorUnitExponents = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"CLP": 0,
	"ISK": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
	"JOD": 3,
	"TND": 3,
}

// Formatter renders minor-unit amounts as two-fraction-digit decimal strings
type Formatter struct{}

// NewFormatter creates a new amount formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format converts amount (minor units of currency) to the wire decimal string
func (f *Formatter) Format(amount int64, currency string) (string, error) {
	d, err := ToDecimal(amount, currency)
	if err != nil {
		return "", err
	}
	return d.StringFixed(2), nil
}

// ToDecimal converts a minor-unit amount to its major-unit decimal value
func ToDecimal(amount int64, currency string) (decimal.Decimal, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return decimal.Zero, fmt.Errorf("invalid currency code %q", currency)
	}
	if amount < 0 {
		return decimal.Zero, fmt.Errorf("amount must not be negative: %d", amount)
	}

	exp, ok := minorUnitExponents[code]
	if !ok {
		exp = 2
	}
	return decimal.New(amount, -exp), nil
}
