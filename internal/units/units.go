// Package units converts between human decimal strings and integer token
// amounts in a token's minor unit.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for malformed, negative, or over-precise input.
var ErrInvalidAmount = errors.New("invalid amount")

var decimalPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)

// Parse converts a decimal string such as "1.5" into minor units for a token
// with the given number of decimals. Fractional digits beyond decimals are
// rejected rather than rounded.
func Parse(value string, decimals uint8) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if !decimalPattern.MatchString(value) {
		return nil, fmt.Errorf("%w: %q is not a plain decimal number", ErrInvalidAmount, value)
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, value, decimals)
	}
	return scaled.BigInt(), nil
}

// ValidatePositive checks that value is a plain decimal number above zero,
// without needing the token's decimals.
func ValidatePositive(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if !decimalPattern.MatchString(value) {
		return fmt.Errorf("%w: %q is not a plain decimal number", ErrInvalidAmount, value)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !d.IsPositive() {
		return fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return nil
}

// ParsePositive is Parse that also rejects zero.
func ParsePositive(value string, decimals uint8) (*big.Int, error) {
	amount, err := Parse(value, decimals)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return amount, nil
}

// Format renders minor units as a decimal string without trailing zeros.
func Format(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}

// Ratio renders num/den with the given number of fractional digits.
func Ratio(num, den *big.Int, places int32) string {
	if num == nil || den == nil || den.Sign() == 0 {
		return "0"
	}
	return decimal.NewFromBigInt(num, 0).DivRound(decimal.NewFromBigInt(den, 0), places).String()
}
