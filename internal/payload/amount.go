// =============================================================================
// Payments Portal - Amount Handling
// =============================================================================
//
// Amounts arrive as currency-formatted text ("$1,234.56"). This file turns
// them into integer cents and back.
//
// ROUNDING:
//   Amounts are parsed exactly (math/big) and rounded half up to the nearest
//   cent. "1.005" becomes 101 cents and "10.125" becomes 1013 cents. Parsing
//   through float64 would round some of these ties down because the binary
//   value sits just below the tie.
//
// STRICTNESS:
//   After stripping "$", "," and surrounding whitespace, the remaining text
//   must be a plain decimal number in full. "12abc", "NaN", "Inf", "1e3" and
//   "1/2" are rejected.
//
// =============================================================================

package payload

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyAmount is returned when nothing is left after stripping.
	ErrEmptyAmount = errors.New("amount is empty")

	// ErrInvalidAmount is returned when the text is not a plain decimal.
	ErrInvalidAmount = errors.New("amount is not a valid decimal number")

	// ErrAmountOutOfRange is returned when the cents value overflows int64.
	ErrAmountOutOfRange = errors.New("amount is out of range")
)

// decimalPattern accepts an optional sign, digits with an optional fraction,
// or a bare fraction (".5").
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

var amountStripper = strings.NewReplacer("$", "", ",", "")

var hundred = big.NewRat(100, 1)
var half = big.NewRat(1, 2)

// =============================================================================
// PARSING
// =============================================================================

// StripAmount removes currency symbols, thousands separators and surrounding
// whitespace from a raw amount.
func StripAmount(raw string) string {
	return strings.TrimSpace(amountStripper.Replace(raw))
}

// ParseAmount parses a raw amount into an exact rational number of dollars.
//
// PARAMETERS:
//   - raw: The amount as typed by the user, e.g. "$1,234.56".
//
// RETURNS:
//   - The exact value in dollars.
//   - ErrEmptyAmount or ErrInvalidAmount (wrapped) when the text is unusable.
func ParseAmount(raw string) (*big.Rat, error) {
	s := StripAmount(raw)
	if s == "" {
		return nil, ErrEmptyAmount
	}

	if !decimalPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	value, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	return value, nil
}

// CentsFromAmount converts dollars to cents, rounding half up.
func CentsFromAmount(dollars *big.Rat) (int64, error) {
	scaled := new(big.Rat).Mul(dollars, hundred)
	scaled.Add(scaled, half)

	// Int.Div is Euclidean; with the positive denominator of a normalized
	// Rat this is floor division.
	cents := new(big.Int).Div(scaled.Num(), scaled.Denom())
	if !cents.IsInt64() {
		return 0, ErrAmountOutOfRange
	}

	return cents.Int64(), nil
}

// CentsToRat converts cents to an exact dollar value.
func CentsToRat(cents int64) *big.Rat {
	return big.NewRat(cents, 100)
}

// ParseAmountCents parses a raw amount straight to cents.
func ParseAmountCents(raw string) (int64, error) {
	dollars, err := ParseAmount(raw)
	if err != nil {
		return 0, err
	}
	return CentsFromAmount(dollars)
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatCents renders cents as a two-decimal string, e.g. 123456 -> "1234.56".
func FormatCents(cents int64) string {
	if cents < 0 {
		// -cents overflows for MinInt64; format through big.Int for that case.
		abs := new(big.Int).Neg(big.NewInt(cents))
		q, r := new(big.Int).QuoRem(abs, big.NewInt(100), new(big.Int))
		return fmt.Sprintf("-%s.%02d", q.String(), r.Int64())
	}
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// FormatDisplayAmount renders cents for the confirmation view, e.g. "$12.50".
func FormatDisplayAmount(cents int64) string {
	return "$" + FormatCents(cents)
}

// =============================================================================
// INPUT FIELD BEHAVIOR
// =============================================================================

// SanitizeAmountInput cleans the amount field as the user types: only digits
// and a single decimal point survive, and at most two decimals are kept.
func SanitizeAmountInput(value string) string {
	var b strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	parts := strings.Split(cleaned, ".")
	if len(parts) == 1 {
		return cleaned
	}

	// Collapse extra decimal points into the fraction.
	whole, fraction := parts[0], strings.Join(parts[1:], "")
	if len(fraction) > 2 {
		fraction = fraction[:2]
	}

	return whole + "." + fraction
}

// FormatAmountOnBlur normalizes the amount field when it loses focus.
// Empty input stays empty; parseable input becomes a two-decimal string;
// anything else is returned unchanged.
func FormatAmountOnBlur(value string) string {
	if value == "" {
		return ""
	}

	cents, err := ParseAmountCents(value)
	if err != nil {
		return value
	}

	return FormatCents(cents)
}
