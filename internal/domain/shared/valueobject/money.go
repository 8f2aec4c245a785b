package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is an integer amount of currency minor units. Every price in the
// system is held in this form; scraped or typed price text is converted
// exactly once, before persistence, and never stored as a float.
type Cents int64

// String renders the amount as a fixed two-fraction-digit string using the
// comma decimal convention ("1999" cents -> "19,99"). Zero and negative
// amounts render as "0,00".
func (c Cents) String() string {
	return CentsToString(c)
}

// Add returns the sum of both amounts.
func (c Cents) Add(other Cents) Cents {
	return c + other
}

// Multiply scales the amount by a decimal factor, rounding half-up to the
// nearest cent. Used for derived prices such as the ad import markup.
func (c Cents) Multiply(factor decimal.Decimal) Cents {
	return Cents(decimal.NewFromInt(int64(c)).Mul(factor).Round(0).IntPart())
}

// IsZero returns true for a zero amount.
func (c Cents) IsZero() bool {
	return c == 0
}

// ToCents converts locale-formatted price text to minor units.
//
// Accepted inputs are plain numbers ("19.99"), German-convention strings
// ("1.299,00"), and strings with surrounding junk such as currency symbols
// ("€ 19,99"). Rounding is half-up to the nearest cent. Anything
// unparsable, including the empty string, yields 0 - price hygiene never
// fails the caller.
func ToCents(raw string) Cents {
	cleaned := stripNonPrice(raw)
	if cleaned == "" {
		return 0
	}

	normalized := normalizeSeparators(cleaned)
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0
	}
	return Cents(d.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// ToCentsFromFloat converts an already-numeric price, rounding half-up.
func ToCentsFromFloat(value float64) Cents {
	return Cents(decimal.NewFromFloat(value).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// CentsToString renders minor units back to the canonical "x,yy" form.
func CentsToString(c Cents) string {
	if c <= 0 {
		return "0,00"
	}
	s := decimal.New(int64(c), -2).StringFixed(2)
	return strings.Replace(s, ".", ",", 1)
}

// NormalizePrice funnels arbitrary price text through the cents
// representation and back, producing the canonical rendering.
func NormalizePrice(raw string) string {
	return CentsToString(ToCents(raw))
}

// stripNonPrice keeps digits and separator characters only, discarding
// currency symbols, whitespace and other noise.
func stripNonPrice(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".,")
}

// normalizeSeparators resolves the decimal separator so the result parses
// with a plain dot convention.
//
// Rules, matching how Amazon/Otto price text arrives:
//   - a comma is always the decimal separator when present; dots before it
//     are thousands grouping ("1.299,00" -> "1299.00")
//   - a lone dot followed by exactly three digits is thousands grouping
//     ("1.299" -> "1299"), never a decimal point - this is the classic
//     "1.299 must not become 1.29" misread
//   - otherwise the last dot is the decimal separator and earlier dots are
//     grouping ("19.99" -> "19.99")
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	if lastComma > lastDot {
		s = strings.ReplaceAll(s, ".", "")
		return strings.ReplaceAll(s, ",", ".")
	}

	if lastDot == -1 {
		return s
	}

	// No comma, at least one dot.
	if len(s)-lastDot-1 == 3 {
		return strings.ReplaceAll(s, ".", "")
	}
	head := strings.ReplaceAll(s[:lastDot], ".", "")
	return head + s[lastDot:]
}
