package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ZeroDisplay is the safe fallback rendering for amounts that are zero,
// missing or uncoercible.
const ZeroDisplay = "0,00"

// ZeroPolicy controls how zero or missing money cells render. The two
// document layouts inherited different conventions, so the policy is chosen
// per column by the composer rather than guessed from the data.
type ZeroPolicy int

const (
	// ZeroBlank renders zero/missing cells as an empty string.
	ZeroBlank ZeroPolicy = iota
	// ZeroAsZero renders zero/missing cells as "0,00".
	ZeroAsZero
)

// FormatMoney renders an amount with "." as thousands separator, "," as
// decimal separator and exactly two decimal digits, rounding half-up.
func FormatMoney(d decimal.Decimal) string {
	fixed := d.Round(2).StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}
	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-2:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

// FormatMoneyCell renders a possibly-missing amount according to the given
// zero policy. Non-zero amounts always render through FormatMoney.
func FormatMoneyCell(n decimal.NullDecimal, policy ZeroPolicy) string {
	if !n.Valid || n.Decimal.IsZero() {
		if policy == ZeroAsZero {
			return ZeroDisplay
		}
		return ""
	}
	return FormatMoney(n.Decimal)
}

// ParseAmount coerces a raw numeric string into a decimal. It accepts plain
// ("1234.5"), comma-decimal ("1234,5") and localized ("1.234,50") encodings.
// Anything uncoercible yields the missing marker instead of an error, so a
// bad cell can never abort a document.
func ParseAmount(raw string) decimal.NullDecimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.NullDecimal{}
	}
	if strings.Contains(s, ",") {
		// Localized encoding: "." groups thousands, "," marks decimals.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
