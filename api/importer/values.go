package importer

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The source ledgers arrive in two incompatible numeric notations:
// Brazilian ("1.234,56") and US ("2,500.00"). When a cell carries both
// separators, whichever occurs last with at most two trailing digits is the
// decimal point and the other is stripped as a thousands separator. When the
// cell is inconclusive the comma is assumed to be a thousands separator and
// the fallback is logged, so silent misparses leave a trace.

const nbsp = " "

var nonDigitRe = regexp.MustCompile(`[^\d]`)

// CleanDocument strips punctuation from a CPF/CNPJ leaving digits only.
func CleanDocument(raw string) string {
	return nonDigitRe.ReplaceAllString(raw, "")
}

// ValidDocument reports whether a cleaned document has a plausible length:
// CPF has 11 digits, CNPJ 14.
func ValidDocument(document string) bool {
	return len(CleanDocument(document)) >= 11
}

func isBlankCell(s string) bool {
	switch strings.ToLower(s) {
	case "", "-", "nan", "none", "null":
		return true
	}
	return false
}

// ParseMoney converts raw cell content to a fixed-point amount. The second
// return is false for blank cells and for content that is not a number;
// callers decide whether that is an error for the field at hand.
func ParseMoney(raw string) (decimal.Decimal, bool) {
	s := normalizeCell(raw)
	if isBlankCell(s) {
		return decimal.Decimal{}, false
	}

	// Sign must be picked off before the cleanup below eats it. The source
	// ledgers write negatives as "- 1.200,00"; a few use a trailing minus.
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	} else if strings.HasSuffix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[:len(s)-1])
	}

	s = strings.NewReplacer("R$", "", "US$", "", "$", "", " ", "", nbsp, "").Replace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}

	s = normalizeSeparators(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// ParseFraction parses an ownership fraction. Percent-formatted cells
// ("60,000000 %", "60.00%") divide by 100 so the result is on the 0-1 scale
// either way.
func ParseFraction(raw string) (decimal.Decimal, bool) {
	s := normalizeCell(raw)
	if isBlankCell(s) {
		return decimal.Decimal{}, false
	}
	percent := false
	if strings.HasSuffix(s, "%") {
		percent = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}
	d, ok := ParseMoney(s)
	if !ok {
		return decimal.Decimal{}, false
	}
	if percent {
		d = d.Div(decimal.NewFromInt(100))
	}
	return d, true
}

// dateLayouts is the ordered trial list: day-first Brazilian, ISO, dashed
// day-first, then US month-first, each with and without a time suffix.
// First parse wins; there is no inference beyond this order.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02-01-2006 15:04:05",
	"01/02/2006 15:04:05",
}

// ParseDate converts raw cell content to a calendar date (time zeroed, UTC).
func ParseDate(raw string) (time.Time, bool) {
	s := normalizeCell(raw)
	if isBlankCell(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// normalizeCell trims, removes non-breaking spaces and collapses whitespace.
func normalizeCell(s string) string {
	s = strings.ReplaceAll(s, nbsp, " ")
	s = strings.TrimSpace(s)
	return strings.Join(strings.Fields(s), " ")
}

// normalizeSeparators rewrites s so that '.' is the decimal separator and no
// thousands separators remain.
func normalizeSeparators(s string) string {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	switch {
	case commas == 0 && dots == 0:
		return s
	case dots == 0:
		// Comma-only: a single comma is the decimal separator, repeated
		// commas can only be thousands grouping.
		if commas == 1 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case commas == 0:
		if dots == 1 {
			return s
		}
		return strings.ReplaceAll(s, ".", "")
	}

	// Both present: the separator occurring last with <=2 trailing digits is
	// the decimal one.
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	if lastComma > lastDot {
		if decimalTail(s[lastComma+1:]) && commas == 1 {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
	} else {
		if decimalTail(s[lastDot+1:]) && dots == 1 {
			return strings.ReplaceAll(s, ",", "")
		}
	}

	// Inconclusive: conservative default, comma as thousands grouping.
	log.Printf("[WARN] ambiguous numeric separators in %q, treating ',' as thousands", s)
	return strings.ReplaceAll(s, ",", "")
}

func decimalTail(tail string) bool {
	if len(tail) == 0 || len(tail) > 2 {
		return false
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
