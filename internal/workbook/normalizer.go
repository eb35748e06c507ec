package workbook

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finstmt/pkg/contracts/domain"
)

// Locale identifiers understood by the number parser. Anything other than
// LocaleES is treated as LocaleEN.
const (
	LocaleEN = "en"
	LocaleES = "es"
)

// currencyTokens are stripped before numeric parsing, longest first so
// compound prefixes win over the bare symbol.
var currencyTokens = []string{
	"US$", "U$S", "AR$", "MX$", "R$", "USD", "EUR", "ARS", "MXN", "GBP",
	"$", "€", "£", "¥",
}

// dateLayouts are tried in order against cleaned header text.
var dateLayouts = []string{
	"January 2006",
	"Jan 2006",
	"Jan-06",
	"Jan-2006",
	"Jan/06",
	"2006-01-02",
	"2006-01",
	"01/2006",
	"1/2006",
	"2006/01",
	"01-2006",
	"02/01/2006",
	"01/02/2006",
}

// spanishMonths maps Spanish month tokens to their English equivalents so
// a single set of layouts covers both vocabularies. Full names come before
// abbreviations so "enero" is never clipped to "ene".
var spanishMonths = []struct{ es, en string }{
	{"enero", "January"}, {"febrero", "February"}, {"marzo", "March"},
	{"abril", "April"}, {"mayo", "May"}, {"junio", "June"},
	{"julio", "July"}, {"agosto", "August"}, {"septiembre", "September"},
	{"setiembre", "September"}, {"octubre", "October"}, {"noviembre", "November"},
	{"diciembre", "December"},
	{"ene", "Jan"}, {"feb", "Feb"}, {"mar", "Mar"}, {"abr", "Apr"},
	{"may", "May"}, {"jun", "Jun"}, {"jul", "Jul"}, {"ago", "Aug"},
	{"sep", "Sep"}, {"oct", "Oct"}, {"nov", "Nov"}, {"dic", "Dec"},
}

// NormalizeCell converts a raw cell string into a typed value. Dates are
// tried first (header cells carry them as text), then numbers under the
// given locale, then plain text. Empty or whitespace-only input yields
// Empty. The function never fails.
func NormalizeCell(raw, locale string) domain.CellValue {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.EmptyCell()
	}
	if t, ok := ParseDate(s); ok {
		return domain.DateCell(t)
	}
	if n, ok := ParseNumber(s, locale); ok {
		return domain.NumberCell(n)
	}
	return domain.TextCell(s)
}

// ParseNumber coerces text to a decimal under the given locale. Currency
// symbols and thousands separators are stripped; parenthesized values are
// negative; a trailing percent divides by 100. Returns false for text that
// carries no usable number — the caller decides whether that is a warning.
func ParseNumber(raw, locale string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	percent := false
	if strings.HasSuffix(s, "%") {
		percent = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	if s == "" {
		return decimal.Zero, false
	}

	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimSpace(s[1:])
	}

	switch normalizeLocale(locale) {
	case LocaleES:
		// 1.234,56 style: dots group thousands, comma is the decimal point.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	default:
		// 1,234.56 style: commas group thousands.
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	if percent {
		d = d.Div(decimal.NewFromInt(100))
	}
	return d, true
}

// ParseDate coerces header text to a date. It understands textual month
// headers in English and Spanish ("January 2024", "Ene-24", "2024-01") and
// Excel date serial numbers in a plausible range. Bare small integers are
// not dates.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return fromExcelSerial(serial)
	}

	cleaned := translateSpanishMonths(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// fromExcelSerial converts an Excel date serial to a time. Serials outside
// 1990..2100 are rejected so plain amounts never read as dates.
func fromExcelSerial(serial float64) (time.Time, bool) {
	if serial < 32874 || serial > 73415 {
		return time.Time{}, false
	}
	epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	return epoch.AddDate(0, 0, int(serial)), true
}

func translateSpanishMonths(s string) string {
	lower := strings.ToLower(s)
	for _, m := range spanishMonths {
		if idx := strings.Index(lower, m.es); idx >= 0 {
			// Replace in the original string, preserving surrounding text.
			return s[:idx] + m.en + s[idx+len(m.es):]
		}
	}
	return s
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	switch locale {
	case "es", "pt", "de", "it", "nl":
		return LocaleES
	default:
		return LocaleEN
	}
}
