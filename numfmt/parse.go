package numfmt

import (
	"strconv"
	"strings"

	"github.com/calcmesh/calcmesh/locale"
)

// Parsed is the result of classifying one piece of typed-in text:
// exactly one of IsNumber/IsDate is meaningful alongside Value.
type Parsed struct {
	Value       float64
	Format      string // inferred display format, "" means "use General"
	IsNumber    bool
	IsDate      bool
}

// ParseInput classifies raw user input the way set_user_input's step 2
// (spec §4.4) does: try it as a locale-aware number, then a date, before
// falling back to plain text. Grounded on
// original_source/base/src/formatter/format.rs's parse_formatted_number,
// simplified to this package's narrower currency/percentage heuristics
// (see DESIGN.md).
func ParseInput(s string, loc *locale.Locale) (Parsed, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Parsed{}, false
	}

	if strings.HasSuffix(s, "%") {
		body := strings.TrimSpace(strings.TrimSuffix(s, "%"))
		if f, hasComma, decimals, ok := parseLocaleNumber(body, loc); ok {
			_ = hasComma
			format := "#,##0%"
			if decimals > 0 {
				format = "#,##0.00%"
			}
			return Parsed{Value: f / 100, Format: format, IsNumber: true}, true
		}
	}

	if loc.CurrencySymbol != "" {
		if loc.CurrencyIsSuffix {
			if body, ok := strings.CutSuffix(s, loc.CurrencySymbol); ok {
				if f, _, decimals, ok := parseLocaleNumber(strings.TrimSpace(body), loc); ok {
					format := "#,##0" + loc.CurrencySymbol
					if decimals > 0 {
						format = "#,##0.00" + loc.CurrencySymbol
					}
					return Parsed{Value: f, Format: format, IsNumber: true}, true
				}
			}
		} else if body, ok := strings.CutPrefix(s, loc.CurrencySymbol); ok {
			if f, _, decimals, ok := parseLocaleNumber(strings.TrimSpace(body), loc); ok {
				format := loc.CurrencySymbol + "#,##0"
				if decimals > 0 {
					format = loc.CurrencySymbol + "#,##0.00"
				}
				return Parsed{Value: f, Format: format, IsNumber: true}, true
			}
		}
	}

	if serial, format, ok := parseDateLiteral(s); ok {
		return Parsed{Value: float64(serial), Format: format, IsDate: true}, true
	}

	if f, hasComma, decimals, ok := parseLocaleNumber(s, loc); ok {
		format := ""
		if hasComma {
			format = "#,##0"
			if decimals > 0 {
				format = "#,##0.00"
			}
		}
		return Parsed{Value: f, Format: format, IsNumber: true}, true
	}

	return Parsed{}, false
}

// parseLocaleNumber parses s as a number written with loc's decimal point
// and thousands separator, reporting whether grouping separators were
// present and how many fractional digits were typed (both feed the
// inferred format's shape, per original_source's NumberOptions).
func parseLocaleNumber(s string, loc *locale.Locale) (value float64, hasGroup bool, decimals int, ok bool) {
	if s == "" {
		return 0, false, 0, false
	}
	canon := strings.ReplaceAll(s, string(loc.ThousandsSep), "\x00")
	if strings.Contains(canon, "\x00") {
		hasGroup = true
	}
	canon = strings.ReplaceAll(canon, "\x00", "")
	if loc.DecimalPoint != '.' {
		canon = strings.ReplaceAll(canon, string(loc.DecimalPoint), ".")
	}
	f, err := strconv.ParseFloat(canon, 64)
	if err != nil {
		return 0, false, 0, false
	}
	if idx := strings.IndexByte(canon, '.'); idx >= 0 {
		decimals = len(canon) - idx - 1
	}
	return f, hasGroup, decimals, true
}

// parseDateLiteral recognizes month-first m/d/y or m-d-y dates separated
// consistently by '/' or '-', plus the ISO yyyy-mm-dd form.
// Grounded on original_source/base/src/formatter/format.rs's parse_date.
func parseDateLiteral(s string) (serial int, format string, ok bool) {
	var sep byte
	switch {
	case strings.Contains(s, "/"):
		sep = '/'
	case strings.Contains(s, "-"):
		sep = '-'
	default:
		return 0, "", false
	}
	parts := strings.Split(s, string(sep))
	if len(parts) != 3 {
		return 0, "", false
	}

	var dayStr, monthStr, yearStr string
	iso := false
	if len(parts[0]) == 4 && allDigits(parts[1]) && allDigits(parts[2]) {
		iso = true
		yearStr, monthStr, dayStr = parts[0], parts[1], parts[2]
	} else {
		// non-ISO: month/day/year, the conventional reading of "3/15/2024"
		// (day-first locales would need their own separator convention,
		// out of scope for this package's single date-literal heuristic).
		monthStr, dayStr, yearStr = parts[0], parts[1], parts[2]
	}

	day, dayFmt, ok := parseDayComponent(dayStr)
	if !ok {
		return 0, "", false
	}
	month, monthFmt, ok := parseMonthComponent(monthStr)
	if !ok {
		return 0, "", false
	}
	year, yearFmt, ok := parseYearComponent(yearStr)
	if !ok {
		return 0, "", false
	}
	n, err := DateToSerial(day, month, year)
	if err != nil {
		return 0, "", false
	}
	sepStr := string(sep)
	if iso {
		return n, "yyyy" + sepStr + monthFmt + sepStr + dayFmt, true
	}
	return n, monthFmt + sepStr + dayFmt + sepStr + yearFmt, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseDayComponent(s string) (int, string, bool) {
	if len(s) > 2 || !allDigits(s) {
		return 0, "", false
	}
	v, _ := strconv.Atoi(s)
	if len(s) == 2 {
		return v, "dd", true
	}
	return v, "d", true
}

var monthNamesShort = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sept", "Oct", "Nov", "Dec"}
var monthNamesLong = []string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}

func parseMonthComponent(s string) (int, string, bool) {
	if allDigits(s) && len(s) <= 2 {
		v, _ := strconv.Atoi(s)
		if len(s) == 2 {
			return v, "mm", true
		}
		return v, "m", true
	}
	for i, name := range monthNamesShort {
		if name == s {
			return i + 1, "mmm", true
		}
	}
	for i, name := range monthNamesLong {
		if name == s {
			return i + 1, "mmmm", true
		}
	}
	return 0, "", false
}

func parseYearComponent(s string) (int, string, bool) {
	if len(s) != 2 && len(s) != 4 {
		return 0, "", false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, "", false
	}
	if len(s) == 2 {
		if v < 30 {
			return 2000 + v, "yy", true
		}
		return 1900 + v, "yy", true
	}
	return v, "yyyy", true
}
