package numfmt

import (
	"strconv"
	"strings"

	"github.com/calcmesh/calcmesh/locale"
	"github.com/shopspring/decimal"
)

// Code is a parsed number-format string, split into up to four
// semicolon-delimited sections (positive;negative;zero;text), matching
// format_number's dispatch in
// original_source/base/src/formatter/format.rs.
type Code struct {
	raw      string
	sections []section
}

type sectionKind uint8

const (
	sectionGeneral sectionKind = iota
	sectionNumeric
	sectionDate
	sectionLiteral
)

type section struct {
	kind sectionKind
	// numeric sections
	decimals     int
	grouped      bool
	percent      bool
	scientific   bool
	prefix       string
	suffix       string
	// literal/date sections keep the original pattern to replay token by token
	pattern string
}

// Parse compiles a format code such as "#,##0.00", "0%", "yyyy-mm-dd" or
// "General" into a Code ready for Render. Unknown or empty codes fall
// back to General.
func Parse(code string) *Code {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, "General") {
		return &Code{raw: "General", sections: []section{{kind: sectionGeneral}}}
	}
	parts := splitSections(code)
	c := &Code{raw: code}
	for _, p := range parts {
		c.sections = append(c.sections, parseSection(p))
	}
	return c
}

// splitSections splits on ';' that isn't inside a quoted literal or
// bracketed color/condition tag.
func splitSections(code string) []string {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i, r := range code {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			depth++
		case r == ']':
			if depth > 0 {
				depth--
			}
		case r == ';' && depth == 0:
			parts = append(parts, code[start:i])
			start = i + 1
		}
	}
	parts = append(parts, code[start:])
	return parts
}

func parseSection(p string) section {
	trimmed := stripColorTag(p)
	if strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"") && len(trimmed) >= 2 {
		return section{kind: sectionLiteral, pattern: trimmed}
	}
	if containsDateLetters(trimmed) {
		return section{kind: sectionDate, pattern: trimmed}
	}
	if strings.Count(trimmed, "0")+strings.Count(trimmed, "#") == 0 {
		return section{kind: sectionLiteral, pattern: trimmed}
	}

	s := section{kind: sectionNumeric, pattern: trimmed}
	body := trimmed
	if strings.Contains(body, "%") {
		s.percent = true
	}
	if strings.Contains(body, "E+") || strings.Contains(body, "E-") || strings.Contains(body, "e+") {
		s.scientific = true
	}
	if strings.Contains(body, ",") {
		s.grouped = true
	}
	if idx := strings.IndexByte(body, '.'); idx >= 0 {
		tail := body[idx+1:]
		decimals := 0
		for _, c := range tail {
			if c == '0' || c == '#' {
				decimals++
			} else {
				break
			}
		}
		s.decimals = decimals
	}
	// prefix/suffix: any literal characters around the numeric run
	numStart, numEnd := -1, -1
	for i, c := range body {
		if c == '0' || c == '#' || c == '.' || c == ',' {
			if numStart == -1 {
				numStart = i
			}
			numEnd = i + 1
		}
	}
	if numStart > 0 {
		s.prefix = body[:numStart]
	}
	if numEnd >= 0 && numEnd < len(body) {
		s.suffix = body[numEnd:]
	}
	return s
}

func stripColorTag(p string) string {
	for strings.HasPrefix(strings.TrimSpace(p), "[") {
		p = strings.TrimSpace(p)
		idx := strings.IndexByte(p, ']')
		if idx < 0 {
			break
		}
		p = p[idx+1:]
	}
	return p
}

func containsDateLetters(p string) bool {
	inQuote := false
	for _, r := range p {
		if r == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		switch r {
		case 'y', 'Y', 'm', 'M', 'd', 'D', 'h', 'H', 's', 'S':
			return true
		}
	}
	return false
}

// Render formats value as display text according to c, choosing the
// positive/negative/zero/text section the way format_number does.
func Render(c *Code, value float64, loc *locale.Locale) string {
	if len(c.sections) == 0 || c.sections[0].kind == sectionGeneral {
		return renderGeneral(value)
	}
	sec := c.sections[0]
	switch {
	case value < 0 && len(c.sections) > 1:
		sec = c.sections[1]
		value = -value
	case value == 0 && len(c.sections) > 2:
		sec = c.sections[2]
	}
	return renderSection(sec, value, loc)
}

// RenderText formats a text value, using the 4th section (if present) as
// a template containing "@" for the literal text.
func RenderText(c *Code, text string) string {
	if len(c.sections) < 4 {
		return text
	}
	sec := c.sections[3]
	return strings.ReplaceAll(sec.pattern, "@", text)
}

func renderGeneral(value float64) string {
	if value == float64(int64(value)) && value < 1e15 && value > -1e15 {
		return strconv.FormatInt(int64(value), 10)
	}
	s := strconv.FormatFloat(value, 'g', 15, 64)
	return s
}

func renderSection(sec section, value float64, loc *locale.Locale) string {
	switch sec.kind {
	case sectionLiteral:
		return strings.Trim(sec.pattern, "\"")
	case sectionDate:
		day, month, year := SerialToDate(int(value))
		return renderDate(sec.pattern, day, month, year, value)
	case sectionGeneral:
		return renderGeneral(value)
	default:
		return renderNumeric(sec, value, loc)
	}
}

func renderNumeric(sec section, value float64, loc *locale.Locale) string {
	if sec.percent {
		value *= 100
	}
	d := decimal.NewFromFloat(value).Round(int32(sec.decimals))
	whole := d.Truncate(0).IntPart()
	if whole < 0 {
		whole = -whole
	}
	neg := d.Sign() < 0

	var intPart string
	if sec.grouped {
		intPart = groupThousands(strconv.FormatInt(whole, 10), loc.ThousandsSep)
	} else {
		intPart = strconv.FormatInt(whole, 10)
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(sec.prefix)
	b.WriteString(intPart)
	if sec.decimals > 0 {
		frac := d.Abs().Sub(d.Abs().Truncate(0)).Shift(int32(sec.decimals)).Round(0).IntPart()
		fracStr := strconv.FormatInt(frac, 10)
		for len(fracStr) < sec.decimals {
			fracStr = "0" + fracStr
		}
		b.WriteRune(loc.DecimalPoint)
		b.WriteString(fracStr)
	}
	b.WriteString(sec.suffix)
	return b.String()
}

func groupThousands(digits string, sep rune) string {
	if len(digits) <= 3 {
		return digits
	}
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	return strings.Join(parts, string(sep))
}

var monthShort = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
var monthLong = [...]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}

// renderDate walks pattern left to right, replacing runs of date-code
// letters with their value; anything else (separators, quoted literals)
// passes through unchanged.
func renderDate(pattern string, day, month, year int, serial float64) string {
	var b strings.Builder
	runes := []rune(pattern)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			b.WriteString(string(runes[i+1 : j]))
			i = j + 1
		case r == 'y' || r == 'Y':
			j := i
			for j < len(runes) && (runes[j] == 'y' || runes[j] == 'Y') {
				j++
			}
			if j-i >= 4 {
				b.WriteString(strconv.Itoa(year))
			} else {
				b.WriteString(pad2(year % 100))
			}
			i = j
		case r == 'd' || r == 'D':
			j := i
			for j < len(runes) && (runes[j] == 'd' || runes[j] == 'D') {
				j++
			}
			switch j - i {
			case 1:
				b.WriteString(strconv.Itoa(day))
			default:
				b.WriteString(pad2(day))
			}
			i = j
		case r == 'm' || r == 'M':
			j := i
			for j < len(runes) && (runes[j] == 'm' || runes[j] == 'M') {
				j++
			}
			n := j - i
			switch {
			case n == 1:
				b.WriteString(strconv.Itoa(month))
			case n == 2:
				b.WriteString(pad2(month))
			case n == 3:
				b.WriteString(monthShort[(month-1+12)%12])
			default:
				b.WriteString(monthLong[(month-1+12)%12])
			}
			i = j
		case r == 'h' || r == 'H' || r == 's' || r == 'S':
			// time-of-day component: fractional part of the serial encodes
			// the time, but this package's Value carries only the date
			// portion for date literals, so render zero-filled.
			j := i
			ch := r
			for j < len(runes) && runes[j] == ch {
				j++
			}
			b.WriteString(pad2(0))
			i = j
		default:
			b.WriteRune(r)
			i++
		}
	}
	return b.String()
}

func pad2(n int) string {
	if n < 0 {
		n = -n
	}
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
