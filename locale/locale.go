// Package locale holds the small, read-only tables that make the lexer,
// the number-format engine, and set_user_input locale-sensitive: the
// argument/list separator, the decimal point, and the localized spelling
// of booleans and formula errors (spec §4.1, §4.4, §6.4).
//
// Locale and language tables are read-only after construction — there is
// no global mutable locale state (spec §9 "Global mutable state: None").
package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale is an immutable bundle of parsing/formatting conventions for one
// BCP-47 language tag.
type Locale struct {
	Tag              language.Tag
	ListSeparator    rune // argument separator: ',' or ';'
	DecimalPoint     rune // '.' or ','
	ThousandsSep     rune
	True             string
	False            string
	Errors           map[string]string // canonical -> localized spelling
	ErrorsReverse    map[string]string // localized spelling -> canonical
	DateOrder        string            // "ymd", "dmy", "mdy"
	CurrencySymbol   string
	CurrencyIsSuffix bool
}

var canonicalErrors = []string{
	"#NULL!", "#DIV/0!", "#VALUE!", "#REF!", "#NAME?", "#NUM!", "#N/A",
	"#ERROR!", "#N/IMPL!", "#SPILL!", "#CALC!", "#CIRC!",
}

// English (the only mode R1C1 storage ever uses, per spec §4.1) and a
// representative non-English locale (Spanish, decimal comma + semicolon
// separator) so the locale-sensitivity contract is actually exercised.
var (
	EnUS = mustBuild("en-US", ',', '.', ',', "TRUE", "FALSE", "ymd", "$", false)
	EsES = mustBuild("es-ES", ';', ',', '.', "VERDADERO", "FALSO", "dmy", "€", true)
)

var registry = map[string]*Locale{
	"en-us": EnUS,
	"es-es": EsES,
}

func mustBuild(tag string, listSep, decimal, thousands rune, t, f, dateOrder, currency string, suffix bool) *Locale {
	parsed, err := language.Parse(tag)
	if err != nil {
		panic(fmt.Sprintf("locale: invalid BCP-47 tag %q: %v", tag, err))
	}
	l := &Locale{
		Tag:              parsed,
		ListSeparator:    listSep,
		DecimalPoint:     decimal,
		ThousandsSep:     thousands,
		True:             t,
		False:            f,
		Errors:           make(map[string]string, len(canonicalErrors)),
		ErrorsReverse:    make(map[string]string, len(canonicalErrors)),
		DateOrder:        dateOrder,
		CurrencySymbol:   currency,
		CurrencyIsSuffix: suffix,
	}
	for _, e := range canonicalErrors {
		// Every locale, en-US included, uses the canonical English
		// error spellings.
		l.Errors[e] = e
		l.ErrorsReverse[e] = e
	}
	return l
}

// Lookup resolves a BCP-47 tag to a known Locale, falling back to en-US
// for anything not in the registry — matching spec §6.4's requirement
// that workbook creation always has *a* locale.
func Lookup(bcp47 string) *Locale {
	tag, err := language.Parse(bcp47)
	if err != nil {
		return EnUS
	}
	base, _ := tag.Base()
	region, _ := tag.Region()
	key := strings.ToLower(base.String() + "-" + region.String())
	if l, ok := registry[key]; ok {
		return l
	}
	return EnUS
}

// IsTrue / IsFalse do a locale-aware, case-insensitive boolean-literal match.
func (l *Locale) IsTrue(s string) bool  { return equalFold(s, l.True) }
func (l *Locale) IsFalse(s string) bool { return equalFold(s, l.False) }

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 32
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 32
		}
		if ca != cb {
			return false
		}
	}
	return true
}
