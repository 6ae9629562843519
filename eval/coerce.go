package eval

import (
	"strconv"
	"strings"

	"github.com/calcmesh/calcmesh/model"
)

// toArithmetic coerces v for +,-,*,/,^ and unary- (spec §4.6): booleans
// become 0/1, numeric-looking strings parse, Empty becomes 0, anything
// else is #VALUE!. Errors propagate unchanged so callers can short-circuit
// on ok==false without re-checking v.IsError() themselves.
func toArithmetic(v model.Value) (float64, *model.Value) {
	switch v.Kind {
	case model.KindNumber:
		return v.Number, nil
	case model.KindBoolean:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case model.KindEmpty:
		return 0, nil
	case model.KindString:
		if f, ok := parseNumericString(v.Text); ok {
			return f, nil
		}
		bad := model.ErrorValue(model.ErrValue)
		return 0, &bad
	case model.KindError:
		return 0, &v
	default:
		bad := model.ErrorValue(model.ErrValue)
		return 0, &bad
	}
}

// parseNumericString recognizes the plain decimal forms arithmetic
// coercion accepts; locale-aware grouped/currency/date parsing is
// numfmt's job for user input, not formula coercion, which spec §4.6
// restricts to "strings parseable as numbers".
func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// toDisplayString coerces v for & concatenation (spec §4.6: "both sides
// coerce to their displayed string"); callers check v.IsError() first
// since errors propagate rather than stringify.
func toDisplayString(v model.Value) string {
	switch v.Kind {
	case model.KindString:
		return v.Text
	case model.KindBoolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case model.KindNumber:
		return renderGeneralNumber(v.Number)
	case model.KindEmpty:
		return ""
	default:
		return ""
	}
}

// renderGeneralNumber is the minimal numeric-to-text rule concatenation
// needs: integers print without a decimal point, everything else prints
// its shortest exact representation. Full "General" number-format
// rendering (locale-aware, §4.5) lives in numfmt; coercion here is
// intentionally simpler since & never reads a cell's display format.
func renderGeneralNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// compareFold is a case-insensitive ordinal string compare (spec §4.6
// "string compares are case-insensitive").
func compareFold(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	default:
		return 0
	}
}

// typeRank implements the cross-type total order spec §4.6 specifies:
// Number < String < Boolean. Empty sorts with Number at 0 per how
// spreadsheets treat a blank cell in a comparison.
func typeRank(v model.Value) int {
	switch v.Kind {
	case model.KindNumber, model.KindEmpty:
		return 0
	case model.KindString:
		return 1
	case model.KindBoolean:
		return 2
	default:
		return 3
	}
}

// compareValues implements spec §4.6's compare coercion rule: same-type
// comparisons use natural ordering, cross-type comparisons use the total
// order from typeRank, and string comparisons are case-insensitive.
// Returns -1, 0, or 1.
func compareValues(a, b model.Value) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case model.KindNumber, model.KindEmpty:
		an, bn := a.Number, b.Number
		if a.Kind == model.KindEmpty {
			an = 0
		}
		if b.Kind == model.KindEmpty {
			bn = 0
		}
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	case model.KindString:
		return compareFold(a.Text, b.Text)
	case model.KindBoolean:
		switch {
		case a.Bool == b.Bool:
			return 0
		case !a.Bool && b.Bool:
			return -1
		default:
			return 1
		}
	default:
		return 0
	}
}
