package eval

import (
	"fmt"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

// parseComplex reads spec §4.6's Complex archetype operand grammar
// [±a][±bi|j]: a real part, an optional imaginary part suffixed "i" or
// "j" for the unit letter. Grounded on original_source's complex number
// parser (no Go standard-library parser accepts the bare "3+4i" form
// strconv/cmplx use "(3+4i)").
func parseComplex(s string) (complex128, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", false
	}
	unit := "i"
	if strings.HasSuffix(s, "j") {
		unit = "j"
	} else if !strings.HasSuffix(s, "i") {
		// pure real, no imaginary suffix present
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, "", false
		}
		return complex(f, 0), unit, true
	}
	body := s[:len(s)-1]

	// find the split between real and imaginary parts: the last +/- that
	// isn't the leading sign and isn't part of an exponent.
	splitAt := -1
	for i := len(body) - 1; i > 0; i-- {
		if body[i] == '+' || body[i] == '-' {
			splitAt = i
			break
		}
	}
	if splitAt < 0 {
		// whole thing is the imaginary part, e.g. "4i" or "-4i"
		imagStr := body
		if imagStr == "" || imagStr == "+" {
			imagStr = "1"
		} else if imagStr == "-" {
			imagStr = "-1"
		}
		imag, err := strconv.ParseFloat(imagStr, 64)
		if err != nil {
			return 0, "", false
		}
		return complex(0, imag), unit, true
	}
	realStr := body[:splitAt]
	imagStr := body[splitAt:]
	if imagStr == "+" {
		imagStr = "1"
	} else if imagStr == "-" {
		imagStr = "-1"
	}
	realPart, err := strconv.ParseFloat(realStr, 64)
	if err != nil {
		return 0, "", false
	}
	imagPart, err := strconv.ParseFloat(imagStr, 64)
	if err != nil {
		return 0, "", false
	}
	return complex(realPart, imagPart), unit, true
}

func formatComplex(c complex128, unit string) string {
	re, im := real(c), imag(c)
	if im == 0 {
		return formatFloat(re)
	}
	if re == 0 {
		return fmt.Sprintf("%s%s", formatSignedFloat(im), unit)
	}
	return fmt.Sprintf("%s%s%s", formatFloat(re), formatSignedFloat(im), unit)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatSignedFloat(f float64) string {
	s := formatFloat(f)
	if f >= 0 {
		return "+" + s
	}
	return s
}

func complexArg(e *Evaluator, n ast.Node, owner model.CellAddress) (complex128, string, *model.Value) {
	v := e.evalNode(n, owner)
	if v.IsError() {
		return 0, "", &v
	}
	s := toDisplayString(v)
	c, unit, ok := parseComplex(s)
	if !ok {
		bad := model.ErrorValue(model.ErrValue)
		return 0, "", &bad
	}
	return c, unit, nil
}

func fnImsum(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) == 0 {
		return model.ErrorValue(model.ErrValue)
	}
	var total complex128
	unit := "i"
	for _, n := range args {
		c, u, errv := complexArg(e, n, owner)
		if errv != nil {
			return *errv
		}
		total += c
		if imag(c) != 0 {
			unit = u
		}
	}
	return model.StringValue(formatComplex(total, unit))
}

func fnImabs(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	c, _, errv := complexArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	result := cmplx.Abs(c)
	if result != result { // NaN
		return model.ErrorValue(model.ErrNum)
	}
	return model.NumberValue(result)
}
