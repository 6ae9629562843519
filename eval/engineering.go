package eval

import (
	"strconv"
	"strings"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

// bin2dec10 interprets s as a 10-bit two's complement binary literal
// (spec §4.6 Engineering archetype: "10-bit two's complement for
// binary"), returning the signed decimal value.
func bin2dec10(s string) (int, bool) {
	if len(s) == 0 || len(s) > 10 {
		return 0, false
	}
	for _, r := range s {
		if r != '0' && r != '1' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(s, 2, 64)
	if err != nil {
		return 0, false
	}
	if len(s) == 10 && s[0] == '1' {
		v -= 1 << 10
	}
	return int(v), true
}

// dec2bin10 renders n (must fit a signed 10-bit range, -512..511) as a
// two's-complement binary string, optionally left-padded to places
// (spec §4.6: "places argument ... must be wide enough to contain the
// result").
func dec2bin10(n int, places int, havePlaces bool) (string, bool) {
	if n < -512 || n > 511 {
		return "", false
	}
	v := n
	if v < 0 {
		v += 1 << 10
	}
	s := strconv.FormatInt(int64(v), 2)
	if n < 0 {
		// two's complement representation is always the full 10 bits
		s = strings.Repeat("0", 10-len(s)) + s
		return s, true
	}
	if havePlaces {
		if places < len(s) || places < 1 || places > 10 {
			return "", false
		}
		s = strings.Repeat("0", places-len(s)) + s
	}
	return s, true
}

func fnBin2Dec(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	v := e.evalNode(args[0], owner)
	if v.IsError() {
		return v
	}
	s := toDisplayString(v)
	n, ok := bin2dec10(s)
	if !ok {
		return model.ErrorValue(model.ErrNum)
	}
	return model.NumberValue(float64(n))
}

func fnDec2Bin(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 1 || len(args) > 2 {
		return model.ErrorValue(model.ErrValue)
	}
	n, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	places := 0
	havePlaces := false
	if len(args) == 2 {
		p, errv := numArg(e, args[1], owner)
		if errv != nil {
			return *errv
		}
		places = int(p)
		havePlaces = true
		if places < 1 || places > 10 {
			return model.ErrorValue(model.ErrNum)
		}
	}
	s, ok := dec2bin10(int(n), places, havePlaces)
	if !ok {
		return model.ErrorValue(model.ErrNum)
	}
	return model.StringValue(s)
}
