package eval

import (
	"strconv"
	"strings"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
	"github.com/calcmesh/calcmesh/numfmt"
)

// fnNow and fnToday are the two volatile functions the teacher's Clock
// seam covers (builtin.go); they read the clock each time their cell is
// recomputed, and a clean (Dirty==false) cell keeps its cached Result
// until it is marked dirty again.
func fnNow(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	return model.NumberValue(e.clock.NowSerial())
}

func fnToday(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	serial := e.clock.NowSerial()
	return model.NumberValue(float64(int(serial)))
}

// fnRand and fnRandbetween are the evaluator's only non-deterministic
// functions (spec §5 "random-number functions ... are permitted to
// consult a platform RNG"), routed through the injected RandomSource so
// tests get reproducible sequences.
func fnRand(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	return model.NumberValue(e.rng.Float64())
}

func fnRandbetween(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 2 {
		return model.ErrorValue(model.ErrValue)
	}
	low, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	high, errv := numArg(e, args[1], owner)
	if errv != nil {
		return *errv
	}
	if high < low {
		return model.ErrorValue(model.ErrNum)
	}
	span := float64(int(high) - int(low) + 1)
	return model.NumberValue(float64(int(low)) + float64(int(e.rng.Float64()*span)))
}

// fnDate builds a 1900-system serial from (year, month, day), spec §4.6's
// date archetype and the worked example in §8 scenario 5.
func fnDate(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 3 {
		return model.ErrorValue(model.ErrValue)
	}
	year, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	month, errv := numArg(e, args[1], owner)
	if errv != nil {
		return *errv
	}
	day, errv := numArg(e, args[2], owner)
	if errv != nil {
		return *errv
	}
	serial, err := numfmt.DateToSerial(int(day), int(month), int(year))
	if err != nil {
		return model.ErrorValue(model.ErrNum)
	}
	return model.NumberValue(float64(serial))
}

// fnTimevalue parses a bare time-of-day string ("2:24 AM", "14:30",
// "14:30:15") into the fractional-day serial spec §8 scenario 6 expects
// (TIMEVALUE("2:24 AM") == 0.1).
func fnTimevalue(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	s, errv := textArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	frac, ok := parseTimeOfDay(s)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	return model.NumberValue(frac)
}

// parseTimeOfDay reads "h:mm", "h:mm:ss", optionally suffixed with "AM"
// or "PM" (case-insensitive, any amount of surrounding whitespace), into
// a fraction of a 24-hour day.
func parseTimeOfDay(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	meridiem := ""
	if strings.HasSuffix(upper, "AM") || strings.HasSuffix(upper, "PM") {
		meridiem = upper[len(upper)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	second := 0
	if len(parts) == 3 {
		second, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, false
		}
	}

	switch meridiem {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, false
	}

	seconds := hour*3600 + minute*60 + second
	return float64(seconds) / 86400, true
}
