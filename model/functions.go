package model

// KnownFunctions is the set of function names the parser accepts as
// ast.Function rather than ast.InvalidFunction (spec §4.6's archetype
// table). Grounded on the teacher's builtin.go dispatch switch, extended
// with the lookup/database/complex/engineering/financial archetypes
// SPEC_FULL.md adds. eval implements the names in its dispatch table; a
// listed name without an implementation evaluates to #N/IMPL!, and a
// name absent from this set always parses to #NAME?.
var KnownFunctions = buildKnownFunctions()

func buildKnownFunctions() map[string]struct{} {
	names := []string{
		// aggregators
		"SUM", "AVERAGE", "AVERAGEA", "COUNT", "COUNTA", "COUNTBLANK",
		"MAX", "MAXA", "MIN", "MINA", "MEDIAN", "MODE", "PRODUCT",
		"STDEV", "STDEV.S", "STDEV.P", "STDEVA", "VAR", "VAR.S", "VAR.P",

		// logical / error handling
		"IF", "IFS", "IFERROR", "IFNA", "ISERROR", "ISNA", "ISERR",
		"ISBLANK", "ISNUMBER", "ISTEXT", "ISLOGICAL", "AND", "OR", "NOT",
		"XOR", "TRUE", "FALSE",

		// text
		"CONCATENATE", "CONCAT", "LEN", "UPPER", "LOWER", "TRIM", "MID",
		"LEFT", "RIGHT", "FIND", "SEARCH", "SUBSTITUTE", "REPLACE",
		"TEXT", "VALUE", "T",

		// math
		"ABS", "ROUND", "ROUNDUP", "ROUNDDOWN", "FLOOR", "CEILING",
		"SQRT", "POWER", "MOD", "PI", "EXP", "LN", "LOG", "LOG10",
		"SIGN", "INT", "TRUNC", "RAND", "RANDBETWEEN",

		// date/time
		"NOW", "TODAY", "DATE", "TIME", "YEAR", "MONTH", "DAY",
		"HOUR", "MINUTE", "SECOND", "WEEKDAY", "DATEVALUE", "TIMEVALUE",
		"EDATE", "EOMONTH", "DAYS", "NETWORKDAYS",

		// conditional aggregators
		"SUMIF", "SUMIFS", "COUNTIF", "COUNTIFS", "AVERAGEIF", "AVERAGEIFS",

		// lookups
		"VLOOKUP", "HLOOKUP", "XLOOKUP", "INDEX", "MATCH", "LOOKUP",
		"CHOOSE", "OFFSET", "ROW", "ROWS", "COLUMN", "COLUMNS", "INDIRECT",

		// database
		"DSUM", "DAVERAGE", "DCOUNT", "DCOUNTA", "DGET", "DMAX", "DMIN",

		// complex numbers
		"COMPLEX", "IMSUM", "IMSUB", "IMPRODUCT", "IMDIV", "IMABS",
		"IMARGUMENT", "IMCONJUGATE", "IMCOS", "IMSIN", "IMEXP", "IMLN",
		"IMSQRT", "IMREAL", "IMAGINARY", "IMPOWER",

		// engineering base conversion
		"BIN2DEC", "BIN2OCT", "BIN2HEX", "DEC2BIN", "DEC2OCT", "DEC2HEX",
		"OCT2BIN", "OCT2DEC", "OCT2HEX", "HEX2BIN", "HEX2DEC", "HEX2OCT",
		"BITAND", "BITOR", "BITXOR", "BITLSHIFT", "BITRSHIFT",

		// financial bonds
		"PRICE", "YIELD", "PRICEDISC", "YIELDDISC", "PRICEMAT", "YIELDMAT",
		"DURATION", "MDURATION", "ACCRINT", "ACCRINTM", "DISC", "COUPDAYS",
		"COUPDAYSNC", "COUPDAYBS", "COUPNCD", "COUPPCD", "COUPNUM",
		"PV", "FV", "NPV", "IRR", "RATE", "NPER", "PMT",
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// IsKnownFunction reports whether name (already uppercased by the
// parser) is one of KnownFunctions.
func IsKnownFunction(name string) bool {
	_, ok := KnownFunctions[name]
	return ok
}
