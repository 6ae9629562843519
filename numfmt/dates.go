// Package numfmt implements the number-format mini-language (spec §4.5):
// parsing a user's typed text into a (value, inferred format) pair, and
// rendering a value back to display text given a format code. Grounded
// directly on original_source/base/src/formatter/format.rs and dates.rs,
// since the teacher carries no formatting concept at all.
package numfmt

import "fmt"

// epoch is the calendar quirk every spreadsheet engine inherits from
// Lotus 1-2-3: serial 0 is 30 Dec 1899, and serial 60 is the fictitious
// 29 Feb 1900 — except this package (like the original) treats serial 60
// as 28 Feb 1900 and never emits the fictitious date, matching
// date_to_serial_number/from_excel_date in original_source/dates.rs.
const epochYear, epochMonth, epochDay = 1899, 12, 30

var daysInMonth = [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInMonthOf(month, year int) int {
	if month == 2 && isLeap(year) {
		return 29
	}
	return daysInMonth[month-1]
}

// daysFromCivil computes the day count from a fixed epoch (1 Jan year 0,
// proleptic Gregorian) using Howard Hinnant's civil_from_days algorithm,
// used to turn (day, month, year) into a linear serial number.
func daysFromCivil(year, month, day int) int64 {
	y := int64(year)
	if month <= 2 {
		y--
	}
	era := y
	if y < 0 {
		era -= 399
	}
	era /= 400
	yoe := y - era*400
	var mp int64
	if int64(month) > 2 {
		mp = int64(month) - 3
	} else {
		mp = int64(month) + 9
	}
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// DateToSerial converts a (day, month, year) civil date into a 1900-system
// spreadsheet serial number. Returns an error for an invalid calendar date.
func DateToSerial(day, month, year int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("invalid month %d", month)
	}
	if day < 1 || day > daysInMonthOf(month, year) {
		return 0, fmt.Errorf("invalid day %d for %04d-%02d", day, year, month)
	}
	epoch := daysFromCivil(epochYear, epochMonth, epochDay)
	target := daysFromCivil(year, month, day)
	return int(target - epoch), nil
}

// SerialToDate is the inverse of DateToSerial.
func SerialToDate(serial int) (day, month, year int) {
	epoch := daysFromCivil(epochYear, epochMonth, epochDay)
	total := epoch + int64(serial)
	y, m, d := civilFromDays(total)
	return d, m, y
}

func civilFromDays(z int64) (year, month, day int) {
	z += 719468
	era := z
	if z < 0 {
		era -= 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	var m int64
	if mp < 10 {
		m = mp + 3
	} else {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return int(y), int(m), int(d)
}
