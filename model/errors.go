// Package model owns the workbook data: sheets, the cell grid, the style
// catalog, defined names/tables, and the published read/write operations
// of spec §4.4. It depends on ast (to store parsed formulas) and parser
// (to turn input text into ast.Node) but not on eval, so formula text can
// be stored and round-tripped without ever invoking the evaluator.
package model

import "fmt"

// ErrorKind is a cell-level formula error (spec §7), distinct from
// Error/Code below which are application-level (gRPC-style) failures —
// the same separation the teacher draws between SpreadsheetError and
// AppError in sheet.go.
type ErrorKind uint8

const (
	ErrNull ErrorKind = iota
	ErrDiv0
	ErrValue
	ErrRef
	ErrName
	ErrNum
	ErrNA
	ErrError
	ErrNImpl
	ErrSpill
	ErrCalc
	ErrCirc
)

var errorText = map[ErrorKind]string{
	ErrNull:  "#NULL!",
	ErrDiv0:  "#DIV/0!",
	ErrValue: "#VALUE!",
	ErrRef:   "#REF!",
	ErrName:  "#NAME?",
	ErrNum:   "#NUM!",
	ErrNA:    "#N/A",
	ErrError: "#ERROR!",
	ErrNImpl: "#N/IMPL!",
	ErrSpill: "#SPILL!",
	ErrCalc:  "#CALC!",
	ErrCirc:  "#CIRC!",
}

func (k ErrorKind) String() string { return errorText[k] }

// FormulaError is a cell value that is itself a formula error, optionally
// carrying a human-readable message (e.g. from a #N/IMPL! stub).
type FormulaError struct {
	Kind    ErrorKind
	Message string
}

func (e *FormulaError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

// Code is a gRPC-style application error code (spec §4.4, §6), covering
// failures like "no such sheet" or "row out of range" — never a formula
// error, which lives in a cell's value instead.
type Code int

const (
	OK Code = iota
	InvalidArgument
	NotFound
	AlreadyExists
	FailedPrecondition
	OutOfRange
	Internal
)

// Error is the application-level error type returned by every model
// write operation. Grounded on the teacher's AppErrorCode/AppError in
// sheet.go, generalized with the smaller code set this spec needs.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func newErr(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
