package model

// Kind is the runtime type tag of a cell's value (spec §4.4), mirroring
// the teacher's CellType but adding Array for the value of an array
// literal such as {1,2;3,4}.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindString
	KindBoolean
	KindError
	KindArray
)

// Value is a calculated or literal cell value. Exactly one of the typed
// fields is meaningful, selected by Kind — the teacher's Primitive `any`
// alias is replaced with an explicit tagged struct because model (unlike
// the teacher's single package) hands values across package boundaries
// to numfmt and eval, where an untyped `any` would force type assertions
// at every call site.
type Value struct {
	Kind   Kind
	Number float64
	Text   string
	Bool   bool
	Err    *FormulaError
	Array  [][]Value
}

func Empty() Value                  { return Value{Kind: KindEmpty} }
func NumberValue(v float64) Value   { return Value{Kind: KindNumber, Number: v} }
func StringValue(v string) Value    { return Value{Kind: KindString, Text: v} }
func BoolValue(v bool) Value        { return Value{Kind: KindBoolean, Bool: v} }
func ErrorValue(k ErrorKind) Value  { return Value{Kind: KindError, Err: &FormulaError{Kind: k}} }
func ArrayValue(rows [][]Value) Value { return Value{Kind: KindArray, Array: rows} }

func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }
func (v Value) IsError() bool { return v.Kind == KindError }

// CellAddress identifies one cell within a workbook. Grounded on the
// teacher's CellAddress (cell.go), renaming WorksheetID -> SheetID to
// match this package's Sheet terminology.
type CellAddress struct {
	SheetID uint32
	Row     uint32
	Column  uint32
}

// Cell is one occupied grid position: either a literal value, or a
// formula (FormulaID references the owning Workbook's FormulaTable) plus
// its last-calculated result.
type Cell struct {
	Row, Column uint32
	FormulaID   uint32 // 0 means "not a formula cell"
	Literal     Value  // the typed-in value, for non-formula cells
	Result      Value  // calculated value, meaningful for formula cells
	StyleID     uint32 // 0 means "default style"
	Dirty       bool   // true if Result is stale relative to FormulaID's dependencies
}

func (c *Cell) IsFormula() bool { return c.FormulaID != 0 }

// DisplayValue is the value shown to the user: Result for formula cells,
// Literal otherwise (spec §4.4 get_formatted_cell_value/get_cell_content).
func (c *Cell) DisplayValue() Value {
	if c.IsFormula() {
		return c.Result
	}
	return c.Literal
}
