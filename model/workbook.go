package model

import (
	"strings"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/locale"
	"github.com/calcmesh/calcmesh/numfmt"
	"github.com/calcmesh/calcmesh/parser"
	"github.com/calcmesh/calcmesh/token"
)

// DefinedName is a named reference (workbook- or sheet-scoped) resolving
// to a range or formula, mirroring the teacher's NamedRangeTable entries
// (range.go) but keyed by display name rather than interned into its own
// arena — SPEC_FULL.md's Defined name list is small enough per workbook
// that the teacher's intern/refcount machinery would be overkill here.
type DefinedName struct {
	Name       string
	SheetScope int // -1 means workbook-scoped
	Formula    ast.Node
}

// Table is a structured (header-row) range, spec SUPPLEMENTED FEATURES.
type Table struct {
	Name      string
	SheetID   uint32
	FirstRow  uint32
	FirstCol  uint32
	LastRow   uint32
	LastCol   uint32
	HasHeader bool
}

// View is the per-user window state spec's SUPPLEMENTED FEATURES adds:
// which sheet/cell/range is selected and how far the grid has scrolled.
// It never affects calculation, only what usermodel reports back to a
// client. WindowWidthPx/WindowHeightPx are the viewport size the
// usermodel package's arrow-key/page-up/down handlers use to decide
// when the selection has scrolled out of view (spec §4.8 View state).
type View struct {
	ActiveSheet   uint32
	SelectedRow   uint32
	SelectedCol   uint32
	RangeAnchorR  uint32
	RangeAnchorC  uint32
	ScrollRow     uint32
	ScrollCol     uint32
	WindowWidthPx  float64
	WindowHeightPx float64
}

// Workbook is the root object: its sheets plus the shared arenas every
// sheet's cells reference into (strings, formulas, styles), grounded on
// the teacher's Spreadsheet (sheet.go) generalized from "one implicit
// sheet" to spec §4.4's full multi-sheet workbook.
type Workbook struct {
	Locale *locale.Locale

	sheets      map[uint32]*Sheet
	sheetOrder  []uint32
	nameToID    map[string]uint32
	nextSheetID uint32

	Strings  *StringTable
	Formulas *FormulaTable
	Styles   *StyleCatalog

	Names  map[string]*DefinedName
	Tables map[string]*Table

	View View
}

func NewWorkbook(loc *locale.Locale) *Workbook {
	if loc == nil {
		loc = locale.EnUS
	}
	return &Workbook{
		Locale:      loc,
		sheets:      make(map[uint32]*Sheet),
		nameToID:    make(map[string]uint32),
		nextSheetID: 1,
		Strings:     NewStringTable(),
		Formulas:    NewFormulaTable(),
		Styles:      NewStyleCatalog(),
		Names:       make(map[string]*DefinedName),
		Tables:      make(map[string]*Table),
	}
}

// maxSheetNameLen and sheetNameForbidden are spec §3's sheet-name
// invariant: at most 31 characters, none of the Excel-reserved
// path/reference characters.
const maxSheetNameLen = 31

const sheetNameForbidden = ":\\/?*[]"

// validateSheetName enforces spec §3's sheet-name invariant (length and
// forbidden characters) ahead of the uniqueness check every caller also
// needs.
func validateSheetName(name string) *Error {
	if name == "" || len(name) > maxSheetNameLen {
		return newErr(InvalidArgument, "sheet name must be 1-%d characters, got %q", maxSheetNameLen, name)
	}
	if strings.ContainsAny(name, sheetNameForbidden) {
		return newErr(InvalidArgument, "sheet name %q contains a disallowed character (%s)", name, sheetNameForbidden)
	}
	return nil
}

// AddSheet creates and appends a new sheet, enforcing unique,
// case-insensitive names (spec §4.4 new_sheet) within spec §3's
// length/character invariant.
func (w *Workbook) AddSheet(name string) (*Sheet, *Error) {
	if err := validateSheetName(name); err != nil {
		return nil, err
	}
	if _, ok := w.resolveSheetName(name); ok {
		return nil, newErr(AlreadyExists, "sheet %q already exists", name)
	}
	id := w.nextSheetID
	w.nextSheetID++
	s := NewSheet(id, name)
	w.sheets[id] = s
	w.sheetOrder = append(w.sheetOrder, id)
	w.nameToID[strings.ToLower(name)] = id
	return s, nil
}

// Sheet returns the sheet with id, or nil.
func (w *Workbook) Sheet(id uint32) *Sheet { return w.sheets[id] }

// SheetByName performs the case-insensitive lookup spec §4.2's
// sheet-prefix resolution needs.
func (w *Workbook) SheetByName(name string) (*Sheet, bool) {
	id, ok := w.resolveSheetName(name)
	if !ok {
		return nil, false
	}
	return w.sheets[id], true
}

func (w *Workbook) resolveSheetName(name string) (uint32, bool) {
	id, ok := w.nameToID[strings.ToLower(name)]
	return id, ok
}

// Sheets returns every sheet in display order.
func (w *Workbook) Sheets() []*Sheet {
	out := make([]*Sheet, 0, len(w.sheetOrder))
	for _, id := range w.sheetOrder {
		out = append(out, w.sheets[id])
	}
	return out
}

// RenameSheet renames sheet id, rewriting every formula's display-name
// hints for references that target it (spec §4.7 "Sheet rename").
func (w *Workbook) RenameSheet(id uint32, newName string) *Error {
	s, ok := w.sheets[id]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", id)
	}
	if err := validateSheetName(newName); err != nil {
		return err
	}
	if existing, ok := w.resolveSheetName(newName); ok && existing != id {
		return newErr(AlreadyExists, "sheet %q already exists", newName)
	}
	delete(w.nameToID, strings.ToLower(s.Name))
	s.Name = newName
	w.nameToID[strings.ToLower(newName)] = id

	idx := w.sheetIndex(id)
	for formulaID, node := range w.Formulas.nodes {
		renamed := ast.RenameSheet(node, idx, newName)
		if renamed != node {
			w.Formulas.Replace(formulaID, renamed)
			w.markCellsDirty(w.Formulas.CellsUsing(formulaID))
		}
	}
	return nil
}

// DeleteSheet removes sheet id and invalidates every formula reference
// that targeted it, turning them into #REF!/WrongReference nodes in
// place (spec §4.7 "Sheet deletion").
func (w *Workbook) DeleteSheet(id uint32) *Error {
	s, ok := w.sheets[id]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", id)
	}
	if len(w.sheets) == 1 {
		return newErr(FailedPrecondition, "cannot delete the last sheet")
	}
	idx := w.sheetIndex(id)
	for formulaID, node := range w.Formulas.nodes {
		invalidated := ast.InvalidateSheet(node, idx)
		if invalidated != node {
			w.Formulas.Replace(formulaID, invalidated)
			w.markCellsDirty(w.Formulas.CellsUsing(formulaID))
		}
	}
	delete(w.nameToID, strings.ToLower(s.Name))
	delete(w.sheets, id)
	for i, sid := range w.sheetOrder {
		if sid == id {
			w.sheetOrder = append(w.sheetOrder[:i], w.sheetOrder[i+1:]...)
			break
		}
	}
	return nil
}

// markCellsDirty flags every cell in addrs so the evaluator's lazy
// EvaluateCell recomputes it instead of serving a Result cached before
// its formula's node changed underneath it (rename/delete sheet replace
// a formula's node in place without touching the grid, so nothing else
// would set Dirty for them).
func (w *Workbook) markCellsDirty(addrs []CellAddress) {
	for _, addr := range addrs {
		sheet := w.sheets[addr.SheetID]
		if sheet == nil {
			continue
		}
		if cell := sheet.Cell(addr.Row, addr.Column); cell != nil {
			cell.Dirty = true
		}
	}
}

// sheetIndex returns id's position in display order, the numeric index
// ast.Reference.SheetIndex and the rename/invalidate walks operate on.
func (w *Workbook) sheetIndex(id uint32) int {
	for i, sid := range w.sheetOrder {
		if sid == id {
			return i
		}
	}
	return -1
}

// SheetIndex returns id's display-order position, the numeric index
// ast.Reference.SheetIndex and the displacement/rename walks operate on.
// Exported so the edit package can build an ast.Context without
// duplicating sheetOrder bookkeeping.
func (w *Workbook) SheetIndex(id uint32) int { return w.sheetIndex(id) }

// SheetAt resolves an ast.Reference.SheetIndex back to a concrete Sheet,
// the lookup the evaluator needs when walking a parsed formula.
func (w *Workbook) SheetAt(idx int) (*Sheet, bool) {
	if idx < 0 || idx >= len(w.sheetOrder) {
		return nil, false
	}
	return w.sheets[w.sheetOrder[idx]], true
}

// RestoreSheet re-registers a previously removed sheet at display-order
// position index, preserving its id, cells, and formatting exactly —
// the usermodel package's DeleteSheet undo uses this instead of AddSheet
// so the restored sheet is the very same object DeleteSheet removed,
// not a rebuild from a content snapshot.
func (w *Workbook) RestoreSheet(s *Sheet, index int) *Error {
	if s == nil {
		return newErr(InvalidArgument, "nil sheet")
	}
	if _, ok := w.sheets[s.ID]; ok {
		return newErr(AlreadyExists, "sheet id %d already present", s.ID)
	}
	if _, ok := w.resolveSheetName(s.Name); ok {
		return newErr(AlreadyExists, "sheet %q already exists", s.Name)
	}
	w.sheets[s.ID] = s
	if index < 0 || index > len(w.sheetOrder) {
		index = len(w.sheetOrder)
	}
	w.sheetOrder = append(w.sheetOrder, 0)
	copy(w.sheetOrder[index+1:], w.sheetOrder[index:])
	w.sheetOrder[index] = s.ID
	w.nameToID[strings.ToLower(s.Name)] = s.ID
	return nil
}

// --- parser.Context, implemented per-cell via a bound wrapper ---

// cellContext adapts one (workbook, owning cell) pair to parser.Context,
// so ResolveSheet/CurrentRow/CurrentColumn answer relative to the cell
// actually being edited.
type cellContext struct {
	wb   *Workbook
	addr CellAddress
}

func (c cellContext) ResolveSheet(name string) (int, bool) {
	id, ok := c.wb.resolveSheetName(name)
	if !ok {
		return 0, false
	}
	return c.wb.sheetIndex(id), true
}

func (c cellContext) CurrentSheet() int { return c.wb.sheetIndex(c.addr.SheetID) }
func (c cellContext) CurrentRow() int   { return int(c.addr.Row) }
func (c cellContext) CurrentColumn() int { return int(c.addr.Column) }

func (c cellContext) IsKnownFunction(name string) bool { return IsKnownFunction(name) }

func (c cellContext) IsDefinedName(name string) bool {
	_, ok := c.wb.Names[strings.ToUpper(name)]
	if ok {
		return true
	}
	_, ok = c.wb.Tables[name]
	return ok
}

// ParseFormula parses src (without its leading '=') as the formula owned
// by addr, using the workbook's locale and sheet/name context.
func (w *Workbook) ParseFormula(src string, addr CellAddress) ast.Node {
	ctx := cellContext{wb: w, addr: addr}
	return parser.Parse(src, token.A1, w.Locale, ctx)
}

// SetCellFormula parses and interns a formula at addr, storing a Cell
// with FormulaID set and Dirty true so the next evaluate recomputes it
// (spec §4.4 set_user_input's formula branch, §4.6 "invalid evaluates to
// #ERROR!").
func (w *Workbook) SetCellFormula(addr CellAddress, src string) *Error {
	s, ok := w.sheets[addr.SheetID]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", addr.SheetID)
	}
	if addr.Row == 0 || addr.Row > LastRow || addr.Column == 0 || addr.Column > LastColumn {
		return newErr(OutOfRange, "cell (%d,%d) out of range", addr.Row, addr.Column)
	}
	node := w.ParseFormula(src, addr)
	id := w.Formulas.Intern(node, addr)
	existing := s.Cell(addr.Row, addr.Column)
	styleID := uint32(0)
	if existing != nil {
		styleID = existing.StyleID
	}
	s.SetCell(addr.Row, addr.Column, &Cell{
		FormulaID: id,
		StyleID:   styleID,
		Dirty:     true,
	})
	return nil
}

// SetUserInput implements spec §4.4's set_user_input: text starting with
// '=' becomes a formula; otherwise the text is classified as boolean,
// error literal, number/date (via numfmt.ParseInput), or plain string,
// in that order.
func (w *Workbook) SetUserInput(addr CellAddress, input string) *Error {
	if strings.HasPrefix(input, "=") {
		return w.SetCellFormula(addr, input[1:])
	}
	s, ok := w.sheets[addr.SheetID]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", addr.SheetID)
	}
	if addr.Row == 0 || addr.Row > LastRow || addr.Column == 0 || addr.Column > LastColumn {
		return newErr(OutOfRange, "cell (%d,%d) out of range", addr.Row, addr.Column)
	}

	if input == "" {
		s.SetCell(addr.Row, addr.Column, nil)
		return nil
	}

	existing := s.Cell(addr.Row, addr.Column)
	styleID := uint32(0)
	if existing != nil {
		if existing.IsFormula() {
			w.Formulas.Release(existing.FormulaID, addr)
		}
		styleID = existing.StyleID
	}

	literal, newStyleID := w.classifyLiteral(input, styleID)
	s.SetCell(addr.Row, addr.Column, &Cell{
		Literal: literal,
		StyleID: newStyleID,
	})
	return nil
}

func (w *Workbook) classifyLiteral(input string, currentStyleID uint32) (Value, uint32) {
	if w.Locale.IsTrue(input) {
		return BoolValue(true), currentStyleID
	}
	if w.Locale.IsFalse(input) {
		return BoolValue(false), currentStyleID
	}
	if canonical, ok := w.Locale.ErrorsReverse[input]; ok {
		for code, text := range errorText {
			if text == canonical {
				return ErrorValue(code), currentStyleID
			}
		}
	}
	if parsed, ok := numfmt.ParseInput(input, w.Locale); ok {
		if parsed.Format != "" {
			style := w.Styles.Get(currentStyleID)
			style.NumberFormat = parsed.Format
			currentStyleID = w.Styles.Intern(style)
		}
		return NumberValue(parsed.Value), currentStyleID
	}
	return StringValue(input), currentStyleID
}

// GetCellContent returns the raw text of addr's content: the formula
// text (with its leading '=') for formula cells, or the literal's
// displayed text otherwise (spec §4.4 get_cell_content).
func (w *Workbook) GetCellContent(addr CellAddress) (string, *Error) {
	s, ok := w.sheets[addr.SheetID]
	if !ok {
		return "", newErr(NotFound, "no sheet with id %d", addr.SheetID)
	}
	cell := s.Cell(addr.Row, addr.Column)
	if cell == nil {
		return "", nil
	}
	if cell.IsFormula() {
		node, ok := w.Formulas.Get(cell.FormulaID)
		if !ok {
			return "", nil
		}
		owner := ast.Context{SheetIndex: w.sheetIndex(addr.SheetID), Row: int(addr.Row), Column: int(addr.Column)}
		return "=" + ast.ToA1(node, owner), nil
	}
	return displayText(cell.Literal), nil
}

func displayText(v Value) string {
	switch v.Kind {
	case KindNumber:
		return numfmt.Render(numfmt.Parse("General"), v.Number, locale.EnUS)
	case KindString:
		return v.Text
	case KindBoolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindError:
		return v.Err.Error()
	default:
		return ""
	}
}

// GetFormattedCellValue renders addr's current value (Result for
// formula cells, Literal otherwise) through its style's number format
// (spec §4.4 get_formatted_cell_value).
func (w *Workbook) GetFormattedCellValue(addr CellAddress) (string, *Error) {
	s, ok := w.sheets[addr.SheetID]
	if !ok {
		return "", newErr(NotFound, "no sheet with id %d", addr.SheetID)
	}
	cell := s.Cell(addr.Row, addr.Column)
	if cell == nil {
		return "", nil
	}
	v := cell.DisplayValue()
	if v.Kind == KindError {
		return v.Err.Error(), nil
	}
	style := w.Styles.Get(cell.StyleID)
	code := numfmt.Parse(style.NumberFormat)
	if v.Kind == KindString {
		return numfmt.RenderText(code, v.Text), nil
	}
	if v.Kind == KindNumber {
		return numfmt.Render(code, v.Number, w.Locale), nil
	}
	return displayText(v), nil
}

// GetStyleForCell returns the resolved Style for addr (spec §4.4
// get_style_for_cell).
func (w *Workbook) GetStyleForCell(addr CellAddress) (Style, *Error) {
	s, ok := w.sheets[addr.SheetID]
	if !ok {
		return Style{}, newErr(NotFound, "no sheet with id %d", addr.SheetID)
	}
	cell := s.Cell(addr.Row, addr.Column)
	if cell == nil {
		return w.Styles.Get(s.ColumnStyle(addr.Column)), nil
	}
	return w.Styles.Get(cell.StyleID), nil
}

// SetCellStyle overwrites addr's style wholesale (spec §4.4
// set_cell_style).
func (w *Workbook) SetCellStyle(addr CellAddress, style Style) *Error {
	s, ok := w.sheets[addr.SheetID]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", addr.SheetID)
	}
	id := w.Styles.Intern(style)
	cell := s.Cell(addr.Row, addr.Column)
	if cell == nil {
		s.SetCell(addr.Row, addr.Column, &Cell{StyleID: id, Literal: Empty()})
		return nil
	}
	if cell.StyleID != 0 {
		w.Styles.Release(cell.StyleID)
	}
	cell.StyleID = id
	return nil
}

func (w *Workbook) SetRowHeight(sheetID, row uint32, height float64) *Error {
	s, ok := w.sheets[sheetID]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", sheetID)
	}
	s.SetRowHeight(row, height)
	return nil
}

func (w *Workbook) SetColumnWidth(sheetID, first, last uint32, width float64) *Error {
	s, ok := w.sheets[sheetID]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", sheetID)
	}
	s.SetColumnWidth(first, last, width)
	return nil
}

func (w *Workbook) SetColumnStyle(sheetID, first, last uint32, style Style) *Error {
	s, ok := w.sheets[sheetID]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", sheetID)
	}
	id := w.Styles.Intern(style)
	s.SetColumnStyle(first, last, id)
	return nil
}

func (w *Workbook) SetRowStyle(sheetID, row uint32, style Style) *Error {
	s, ok := w.sheets[sheetID]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", sheetID)
	}
	id := w.Styles.Intern(style)
	s.SetRowStyle(row, id)
	return nil
}

func (w *Workbook) SetSheetColor(sheetID uint32, color string) *Error {
	s, ok := w.sheets[sheetID]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", sheetID)
	}
	s.TabColor = color
	return nil
}

func (w *Workbook) SetShowGridLines(sheetID uint32, show bool) *Error {
	s, ok := w.sheets[sheetID]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", sheetID)
	}
	s.ShowGridLines = show
	return nil
}

func (w *Workbook) SetFrozenRows(sheetID, rows uint32) *Error {
	s, ok := w.sheets[sheetID]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", sheetID)
	}
	s.Frozen.Rows = rows
	return nil
}

func (w *Workbook) SetFrozenColumns(sheetID, cols uint32) *Error {
	s, ok := w.sheets[sheetID]
	if !ok {
		return newErr(NotFound, "no sheet with id %d", sheetID)
	}
	s.Frozen.Columns = cols
	return nil
}

// WorksheetProperties is the summary row get_worksheets_properties
// returns per sheet (spec §4.4).
type WorksheetProperties struct {
	ID       uint32
	Name     string
	TabColor string
	Hidden   bool
}

func (w *Workbook) GetWorksheetsProperties() []WorksheetProperties {
	out := make([]WorksheetProperties, 0, len(w.sheetOrder))
	for _, id := range w.sheetOrder {
		s := w.sheets[id]
		out = append(out, WorksheetProperties{ID: s.ID, Name: s.Name, TabColor: s.TabColor, Hidden: s.Hidden})
	}
	return out
}

// GetDefinedNameList returns every defined name visible workbook-wide,
// sorted by name for a stable listing (spec §4.4
// get_defined_name_list).
func (w *Workbook) GetDefinedNameList() []*DefinedName {
	out := make([]*DefinedName, 0, len(w.Names))
	for _, n := range w.Names {
		out = append(out, n)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Name < out[j-1].Name; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// DefineName registers a defined name (workbook-scoped if sheetScope is
// -1) pointing at formula.
func (w *Workbook) DefineName(name string, sheetScope int, formula ast.Node) *Error {
	key := strings.ToUpper(name)
	if _, ok := w.Names[key]; ok {
		return newErr(AlreadyExists, "defined name %q already exists", name)
	}
	w.Names[key] = &DefinedName{Name: name, SheetScope: sheetScope, Formula: formula}
	return nil
}
