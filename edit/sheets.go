package edit

import "github.com/calcmesh/calcmesh/model"

// NewSheet, RenameSheet, DeleteSheet, and SetSheetColor complete spec
// §4.7's edit-operation list (new_sheet, rename_sheet, delete_sheet,
// set_sheet_color); the displacement/invalidation logic they need
// already lives on model.Workbook (ast.RenameSheet/InvalidateSheet
// walks), so these are thin forwards giving callers the whole edit
// surface from one package instead of reaching into model directly for
// some operations and edit for others.

func NewSheet(wb *model.Workbook, name string) (*model.Sheet, *model.Error) {
	return wb.AddSheet(name)
}

func RenameSheet(wb *model.Workbook, sheetID uint32, newName string) *model.Error {
	return wb.RenameSheet(sheetID, newName)
}

func DeleteSheet(wb *model.Workbook, sheetID uint32) *model.Error {
	return wb.DeleteSheet(sheetID)
}

func SetSheetColor(wb *model.Workbook, sheetID uint32, color string) *model.Error {
	return wb.SetSheetColor(sheetID, color)
}
