package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/calcmesh/calcmesh/locale"
	"github.com/calcmesh/calcmesh/model"
	"github.com/calcmesh/calcmesh/usermodel"
)

// runREPL drives a fresh workbook from gesture lines read from in,
// printing prompts and results to out. It returns once 'q' is read or
// in is exhausted.
func runREPL(in io.Reader, out io.Writer, loc *locale.Locale) error {
	wb := model.NewWorkbook(loc)
	sheet, err := wb.AddSheet("Sheet1")
	if err != nil {
		return fmt.Errorf("creating initial sheet: %s", err.Message)
	}
	m := usermodel.New(wb)
	if err := m.SetActiveSheet(sheet.ID); err != nil {
		return fmt.Errorf("activating initial sheet: %s", err.Message)
	}

	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "calcmesh ready. type 'q' to quit.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if dispatch(m, line, out) {
			break
		}
	}
	return scanner.Err()
}

// dispatch runs one gesture line, returning true when the session
// should end (spec §6.3 'q' save-as-on-quit).
func dispatch(m *usermodel.Model, line string, out io.Writer) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "q":
		fmt.Fprintln(out, "save-as: no file format is wired in this illustrative build; exiting without writing.")
		return true
	case "e":
		if len(args) < 2 {
			fmt.Fprintln(out, "usage: e <addr> <text>")
			return false
		}
		addr, perr := parseA1(m.View().ActiveSheet, args[0])
		if perr != nil {
			fmt.Fprintln(out, perr)
			return false
		}
		if err := m.SetCellValue(addr, strings.Join(args[1:], " ")); err != nil {
			fmt.Fprintln(out, err.Message)
			return false
		}
		printCell(m, addr, out)
	case "+":
		if len(args) < 1 {
			fmt.Fprintln(out, "usage: + <name>")
			return false
		}
		sheet, err := m.NewSheet(args[0])
		if err != nil {
			fmt.Fprintln(out, err.Message)
			return false
		}
		if serr := m.SetActiveSheet(sheet.ID); serr != nil {
			fmt.Fprintln(out, serr.Message)
			return false
		}
		fmt.Fprintf(out, "created and switched to %q\n", sheet.Name)
	case "a":
		switchSheet(m, 1, out)
	case "s":
		switchSheet(m, -1, out)
	case "u":
		if !m.Undo() {
			fmt.Fprintln(out, "nothing to undo")
		}
	case "U":
		if !m.Redo() {
			fmt.Fprintln(out, "nothing to redo")
		}
	case "r":
		row, n, ok := parseRowN(args, out)
		if ok {
			if err := m.InsertRows(m.View().ActiveSheet, row, n); err != nil {
				fmt.Fprintln(out, err.Message)
			}
		}
	case "R":
		row, n, ok := parseRowN(args, out)
		if ok {
			if err := m.DeleteRows(m.View().ActiveSheet, row, n); err != nil {
				fmt.Fprintln(out, err.Message)
			}
		}
	case "c":
		col, n, ok := parseRowN(args, out)
		if ok {
			if err := m.InsertColumns(m.View().ActiveSheet, col, n); err != nil {
				fmt.Fprintln(out, err.Message)
			}
		}
	case "C":
		col, n, ok := parseRowN(args, out)
		if ok {
			if err := m.DeleteColumns(m.View().ActiveSheet, col, n); err != nil {
				fmt.Fprintln(out, err.Message)
			}
		}
	case "right":
		m.OnArrowRight()
	case "left":
		m.OnArrowLeft()
	case "up":
		m.OnArrowUp()
	case "down":
		m.OnArrowDown()
	case "pgdn":
		m.OnPageDown()
	case "pgup":
		m.OnPageUp()
	case "p":
		v := m.View()
		printCell(m, model.CellAddress{SheetID: v.ActiveSheet, Row: v.SelectedRow, Column: v.SelectedCol}, out)
	case "g":
		if len(args) < 1 {
			fmt.Fprintln(out, "usage: g <addr>")
			return false
		}
		addr, perr := parseA1(m.View().ActiveSheet, args[0])
		if perr != nil {
			fmt.Fprintln(out, perr)
			return false
		}
		printCell(m, addr, out)
	default:
		fmt.Fprintf(out, "unrecognized command %q\n", cmd)
	}
	return false
}

func parseRowN(args []string, out io.Writer) (uint32, uint32, bool) {
	if len(args) < 2 {
		fmt.Fprintln(out, "usage: <cmd> <index> <count>")
		return 0, 0, false
	}
	idx, err1 := strconv.ParseUint(args[0], 10, 32)
	n, err2 := strconv.ParseUint(args[1], 10, 32)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(out, "index and count must be integers")
		return 0, 0, false
	}
	return uint32(idx), uint32(n), true
}

func switchSheet(m *usermodel.Model, delta int, out io.Writer) {
	wb := m.Workbook()
	idx := wb.SheetIndex(m.View().ActiveSheet)
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return
	}
	next := ((idx+delta)%len(sheets) + len(sheets)) % len(sheets)
	target, ok := wb.SheetAt(next)
	if !ok {
		return
	}
	if err := m.SetActiveSheet(target.ID); err != nil {
		fmt.Fprintln(out, err.Message)
		return
	}
	fmt.Fprintf(out, "switched to %q\n", target.Name)
}

func printCell(m *usermodel.Model, addr model.CellAddress, out io.Writer) {
	text, err := m.Workbook().GetFormattedCellValue(addr)
	if err != nil {
		fmt.Fprintln(out, err.Message)
		return
	}
	fmt.Fprintln(out, text)
}
