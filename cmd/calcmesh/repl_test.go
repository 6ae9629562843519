package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calcmesh/calcmesh/locale"
)

func runLines(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	err := runREPL(in, &out, locale.EnUS)
	assert.Nil(t, err)
	return out.String()
}

func TestREPLEditAndPrint(t *testing.T) {
	out := runLines(t, "e A1 1", "e B1 =A1*10", "p", "q")
	assert.Contains(t, out, "10")
}

func TestREPLUndoRedo(t *testing.T) {
	out := runLines(t, "e A1 5", "e A1 6", "u", "p", "U", "p", "q")
	lines := strings.Split(out, "\n")
	var vals []string
	for _, l := range lines {
		v := strings.TrimPrefix(l, "> ")
		if v == "5" || v == "6" {
			vals = append(vals, v)
		}
	}
	assert.Equal(t, []string{"5", "6", "5", "6"}, vals)
}

func TestREPLNewSheetAndSwitch(t *testing.T) {
	out := runLines(t, "+ Second", "a", "q")
	assert.Contains(t, out, `created and switched to "Second"`)
	assert.Contains(t, out, `switched to "Sheet1"`)
}

func TestREPLInsertDeleteRows(t *testing.T) {
	movedOut := runLines(t, "e A1 top", "r 1 2", "g A3", "q")
	assert.Contains(t, movedOut, "top")

	clearedOut := runLines(t, "e A1 top", "r 1 2", "g A1", "q")
	assert.Equal(t, 1, strings.Count(clearedOut, "top"), "A1 should be empty after the insert shifted its content down")
}

func TestParseA1(t *testing.T) {
	addr, err := parseA1(1, "B2")
	assert.Nil(t, err)
	assert.Equal(t, uint32(1), addr.SheetID)
	assert.Equal(t, uint32(2), addr.Row)
	assert.Equal(t, uint32(2), addr.Column)

	_, err = parseA1(1, "2B")
	assert.NotNil(t, err)
}
