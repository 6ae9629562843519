// Command calcmesh is the illustrative TUI collaborator spec §6.3
// describes — a thin line-oriented driver over usermodel.Model, not a
// full terminal renderer (that's explicitly out of scope). It exists to
// exercise the engine's published operations end to end, not as a
// product surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calcmesh/calcmesh/locale"
)

var localeTag string

var rootCmd = &cobra.Command{
	Use:   "calcmesh",
	Short: "Illustrative REPL over the calcmesh spreadsheet engine",
	Long: `calcmesh is a thin line-oriented stand-in for the TUI collaborator
described in spec §6.3. It starts a fresh in-memory workbook with one
sheet and reads gesture commands from stdin until 'q'.

Commands:
  e <addr> <text>     edit cell, e.g. "e B2 =A1*2"
  + <name>            new sheet
  a                    switch to next sheet
  s                    switch to previous sheet
  u                    undo
  U                    redo
  r <row> <n>          insert n rows before row
  R <row> <n>          delete n rows starting at row
  c <col> <n>          insert n columns before col
  C <col> <n>          delete n columns starting at col
  right/left/up/down    move selection
  pgdn/pgup             page down/up
  p                     print active sheet's selected cell
  g <addr>              print an arbitrary cell's formatted value
  q                     quit (save-as placeholder, then exit)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := locale.Lookup(localeTag)
		return runREPL(os.Stdin, os.Stdout, loc)
	},
}

func init() {
	rootCmd.Flags().StringVar(&localeTag, "locale", "en-US", "BCP-47 locale tag for number/date parsing")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
