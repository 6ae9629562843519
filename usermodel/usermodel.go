// Package usermodel is the thin layer spec §4.8 describes around the
// workbook and evaluator: a bounded undo/redo journal of reversible
// diffs, an outbound diff queue for live collaboration (§6.2), per-view
// selection/scroll state, and a cut/copy/paste clipboard. The teacher has
// no equivalent layer at all — vogtb-go-spreadsheet stops at the
// calculation engine — so this package is grounded directly on spec
// §4.8 plus original_source/base/src/user_model/ui.rs for the
// view/selection/navigation operations' exact semantics (arrow-key
// scroll-into-view, page up/down stopping rows), translated from its
// per-view-id map into a single-view Go struct since §4.8 describes one
// local user model per process, not the original's multi-client view
// table.
package usermodel

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/calcmesh/calcmesh/eval"
	"github.com/calcmesh/calcmesh/model"
)

// Model wraps a Workbook with everything spec §4.8 adds on top of the
// pure calculation engine. It is single-threaded: callers must
// serialize access externally (spec §4.8 "Concurrency").
type Model struct {
	wb   *model.Workbook
	eval *eval.Evaluator
	log  zerolog.Logger

	journal journal
	queue   [][]byte // diffs pending flush_send_queue, gob-encoded
	seen    map[uuid.UUID]bool

	clipboard *clipboardContent
}

// New wraps wb with an evaluator and an empty journal/view/clipboard. A
// disabled logger is used by default so embedding this package never
// produces surprise stderr output (matching how the teacher-pack's
// embeddable engines default their loggers); call WithLogger to attach
// one.
func New(wb *model.Workbook) *Model {
	return &Model{
		wb:      wb,
		eval:    eval.New(wb),
		log:     zerolog.Nop(),
		journal: newJournal(),
		seen:    make(map[uuid.UUID]bool),
	}
}

// WithLogger attaches a structured logger. The only event it receives is
// a warning when a diff cannot be encoded for the send queue.
func (m *Model) WithLogger(log zerolog.Logger) *Model {
	m.log = log
	return m
}

// Workbook exposes the wrapped workbook for read-only queries
// (get_cell_content, get_formatted_cell_value, ...) that spec §4.8 does
// not itself add behavior on top of.
func (m *Model) Workbook() *model.Workbook { return m.wb }

// Evaluator exposes the wrapped evaluator for read queries.
func (m *Model) Evaluator() *eval.Evaluator { return m.eval }

// recalculate is called after every mutation spec §4.7/§4.8 says
// invalidates cached results: "the next evaluate re-computes them." A
// full sweep rather than a fine-grained MarkDirty cascade, since
// structural edits already force every touched formula cell's Dirty
// flag directly (see edit.rewriteFormulas) and non-structural edits
// mark their own cell when set.
func (m *Model) recalculate() {
	m.eval.EvaluateAll()
}
