package usermodel

import (
	"bytes"
	"encoding/gob"

	"github.com/google/uuid"

	"github.com/calcmesh/calcmesh/model"
)

// enqueue gob-encodes d for the outbound diff queue (spec §6.2
// flush_send_queue). gob is the standard library's own self-describing
// binary codec; no third-party serialization library appears anywhere
// in the corpus's dependency surface for this purpose (see DESIGN.md),
// so this is the one ambient concern this package implements without a
// pack-grounded library.
func (m *Model) enqueue(d Diff) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d); err != nil {
		m.log.Warn().Err(err).Msg("failed to encode diff for send queue")
		return
	}
	m.queue = append(m.queue, buf.Bytes())
}

// FlushSendQueue drains and returns every diff queued since the last
// flush, in the order they were recorded (spec §6.2 "flush_send_queue
// drains the outbound diff queue for a collaborating client").
func (m *Model) FlushSendQueue() [][]byte {
	out := m.queue
	m.queue = nil
	return out
}

// ApplyExternalDiffs decodes and replays diffs received from a
// collaborating client, applying each to this workbook and pushing it
// onto the local undo journal so a subsequent local Undo can still
// revert it (spec §6.2 "apply_external_diffs"). Diffs whose ID has
// already been applied are skipped, so a reconnecting collaborator
// replaying its outbound queue from an earlier point doesn't double-
// apply an edit this model has already seen.
func (m *Model) ApplyExternalDiffs(encoded [][]byte) *model.Error {
	for _, raw := range encoded {
		var d Diff
		if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&d); err != nil {
			return &model.Error{Code: model.InvalidArgument, Message: "malformed external diff: " + err.Error()}
		}
		if d.ID != uuid.Nil && m.seen[d.ID] {
			continue
		}
		m.apply(&d)
		m.journal.push(d)
		if d.ID != uuid.Nil {
			m.seen[d.ID] = true
		}
	}
	m.recalculate()
	return nil
}
