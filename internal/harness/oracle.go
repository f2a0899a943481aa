//go:build unix

package harness

import (
	"context"
	"fmt"
	"strings"
)

// StateSnapshot captures the editor's observable document state: every
// screen row below the chrome (title, status), right-trimmed, with
// trailing blank rows dropped. The status line is excluded deliberately —
// undo/redo acknowledgements land there and are not document state.
func (h *Harness) StateSnapshot() []string {
	rows := h.sess.Rows()
	if len(rows) <= chromeRows {
		return nil
	}
	rows = rows[chromeRows:]
	end := len(rows)
	for end > 0 && strings.TrimSpace(rows[end-1]) == "" {
		end--
	}
	out := make([]string, end)
	copy(out, rows[:end])
	return out
}

// CheckUndoRedo captures a state snapshot, performs n undos then n redos,
// and asserts the post-redo state equals the pre-undo state row for row.
// This is the harness's highest-value check: it exercises the editor's
// command log directly.
func (h *Harness) CheckUndoRedo(ctx context.Context, n int) error {
	before := h.StateSnapshot()
	if err := h.Undo(ctx, n); err != nil {
		return err
	}
	if err := h.Redo(ctx, n); err != nil {
		return err
	}
	after := h.StateSnapshot()
	if diff := firstDiff(before, after); diff != "" {
		return &AssertionError{
			Op:       fmt.Sprintf("undo/redo round trip (n=%d)", n),
			Mode:     h.nav.State().String(),
			Expected: "state identical to pre-undo snapshot",
			Observed: diff,
		}
	}
	return nil
}

// firstDiff reports the first row where two snapshots diverge, or "".
func firstDiff(before, after []string) string {
	if len(before) != len(after) {
		return fmt.Sprintf("row count %d != %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			return fmt.Sprintf("row %d: %q != %q", i, before[i], after[i])
		}
	}
	return ""
}
