//go:build unix

package harness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/routelab/editdriver/internal/attrs"
	"github.com/routelab/editdriver/internal/screen"
)

// AssertionError is an expected-vs-observed mismatch: the editor accepted
// a value the scenario expected rejected (or vice versa), or an undo/redo
// round trip did not restore state. It is fatal to the current test case
// but not to the suite; the session stays usable.
type AssertionError struct {
	Op        string
	Mode      string
	Attribute string
	Value     string
	Expected  string
	Observed  string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: mode %s attribute %s value %q: expected %s, observed %s",
		e.Op, e.Mode, e.Attribute, e.Value, e.Expected, e.Observed)
}

// GotoSupermode navigates to the named supermode.
func (h *Harness) GotoSupermode(ctx context.Context, name string) error {
	return h.nav.GotoSupermode(ctx, name)
}

// GotoMode navigates to the named editing mode.
func (h *Harness) GotoMode(ctx context.Context, name string) error {
	return h.nav.GotoMode(ctx, name)
}

// GotoSubmode navigates to the named sub-mode.
func (h *Harness) GotoSubmode(ctx context.Context, name string) error {
	return h.nav.GotoSubmode(ctx, name)
}

// LeftClick clicks at an offset from the reference position.
func (h *Harness) LeftClick(off screen.Offset) error {
	h.logger.Debug("click", "dx", off.DX, "dy", off.DY, "mode", h.nav.State().String())
	return h.disp.Click(off)
}

// TypeText types raw text into the editor.
func (h *Harness) TypeText(text string) error {
	return h.disp.TypeText(text)
}

// TypeEnter sends the commit keystroke.
func (h *Harness) TypeEnter() error {
	return h.disp.TypeEnter()
}

// ModifyAttribute locates the attribute's input control, clears it, types
// value, commits, and checks the editor's own accept/reject verdict
// against expectSuccess. The harness never re-implements the editor's
// parser; the verdict on screen is authoritative.
func (h *Harness) ModifyAttribute(ctx context.Context, key attrs.Key, value string, expectSuccess bool) error {
	d, err := h.reg.Lookup(key)
	if err != nil {
		return err
	}
	if d.Bool {
		return fmt.Errorf("attribute %s is boolean; use ChangeDefaultBoolValue", key)
	}

	seq, _ := h.status()
	if err := h.disp.Click(d.Loc); err != nil {
		return err
	}
	// Focusing clears the field editor-side; no separate clear keystroke.
	if _, err := h.awaitStatus(ctx, seq, "editing "+d.Label); err != nil {
		return fmt.Errorf("attribute %s did not focus at (%+d,%+d): %w", key, d.Loc.DX, d.Loc.DY, err)
	}

	seq, _ = h.status()
	if err := h.disp.TypeText(value); err != nil {
		return err
	}
	if err := h.disp.TypeEnter(); err != nil {
		return err
	}

	accepted, err := h.awaitVerdict(ctx, seq, d.Label)
	if err != nil {
		return fmt.Errorf("attribute %s value %q: %w", key, value, err)
	}
	h.logger.Info("modify attribute",
		"attribute", key.String(), "value", value,
		"accepted", accepted, "mode", h.nav.State().String())
	if accepted != expectSuccess {
		return &AssertionError{
			Op:        "modify attribute",
			Mode:      h.nav.State().String(),
			Attribute: key.String(),
			Value:     value,
			Expected:  verdict(expectSuccess),
			Observed:  verdict(accepted),
		}
	}
	return nil
}

// ChangeDefaultValue edits a default-value field in a creation frame. Same
// contract as ModifyAttribute; the editor validates defaults on commit
// exactly like entity attributes.
func (h *Harness) ChangeDefaultValue(ctx context.Context, key attrs.Key, value string, expectSuccess bool) error {
	return h.ModifyAttribute(ctx, key, value, expectSuccess)
}

// ChangeDefaultBoolValue toggles a boolean field and waits for the
// editor's acknowledgement.
func (h *Harness) ChangeDefaultBoolValue(ctx context.Context, key attrs.Key) error {
	d, err := h.reg.Lookup(key)
	if err != nil {
		return err
	}
	if !d.Bool {
		return fmt.Errorf("attribute %s is not boolean", key)
	}
	seq, _ := h.status()
	if err := h.disp.Click(d.Loc); err != nil {
		return err
	}
	if _, err := h.awaitStatus(ctx, seq, "toggled "+d.Label); err != nil {
		return fmt.Errorf("attribute %s did not toggle: %w", key, err)
	}
	h.logger.Info("toggle attribute", "attribute", key.String(), "mode", h.nav.State().String())
	return nil
}

// Undo replays n undo commands. Each is one atomic editor operation
// boundary; the verb waits for the editor's acknowledgement between
// keystrokes so partial application cannot be mistaken for success.
func (h *Harness) Undo(ctx context.Context, n int) error {
	return h.replay(ctx, n, "ctrl-z", "undo")
}

// Redo replays n redo commands.
func (h *Harness) Redo(ctx context.Context, n int) error {
	return h.replay(ctx, n, "ctrl-y", "redo")
}

func (h *Harness) replay(ctx context.Context, n int, key, word string) error {
	for i := 0; i < n; i++ {
		seq, _ := h.status()
		if err := h.disp.TypeKey(key); err != nil {
			return err
		}
		// "undo: <op>" on success, "nothing to undo" at log boundary;
		// both are acknowledgements.
		msg, err := h.awaitMatch(ctx, seq, func(m string) bool {
			return strings.Contains(m, word)
		}, word)
		if err != nil {
			return fmt.Errorf("%s %d/%d: %w", word, i+1, n, err)
		}
		h.logger.Debug(word, "step", i+1, "of", n, "ack", msg)
	}
	return nil
}

// SaveConfig asks the editor to persist the edited configuration into the
// session's working directory. The file's contents are the editor's
// business, not the harness's.
func (h *Harness) SaveConfig(ctx context.Context) error {
	seq, _ := h.status()
	if err := h.disp.TypeKey("ctrl-s"); err != nil {
		return err
	}
	if _, err := h.awaitStatus(ctx, seq, "saved"); err != nil {
		return fmt.Errorf("save not acknowledged: %w", err)
	}
	return nil
}

// Quit ends the session. Always reachable, idempotent, and guaranteed to
// release the process even if the editor ignores the polite quit.
func (h *Harness) Quit() error {
	return h.sess.Stop()
}

func verdict(accepted bool) string {
	if accepted {
		return "accepted"
	}
	return "rejected"
}

// awaitVerdict waits for the editor's accept/reject verdict on a field.
func (h *Harness) awaitVerdict(ctx context.Context, prevSeq int, label string) (bool, error) {
	msg, err := h.awaitMatch(ctx, prevSeq, func(m string) bool {
		return m == "accepted "+label || m == "rejected "+label
	}, "verdict for "+label)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(msg, "accepted"), nil
}

// awaitMatch waits for a fresher status message satisfying pred.
func (h *Harness) awaitMatch(ctx context.Context, prevSeq int, pred func(string) bool, desc string) (string, error) {
	deadline := time.Now().Add(h.timeout)
	for {
		seq, msg := h.status()
		if seq > prevSeq && pred(msg) {
			return msg, nil
		}
		if time.Now().After(deadline) {
			return msg, fmt.Errorf("%s not observed within %v (last: #%d %q)", desc, h.timeout, seq, msg)
		}
		select {
		case <-ctx.Done():
			return msg, ctx.Err()
		case <-time.After(25 * time.Millisecond):
		}
	}
}
