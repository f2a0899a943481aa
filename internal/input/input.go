// Package input translates logical actions into primitive terminal input
// events. Mouse clicks use SGR extended encoding; keystrokes use the
// escape sequences the target editor's terminal layer understands.
//
// Every click coordinate is an offset resolved through the session's
// reference position, never an absolute screen coordinate, so scenario
// scripts stay independent of where the editor happens to render.
package input

import (
	"fmt"
	"io"
	"time"

	"github.com/routelab/editdriver/internal/screen"
)

// Mouse buttons in SGR encoding.
const (
	ButtonLeft   = 0
	ButtonMiddle = 1
	ButtonRight  = 2
)

// DispatchError reports a failed input delivery. Delivery failures are
// fatal to the current test: the UI surface has diverged and further
// actions are meaningless, so nothing in this package retries.
type DispatchError struct {
	Op     string
	Target screen.Point
	Err    error
}

func (e *DispatchError) Error() string {
	if e.Target != (screen.Point{}) {
		return fmt.Sprintf("dispatch %s at (%d,%d): %v", e.Op, e.Target.X, e.Target.Y, e.Err)
	}
	return fmt.Sprintf("dispatch %s: %v", e.Op, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// keySequences maps key names to the byte sequences delivered to the PTY.
var keySequences = map[string]string{
	"enter":     "\r",
	"tab":       "\t",
	"space":     " ",
	"escape":    "\x1b",
	"esc":       "\x1b",
	"backspace": "\x7f",
	"up":        "\x1b[A",
	"down":      "\x1b[B",
	"right":     "\x1b[C",
	"left":      "\x1b[D",
	"f1":        "\x1bOP",
	"f2":        "\x1bOQ",
	"f3":        "\x1bOR",
	"f4":        "\x1bOS",
	"ctrl-c":    "\x03",
	"ctrl-q":    "\x11",
	"ctrl-s":    "\x13",
	"ctrl-u":    "\x15",
	"ctrl-y":    "\x19",
	"ctrl-z":    "\x1a",
}

// Dispatcher issues primitive input events against one session's PTY.
// It is not safe for concurrent use; one test script drives one session.
type Dispatcher struct {
	w          io.StringWriter
	anchor     screen.Point
	typeDelay  time.Duration
	pressDelay time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTypeDelay sets the per-rune delay used by TypeText to simulate a
// human typist. Default 10ms.
func WithTypeDelay(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.typeDelay = d }
}

// WithPressDelay sets the delay between mouse press and release.
// Default 30ms.
func WithPressDelay(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.pressDelay = d }
}

// New creates a Dispatcher writing to w, with all click offsets resolved
// through anchor.
func New(w io.StringWriter, anchor screen.Point, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		w:          w,
		anchor:     anchor,
		typeDelay:  10 * time.Millisecond,
		pressDelay: 30 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Anchor returns the reference position clicks are resolved against.
func (d *Dispatcher) Anchor() screen.Point { return d.anchor }

// Click sends a left-button press/release pair at the offset from the
// reference position.
func (d *Dispatcher) Click(off screen.Offset) error {
	return d.ClickButton(off, ButtonLeft)
}

// ClickButton sends a press/release pair with the given SGR button number.
func (d *Dispatcher) ClickButton(off screen.Offset, button int) error {
	target := off.Add(d.anchor)
	press := fmt.Sprintf("\x1b[<%d;%d;%dM", button, target.X, target.Y)
	release := fmt.Sprintf("\x1b[<%d;%d;%dm", button, target.X, target.Y)

	if _, err := d.w.WriteString(press); err != nil {
		return &DispatchError{Op: "mouse press", Target: target, Err: err}
	}
	time.Sleep(d.pressDelay)
	if _, err := d.w.WriteString(release); err != nil {
		return &DispatchError{Op: "mouse release", Target: target, Err: err}
	}
	return nil
}

// TypeText types text one rune at a time with the configured delay.
func (d *Dispatcher) TypeText(text string) error {
	for _, r := range text {
		if _, err := d.w.WriteString(string(r)); err != nil {
			return &DispatchError{Op: fmt.Sprintf("type %q", text), Err: err}
		}
		time.Sleep(d.typeDelay)
	}
	return nil
}

// TypeEnter sends the commit keystroke.
func (d *Dispatcher) TypeEnter() error {
	return d.TypeKey("enter")
}

// TypeKey sends a named key sequence. A single-rune name is sent
// literally (mode letters, digits). Other unknown names are a dispatch
// error: key names come from the mode catalogue, so an unknown name means
// the catalogue and this table are out of sync.
func (d *Dispatcher) TypeKey(name string) error {
	seq, ok := keySequences[name]
	if !ok {
		if len([]rune(name)) != 1 {
			return &DispatchError{Op: "key " + name, Err: fmt.Errorf("unknown key sequence %q", name)}
		}
		seq = name
	}
	if _, err := d.w.WriteString(seq); err != nil {
		return &DispatchError{Op: "key " + name, Err: err}
	}
	return nil
}
