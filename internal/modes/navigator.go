package modes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/routelab/editdriver/internal/input"
	"github.com/routelab/editdriver/internal/poll"
)

// TransitionError reports that the editor did not reach the requested mode
// within the timeout. It is a hard stop: the catalogue and the editor
// disagree, and no retry can fix that.
type TransitionError struct {
	Target string // state that was requested
	Key    string // keystroke that was emitted
	Status string // status line actually observed
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("mode transition to %s (key %q) not observed; status %q: %v",
		e.Target, e.Key, e.Status, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// StatusLabel renders the status-line form of a state, e.g.
// "[DEMAND|route]". The editor's status line must contain this exact text
// for the state to count as observed.
func (c *Catalog) StatusLabel(s State) (string, error) {
	if s == (State{}) {
		return "[-]", nil
	}
	super, ok := c.Supermode(s.Super)
	if !ok {
		return "", fmt.Errorf("unknown supermode %q", s.Super)
	}
	tokens := []string{super.Token}
	if s.Mode != "" {
		m, ok := c.modes[s.Super][s.Mode]
		if !ok {
			return "", fmt.Errorf("unknown mode %q in supermode %q", s.Mode, s.Super)
		}
		tokens = append(tokens, m.Token)
	}
	if s.Submode != "" {
		sm, ok := c.Submode(s.Submode)
		if !ok {
			return "", fmt.Errorf("unknown submode %q", s.Submode)
		}
		tokens = append(tokens, sm.Token)
	}
	return "[" + strings.Join(tokens, "|") + "]", nil
}

// Navigator tracks the editor's mode state and drives transitions. One
// navigator belongs to one session; it is not safe for concurrent use.
type Navigator struct {
	cat     *Catalog
	disp    *input.Dispatcher
	rows    func() []string
	timeout time.Duration
	logger  *slog.Logger
	state   State
}

// NavOption configures a Navigator.
type NavOption func(*Navigator)

// WithTimeout bounds each post-condition check. Default 5s.
func WithTimeout(d time.Duration) NavOption {
	return func(n *Navigator) { n.timeout = d }
}

// WithLogger sets the structured logger. Default discards.
func WithLogger(l *slog.Logger) NavOption {
	return func(n *Navigator) { n.logger = l }
}

// NewNavigator creates a Navigator in the no-mode state (just after
// launch). rows must return the current parsed screen.
func NewNavigator(cat *Catalog, disp *input.Dispatcher, rows func() []string, opts ...NavOption) *Navigator {
	n := &Navigator{
		cat:     cat,
		disp:    disp,
		rows:    rows,
		timeout: 5 * time.Second,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// State returns the last verified mode state.
func (n *Navigator) State() State { return n.state }

// GotoSupermode moves to the named supermode, exiting deeper levels one
// step at a time.
func (n *Navigator) GotoSupermode(ctx context.Context, name string) error {
	steps, err := PlanSupermode(n.cat, n.state, name)
	if err != nil {
		return err
	}
	return n.run(ctx, steps)
}

// GotoMode moves to the named editing mode, switching supermode families
// first when needed.
func (n *Navigator) GotoMode(ctx context.Context, name string) error {
	steps, err := PlanMode(n.cat, n.state, name)
	if err != nil {
		return err
	}
	return n.run(ctx, steps)
}

// GotoSubmode moves to the named sub-mode through its parent mode.
func (n *Navigator) GotoSubmode(ctx context.Context, name string) error {
	steps, err := PlanSubmode(n.cat, n.state, name)
	if err != nil {
		return err
	}
	return n.run(ctx, steps)
}

func (n *Navigator) run(ctx context.Context, steps []Step) error {
	for _, step := range steps {
		label, err := n.cat.StatusLabel(step.Result)
		if err != nil {
			return err
		}
		n.logger.Debug("mode step", "key", step.Key, "target", step.Result.String())
		if err := n.disp.TypeKey(step.Key); err != nil {
			return err
		}
		if err := poll.Until(ctx, func() bool {
			return StatusRow(n.rows()) != "" && strings.Contains(StatusRow(n.rows()), label)
		}, n.timeout, 0); err != nil {
			return &TransitionError{
				Target: step.Result.String(),
				Key:    step.Key,
				Status: StatusRow(n.rows()),
				Err:    err,
			}
		}
		n.state = step.Result
	}
	return nil
}

// StatusRow returns the first screen row that looks like the editor's
// status line, trimmed. Empty when no status line is visible.
func StatusRow(rows []string) string {
	for _, row := range rows {
		trimmed := strings.TrimSpace(row)
		if strings.HasPrefix(trimmed, "[") && strings.Contains(trimmed, "]") {
			return trimmed
		}
	}
	return ""
}
