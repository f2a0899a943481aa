//go:build unix

// Package harness is the test-facing surface for driving the planedit
// editor: it launches a session, then exposes the action verbs scenario
// scripts are written in. Each verb composes mode navigation, attribute
// registry lookups, and primitive input dispatch, and verifies the
// editor's observable reaction before returning.
//
// This package is Unix-only: sessions run the editor under a PTY.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/routelab/editdriver/internal/attrs"
	"github.com/routelab/editdriver/internal/input"
	"github.com/routelab/editdriver/internal/modes"
	"github.com/routelab/editdriver/internal/proc"
)

// chromeRows is the number of leading screen rows (title, status) that are
// editor chrome rather than document state. Part of the supported editor
// version's UI contract, like the attribute panel geometry.
const chromeRows = 2

// Harness drives one editor session. It is single-threaded by contract:
// one scenario script owns one harness at a time.
type Harness struct {
	sess    *proc.Session
	disp    *input.Dispatcher
	nav     *modes.Navigator
	reg     *attrs.Registry
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the structured logger. Default discards.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithRegistry overrides the attribute catalogue.
func WithRegistry(r *attrs.Registry) Option {
	return func(h *Harness) { h.reg = r }
}

// WithTimeout bounds every observable-state wait. Default 5s.
func WithTimeout(d time.Duration) Option {
	return func(h *Harness) { h.timeout = d }
}

// New wraps an already-started session. The session's reference position
// anchors every click the harness issues.
func New(sess *proc.Session, opts ...Option) *Harness {
	h := &Harness{
		sess:    sess,
		reg:     attrs.Planedit(),
		logger:  slog.New(slog.DiscardHandler),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.disp = input.New(sess, sess.Anchor())
	h.nav = modes.NewNavigator(modes.Planedit(), h.disp, sess.Rows,
		modes.WithTimeout(h.timeout), modes.WithLogger(h.logger))
	return h
}

// Launch starts the editor described by cfg and wraps it. On readiness
// failure no session leaks.
func Launch(ctx context.Context, cfg proc.Config, opts ...Option) (*Harness, error) {
	sess, err := proc.Start(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(sess, opts...), nil
}

// Session exposes the underlying session, chiefly for teardown wiring.
func (h *Harness) Session() *proc.Session { return h.sess }

// Mode returns the navigator's last verified mode state.
func (h *Harness) Mode() modes.State { return h.nav.State() }

// Close tears the session down. Safe to defer alongside an explicit Quit.
func (h *Harness) Close() error { return h.sess.Stop() }

// status returns the editor's current status sequence number and message.
// The editor stamps every reaction with a monotonically increasing
// sequence, which is what lets verbs distinguish a fresh verdict from a
// stale one without retrying input.
func (h *Harness) status() (seq int, msg string) {
	return parseStatus(modes.StatusRow(h.sess.Rows()))
}

// parseStatus splits a status row like "[DEMAND|route] #12 accepted
// repeat" into its sequence number and message.
func parseStatus(row string) (seq int, msg string) {
	idx := strings.Index(row, "] #")
	if idx < 0 {
		return 0, ""
	}
	rest := row[idx+3:]
	sp := strings.IndexByte(rest, ' ')
	if sp < 0 {
		return 0, ""
	}
	n, err := strconv.Atoi(rest[:sp])
	if err != nil {
		return 0, ""
	}
	return n, rest[sp+1:]
}

// awaitStatus waits for a fresher status message containing want.
func (h *Harness) awaitStatus(ctx context.Context, prevSeq int, want string) (string, error) {
	return h.awaitMatch(ctx, prevSeq, func(m string) bool {
		return strings.Contains(m, want)
	}, fmt.Sprintf("status %q", want))
}
