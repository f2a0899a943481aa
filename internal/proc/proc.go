//go:build unix

// Package proc owns the lifetime of the editor process under test. It
// launches the editor attached to a PTY, waits for readiness, locates the
// canvas reference position, and guarantees teardown on every exit path.
package proc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/routelab/editdriver/internal/poll"
	"github.com/routelab/editdriver/internal/screen"
)

// LaunchError reports that the editor did not start or did not signal
// readiness in time. It aborts the whole suite: nothing can run without a
// session.
type LaunchError struct {
	Stage string // "start", "readiness", "anchor"
	Err   error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch failed at %s: %v", e.Stage, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Session is one running editor instance. It is owned by exactly one test
// script at a time; none of its methods are safe for concurrent callers
// (except the output accessors, which the capture goroutine also uses).
type Session struct {
	ID     string
	cmd    *exec.Cmd
	ptm    *os.File
	anchor screen.Point
	cfg    Config

	output   strings.Builder
	outputMu sync.RWMutex

	cancel  context.CancelFunc
	stopped bool
	stopMu  sync.Mutex
}

// Start launches the editor described by cfg, waits until its ready token
// renders, and locates the reference position. On any failure the process
// and PTY are released before the error is returned.
func Start(ctx context.Context, cfg Config) (*Session, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, &LaunchError{Stage: "start", Err: err}
	}

	sctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(sctx, cfg.Binary, cfg.Args...)
	cmd.Dir = cfg.WorkDir
	cmd.Env = append(append([]string{}, cfg.Env...),
		"TERM=xterm-256color",
		fmt.Sprintf("COLUMNS=%d", cfg.Cols),
		fmt.Sprintf("LINES=%d", cfg.Rows),
	)

	ptm, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: cfg.Rows, Cols: cfg.Cols})
	if err != nil {
		cancel()
		return nil, &LaunchError{Stage: "start", Err: err}
	}

	s := &Session{
		ID:     uuid.NewString(),
		cmd:    cmd,
		ptm:    ptm,
		cfg:    cfg,
		cancel: cancel,
	}
	go s.readOutput()

	if err := poll.Until(sctx, func() bool {
		return strings.Contains(s.Output(), cfg.ReadyToken)
	}, cfg.ReadyTimeout, 0); err != nil {
		_ = s.Stop()
		return nil, &LaunchError{Stage: "readiness", Err: fmt.Errorf("ready token %q not observed: %w", cfg.ReadyToken, err)}
	}

	loc, err := poll.ForState(sctx, func() *screen.Location {
		return screen.Find(s.Output(), cfg.AnchorMarker)
	}, func(l *screen.Location) bool { return l != nil }, cfg.ReadyTimeout, 0)
	if err != nil {
		_ = s.Stop()
		return nil, &LaunchError{Stage: "anchor", Err: fmt.Errorf("anchor marker %q not observed: %w", cfg.AnchorMarker, err)}
	}
	s.anchor = screen.Point{X: loc.Col, Y: loc.Row}

	return s, nil
}

// Anchor returns the reference position established at launch.
func (s *Session) Anchor() screen.Point { return s.anchor }

// WorkDir returns the working directory the editor was started in.
func (s *Session) WorkDir() string { return s.cfg.WorkDir }

// WriteString delivers raw bytes to the editor's terminal.
func (s *Session) WriteString(str string) (int, error) {
	return s.ptm.WriteString(str)
}

// Output returns everything the editor has written so far.
func (s *Session) Output() string {
	s.outputMu.RLock()
	defer s.outputMu.RUnlock()
	return s.output.String()
}

// Rows returns the current visible screen, parsed.
func (s *Session) Rows() []string {
	return screen.Parse(s.Output())
}

// Find locates visible text on the current screen, or nil.
func (s *Session) Find(content string) *screen.Location {
	return screen.Find(s.Output(), content)
}

// Stop sends the quit keystroke, waits the grace period, and kills the
// process group if the editor has not exited. All OS resources are
// released regardless of outcome; Stop is idempotent and safe to defer
// alongside an explicit call.
func (s *Session) Stop() error {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true

	var errs []error

	// Polite quit first. Write errors here are not fatal; the kill path
	// below still runs.
	if _, err := s.ptm.WriteString("\x11"); err == nil {
		if !s.waitExit(s.cfg.QuitGrace) {
			errs = append(errs, s.kill())
		}
	} else {
		errs = append(errs, s.kill())
	}

	if err := s.ptm.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pty: %w", err))
	}
	s.cancel()

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("stop session %s: %w", s.ID, err)
		}
	}
	return nil
}

// waitExit waits for process exit up to d. Returns true if it exited.
func (s *Session) waitExit(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		_ = s.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

// kill terminates the editor's process group. The child is its own
// session leader under the PTY, so the negative pid reaches any helpers
// it spawned.
func (s *Session) kill() error {
	if s.cmd.Process == nil {
		return nil
	}
	pid := s.cmd.Process.Pid
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
		// Fall back to the direct pid; the group may already be gone.
		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill editor: %w", err)
		}
	}
	s.waitExit(time.Second)
	return nil
}

func (s *Session) readOutput() {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptm.Read(buf)
		if n > 0 {
			s.outputMu.Lock()
			s.output.Write(buf[:n])
			s.outputMu.Unlock()
		}
		if err != nil {
			return
		}
	}
}
