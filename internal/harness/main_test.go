//go:build unix

package harness

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/routelab/editdriver/internal/proc"
	"github.com/routelab/editdriver/internal/screen"
)

var demoBinaryPath string

// TestMain builds the demoedit fixture once before any tests run.
func TestMain(m *testing.M) {
	buildDir := filepath.Join(os.TempDir(), fmt.Sprintf("editdriver-test-%d", os.Getpid()))
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create build dir: %v\n", err)
		os.Exit(1)
	}
	demoBinaryPath = filepath.Join(buildDir, "demoedit")

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		fmt.Fprintln(os.Stderr, "cannot determine source file path")
		os.Exit(1)
	}
	srcDir := filepath.Join(filepath.Dir(thisFile), "internal", "demoedit")

	cmd := exec.Command("go", "build", "-o", demoBinaryPath, ".")
	cmd.Dir = srcDir
	if output, err := cmd.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "build demoedit: %v\n%s", err, output)
		os.Exit(1)
	}

	code := m.Run()

	if err := os.RemoveAll(buildDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cleanup %s: %v\n", buildDir, err)
	}
	os.Exit(code)
}

// launchDemo starts one demoedit session and wraps it. Teardown is
// registered on the test.
func launchDemo(t *testing.T) *Harness {
	t.Helper()
	if demoBinaryPath == "" {
		t.Fatal("demoBinaryPath not initialized; TestMain did not run?")
	}
	h, err := Launch(context.Background(), proc.Config{
		Binary:       demoBinaryPath,
		WorkDir:      t.TempDir(),
		ReadyTimeout: 10 * time.Second,
		QuitGrace:    2 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// clickExpect clicks at an offset and waits for the editor to acknowledge
// with a fresher status containing want.
func clickExpect(t *testing.T, h *Harness, off screen.Offset, want string) {
	t.Helper()
	seq, _ := h.status()
	require.NoError(t, h.LeftClick(off))
	_, err := h.awaitStatus(context.Background(), seq, want)
	require.NoError(t, err, "click at (%+d,%+d) expecting %q", off.DX, off.DY, want)
}

// enterExpect commits pending canvas input and waits for acknowledgement.
func enterExpect(t *testing.T, h *Harness, want string) {
	t.Helper()
	seq, _ := h.status()
	require.NoError(t, h.TypeEnter())
	_, err := h.awaitStatus(context.Background(), seq, want)
	require.NoError(t, err, "enter expecting %q", want)
}

// createRoute builds route r0 over e0 and e1 in demand/route mode.
func createRoute(t *testing.T, h *Harness) {
	t.Helper()
	require.NoError(t, h.GotoMode(context.Background(), "route"))
	clickExpect(t, h, Positions.Edge0, "pending")
	clickExpect(t, h, Positions.Edge1, "pending")
	enterExpect(t, h, "created route r0")
}
