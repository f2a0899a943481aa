//go:build unix

package proc

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routelab/editdriver/internal/screen"
)

// shellSession launches /bin/sh running script, with short timeouts so
// failure paths stay fast.
func shellSession(t *testing.T, script string, mutate func(*Config)) (*Session, error) {
	t.Helper()
	cfg := Config{
		Binary:       "/bin/sh",
		Args:         []string{"-c", script},
		WorkDir:      t.TempDir(),
		ReadyTimeout: 3 * time.Second,
		QuitGrace:    200 * time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := Start(context.Background(), cfg)
	if s != nil {
		t.Cleanup(func() { _ = s.Stop() })
	}
	return s, err
}

func TestStartRejectsEmptyConfig(t *testing.T) {
	_, err := Start(context.Background(), Config{})
	require.Error(t, err)

	var le *LaunchError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "start", le.Stage)
}

func TestStartNonexistentBinary(t *testing.T) {
	_, err := Start(context.Background(), Config{
		Binary:  "/nonexistent/planedit",
		WorkDir: t.TempDir(),
	})
	require.Error(t, err)

	var le *LaunchError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "start", le.Stage)
}

func TestStartReadinessTimeout(t *testing.T) {
	_, err := shellSession(t, "read _", func(cfg *Config) {
		cfg.ReadyTimeout = 300 * time.Millisecond
	})
	require.Error(t, err)

	var le *LaunchError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "readiness", le.Stage)
}

func TestStartAnchorTimeout(t *testing.T) {
	// Ready token appears but the anchor marker never does.
	_, err := shellSession(t, `printf 'planedit\n'; read _`, func(cfg *Config) {
		cfg.ReadyTimeout = 500 * time.Millisecond
	})
	require.Error(t, err)

	var le *LaunchError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "anchor", le.Stage)
}

func TestStartLocatesAnchor(t *testing.T) {
	s, err := shellSession(t, `printf 'planedit\n  [#]\n'; read _`, nil)
	require.NoError(t, err)

	assert.Equal(t, screen.Point{X: 3, Y: 2}, s.Anchor())
	assert.NotEmpty(t, s.ID)

	loc := s.Find("[#]")
	require.NotNil(t, loc)
	assert.Equal(t, 2, loc.Row)
	assert.Equal(t, 3, loc.Col)

	rows := s.Rows()
	require.NotEmpty(t, rows)
	assert.Equal(t, "planedit", rows[0])
}

func TestStartEnvIsolation(t *testing.T) {
	t.Setenv("PROC_LEAK_CHECK", "leaked")

	s, err := shellSession(t,
		`printf 'planedit [#] marker=%s leak=%s\n' "${SESSION_MARKER:-unset}" "${PROC_LEAK_CHECK:-clean}"; read _`,
		func(cfg *Config) {
			cfg.Env = []string{"SESSION_MARKER=present"}
		})
	require.NoError(t, err)

	assert.Contains(t, s.Output(), "marker=present")
	// The parent environment must not reach the editor.
	assert.Contains(t, s.Output(), "leak=clean")
}

func TestWriteStringReachesProcess(t *testing.T) {
	s, err := shellSession(t, `printf 'planedit [#]\n'; read line; printf 'got:%s\n' "$line"`, nil)
	require.NoError(t, err)

	_, err = s.WriteString("hello\n")
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(s.Output(), "got:hello") {
		if time.Now().After(deadline) {
			t.Fatalf("echo not observed; output %q", s.Output())
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestStopKillsStubbornProcess(t *testing.T) {
	s, err := shellSession(t, `printf 'planedit [#]\n'; read _`, nil)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, s.Stop())
	// Quit grace plus kill, not an indefinite hang.
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestStopIdempotent(t *testing.T) {
	s, err := shellSession(t, `printf 'planedit [#]\n'; read _`, nil)
	require.NoError(t, err)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestWorkDir(t *testing.T) {
	var want string
	s, err := shellSession(t, `printf 'planedit [#]\n'; read _`, func(cfg *Config) {
		want = cfg.WorkDir
	})
	require.NoError(t, err)
	assert.Equal(t, want, s.WorkDir())
}
