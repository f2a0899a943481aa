package proc

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	assert.Equal(t, uint16(80), cfg.Cols)
	assert.Equal(t, uint16(24), cfg.Rows)
	assert.Equal(t, "planedit", cfg.ReadyToken)
	assert.Equal(t, "[#]", cfg.AnchorMarker)
	assert.Equal(t, 10*time.Second, cfg.ReadyTimeout)
	assert.Equal(t, 3*time.Second, cfg.QuitGrace)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{Cols: 120, Rows: 40, ReadyToken: "ready>", QuitGrace: time.Second}
	cfg.applyDefaults()

	assert.Equal(t, uint16(120), cfg.Cols)
	assert.Equal(t, uint16(40), cfg.Rows)
	assert.Equal(t, "ready>", cfg.ReadyToken)
	assert.Equal(t, time.Second, cfg.QuitGrace)
}

func TestValidate(t *testing.T) {
	assert.ErrorContains(t, (&Config{}).validate(), "binary")
	assert.ErrorContains(t, (&Config{Binary: "/bin/true"}).validate(), "workDir")
	assert.NoError(t, (&Config{Binary: "/bin/true", WorkDir: "/tmp"}).validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
binary: /opt/planedit/bin/planedit
args: ["--headless"]
workDir: /var/lib/planedit
env:
  - PLANEDIT_THEME=plain
cols: 100
readyToken: "planedit 0.3"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/planedit/bin/planedit", cfg.Binary)
	assert.Equal(t, []string{"--headless"}, cfg.Args)
	assert.Equal(t, "/var/lib/planedit", cfg.WorkDir)
	assert.Equal(t, []string{"PLANEDIT_THEME=plain"}, cfg.Env)
	assert.Equal(t, uint16(100), cfg.Cols)
	assert.Equal(t, "planedit 0.3", cfg.ReadyToken)
	// Unset fields get defaults.
	assert.Equal(t, uint16(24), cfg.Rows)
	assert.Equal(t, "[#]", cfg.AnchorMarker)
	assert.Equal(t, 10*time.Second, cfg.ReadyTimeout)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("binary: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "parse config")
}
