package proc

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config fully describes how to launch and recognize one editor session.
// Everything is explicit; the controller never reads the process
// environment to locate the editor, so sessions are reproducible and can
// run in parallel against different installations.
type Config struct {
	// Binary is the path to the editor executable. Required.
	Binary string `yaml:"binary"`
	// Args are passed to the editor verbatim.
	Args []string `yaml:"args"`
	// WorkDir is the working directory the editor is started in; saved
	// configurations land here. Required.
	WorkDir string `yaml:"workDir"`
	// Env is the complete child environment (plus the terminal variables
	// the controller always sets). The parent environment is not
	// inherited.
	Env []string `yaml:"env"`

	// Terminal geometry. Defaults: 80x24.
	Cols uint16 `yaml:"cols"`
	Rows uint16 `yaml:"rows"`

	// ReadyToken is the text whose appearance on screen signals the
	// editor is ready for input. Default "planedit".
	ReadyToken string `yaml:"readyToken"`
	// AnchorMarker is the text marking the canvas origin; its location
	// becomes the session's reference position. Default "[#]".
	AnchorMarker string `yaml:"anchorMarker"`

	// ReadyTimeout bounds the wait for ReadyToken. Default 10s.
	ReadyTimeout time.Duration `yaml:"readyTimeout"`
	// QuitGrace is how long Stop waits after the quit keystroke before
	// killing the process group. Default 3s.
	QuitGrace time.Duration `yaml:"quitGrace"`
}

func (c *Config) applyDefaults() {
	if c.Cols == 0 {
		c.Cols = 80
	}
	if c.Rows == 0 {
		c.Rows = 24
	}
	if c.ReadyToken == "" {
		c.ReadyToken = "planedit"
	}
	if c.AnchorMarker == "" {
		c.AnchorMarker = "[#]"
	}
	if c.ReadyTimeout == 0 {
		c.ReadyTimeout = 10 * time.Second
	}
	if c.QuitGrace == 0 {
		c.QuitGrace = 3 * time.Second
	}
}

func (c *Config) validate() error {
	if c.Binary == "" {
		return fmt.Errorf("binary is required")
	}
	if c.WorkDir == "" {
		return fmt.Errorf("workDir is required")
	}
	return nil
}

// LoadConfig reads a session configuration from a YAML file and applies
// defaults. Validation happens at Start, not here, so partial files can be
// layered by the caller.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}
