// Package modes encodes the editor's mode hierarchy (supermode → editing
// mode → sub-mode) as an explicit finite-state machine. Scenario scripts
// say "go to route mode"; this package turns that into the catalogued key
// sequence and verifies the editor's status line after every step.
package modes

import "strings"

// Level is the depth of the current state in the mode hierarchy.
type Level int

const (
	LevelNone Level = iota
	LevelSupermode
	LevelMode
	LevelSubmode
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelSupermode:
		return "supermode"
	case LevelMode:
		return "mode"
	case LevelSubmode:
		return "submode"
	}
	return "invalid"
}

// State is a position in the mode hierarchy. Zero value is the no-mode
// state immediately after launch.
type State struct {
	Super   string
	Mode    string
	Submode string
}

// Level derives the hierarchy depth from which fields are set.
func (s State) Level() Level {
	switch {
	case s.Submode != "":
		return LevelSubmode
	case s.Mode != "":
		return LevelMode
	case s.Super != "":
		return LevelSupermode
	default:
		return LevelNone
	}
}

func (s State) String() string {
	if s == (State{}) {
		return "no-mode"
	}
	parts := []string{s.Super}
	if s.Mode != "" {
		parts = append(parts, s.Mode)
	}
	if s.Submode != "" {
		parts = append(parts, s.Submode)
	}
	return strings.Join(parts, "/")
}

// stepAllowed is the transition table: movement is one level at a time in
// either direction, plus sibling switches at the supermode, mode, and
// submode levels.
func stepAllowed(from, to Level) bool {
	switch from {
	case LevelNone:
		return to == LevelSupermode
	case LevelSupermode:
		return to == LevelSupermode || to == LevelMode || to == LevelNone
	case LevelMode:
		return to == LevelMode || to == LevelSubmode || to == LevelSupermode
	case LevelSubmode:
		return to == LevelSubmode || to == LevelMode
	}
	return false
}
