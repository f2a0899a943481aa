// Package attrs is the catalogue of editable attributes for one supported
// editor version: where each field sits on screen relative to the
// reference position, and what the editor's validity rule for it is.
// Lookups are total and fail fast — a missing descriptor means the
// scenario references an attribute the harness does not model, and
// proceeding would mask the real discrepancy behind a false verdict.
package attrs

import (
	"fmt"
	"sync"

	"github.com/routelab/editdriver/internal/screen"
)

// Key identifies one editable field: which entity kind, in which editing
// context (mode name), under which attribute name.
type Key struct {
	Entity  string
	Context string
	Name    string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Entity, k.Context, k.Name)
}

// K is shorthand for building a Key.
func K(entity, context, name string) Key {
	return Key{Entity: entity, Context: context, Name: name}
}

// UnknownAttributeError is a registry miss. It is fatal by design.
type UnknownAttributeError struct {
	Key Key
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %s", e.Key)
}

// Descriptor is the catalogued metadata for one editable field. Immutable
// after registry construction.
type Descriptor struct {
	Key   Key
	Label string // visible label in the attribute panel
	// Loc is the field's click target, relative to the reference position.
	Loc screen.Offset
	// Rule is the editor-side validity predicate; nil for booleans.
	Rule *Rule
	// Bool marks toggle fields, which are clicked rather than typed into.
	Bool bool
}

// Accepts reports whether the editor is expected to accept the value,
// per the catalogued rule. Fields without a rule accept anything.
func (d Descriptor) Accepts(value string) (bool, error) {
	if d.Rule == nil {
		return true, nil
	}
	return d.Rule.Eval(value)
}

// Registry is a read-only descriptor mapping, populated once per harness
// version and never mutated during a run.
type Registry struct {
	byKey map[Key]Descriptor
}

// NewRegistry builds a registry, rejecting duplicate keys.
func NewRegistry(descriptors []Descriptor) (*Registry, error) {
	byKey := make(map[Key]Descriptor, len(descriptors))
	for _, d := range descriptors {
		if _, dup := byKey[d.Key]; dup {
			return nil, fmt.Errorf("duplicate attribute %s", d.Key)
		}
		byKey[d.Key] = d
	}
	return &Registry{byKey: byKey}, nil
}

// Lookup returns the descriptor for key, or an UnknownAttributeError.
func (r *Registry) Lookup(key Key) (Descriptor, error) {
	d, ok := r.byKey[key]
	if !ok {
		return Descriptor{}, &UnknownAttributeError{Key: key}
	}
	return d, nil
}

// Len returns the number of catalogued attributes.
func (r *Registry) Len() int { return len(r.byKey) }

// All returns every descriptor (order unspecified). Used by catalogue
// health checks, not by scenario scripts.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.byKey))
	for _, d := range r.byKey {
		out = append(out, d)
	}
	return out
}

// Attribute panel geometry for the supported planedit version. The panel
// renders to the right of the canvas; fields start one row below the
// reference position, one field per row.
const (
	panelDX    = 53
	firstRowDY = 1
)

func fieldLoc(row int) screen.Offset {
	return screen.Offset{DX: panelDX, DY: firstRowDY + row}
}

// Planedit returns the attribute catalogue for the supported planedit
// version. Built once per process.
var Planedit = sync.OnceValue(func() *Registry {
	ruleAny := MustCompileRule("any", `true`)
	ruleNonEmpty := MustCompileRule("nonEmpty", `value != ""`)
	ruleFloat := MustCompileRule("float", `isNum(value)`)
	rulePositiveFloat := MustCompileRule("positiveFloat", `isNum(value) && num(value) > 0`)
	ruleNonNegativeInt := MustCompileRule("nonNegativeInt", `isInt(value) && num(value) >= 0`)
	ruleNonNegativeFloat := MustCompileRule("nonNegativeFloat", `isNum(value) && num(value) >= 0`)

	r, err := NewRegistry([]Descriptor{
		// network / inspect
		{Key: K("edge", "inspect", "id"), Label: "id", Loc: fieldLoc(0), Rule: ruleNonEmpty},
		{Key: K("edge", "inspect", "speed"), Label: "speed", Loc: fieldLoc(1), Rule: rulePositiveFloat},

		// demand / route
		{Key: K("route", "inspect", "id"), Label: "id", Loc: fieldLoc(0), Rule: ruleNonEmpty},
		// Negative repeats are legal in this editor version: a negative
		// count reverses traversal order. Pinned by the route inspection
		// scenario.
		{Key: K("route", "inspect", "repeat"), Label: "repeat", Loc: fieldLoc(1), Rule: ruleFloat},

		// demand / vehicle
		{Key: K("vehicle", "inspect", "id"), Label: "id", Loc: fieldLoc(0), Rule: ruleNonEmpty},
		{Key: K("vehicle", "inspect", "depart"), Label: "depart", Loc: fieldLoc(1), Rule: ruleNonNegativeFloat},

		// demand / container stop creation defaults
		{Key: K("containerStopEdge", "create", "durationEnable"), Label: "durationEnable", Loc: fieldLoc(0), Bool: true},
		{Key: K("containerStopEdge", "create", "duration"), Label: "duration", Loc: fieldLoc(1), Rule: ruleNonNegativeInt},

		// demand / stop creation defaults
		{Key: K("stopEdge", "create", "durationEnable"), Label: "durationEnable", Loc: fieldLoc(0), Bool: true},
		{Key: K("stopEdge", "create", "duration"), Label: "duration", Loc: fieldLoc(1), Rule: ruleNonNegativeInt},

		// demand / container
		{Key: K("container", "create", "id"), Label: "id", Loc: fieldLoc(0), Rule: ruleAny},
	})
	if err != nil {
		// Static catalogue; duplicates are a programming error.
		panic(err)
	}
	return r
})
