package modes

import "fmt"

// Step is one keystroke in a planned transition together with the state
// the editor must be observed in afterwards.
type Step struct {
	Key    string
	Result State
}

// pop returns the state one level up the hierarchy.
func pop(s State) State {
	switch s.Level() {
	case LevelSubmode:
		s.Submode = ""
	case LevelMode:
		s.Mode = ""
	case LevelSupermode:
		s.Super = ""
	}
	return s
}

// appendStep validates the step against the transition table before
// appending. A denied step means the planner and the table disagree, which
// is a bug, not a runtime condition.
func appendStep(steps []Step, cur State, step Step) ([]Step, State, error) {
	if !stepAllowed(cur.Level(), step.Result.Level()) {
		return nil, cur, fmt.Errorf("denied transition %s -> %s (from %s)", cur.Level(), step.Result.Level(), cur)
	}
	return append(steps, step), step.Result, nil
}

// PlanSupermode plans the steps from cur to the named supermode: exit one
// level at a time until at supermode depth, then switch. The supermode key
// is emitted even when cur is already in the target family so the
// transition is idempotent and always verified.
func PlanSupermode(c *Catalog, cur State, name string) ([]Step, error) {
	spec, ok := c.Supermode(name)
	if !ok {
		return nil, fmt.Errorf("unknown supermode %q", name)
	}
	var steps []Step
	var err error
	for cur.Level() > LevelSupermode {
		if steps, cur, err = appendStep(steps, cur, Step{Key: "escape", Result: pop(cur)}); err != nil {
			return nil, err
		}
	}
	if steps, _, err = appendStep(steps, cur, Step{Key: spec.Key, Result: State{Super: name}}); err != nil {
		return nil, err
	}
	return steps, nil
}

// PlanMode plans the steps from cur to the named mode. A mode in a
// different supermode family routes through that supermode first;
// otherwise the mode key is emitted directly.
func PlanMode(c *Catalog, cur State, name string) ([]Step, error) {
	spec, err := c.Mode(name, cur.Super)
	if err != nil {
		return nil, err
	}
	return planToMode(c, cur, spec)
}

func planToMode(c *Catalog, cur State, spec ModeSpec) ([]Step, error) {
	var steps []Step
	var err error
	if cur.Super != spec.Super || cur.Level() == LevelNone {
		if steps, err = PlanSupermode(c, cur, spec.Super); err != nil {
			return nil, err
		}
		cur = steps[len(steps)-1].Result
	}
	if steps, _, err = appendStep(steps, cur, Step{Key: spec.Key, Result: State{Super: spec.Super, Mode: spec.Name}}); err != nil {
		return nil, err
	}
	return steps, nil
}

// PlanSubmode plans the steps from cur to the named submode, routing
// through the submode's declared parent mode first.
func PlanSubmode(c *Catalog, cur State, name string) ([]Step, error) {
	spec, ok := c.Submode(name)
	if !ok {
		return nil, fmt.Errorf("unknown submode %q", name)
	}
	var steps []Step
	var err error
	if cur.Super != spec.Super || cur.Mode != spec.Mode {
		parent, perr := c.Mode(spec.Mode, spec.Super)
		if perr != nil {
			return nil, perr
		}
		if steps, err = planToMode(c, cur, parent); err != nil {
			return nil, err
		}
		cur = steps[len(steps)-1].Result
	}
	target := State{Super: spec.Super, Mode: spec.Mode, Submode: spec.Name}
	if steps, _, err = appendStep(steps, cur, Step{Key: spec.Key, Result: target}); err != nil {
		return nil, err
	}
	return steps, nil
}
