package modes

import "fmt"

// SupermodeSpec names a top-level editing context and how to reach and
// recognize it.
type SupermodeSpec struct {
	Name  string
	Key   string // key name understood by the input dispatcher
	Token string // status-line token confirming the supermode is active
}

// ModeSpec names an editing mode nested in a supermode.
type ModeSpec struct {
	Name  string
	Super string
	Key   string
	Token string
}

// SubmodeSpec names a refinement within a mode (e.g. a plan-stop type).
type SubmodeSpec struct {
	Name  string
	Mode  string
	Super string
	Key   string
	Token string
}

// Catalog is the mode hierarchy of one supported editor version. It is
// built once and never mutated afterwards.
type Catalog struct {
	supermodes map[string]SupermodeSpec
	modes      map[string]map[string]ModeSpec // supermode -> mode name -> spec
	submodes   map[string]SubmodeSpec         // submode name -> spec
}

// NewCatalog builds a catalogue, rejecting entries that reference unknown
// parents. Mode names may repeat across supermodes (every supermode has an
// "inspect"); submode names must be globally unique.
func NewCatalog(supers []SupermodeSpec, modeSpecs []ModeSpec, subSpecs []SubmodeSpec) (*Catalog, error) {
	c := &Catalog{
		supermodes: make(map[string]SupermodeSpec, len(supers)),
		modes:      make(map[string]map[string]ModeSpec, len(supers)),
		submodes:   make(map[string]SubmodeSpec, len(subSpecs)),
	}
	for _, s := range supers {
		if _, dup := c.supermodes[s.Name]; dup {
			return nil, fmt.Errorf("duplicate supermode %q", s.Name)
		}
		c.supermodes[s.Name] = s
		c.modes[s.Name] = make(map[string]ModeSpec)
	}
	for _, m := range modeSpecs {
		group, ok := c.modes[m.Super]
		if !ok {
			return nil, fmt.Errorf("mode %q references unknown supermode %q", m.Name, m.Super)
		}
		if _, dup := group[m.Name]; dup {
			return nil, fmt.Errorf("duplicate mode %q in supermode %q", m.Name, m.Super)
		}
		group[m.Name] = m
	}
	for _, sm := range subSpecs {
		group, ok := c.modes[sm.Super]
		if !ok {
			return nil, fmt.Errorf("submode %q references unknown supermode %q", sm.Name, sm.Super)
		}
		if _, ok := group[sm.Mode]; !ok {
			return nil, fmt.Errorf("submode %q references unknown mode %q", sm.Name, sm.Mode)
		}
		if _, dup := c.submodes[sm.Name]; dup {
			return nil, fmt.Errorf("duplicate submode %q", sm.Name)
		}
		c.submodes[sm.Name] = sm
	}
	return c, nil
}

// Supermode looks up a supermode by name.
func (c *Catalog) Supermode(name string) (SupermodeSpec, bool) {
	s, ok := c.supermodes[name]
	return s, ok
}

// Mode resolves a mode name, preferring the current supermode. If the name
// is not in the current supermode it must belong to exactly one other
// supermode family.
func (c *Catalog) Mode(name, currentSuper string) (ModeSpec, error) {
	if group, ok := c.modes[currentSuper]; ok {
		if m, ok := group[name]; ok {
			return m, nil
		}
	}
	var found []ModeSpec
	for super, group := range c.modes {
		if super == currentSuper {
			continue
		}
		if m, ok := group[name]; ok {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return ModeSpec{}, fmt.Errorf("unknown mode %q", name)
	default:
		return ModeSpec{}, fmt.Errorf("mode %q is ambiguous outside supermode %q", name, currentSuper)
	}
}

// Submode looks up a submode by name.
func (c *Catalog) Submode(name string) (SubmodeSpec, bool) {
	sm, ok := c.submodes[name]
	return sm, ok
}

// Supermodes returns the supermode names (order unspecified).
func (c *Catalog) Supermodes() []string {
	out := make([]string, 0, len(c.supermodes))
	for name := range c.supermodes {
		out = append(out, name)
	}
	return out
}

// Planedit returns the mode catalogue for the supported planedit version.
func Planedit() *Catalog {
	c, err := NewCatalog(
		[]SupermodeSpec{
			{Name: "network", Key: "f2", Token: "NETWORK"},
			{Name: "demand", Key: "f3", Token: "DEMAND"},
			{Name: "data", Key: "f4", Token: "DATA"},
		},
		[]ModeSpec{
			{Name: "inspect", Super: "network", Key: "i", Token: "inspect"},
			{Name: "edge", Super: "network", Key: "e", Token: "edge"},
			{Name: "move", Super: "network", Key: "m", Token: "move"},

			{Name: "inspect", Super: "demand", Key: "i", Token: "inspect"},
			{Name: "route", Super: "demand", Key: "r", Token: "route"},
			{Name: "vehicle", Super: "demand", Key: "v", Token: "vehicle"},
			{Name: "container", Super: "demand", Key: "c", Token: "container"},
			{Name: "containerplan", Super: "demand", Key: "p", Token: "containerplan"},
			{Name: "stop", Super: "demand", Key: "s", Token: "stop"},

			{Name: "inspect", Super: "data", Key: "i", Token: "inspect"},
			{Name: "edgedata", Super: "data", Key: "e", Token: "edgedata"},
		},
		[]SubmodeSpec{
			{Name: "tranship: edge->edge", Mode: "container", Super: "demand", Key: "1", Token: "tranship: edge->edge"},
			{Name: "walk: edge->edge", Mode: "container", Super: "demand", Key: "2", Token: "walk: edge->edge"},
			{Name: "stopContainer: edge", Mode: "containerplan", Super: "demand", Key: "1", Token: "stopContainer: edge"},
			{Name: "tranship: edges", Mode: "containerplan", Super: "demand", Key: "2", Token: "tranship: edges"},
			{Name: "stop: edge", Mode: "stop", Super: "demand", Key: "1", Token: "stop: edge"},
			{Name: "waypoint: edge", Mode: "stop", Super: "demand", Key: "2", Token: "waypoint: edge"},
		},
	)
	if err != nil {
		// The catalogue is static; an inconsistency is a programming error.
		panic(err)
	}
	return c
}
