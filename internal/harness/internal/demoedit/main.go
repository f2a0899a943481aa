//go:build unix

// Package main is a miniature modal network/demand editor used by the
// harness's own test suite. It renders a canvas plus an attribute panel,
// implements the planedit mode hierarchy, validates attribute edits
// itself, and keeps an undo/redo command log — everything the harness
// needs a real target process for. It is a test fixture, not a product.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

const (
	screenCols = 80
	panelCol   = 51 // 0-indexed column where the attribute panel starts
	anchorRow  = 2  // 0-indexed row of the canvas origin marker
	bodyRows   = 18
)

var titleStyle = lipgloss.NewStyle().Bold(true)

type edge struct {
	id    string
	speed float64
	dx    int
	dy    int
}

type route struct {
	id     string
	edges  []string
	repeat float64
}

type container struct {
	id   string
	plan string
}

type stop struct {
	id       string
	edge     string
	duration int
	enabled  bool
}

type vehicle struct {
	id     string
	from   string
	to     string
	depart float64
}

// field is one row of the attribute panel.
type field struct {
	label  string
	isBool bool
	get    func() string
	getB   func() bool
	setB   func(bool)
	// set validates and applies; returns false on rejection.
	set func(string) bool
	// undoable: edits in inspect contexts go on the command log,
	// creation defaults do not.
	undoable bool
}

type op struct {
	desc string
	undo func()
	redo func()
}

type model struct {
	super   string // "", "network", "demand", "data"
	mode    string
	submode string

	edges      []edge
	routes     []route
	containers []container
	stops      []stop
	vehicles   []vehicle

	pending  []string // clicked edges awaiting enter
	selected string   // inspected entity id

	// creation defaults for stop-like plans
	defDuration       int
	defDurationEnable bool
	defContainerID    string

	focus  int // focused panel field index, -1 when none
	buffer string

	undoStack []op
	redoStack []op

	seq    int
	status string

	nextRoute     int
	nextContainer int
	nextStop      int
	nextVehicle   int
}

func newModel() *model {
	return &model{
		edges: []edge{
			{id: "e0", speed: 13.9, dx: 4, dy: 2},
			{id: "e1", speed: 13.9, dx: 14, dy: 2},
			{id: "e2", speed: 8.3, dx: 24, dy: 2},
		},
		defDuration:       60,
		defDurationEnable: true,
		defContainerID:    "",
		focus:             -1,
		status:            "ready",
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) say(format string, args ...any) {
	m.seq++
	m.status = fmt.Sprintf(format, args...)
}

func (m *model) push(o op) {
	m.undoStack = append(m.undoStack, o)
	m.redoStack = nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			m.handleClick(msg.X, msg.Y)
		}
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+q" {
		return m, tea.Quit
	}

	if m.focus >= 0 {
		switch key {
		case "enter":
			m.commitField()
		case "esc":
			m.focus = -1
			m.buffer = ""
			m.say("ready")
		case "ctrl+u":
			m.buffer = ""
		case "backspace":
			if len(m.buffer) > 0 {
				m.buffer = m.buffer[:len(m.buffer)-1]
			}
		default:
			if len(key) == 1 || key == "space" {
				if key == "space" {
					key = " "
				}
				m.buffer += key
			}
		}
		return m, nil
	}

	switch key {
	case "f2":
		m.enterSupermode("network")
	case "f3":
		m.enterSupermode("demand")
	case "f4":
		m.enterSupermode("data")
	case "esc":
		m.popLevel()
	case "ctrl+z":
		m.doUndo()
	case "ctrl+y":
		m.doRedo()
	case "ctrl+s":
		m.save()
	case "enter":
		m.commitPending()
	default:
		if m.super != "" && len(key) == 1 {
			if key >= "1" && key <= "9" {
				m.enterSubmode(key)
			} else {
				m.enterMode(key)
			}
		}
	}
	return m, nil
}

var modeKeys = map[string]map[string]string{
	"network": {"i": "inspect", "e": "edge", "m": "move"},
	"demand": {
		"i": "inspect", "r": "route", "v": "vehicle",
		"c": "container", "p": "containerplan", "s": "stop",
	},
	"data": {"i": "inspect", "e": "edgedata"},
}

var submodeKeys = map[string]map[string]string{
	"container":     {"1": "tranship: edge->edge", "2": "walk: edge->edge"},
	"containerplan": {"1": "stopContainer: edge", "2": "tranship: edges"},
	"stop":          {"1": "stop: edge", "2": "waypoint: edge"},
}

func (m *model) enterSupermode(name string) {
	m.super = name
	m.mode = ""
	m.submode = ""
	m.resetInteraction()
	m.say("ready")
}

func (m *model) enterMode(key string) {
	name, ok := modeKeys[m.super][key]
	if !ok {
		return
	}
	m.mode = name
	m.submode = ""
	m.resetInteraction()
	m.say("ready")
}

func (m *model) enterSubmode(key string) {
	name, ok := submodeKeys[m.mode][key]
	if !ok {
		return
	}
	m.submode = name
	m.focus = -1
	m.buffer = ""
	m.say("ready")
}

func (m *model) popLevel() {
	switch {
	case m.submode != "":
		m.submode = ""
	case m.mode != "":
		m.mode = ""
	case m.super != "":
		m.super = ""
	}
	m.resetInteraction()
	m.say("ready")
}

func (m *model) resetInteraction() {
	m.pending = nil
	m.selected = ""
	m.focus = -1
	m.buffer = ""
}

// handleClick resolves a screen click to a panel field or a canvas entity.
func (m *model) handleClick(x, y int) {
	if x >= panelCol && y >= anchorRow+1 {
		m.clickField(y - anchorRow - 1)
		return
	}
	m.clickCanvas(x, y-anchorRow)
}

func (m *model) clickField(idx int) {
	fields := m.fields()
	if idx < 0 || idx >= len(fields) {
		return
	}
	f := fields[idx]
	if f.isBool {
		old := f.getB()
		f.setB(!old)
		if f.undoable {
			m.push(op{
				desc: "toggle " + f.label,
				undo: func() { f.setB(old) },
				redo: func() { f.setB(!old) },
			})
		}
		m.say("toggled %s %s", f.label, onOff(!old))
		return
	}
	m.focus = idx
	m.buffer = ""
	m.say("editing %s", f.label)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *model) commitField() {
	fields := m.fields()
	if m.focus < 0 || m.focus >= len(fields) {
		return
	}
	f := fields[m.focus]
	value := m.buffer
	m.focus = -1
	m.buffer = ""
	if f.set(value) {
		m.say("accepted %s", f.label)
	} else {
		m.say("rejected %s", f.label)
	}
}

func (m *model) clickCanvas(dx, dy int) {
	switch m.mode {
	case "route", "vehicle":
		if e := m.edgeAt(dx, dy); e != nil {
			m.pending = append(m.pending, e.id)
			m.say("pending %s", strings.Join(m.pending, " "))
		}
	case "container":
		if m.submode == "" {
			return
		}
		if e := m.edgeAt(dx, dy); e != nil {
			m.pending = append(m.pending, e.id)
			m.say("pending %s", strings.Join(m.pending, " "))
		}
	case "containerplan":
		if id := m.containerAt(dx, dy); id != "" {
			m.selected = id
			m.say("selected %s", id)
			return
		}
		if m.selected == "" || m.submode == "" {
			return
		}
		if e := m.edgeAt(dx, dy); e != nil {
			m.createStop(e.id)
		}
	case "inspect":
		m.selected = m.entityAt(dx, dy)
		if m.selected != "" {
			m.say("selected %s", m.selected)
		}
	}
}

func (m *model) edgeAt(dx, dy int) *edge {
	for i, e := range m.edges {
		if dy == e.dy && dx >= e.dx && dx < e.dx+len(e.id)+2 {
			return &m.edges[i]
		}
	}
	return nil
}

func (m *model) containerAt(dx, dy int) string {
	for i, c := range m.containers {
		if dy == 12+i && dx >= 2 && dx < 2+len(c.id)+len(c.plan)+3 {
			return c.id
		}
	}
	return ""
}

func (m *model) entityAt(dx, dy int) string {
	if e := m.edgeAt(dx, dy); e != nil {
		return e.id
	}
	switch dy {
	case 10:
		if len(m.routes) > 0 {
			return m.routes[0].id
		}
	case 12:
		if len(m.containers) > 0 {
			return m.containers[0].id
		}
	case 14:
		if len(m.stops) > 0 {
			return m.stops[0].id
		}
	case 16:
		if len(m.vehicles) > 0 {
			return m.vehicles[0].id
		}
	}
	return ""
}

func (m *model) commitPending() {
	switch m.mode {
	case "route":
		if len(m.pending) < 2 {
			m.say("route needs 2 edges")
			return
		}
		id := fmt.Sprintf("r%d", m.nextRoute)
		m.nextRoute++
		r := route{id: id, edges: append([]string(nil), m.pending...)}
		m.pending = nil
		m.routes = append(m.routes, r)
		m.push(op{
			desc: "create route " + id,
			undo: func() { m.routes = m.routes[:len(m.routes)-1] },
			redo: func() { m.routes = append(m.routes, r) },
		})
		m.say("created route %s", id)
	case "vehicle":
		if len(m.pending) < 2 {
			m.say("trip needs 2 edges")
			return
		}
		id := fmt.Sprintf("t%d", m.nextVehicle)
		m.nextVehicle++
		v := vehicle{id: id, from: m.pending[0], to: m.pending[len(m.pending)-1]}
		m.pending = nil
		m.vehicles = append(m.vehicles, v)
		m.push(op{
			desc: "create trip " + id,
			undo: func() { m.vehicles = m.vehicles[:len(m.vehicles)-1] },
			redo: func() { m.vehicles = append(m.vehicles, v) },
		})
		m.say("created trip %s", id)
	case "container":
		if m.submode == "" || len(m.pending) < 2 {
			m.say("plan needs 2 edges")
			return
		}
		id := fmt.Sprintf("c%d", m.nextContainer)
		m.nextContainer++
		plan := fmt.Sprintf("%s %s->%s", strings.SplitN(m.submode, ":", 2)[0], m.pending[0], m.pending[len(m.pending)-1])
		c := container{id: id, plan: plan}
		m.pending = nil
		m.containers = append(m.containers, c)
		m.push(op{
			desc: "create container " + id,
			undo: func() { m.containers = m.containers[:len(m.containers)-1] },
			redo: func() { m.containers = append(m.containers, c) },
		})
		m.say("created container %s", id)
	}
}

func (m *model) createStop(edgeID string) {
	id := fmt.Sprintf("s%d", m.nextStop)
	m.nextStop++
	s := stop{id: id, edge: edgeID, duration: m.defDuration, enabled: m.defDurationEnable}
	m.stops = append(m.stops, s)
	m.push(op{
		desc: "create stop " + id,
		undo: func() { m.stops = m.stops[:len(m.stops)-1] },
		redo: func() { m.stops = append(m.stops, s) },
	})
	m.say("created stop %s", id)
}

func (m *model) doUndo() {
	if len(m.undoStack) == 0 {
		m.say("nothing to undo")
		return
	}
	o := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	o.undo()
	m.redoStack = append(m.redoStack, o)
	m.say("undo: %s", o.desc)
}

func (m *model) doRedo() {
	if len(m.redoStack) == 0 {
		m.say("nothing to redo")
		return
	}
	o := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	o.redo()
	m.undoStack = append(m.undoStack, o)
	m.say("redo: %s", o.desc)
}

func (m *model) save() {
	routeIDs := make([]string, len(m.routes))
	for i, r := range m.routes {
		routeIDs[i] = r.id
	}
	doc := map[string]any{
		"routes":     routeIDs,
		"containers": len(m.containers),
		"stops":      len(m.stops),
		"vehicles":   len(m.vehicles),
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		m.say("save failed: %v", err)
		return
	}
	path := filepath.Join(".", "planedit.cfg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		m.say("save failed: %v", err)
		return
	}
	m.say("saved planedit.cfg")
}

// fields returns the attribute panel for the current mode and selection.
// The panel row order is part of the editor's UI contract.
func (m *model) fields() []field {
	switch m.mode {
	case "container":
		return []field{{
			label: "id",
			get:   func() string { return m.defContainerID },
			set:   func(v string) bool { m.defContainerID = v; return true },
		}}
	case "containerplan", "stop":
		return []field{
			{
				label:  "durationEnable",
				isBool: true,
				getB:   func() bool { return m.defDurationEnable },
				setB:   func(b bool) { m.defDurationEnable = b },
			},
			{
				label: "duration",
				get:   func() string { return strconv.Itoa(m.defDuration) },
				set: func(v string) bool {
					n, err := strconv.Atoi(v)
					if err != nil || n < 0 {
						return false
					}
					m.defDuration = n
					return true
				},
			},
		}
	case "inspect":
		return m.inspectFields()
	}
	return nil
}

func (m *model) inspectFields() []field {
	sel := m.selected
	for i := range m.routes {
		if m.routes[i].id != sel {
			continue
		}
		r := &m.routes[i]
		return []field{
			{
				label: "id",
				get:   func() string { return r.id },
				set: func(v string) bool {
					if v == "" {
						return false
					}
					old := r.id
					r.id = v
					m.push(op{
						desc: "set route id",
						undo: func() { r.id = old },
						redo: func() { r.id = v },
					})
					return true
				},
			},
			{
				label: "repeat",
				get:   func() string { return strconv.FormatFloat(r.repeat, 'g', -1, 64) },
				set: func(v string) bool {
					// Negative repeats reverse traversal order; any float
					// is legal here.
					f, err := strconv.ParseFloat(v, 64)
					if err != nil {
						return false
					}
					old := r.repeat
					r.repeat = f
					m.push(op{
						desc: "set route repeat",
						undo: func() { r.repeat = old },
						redo: func() { r.repeat = f },
					})
					return true
				},
				undoable: true,
			},
		}
	}
	for i := range m.edges {
		if m.edges[i].id != sel {
			continue
		}
		e := &m.edges[i]
		return []field{
			{
				label: "id",
				get:   func() string { return e.id },
				set:   func(v string) bool { return false },
			},
			{
				label: "speed",
				get:   func() string { return strconv.FormatFloat(e.speed, 'g', -1, 64) },
				set: func(v string) bool {
					f, err := strconv.ParseFloat(v, 64)
					if err != nil || f <= 0 {
						return false
					}
					old := e.speed
					e.speed = f
					m.push(op{
						desc: "set edge speed",
						undo: func() { e.speed = old },
						redo: func() { e.speed = f },
					})
					return true
				},
				undoable: true,
			},
		}
	}
	return nil
}

func (m *model) View() string {
	lines := make([]string, 0, 22)
	lines = append(lines, titleStyle.Render("planedit 0.3"))
	lines = append(lines, m.statusLine())

	canvas := m.canvasLines()
	panel := m.panelLines()
	for i := 0; i < bodyRows; i++ {
		left := ""
		if i < len(canvas) {
			left = canvas[i]
		}
		right := ""
		if i < len(panel) {
			right = panel[i]
		}
		lines = append(lines, pad(left, panelCol)+right)
	}

	lines = append(lines, "")
	lines = append(lines, "f2/f3/f4 supermode · esc back · ctrl+z undo · ctrl+y redo · ctrl+s save · ctrl+q quit")
	return strings.Join(lines, "\n")
}

func (m *model) statusLine() string {
	label := "[-]"
	if m.super != "" {
		tokens := []string{strings.ToUpper(m.super)}
		if m.mode != "" {
			tokens = append(tokens, m.mode)
		}
		if m.submode != "" {
			tokens = append(tokens, m.submode)
		}
		label = "[" + strings.Join(tokens, "|") + "]"
	}
	return fmt.Sprintf("%s #%d %s", label, m.seq, m.status)
}

func (m *model) canvasLines() []string {
	rows := make([]string, bodyRows)
	rows[0] = "[#]"
	for _, e := range m.edges {
		rows[e.dy] = place(rows[e.dy], e.dx, "="+e.id+"=")
	}
	rows[6] = place(rows[6], 4, "(j0)")
	rows[6] = place(rows[6], 14, "(j1)")
	for i, r := range m.routes {
		rows[10+i] = place(rows[10+i], 2, fmt.Sprintf("%s:[%s]", r.id, strings.Join(r.edges, " ")))
	}
	for i, c := range m.containers {
		rows[12+i] = place(rows[12+i], 2, fmt.Sprintf("%s:<%s>", c.id, c.plan))
	}
	for i, s := range m.stops {
		rows[14+i] = place(rows[14+i], 2, fmt.Sprintf("%s:[stop %s d=%d %s]", s.id, s.edge, s.duration, onOff(s.enabled)))
	}
	for i, v := range m.vehicles {
		rows[16+i] = place(rows[16+i], 2, fmt.Sprintf("%s:[%s->%s]", v.id, v.from, v.to))
	}
	return rows
}

func (m *model) panelLines() []string {
	rows := make([]string, 0, bodyRows)
	rows = append(rows, "attributes:")
	for i, f := range m.fields() {
		var val string
		switch {
		case f.isBool:
			if f.getB() {
				val = "[x]"
			} else {
				val = "[ ]"
			}
		case m.focus == i:
			val = m.buffer + "_"
		default:
			val = f.get()
		}
		rows = append(rows, fmt.Sprintf("%-15s %s", f.label, val))
	}
	return rows
}

func place(row string, col int, text string) string {
	if len(row) < col {
		row += strings.Repeat(" ", col-len(row))
	}
	out := []byte(pad(row, col+len(text)))
	copy(out[col:], text)
	return string(out)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func main() {
	p := tea.NewProgram(newModel(), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
