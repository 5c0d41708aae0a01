package viz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/presssim/internal/material"
	"github.com/san-kum/presssim/internal/press"
	"github.com/san-kum/presssim/internal/sim"
)

const (
	canvasWidth     = 40
	canvasHeight    = 18
	historyCapacity = 600
)

const (
	msgWelcome       = "Press Tab to place a material on the machine."
	msgNoMaterial    = "Place a material on the machine first."
	msgBusy          = "Reset the test (R) before changing the specimen."
	msgFinishedStart = "Test finished. Press R for a new test."
)

type TickMsg time.Time

// statusLine keeps the last message the session reported. It is shared by
// pointer so copies of Model see the same line.
type statusLine struct{ text string }

func (l *statusLine) OnStatus(_ press.Status, message string) { l.text = message }
func (l *statusLine) OnStep(press.Snapshot)                   {}

// Model is the live press. The Bubble Tea runtime owns it, so only Update
// touches the session.
type Model struct {
	session  *press.Session
	catalog  *material.Catalog
	names    []string
	selected int
	specimen material.Material
	kind     press.Kind
	cadence  time.Duration
	status   *statusLine
	forces   []float64
	canvas   *Canvas
}

// Option customises a Model.
type Option func(*Model)

// WithMaterial places the named material on the machine at start-up.
func WithMaterial(name string) Option {
	return func(m *Model) {
		for i, n := range m.names {
			if strings.EqualFold(n, name) {
				m.place(i)
				return
			}
		}
	}
}

func WithKind(kind press.Kind) Option {
	return func(m *Model) { m.kind = kind }
}

// WithCadence sets the tick interval. Non-positive values keep the default.
func WithCadence(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.cadence = d
		}
	}
}

// WithObserver forwards session events, for logging a live run.
func WithObserver(o press.Observer) Option {
	return func(m *Model) { m.session.AddObserver(o) }
}

func NewModel(machine press.Machine, catalog *material.Catalog, opts ...Option) Model {
	m := Model{
		session:  press.NewSession(machine),
		catalog:  catalog,
		names:    catalog.Names(),
		selected: -1,
		kind:     press.Compression,
		cadence:  sim.DefaultCadence,
		status:   &statusLine{text: msgWelcome},
		forces:   make([]float64, 0, historyCapacity),
		canvas:   NewCanvas(canvasWidth, canvasHeight),
	}
	m.session.AddObserver(m.status)
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cadence, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles key presses and advances the test on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.toggle()
		case "tab":
			if len(m.names) > 0 {
				m.place((m.selected + 1) % len(m.names))
			}
		case "c":
			m.calibrate()
		case "k":
			m.switchKind()
		case "r":
			m.reset()
		}
	case TickMsg:
		m.step()
		return m, m.tick()
	}
	return m, nil
}

// toggle is the start/pause/resume button.
func (m *Model) toggle() {
	switch m.session.Status() {
	case press.Idle:
		if m.specimen.IsZero() {
			m.status.text = msgNoMaterial
			return
		}
		m.forces = m.forces[:0]
		m.report(m.session.Start(m.specimen, m.kind))
	case press.Running:
		m.report(m.session.Pause())
	case press.Paused:
		m.report(m.session.Resume())
	case press.Finished:
		m.status.text = msgFinishedStart
	}
}

func (m *Model) step() {
	snap, out := m.session.Step()
	if out != press.Advanced {
		return
	}
	m.forces = append(m.forces, snap.Force)
	if len(m.forces) > historyCapacity {
		m.forces = m.forces[1:]
	}
}

// place puts catalog entry i on the machine. Only an idle or finished
// machine accepts a new specimen.
func (m *Model) place(i int) {
	switch m.session.Status() {
	case press.Running, press.Paused:
		m.status.text = msgBusy
		return
	case press.Finished:
		m.reset()
	}
	mat, err := m.catalog.Get(m.names[i])
	if err != nil {
		m.status.text = err.Error()
		return
	}
	m.selected = i
	m.specimen = mat
	m.status.text = fmt.Sprintf("%s placed on the machine.", mat.Name())
}

func (m *Model) calibrate() {
	if m.specimen.IsZero() {
		m.status.text = msgNoMaterial
		return
	}
	_, err := m.session.Calibrate(m.specimen, m.kind)
	m.report(err)
}

// switchKind flips the test direction. Any test in progress is discarded
// along with the specimen.
func (m *Model) switchKind() {
	if m.kind == press.Compression {
		m.kind = press.Tensile
	} else {
		m.kind = press.Compression
	}
	m.reset()
	m.status.text = fmt.Sprintf("%s test selected.", title(m.kind.String()))
}

// reset starts over with an empty machine. The specimen goes back to the
// shelf and must be placed again.
func (m *Model) reset() {
	m.session.Reset()
	m.forces = m.forces[:0]
	m.specimen = material.Material{}
	m.selected = -1
}

func (m *Model) report(err error) {
	if err == nil {
		return
	}
	var se *press.StateError
	if errors.As(err, &se) {
		m.status.text = fmt.Sprintf("Cannot %s while the test is %s.", se.Op, se.Status)
		return
	}
	m.status.text = err.Error()
}

// Message is the line shown under the readings.
func (m Model) Message() string { return m.status.text }

func (m Model) Session() *press.Session { return m.session }

func (m Model) Specimen() (material.Material, bool) { return m.specimen, !m.specimen.IsZero() }

func (m Model) Kind() press.Kind { return m.kind }

func (m Model) Forces() []float64 { return m.forces }

// progress is the share of the way to the end point, in [0, 1].
func (m Model) progress() float64 {
	if m.specimen.IsZero() {
		return 0
	}
	end := press.Endpoint(m.specimen, m.kind)
	if end <= 0 {
		return 1
	}
	return min(m.session.Deformation()/end, 1)
}

// drawPress renders the machine with the current specimen shape. Before a
// test starts the specimen keeps its catalog dimensions.
func (m Model) drawPress() string {
	sc := newScene(m.canvas, m.session.Machine(), m.specimen, m.kind)
	snap := m.session.Snapshot()
	height, width := snap.Height, snap.Width
	if height <= 0 && !m.specimen.IsZero() {
		height, width = m.specimen.Height(), m.specimen.Width()
	}
	sc.draw(m.session.CrossheadY(), height, width)
	return m.canvas.String()
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(m.drawPress())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.kind.String())+" TEST") + "\n")

	status := m.session.Status().String()
	s.WriteString(statusStyle(status).Render(strings.ToUpper(status)) + "\n\n")

	name := "(none)"
	if !m.specimen.IsZero() {
		name = m.specimen.Name()
	}
	snap := m.session.Snapshot()
	height := snap.Height
	if height <= 0 && !m.specimen.IsZero() {
		height = m.specimen.Height()
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Material", name)
	row("Force", fmt.Sprintf("%.2f N", m.session.Force()))
	row("Peak stress", fmt.Sprintf("%.2f MPa", m.session.PeakStress()))
	row("Height", fmt.Sprintf("%.2f mm", height))
	row("Deformation", fmt.Sprintf("%.2f mm", m.session.Deformation()))
	row("Progress", ProgressBar(m.progress(), 20))

	if len(m.forces) > 1 {
		chart := asciigraph.Plot(m.forces, asciigraph.Height(6), asciigraph.Width(30), asciigraph.Caption("Force (N)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\n" + messageBox.Render(m.status.text) + "\n")
	s.WriteString(helpStyle.Render("SP:Start/Pause TAB:Material C:Calibrate\nK:Kind R:Reset Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
