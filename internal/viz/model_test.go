package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/presssim/internal/material"
	"github.com/san-kum/presssim/internal/press"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func tick() tea.Msg { return TickMsg(time.Now()) }

func newModel(opts ...Option) Model {
	return NewModel(press.DefaultMachine(), material.DefaultCatalog(), opts...)
}

func TestStartWithoutMaterial(t *testing.T) {
	m := send(t, newModel(), key(" "))

	if m.Session().Status() != press.Idle {
		t.Errorf("status = %v, want idle", m.Session().Status())
	}
	if m.Message() != "Place a material on the machine first." {
		t.Errorf("message = %q", m.Message())
	}
}

func TestTabCyclesMaterials(t *testing.T) {
	m := newModel()

	m = send(t, m, key("tab"))
	if mat, ok := m.Specimen(); !ok || mat.Name() != "brick" {
		t.Fatalf("specimen = %v, %v, want brick", mat, ok)
	}

	m = send(t, m, key("tab"))
	if mat, _ := m.Specimen(); mat.Name() != "packaging" {
		t.Errorf("specimen = %v, want packaging", mat)
	}

	m = send(t, m, key("tab"))
	if mat, _ := m.Specimen(); mat.Name() != "brick" {
		t.Errorf("specimen = %v, want brick after wrap", mat)
	}
}

func TestWithMaterial(t *testing.T) {
	m := newModel(WithMaterial("Packaging"), WithKind(press.Tensile))
	if mat, ok := m.Specimen(); !ok || mat.Name() != "packaging" {
		t.Errorf("specimen = %v, %v", mat, ok)
	}
	if m.Kind() != press.Tensile {
		t.Errorf("kind = %v, want tensile", m.Kind())
	}
}

func TestStartPauseResume(t *testing.T) {
	m := send(t, newModel(WithMaterial("brick")), key(" "))
	if m.Session().Status() != press.Running {
		t.Fatalf("status = %v, want running", m.Session().Status())
	}

	m = send(t, m, tick(), tick(), tick())
	if m.Session().Steps() != 3 || len(m.Forces()) != 3 {
		t.Errorf("steps = %d, forces = %d, want 3", m.Session().Steps(), len(m.Forces()))
	}

	m = send(t, m, key(" "), tick(), tick())
	if m.Session().Status() != press.Paused {
		t.Errorf("status = %v, want paused", m.Session().Status())
	}
	if m.Session().Steps() != 3 {
		t.Errorf("paused session stepped to %d", m.Session().Steps())
	}
	if m.Message() != "Test paused. Press Resume Test to continue." {
		t.Errorf("message = %q", m.Message())
	}

	m = send(t, m, key(" "), tick())
	if m.Session().Steps() != 4 {
		t.Errorf("steps = %d, want 4", m.Session().Steps())
	}
	if m.Message() != "Test resumed." {
		t.Errorf("message = %q", m.Message())
	}
}

func TestRunToCompletion(t *testing.T) {
	m := send(t, newModel(WithMaterial("brick")), key(" "))
	for i := 0; i < 61; i++ {
		m = send(t, m, tick())
	}

	if m.Session().Status() != press.Finished {
		t.Fatalf("status = %v, want finished", m.Session().Status())
	}
	if m.Message() != "The compression test has finished." {
		t.Errorf("message = %q", m.Message())
	}
	if len(m.Forces()) != 60 {
		t.Errorf("forces = %d, want 60", len(m.Forces()))
	}

	m = send(t, m, key(" "))
	if m.Session().Status() != press.Finished {
		t.Error("space on a finished test should not restart it")
	}

	m = send(t, m, key("r"))
	if m.Session().Status() != press.Idle || len(m.Forces()) != 0 {
		t.Errorf("reset left status %v with %d forces", m.Session().Status(), len(m.Forces()))
	}
	if _, ok := m.Specimen(); ok {
		t.Error("reset should take the specimen off the machine")
	}

	m = send(t, m, key(" "))
	if m.Session().Status() != press.Idle {
		t.Errorf("status = %v, want idle after reset", m.Session().Status())
	}
	if m.Message() != "Place a material on the machine first." {
		t.Errorf("message = %q", m.Message())
	}

	m = send(t, m, key("tab"))
	if mat, ok := m.Specimen(); !ok || mat.Name() != "brick" {
		t.Errorf("specimen = %v, %v, want brick after reset", mat, ok)
	}
}

func TestSwitchKindResets(t *testing.T) {
	m := send(t, newModel(WithMaterial("brick")), key(" "), tick(), key("k"))

	if m.Kind() != press.Tensile {
		t.Errorf("kind = %v, want tensile", m.Kind())
	}
	if m.Session().Status() != press.Idle || m.Session().Steps() != 0 {
		t.Errorf("switching kind should reset, got %v after %d steps", m.Session().Status(), m.Session().Steps())
	}

	if _, ok := m.Specimen(); ok {
		t.Error("switching kind should take the specimen off the machine")
	}

	m = send(t, m, key("tab"), key(" "), tick())
	if m.Session().Kind() != press.Tensile {
		t.Errorf("session kind = %v, want tensile", m.Session().Kind())
	}
}

func TestCalibrate(t *testing.T) {
	m := send(t, newModel(), key("c"))
	if m.Message() != "Place a material on the machine first." {
		t.Errorf("message = %q", m.Message())
	}

	m = send(t, m, key("tab"), key("c"))
	if got := m.Session().CrossheadY(); got != 1080 {
		t.Errorf("crosshead = %v, want 1080", got)
	}
	if m.Message() != "Machine calibrated. Press 'Start Test' to begin." {
		t.Errorf("message = %q", m.Message())
	}

	m = send(t, m, key(" "), key("c"))
	if !strings.HasPrefix(m.Message(), "Cannot calibrate while the test is running") {
		t.Errorf("message = %q", m.Message())
	}
}

func TestPlaceWhileRunning(t *testing.T) {
	m := send(t, newModel(WithMaterial("brick")), key(" "), key("tab"))
	if mat, _ := m.Specimen(); mat.Name() != "brick" {
		t.Errorf("specimen changed mid-test to %v", mat)
	}
	if m.Session().Status() != press.Running {
		t.Errorf("status = %v, want running", m.Session().Status())
	}
}

func TestQuit(t *testing.T) {
	_, cmd := newModel().Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestView(t *testing.T) {
	m := send(t, newModel(WithMaterial("brick")), key(" "), tick(), tick())
	out := m.View()

	for _, want := range []string{"COMPRESSION TEST", "RUNNING", "brick", "N", "MPa", "Force (N)"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSceneDrawsSpecimen(t *testing.T) {
	c := NewCanvas(canvasWidth, canvasHeight)
	machine := press.DefaultMachine()
	brick, _ := material.DefaultCatalog().Get("brick")
	sc := newScene(c, machine, brick, press.Compression)

	sc.draw(machine.CalibrationY(brick, press.Compression), brick.Height(), brick.Width())

	below := sc.y(machine.PlatenY) - 1
	if !c.IsSet(sc.cx, below) {
		t.Error("specimen not drawn above the platen")
	}
	if !c.IsSet(sc.cx, sc.y(machine.PlatenY)+1) {
		t.Error("platen not drawn")
	}
	if c.IsSet(5, below) {
		t.Error("specimen wider than expected")
	}
}

func TestCanvasFillRect(t *testing.T) {
	c := NewCanvas(2, 1)
	c.FillRect(0, 0, 2, 4)
	if c.String() != "⣿⠀\n" {
		t.Errorf("canvas = %q", c.String())
	}
	c.FillRect(-5, -5, 100, 100)
	if c.String() != "⣿⣿\n" {
		t.Errorf("canvas = %q", c.String())
	}
}
