package press

import (
	"math"

	"github.com/san-kum/presssim/internal/material"
)

const (
	msgPaused      = "Test paused. Press Resume Test to continue."
	msgResumed     = "Test resumed."
	msgStarted     = "Test started."
	msgReset       = "Ready for a new test."
	msgCalibrated  = "Machine calibrated. Press 'Start Test' to begin."
	msgCompression = "The compression test has finished."
	msgTensile     = "The tensile test has finished (material broke)."
)

// Session steps one test run. Create it with NewSession; the zero value has
// no machine geometry.
type Session struct {
	machine   Machine
	observers []Observer

	kind     Kind
	material material.Material
	status   Status

	deformation float64
	strain      float64
	stress      float64
	force       float64
	peakForce   float64
	peakStress  float64
	height      float64
	width       float64
	depth       float64
	crossheadY  float64
	steps       int

	completion *Completion
}

func NewSession(machine Machine) *Session {
	return &Session{
		machine:    machine,
		observers:  make([]Observer, 0),
		status:     Idle,
		crossheadY: machine.CrossheadHome,
	}
}

func (s *Session) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Session) Status() Status       { return s.status }
func (s *Session) Kind() Kind           { return s.kind }
func (s *Session) Machine() Machine     { return s.machine }
func (s *Session) Deformation() float64 { return s.deformation }
func (s *Session) Force() float64       { return s.force }
func (s *Session) PeakForce() float64   { return s.peakForce }
func (s *Session) PeakStress() float64  { return s.peakStress }
func (s *Session) CrossheadY() float64  { return s.crossheadY }
func (s *Session) Steps() int           { return s.steps }

// Material returns the specimen under test, if any.
func (s *Session) Material() (material.Material, bool) {
	return s.material, !s.material.IsZero()
}

// Completion returns how the test ended once the session is Finished.
func (s *Session) Completion() (Completion, bool) {
	if s.completion == nil {
		return Completion{}, false
	}
	return *s.completion, true
}

// Snapshot returns the current values without stepping.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Step:        s.steps,
		Kind:        s.kind,
		Deformation: s.deformation,
		Strain:      s.strain,
		Stress:      s.stress,
		Height:      s.height,
		Width:       s.width,
		Depth:       s.depth,
		Force:       s.force,
		PeakForce:   s.peakForce,
		PeakStress:  s.peakStress,
		CrossheadY:  s.crossheadY,
	}
}

// Calibrate parks the crosshead for the given specimen and test kind. It is
// only allowed before a test starts.
func (s *Session) Calibrate(mat material.Material, kind Kind) (float64, error) {
	if s.status != Idle {
		return 0, &StateError{Op: "calibrate", Status: s.status, Wrapped: ErrAlreadyRunning}
	}
	if mat.IsZero() {
		return 0, ErrNoMaterial
	}
	if kind != Compression && kind != Tensile {
		return 0, ErrUnknownKind
	}
	s.crossheadY = s.machine.CalibrationY(mat, kind)
	s.notifyStatus(msgCalibrated)
	return s.crossheadY, nil
}

// Start begins a test. A finished session must be Reset first.
func (s *Session) Start(mat material.Material, kind Kind) error {
	if s.status != Idle {
		return &StateError{Op: "start", Status: s.status, Wrapped: ErrAlreadyRunning}
	}
	if mat.IsZero() {
		return ErrNoMaterial
	}
	if kind != Compression && kind != Tensile {
		return ErrUnknownKind
	}

	s.clear()
	s.material = mat
	s.kind = kind
	s.height = mat.Height()
	s.width = mat.Width()
	s.depth = mat.Depth()
	s.status = Running
	s.notifyStatus(msgStarted)
	return nil
}

func (s *Session) Pause() error {
	if s.status != Running {
		return &StateError{Op: "pause", Status: s.status, Wrapped: ErrNotRunning}
	}
	s.status = Paused
	s.notifyStatus(msgPaused)
	return nil
}

func (s *Session) Resume() error {
	if s.status != Paused {
		return &StateError{Op: "resume", Status: s.status, Wrapped: ErrNotPaused}
	}
	s.status = Running
	s.notifyStatus(msgResumed)
	return nil
}

// Reset discards the test and the specimen and returns to Idle.
func (s *Session) Reset() {
	s.clear()
	s.material = material.Material{}
	s.status = Idle
	s.crossheadY = s.machine.CrossheadHome
	s.notifyStatus(msgReset)
}

func (s *Session) clear() {
	s.deformation = 0
	s.strain = 0
	s.stress = 0
	s.force = 0
	s.peakForce = 0
	s.peakStress = 0
	s.height = 0
	s.width = 0
	s.depth = 0
	s.steps = 0
	s.completion = nil
}

// Step advances the test by one increment. It does nothing and returns
// Skipped unless the session is Running, so a stale timer firing after a
// pause or the end of a test cannot disturb the state.
func (s *Session) Step() (Snapshot, Outcome) {
	if s.status != Running {
		return Snapshot{}, Skipped
	}

	if s.done() {
		s.finish()
		return Snapshot{}, Completed
	}

	s.deformation += StepSize
	s.steps++

	h0 := s.material.Height()
	s.strain = s.deformation / h0
	s.stress = soften(s.material.ScaledModulus()*s.strain, s.material.YieldStress())

	switch s.kind {
	case Compression:
		s.stepCompression(h0)
	case Tensile:
		s.stepTensile(h0)
	}

	if s.force > s.peakForce {
		s.peakForce = s.force
		s.peakStress = s.stress
	}

	snap := s.Snapshot()
	for _, o := range s.observers {
		o.OnStep(snap)
	}
	return snap, Advanced
}

func (s *Session) done() bool {
	return s.deformation >= Endpoint(s.material, s.kind)
}

// Endpoint is the deformation at which a test ends: the safety margin above
// the platen in compression, and the breaking elongation in tension.
func Endpoint(mat material.Material, kind Kind) float64 {
	if kind == Tensile {
		return mat.Height() * BreakFactor
	}
	return mat.Height() - SafetyMargin
}

// stepCompression loads the original cross-section and bulges the
// specimen sideways as it shortens.
func (s *Session) stepCompression(h0 float64) {
	w0, d0 := s.material.Width(), s.material.Depth()

	s.force = s.stress * s.material.Area()

	s.height = h0 - s.deformation
	if s.height > 0 {
		f := math.Sqrt(h0 / s.height)
		s.width = w0 * f
		s.depth = d0 * f
	} else {
		s.width = w0 * CollapseFactor
		s.depth = d0 * CollapseFactor
	}

	s.crossheadY = s.machine.CrossheadFor(s.height)
}

// stepTensile loads the necked, current cross-section.
func (s *Session) stepTensile(h0 float64) {
	w0, d0 := s.material.Width(), s.material.Depth()

	s.height = h0 + s.deformation
	f := math.Sqrt(h0 / s.height)
	s.width = w0 * f
	s.depth = d0 * f

	s.force = s.stress * (s.width * s.depth)

	s.crossheadY = s.machine.CrossheadFor(s.height)
}

func (s *Session) finish() {
	msg := msgCompression
	if s.kind == Tensile {
		msg = msgTensile
	}
	s.completion = &Completion{
		Kind:        s.kind,
		Message:     msg,
		Deformation: s.deformation,
		PeakForce:   s.peakForce,
		PeakStress:  s.peakStress,
		Steps:       s.steps,
	}
	s.status = Finished
	s.notifyStatus(msg)
}

func (s *Session) notifyStatus(msg string) {
	for _, o := range s.observers {
		o.OnStatus(s.status, msg)
	}
}

// soften applies the bilinear yield: above sigmaY the stress grows at a
// tenth of the elastic rate.
func soften(stress, sigmaY float64) float64 {
	if stress > sigmaY {
		return sigmaY + PostYieldRatio*(stress-sigmaY)
	}
	return stress
}
