package press

import (
	"fmt"
	"strings"
)

const (
	// StepSize is the deformation added per step, in mm.
	StepSize = 0.5

	// SafetyMargin stops a compression test this many mm before the
	// platens would meet.
	SafetyMargin = 10.0

	// BreakFactor ends a tensile test once the elongation reaches this
	// multiple of the original height.
	BreakFactor = 2.0

	// PostYieldRatio is the post-yield stiffness as a fraction of the
	// elastic stiffness.
	PostYieldRatio = 0.1

	// CollapseFactor widens a fully crushed specimen for display.
	CollapseFactor = 1.5
)

// Kind selects the test direction.
type Kind int

const (
	Compression Kind = iota
	Tensile
)

func (k Kind) String() string {
	switch k {
	case Compression:
		return "compression"
	case Tensile:
		return "tensile"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts "compression" or "tensile" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compression":
		return Compression, nil
	case "tensile":
		return Tensile, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Status is the lifecycle position of a session.
type Status int

const (
	Idle Status = iota
	Running
	Paused
	Finished
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome reports what a call to Step did.
type Outcome int

const (
	// Skipped means the session was not running and nothing changed.
	Skipped Outcome = iota
	// Advanced means a step was taken and a snapshot produced.
	Advanced
	// Completed means the termination check fired; the session is Finished.
	Completed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Advanced:
		return "advanced"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Snapshot is the state handed to the driver after each step. Lengths are
// in mm, force in N, stress in MPa.
type Snapshot struct {
	Step        int
	Kind        Kind
	Deformation float64
	Strain      float64
	Stress      float64
	Height      float64
	Width       float64
	Depth       float64
	Force       float64
	PeakForce   float64
	PeakStress  float64
	CrossheadY  float64
}

// Completion describes how a test ended.
type Completion struct {
	Kind        Kind
	Message     string
	Deformation float64
	PeakForce   float64
	PeakStress  float64
	Steps       int
}

// Observer receives status transitions and step snapshots.
type Observer interface {
	OnStatus(status Status, message string)
	OnStep(snap Snapshot)
}
