package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/presssim/internal/material"
	"github.com/san-kum/presssim/internal/press"
)

// DefaultCadence is the stepping interval of the stock press display.
const DefaultCadence = 50 * time.Millisecond

// ErrStepLimit indicates a run that did not complete within MaxSteps.
var ErrStepLimit = errors.New("sim: step limit reached before the test completed")

type Config struct {
	// Cadence is the wall-clock pause between steps. Zero steps back to back.
	Cadence  time.Duration
	MaxSteps int
}

func DefaultConfig() Config {
	return Config{
		Cadence:  DefaultCadence,
		MaxSteps: 10000,
	}
}

func (c Config) validate() error {
	if c.Cadence < 0 {
		return fmt.Errorf("cadence must not be negative, got %v", c.Cadence)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", c.MaxSteps)
	}
	return nil
}

// Job is one test to run: a specimen and a direction.
type Job struct {
	Material material.Material
	Kind     press.Kind
}

type Result struct {
	Material   material.Material
	Kind       press.Kind
	Snapshots  []press.Snapshot
	Completion press.Completion
	Completed  bool
	Metrics    map[string]float64
	StepsTaken int
	Elapsed    time.Duration
}

// ForceCurve returns the force of every step.
func (r *Result) ForceCurve() []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Force
	}
	return out
}

// StressStrain returns the strain and stress series of the run.
func (r *Result) StressStrain() (strain, stress []float64) {
	strain = make([]float64, len(r.Snapshots))
	stress = make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		strain[i] = s.Strain
		stress[i] = s.Stress
	}
	return strain, stress
}

// Last returns the final snapshot, or the zero snapshot for an empty run.
func (r *Result) Last() press.Snapshot {
	if len(r.Snapshots) == 0 {
		return press.Snapshot{}
	}
	return r.Snapshots[len(r.Snapshots)-1]
}
