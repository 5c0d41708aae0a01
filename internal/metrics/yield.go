package metrics

import (
	"github.com/san-kum/presssim/internal/material"
	"github.com/san-kum/presssim/internal/press"
)

// YieldOnset records the deformation at which the linear stress first
// passed the yield stress. It stays 0 for a run that never yields.
type YieldOnset struct {
	name    string
	modulus float64
	sigmaY  float64
	onset   float64
	yielded bool
}

func NewYieldOnset(m material.Material) *YieldOnset {
	return &YieldOnset{
		name:    "yield_onset",
		modulus: m.ScaledModulus(),
		sigmaY:  m.YieldStress(),
	}
}

func (y *YieldOnset) Name() string { return y.name }

func (y *YieldOnset) Observe(snap press.Snapshot) {
	if y.yielded {
		return
	}
	if y.modulus*snap.Strain > y.sigmaY {
		y.onset = snap.Deformation
		y.yielded = true
	}
}

func (y *YieldOnset) Value() float64 { return y.onset }

func (y *YieldOnset) Reset() {
	y.onset = 0
	y.yielded = false
}
