package metrics

import (
	"math"

	"github.com/san-kum/presssim/internal/press"
)

type PeakForce struct {
	name string
	peak float64
}

func NewPeakForce() *PeakForce {
	return &PeakForce{name: "peak_force"}
}

func (p *PeakForce) Name() string { return p.name }

func (p *PeakForce) Observe(snap press.Snapshot) {
	p.peak = math.Max(p.peak, snap.Force)
}

func (p *PeakForce) Value() float64 { return p.peak }

func (p *PeakForce) Reset() { p.peak = 0 }

type MaxStrain struct {
	name string
	max  float64
}

func NewMaxStrain() *MaxStrain {
	return &MaxStrain{name: "max_strain"}
}

func (m *MaxStrain) Name() string { return m.name }

func (m *MaxStrain) Observe(snap press.Snapshot) {
	m.max = math.Max(m.max, snap.Strain)
}

func (m *MaxStrain) Value() float64 { return m.max }

func (m *MaxStrain) Reset() { m.max = 0 }
