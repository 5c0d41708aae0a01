package metrics

import (
	"github.com/san-kum/presssim/internal/material"
	"github.com/san-kum/presssim/internal/press"
)

// Metric accumulates a single figure over the snapshots of one run.
type Metric interface {
	Name() string
	Observe(snap press.Snapshot)
	Value() float64
	Reset()
}

// DefaultMetrics returns the metrics recorded for every stored run.
func DefaultMetrics(m material.Material) []Metric {
	return []Metric{
		NewPeakForce(),
		NewAbsorbedEnergy(),
		NewMaxStrain(),
		NewYieldOnset(m),
	}
}
