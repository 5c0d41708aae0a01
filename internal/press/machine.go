package press

import "github.com/san-kum/presssim/internal/material"

// Machine is the press frame geometry in display units. Specimen lengths
// are multiplied by Scale before being placed on the frame.
type Machine struct {
	Scale         float64
	PlatenY       float64
	PlatenHeight  float64
	CrossheadHome float64
}

// DefaultMachine matches the stock frame: bottom platen at 600 and the
// crosshead parked 150 below the 300 top beam, both scaled by 2.
func DefaultMachine() Machine {
	return Machine{
		Scale:         2,
		PlatenY:       600 * 2,
		PlatenHeight:  20,
		CrossheadHome: (300 + 150) * 2,
	}
}

// CrossheadFor places the crosshead on top of a specimen of height h.
func (m Machine) CrossheadFor(h float64) float64 {
	return m.PlatenY - (h*m.Scale + m.PlatenHeight*m.Scale)
}

// CalibrationY is where calibration parks the crosshead before a test.
// Tensile grips clamp at the specimen top, without the platen offset.
func (m Machine) CalibrationY(mat material.Material, kind Kind) float64 {
	if kind == Tensile {
		return m.PlatenY - mat.Height()*m.Scale
	}
	return m.PlatenY - mat.Height()*m.Scale - m.PlatenHeight*m.Scale
}
