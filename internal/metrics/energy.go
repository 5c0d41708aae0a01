package metrics

import "github.com/san-kum/presssim/internal/press"

// AbsorbedEnergy integrates force over deformation with the trapezoid
// rule, giving the work done on the specimen in N·mm.
type AbsorbedEnergy struct {
	name      string
	work      float64
	lastDef   float64
	lastForce float64
}

func NewAbsorbedEnergy() *AbsorbedEnergy {
	return &AbsorbedEnergy{name: "absorbed_energy"}
}

func (e *AbsorbedEnergy) Name() string { return e.name }

func (e *AbsorbedEnergy) Observe(snap press.Snapshot) {
	// The specimen starts unloaded at zero deformation.
	e.work += 0.5 * (snap.Force + e.lastForce) * (snap.Deformation - e.lastDef)
	e.lastDef = snap.Deformation
	e.lastForce = snap.Force
}

func (e *AbsorbedEnergy) Value() float64 {
	return e.work
}

func (e *AbsorbedEnergy) Reset() {
	e.work = 0
	e.lastDef = 0
	e.lastForce = 0
}
