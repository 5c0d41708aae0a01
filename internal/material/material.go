// Package material describes testable specimens and the read-only catalog
// they are drawn from.
package material

import (
	"errors"
	"fmt"
	"math"
)

// ModulusScale converts the catalog modulus (GPa) to the MPa used when
// computing stress.
const ModulusScale = 1000.0

var (
	// ErrInvalidMaterial indicates a non-positive mechanical property or dimension.
	ErrInvalidMaterial = errors.New("material: invalid material")

	// ErrUnknownMaterial indicates a catalog lookup for a name that is not listed.
	ErrUnknownMaterial = errors.New("material: unknown material")

	// ErrDuplicateMaterial indicates two catalog entries sharing a name.
	ErrDuplicateMaterial = errors.New("material: duplicate material")
)

// Material is an immutable specimen description. The zero value is not a
// valid material; use New.
type Material struct {
	name   string
	e      float64
	sigmaY float64
	width  float64
	height float64
	depth  float64
}

// New validates and builds a material. E is in GPa, sigmaY in MPa and the
// dimensions in mm.
func New(name string, e, sigmaY, width, height, depth float64) (Material, error) {
	fields := []struct {
		name  string
		value float64
	}{
		{"elastic modulus", e},
		{"yield stress", sigmaY},
		{"width", width},
		{"height", height},
		{"depth", depth},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return Material{}, fmt.Errorf("%w: %s %q must be positive, got %v", ErrInvalidMaterial, name, f.name, f.value)
		}
	}

	return Material{
		name:   name,
		e:      e,
		sigmaY: sigmaY,
		width:  width,
		height: height,
		depth:  depth,
	}, nil
}

// MustNew is New for static tables; it panics on invalid input.
func MustNew(name string, e, sigmaY, width, height, depth float64) Material {
	m, err := New(name, e, sigmaY, width, height, depth)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Material) Name() string            { return m.name }
func (m Material) ElasticModulus() float64 { return m.e }
func (m Material) YieldStress() float64    { return m.sigmaY }
func (m Material) Width() float64          { return m.width }
func (m Material) Height() float64         { return m.height }
func (m Material) Depth() float64          { return m.depth }

// ScaledModulus is the modulus in MPa.
func (m Material) ScaledModulus() float64 { return m.e * ModulusScale }

// Area is the undeformed cross-section, width times depth.
func (m Material) Area() float64 { return m.width * m.depth }

// IsZero reports whether m was never built through New.
func (m Material) IsZero() bool { return m == Material{} }

func (m Material) String() string {
	return fmt.Sprintf("%s (E=%g GPa, σy=%g MPa, %gx%gx%g mm)", m.name, m.e, m.sigmaY, m.width, m.height, m.depth)
}
