package viz

import (
	"math"

	"github.com/san-kum/presssim/internal/material"
	"github.com/san-kum/presssim/internal/press"
)

// scene maps machine coordinates onto canvas dots. Machine y grows
// downwards, like the canvas, and x is measured from the press centre line.
type scene struct {
	canvas  *Canvas
	machine press.Machine
	top     float64
	k       float64
	cx      int
}

// newScene frames the view so the crosshead stays visible for the whole
// test, including a tensile specimen stretched to its breaking length.
func newScene(c *Canvas, m press.Machine, mat material.Material, kind press.Kind) scene {
	ph := m.PlatenHeight * m.Scale
	top := m.CrossheadHome
	if !mat.IsZero() {
		tallest := mat.Height()
		if kind == press.Tensile {
			tallest *= 1 + press.BreakFactor
		}
		top = min(top, m.CrossheadFor(tallest))
	}
	top -= ph
	bottom := m.PlatenY + ph

	return scene{
		canvas:  c,
		machine: m,
		top:     top,
		k:       float64(c.PixelHeight()) / (bottom - top),
		cx:      c.PixelWidth() / 2,
	}
}

func (s scene) y(world float64) int  { return int(math.Round((world - s.top) * s.k)) }
func (s scene) dx(world float64) int { return int(math.Round(world * s.k / 2)) }

// draw renders the frame, platen, crosshead and, when dims are non-zero, the
// specimen standing on the platen.
func (s scene) draw(crossheadY, height, width float64) {
	c := s.canvas
	m := s.machine
	w := c.PixelWidth()
	ph := m.PlatenHeight * m.Scale

	c.Clear()

	// frame: top beam and two columns
	c.FillRect(0, 0, w, 2)
	c.FillRect(0, 0, 2, c.PixelHeight())
	c.FillRect(w-2, 0, w, c.PixelHeight())

	// platen
	c.FillRect(3, s.y(m.PlatenY), w-3, s.y(m.PlatenY+ph))

	// crosshead on its lead screw
	c.StrokeRect(3, s.y(crossheadY), w-3, s.y(crossheadY+ph))
	c.FillRect(s.cx-1, 2, s.cx+1, s.y(crossheadY))

	if height <= 0 || width <= 0 {
		return
	}
	half := max(s.dx(width*m.Scale), 1)
	c.FillRect(s.cx-half, s.y(m.PlatenY-height*m.Scale), s.cx+half, s.y(m.PlatenY))
}
