package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrTooFewPoints is returned for a curve with fewer than two points.
var ErrTooFewPoints = errors.New("export: need at least two points")

type Point struct{ X, Y float64 }

// Curve is a single line chart, such as force against deformation.
type Curve struct {
	Title  string
	XLabel string
	YLabel string
	Points []Point
	Width  int
	Height int
	Stroke string
}

// XY zips two series into points, truncating to the shorter one.
func XY(xs, ys []float64) []Point {
	n := min(len(xs), len(ys))
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return points
}

func bounds(points []Point) (minX, maxX, minY, maxY float64) {
	minX, maxX = points[0].X, points[0].X
	minY, maxY = points[0].Y, points[0].Y
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	return
}

const margin = 40

// WriteSVG renders the curve with its axes anchored at zero load.
func (c Curve) WriteSVG(w io.Writer) error {
	if len(c.Points) < 2 {
		return ErrTooFewPoints
	}
	width, height := c.Width, c.Height
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 400
	}
	stroke := c.Stroke
	if stroke == "" {
		stroke = "#00ff00"
	}

	minX, maxX, minY, maxY := bounds(c.Points)
	minX = min(minX, 0)
	minY = min(minY, 0)
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	plotW := float64(width - 2*margin)
	plotH := float64(height - 2*margin)
	px := func(x float64) float64 { return margin + (x-minX)/rangeX*plotW }
	py := func(y float64) float64 { return margin + plotH - (y-minY)/rangeY*plotH }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	sb.WriteString(fmt.Sprintf(`<g stroke="#666666" stroke-width="1">
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
</g>
`, px(minX), py(minY), px(maxX), py(minY), px(minX), py(minY), px(minX), py(maxY)))

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
	for i, p := range c.Points {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(p.X), py(p.Y)))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(p.X), py(p.Y)))
		}
	}
	sb.WriteString("\"/>\n")

	sb.WriteString(`<g fill="#cccccc" font-family="monospace" font-size="12">` + "\n")
	if c.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" text-anchor="middle">%s</text>`+"\n", width/2, escape(c.Title)))
	}
	if c.XLabel != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" text-anchor="middle">%s</text>`+"\n", width/2, height-10, escape(c.XLabel)))
	}
	if c.YLabel != "" {
		sb.WriteString(fmt.Sprintf(`<text x="12" y="%d" transform="rotate(-90 12 %d)" text-anchor="middle">%s</text>`+"\n",
			height/2, height/2, escape(c.YLabel)))
	}
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="end">%.4g</text>`+"\n", px(minX)-4, py(maxY)+4, maxY))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="end">%.4g</text>`+"\n", px(maxX), py(minY)+16, maxX))
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
