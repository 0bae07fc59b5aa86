package heatmap

import (
	"image/color"
	"math"

	"github.com/christophergentle/calplot/internal/calendar"
)

// Draw order of the artists a year plot adds.
const (
	zFill    = 0
	zData    = 1
	zText    = 3
	zOutline = 20
)

type artist interface {
	zorder() int
	clipped() bool
	draw(r *renderer, b box) error
}

// mesh fills unit cells; values[r][c] covers x in [c, c+1] and y in [r, r+1].
// NaN cells are skipped.
type mesh struct {
	z        int
	values   [][]float64
	mappable Mappable

	alpha     float64
	lineWidth float64 // points
	edge      color.NRGBA
	dash      []float64
}

func (m *mesh) zorder() int   { return m.z }
func (m *mesh) clipped() bool { return true }

func (m *mesh) each(fn func(row, col int, v float64)) {
	for r, row := range m.values {
		for c, v := range row {
			if !math.IsNaN(v) {
				fn(r, c, v)
			}
		}
	}
}

func (m *mesh) draw(r *renderer, b box) error {
	dc := r.dc
	m.each(func(row, col int, v float64) {
		x0, y0 := b.px(float64(col)), b.py(float64(row+1))
		x1, y1 := b.px(float64(col+1)), b.py(float64(row))
		dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
		dc.SetColor(withAlpha(m.mappable.Color(v), m.alpha))
		dc.Fill()
	})

	if m.lineWidth <= 0 || isTransparent(m.edge) {
		return nil
	}
	dc.SetColor(m.edge)
	dc.SetLineWidth(r.points(m.lineWidth))
	if len(m.dash) > 0 {
		dashes := make([]float64, len(m.dash))
		for i, d := range m.dash {
			dashes[i] = r.points(d)
		}
		dc.SetDash(dashes...)
	}
	m.each(func(row, col int, _ float64) {
		x0, y0 := b.px(float64(col)), b.py(float64(row+1))
		x1, y1 := b.px(float64(col+1)), b.py(float64(row))
		dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
		dc.Stroke()
	})
	dc.SetDash()
	return nil
}

// label is text centered on a data position.
type label struct {
	x, y  float64
	text  string
	style TextStyle
}

func (l *label) zorder() int   { return zText }
func (l *label) clipped() bool { return false }

func (l *label) draw(r *renderer, b box) error {
	if l.text == "" {
		return nil
	}
	return r.text(l.text, b.px(l.x), b.py(l.y), 0.5, 0.5, l.style)
}

// outline strokes a month polygon. It is not clipped to the axes box.
type outline struct {
	poly      calendar.Polygon
	edge      color.NRGBA
	lineWidth float64 // points
}

func (o *outline) zorder() int   { return zOutline }
func (o *outline) clipped() bool { return false }

func (o *outline) draw(r *renderer, b box) error {
	if o.lineWidth <= 0 || isTransparent(o.edge) {
		return nil
	}
	dc := r.dc
	dc.NewSubPath()
	for i, p := range o.poly {
		if i == 0 {
			dc.MoveTo(b.px(p.X), b.py(p.Y))
			continue
		}
		dc.LineTo(b.px(p.X), b.py(p.Y))
	}
	dc.ClosePath()
	dc.SetColor(o.edge)
	dc.SetLineWidth(r.points(o.lineWidth))
	dc.Stroke()
	return nil
}
