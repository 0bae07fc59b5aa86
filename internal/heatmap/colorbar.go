package heatmap

import (
	"math"
	"strconv"
)

const (
	colorbarWidthPt = 10
	colorbarPadPt   = 10
	colorbarTicks   = 6
)

// colorbar draws a mappable as a vertical gradient with value ticks. It
// either fills its own axes or sits to the right of a parent's labels.
type colorbar struct {
	mappable Mappable
	cax      *Axes
	parent   *Axes
}

func (cb *colorbar) tickStyle() TextStyle {
	return TextStyle{Size: 10, Color: MustParseColor("black")}
}

func (cb *colorbar) ticks() ([]float64, float64) {
	n := cb.mappable.Norm
	if !n.Valid() {
		return nil, 0
	}
	return niceTicks(n.Vmin, n.Vmax, colorbarTicks)
}

func (cb *colorbar) labels() []string {
	vals, step := cb.ticks()
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = formatTick(v, step)
	}
	return out
}

// footprint is the width a parent-attached colorbar needs beyond the parent's
// tick labels.
func (cb *colorbar) footprint(f *Figure) (float64, error) {
	style := cb.tickStyle()
	face, err := fontFace(style.Size, f.DPI, style.Bold)
	if err != nil {
		return 0, err
	}
	return f.points(colorbarPadPt+colorbarWidthPt+2*tickPadPt) + maxWidth(face, cb.labels()), nil
}

func (cb *colorbar) bounds(r *renderer) (x, y, w, h float64, err error) {
	if cb.cax != nil {
		x, y, w, h = cb.cax.pixelRect()
		return x, y, w, h, nil
	}
	b := cb.parent.box()
	tw, err := cb.parent.yTickWidth(r)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return b.X + b.W + tw + r.points(colorbarPadPt), b.Y, r.points(colorbarWidthPt), b.H, nil
}

func (cb *colorbar) render(r *renderer) error {
	x, y, w, h, err := cb.bounds(r)
	if err != nil {
		return err
	}
	if w <= 0 || h <= 0 {
		return nil
	}

	dc := r.dc
	top, bottom := int(math.Round(y)), int(math.Round(y+h))
	rows := bottom - top
	for py := top; py < bottom; py++ {
		t := 1 - (float64(py-top)+0.5)/float64(rows)
		dc.SetColor(cb.mappable.Cmap.At(t))
		dc.DrawRectangle(x, float64(py), w, 1)
		dc.Fill()
	}

	black := MustParseColor("black")
	dc.SetColor(black)
	dc.SetLineWidth(r.points(0.8))
	dc.DrawRectangle(x, float64(top), w, float64(rows))
	dc.Stroke()

	vals, step := cb.ticks()
	style := cb.tickStyle()
	tick := r.points(tickPadPt)
	for _, v := range vals {
		py := float64(bottom) - cb.mappable.Norm.Scale(v)*float64(rows)
		dc.SetColor(black)
		dc.DrawLine(x+w, py, x+w+tick, py)
		dc.Stroke()
		if err := r.text(formatTick(v, step), x+w+2*tick, py, 0, 0.5, style); err != nil {
			return err
		}
	}
	return nil
}

// niceTicks returns round values covering [lo, hi] with at most about n
// ticks, and the step between them. Ranges too wide for float64 fall back
// to the two endpoints.
func niceTicks(lo, hi float64, n int) ([]float64, float64) {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo || n < 2 {
		return []float64{lo}, 0
	}

	span := hi - lo
	if !finite(span) {
		return []float64{lo, hi}, 0
	}
	step := niceStep(span / float64(n-1))
	start := math.Ceil(lo/step-1e-9) * step
	if !finite(step) || step <= 0 || !finite(start) {
		return []float64{lo, hi}, 0
	}

	var out []float64
	for i := 0; i <= 4*n; i++ {
		v := start + float64(i)*step
		if v > hi+step*1e-9 {
			break
		}
		out = append(out, math.Round(v/step)*step)
	}
	return out, step
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func niceStep(raw float64) float64 {
	exp := math.Floor(math.Log10(raw))
	base := math.Pow(10, exp)
	f := raw / base
	switch {
	case f <= 1:
		return base
	case f <= 2:
		return 2 * base
	case f <= 2.5:
		return 2.5 * base
	case f <= 5:
		return 5 * base
	default:
		return 10 * base
	}
}

// formatTick prints v with just enough decimals to tell ticks step apart.
func formatTick(v, step float64) string {
	prec := 0
	if step > 0 {
		for prec < 10 {
			scaled := step * math.Pow(10, float64(prec))
			if math.Abs(scaled-math.Round(scaled)) < 1e-6 {
				break
			}
			prec++
		}
	} else if v != math.Trunc(v) {
		return strconv.FormatFloat(v, 'g', 6, 64)
	}
	if math.Abs(v) >= 1e15 {
		return strconv.FormatFloat(v, 'g', 6, 64)
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if s == "-0" {
		s = "0"
	}
	return s
}
