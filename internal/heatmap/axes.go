package heatmap

import (
	"image/color"
	"math"
	"sort"

	"github.com/christophergentle/calplot/internal/calendar"
	"golang.org/x/image/font"
)

// Tick is a labelled position along an axis, in data coordinates.
type Tick struct {
	Pos   float64
	Label string
}

// Axes is a rectangular region of a figure with its own data coordinates.
// Data y grows upwards. With equal aspect one data unit is the same number
// of pixels on both axes and the drawing box is centered in the region.
type Axes struct {
	fig  *Figure
	rect Rect

	Facecolor color.NRGBA
	TickStyle TextStyle

	xlim  [2]float64
	ylim  [2]float64
	equal bool

	artists []artist
	xticks  []Tick
	yticks  []Tick

	ylabel      string
	ylabelStyle TextStyle

	grid     *calendar.Grid
	mappable *Mappable
	outlines []calendar.Polygon

	beside *colorbar
	isCax  bool
}

func newAxes(f *Figure, rect Rect) *Axes {
	return &Axes{
		fig:       f,
		rect:      rect,
		Facecolor: MustParseColor("white"),
		TickStyle: TextStyle{Size: 10, Color: MustParseColor("black")},
		xlim:      [2]float64{0, 1},
		ylim:      [2]float64{0, 1},
	}
}

// Figure returns the figure the axes belong to.
func (ax *Axes) Figure() *Figure { return ax.fig }

// Rect returns the axes region in figure fractions.
func (ax *Axes) Rect() Rect { return ax.rect }

func (ax *Axes) XLim() (float64, float64) { return ax.xlim[0], ax.xlim[1] }
func (ax *Axes) YLim() (float64, float64) { return ax.ylim[0], ax.ylim[1] }

func (ax *Axes) SetXLim(lo, hi float64) { ax.xlim = [2]float64{lo, hi} }
func (ax *Axes) SetYLim(lo, hi float64) { ax.ylim = [2]float64{lo, hi} }

// SetAspectEqual makes data units square.
func (ax *Axes) SetAspectEqual(equal bool) { ax.equal = equal }

func (ax *Axes) SetXTicks(ticks []Tick) { ax.xticks = ticks }
func (ax *Axes) SetYTicks(ticks []Tick) { ax.yticks = ticks }
func (ax *Axes) XTicks() []Tick         { return ax.xticks }
func (ax *Axes) YTicks() []Tick         { return ax.yticks }

// SetYLabel sets the rotated label drawn left of the axes.
func (ax *Axes) SetYLabel(label string, style TextStyle) {
	ax.ylabel = label
	ax.ylabelStyle = style
}

// YLabel returns the rotated label.
func (ax *Axes) YLabel() string { return ax.ylabel }

// Grid returns the calendar grid drawn by the last YearPlot, or nil.
func (ax *Axes) Grid() *calendar.Grid { return ax.grid }

// Mappable returns the color scale of the last YearPlot, or nil.
func (ax *Axes) Mappable() *Mappable { return ax.mappable }

// Outlines returns the month outlines drawn by the last YearPlot.
func (ax *Axes) Outlines() []calendar.Polygon { return ax.outlines }

func (ax *Axes) add(a artist) { ax.artists = append(ax.artists, a) }

func (ax *Axes) isColorbarAxes() bool { return ax.isCax }

// box is the pixel rectangle the data extent is drawn into.
type box struct {
	X, Y, W, H float64 // Y is the top edge in pixels
	sx, sy     float64
	x0, y0     float64
}

func (b box) px(x float64) float64 { return b.X + (x-b.x0)*b.sx }
func (b box) py(y float64) float64 { return b.Y + b.H - (y-b.y0)*b.sy }

func (ax *Axes) pixelRect() (x, y, w, h float64) {
	pw, ph := ax.fig.PixelSize()
	fw, fh := float64(pw), float64(ph)
	r := ax.rect
	return r.Left * fw, (1 - r.Bottom - r.Height) * fh, r.Width * fw, r.Height * fh
}

func (ax *Axes) box() box {
	x, y, w, h := ax.pixelRect()
	dx := ax.xlim[1] - ax.xlim[0]
	dy := ax.ylim[1] - ax.ylim[0]
	b := box{X: x, Y: y, W: w, H: h, x0: ax.xlim[0], y0: ax.ylim[0]}
	if dx <= 0 || dy <= 0 {
		return b
	}

	if ax.equal {
		s := math.Min(w/dx, h/dy)
		b.W, b.H = dx*s, dy*s
		b.X = x + (w-b.W)/2
		b.Y = y + (h-b.H)/2
	}
	b.sx = b.W / dx
	b.sy = b.H / dy
	return b
}

const (
	tickPadPt  = 3.5
	labelPadPt = 4
)

func maxWidth(face font.Face, labels []string) float64 {
	w := 0.0
	for _, s := range labels {
		lw, _ := textExtent(face, s)
		w = math.Max(w, lw)
	}
	return w
}

func tickLabels(ticks []Tick) []string {
	out := make([]string, len(ticks))
	for i, t := range ticks {
		out[i] = t.Label
	}
	return out
}

type extents struct {
	left, right, bottom float64
}

// labelExtents measures how far decorations reach outside the axes box.
func (ax *Axes) labelExtents() (extents, error) {
	var ext extents
	dpi := ax.fig.DPI
	face, err := fontFace(ax.TickStyle.Size, dpi, ax.TickStyle.Bold)
	if err != nil {
		return ext, err
	}

	if len(ax.yticks) > 0 {
		ext.right = ax.fig.points(tickPadPt) + maxWidth(face, tickLabels(ax.yticks))
	}
	if len(ax.xticks) > 0 {
		_, h := textExtent(face, "0")
		ext.bottom = ax.fig.points(tickPadPt) + h
	}
	if ax.ylabel != "" {
		lf, err := fontFace(ax.ylabelStyle.Size, dpi, ax.ylabelStyle.Bold)
		if err != nil {
			return ext, err
		}
		_, h := textExtent(lf, ax.ylabel)
		ext.left = ax.fig.points(labelPadPt) + h
	}
	if ax.beside != nil {
		w, err := ax.beside.footprint(ax.fig)
		if err != nil {
			return ext, err
		}
		ext.right += w
	}
	return ext, nil
}

func (ax *Axes) render(r *renderer) error {
	b := ax.box()

	if !isTransparent(ax.Facecolor) {
		r.dc.SetColor(ax.Facecolor)
		r.dc.DrawRectangle(b.X, b.Y, b.W, b.H)
		r.dc.Fill()
	}

	artists := make([]artist, len(ax.artists))
	copy(artists, ax.artists)
	sort.SliceStable(artists, func(i, j int) bool {
		return artists[i].zorder() < artists[j].zorder()
	})

	for _, a := range artists {
		if a.clipped() {
			r.dc.DrawRectangle(b.X, b.Y, b.W, b.H)
			r.dc.Clip()
		}
		err := a.draw(r, b)
		r.dc.ResetClip()
		if err != nil {
			return err
		}
	}

	return ax.renderLabels(r, b)
}

func (ax *Axes) renderLabels(r *renderer, b box) error {
	pad := r.points(tickPadPt)

	for _, t := range ax.xticks {
		if t.Pos < ax.xlim[0] || t.Pos > ax.xlim[1] {
			continue
		}
		if err := r.text(t.Label, b.px(t.Pos), b.Y+b.H+pad, 0.5, 1, ax.TickStyle); err != nil {
			return err
		}
	}
	for _, t := range ax.yticks {
		if t.Pos < ax.ylim[0] || t.Pos > ax.ylim[1] {
			continue
		}
		if err := r.text(t.Label, b.X+b.W+pad, b.py(t.Pos), 0, 0.5, ax.TickStyle); err != nil {
			return err
		}
	}

	if ax.ylabel != "" {
		face, err := r.face(ax.ylabelStyle)
		if err != nil {
			return err
		}
		_, h := textExtent(face, ax.ylabel)
		x := b.X - r.points(labelPadPt) - h/2
		y := b.Y + b.H/2

		r.dc.Push()
		r.dc.RotateAbout(-math.Pi/2, x, y)
		err = r.text(ax.ylabel, x, y, 0.5, 0.5, ax.ylabelStyle)
		r.dc.Pop()
		if err != nil {
			return err
		}
	}
	return nil
}

// yTickWidth is the pixel width taken by the right hand tick labels.
func (ax *Axes) yTickWidth(r *renderer) (float64, error) {
	if len(ax.yticks) == 0 {
		return 0, nil
	}
	face, err := r.face(ax.TickStyle)
	if err != nil {
		return 0, err
	}
	return r.points(tickPadPt) + maxWidth(face, tickLabels(ax.yticks)), nil
}
