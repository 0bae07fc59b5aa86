// Package heatmap draws calendar heatmaps onto raster figures.
//
// A Figure holds one or more Axes placed in figure fractions; YearPlot draws
// one calendar year onto an Axes and CalPlot stacks one panel per year.
// Nothing is rasterized until the figure is rendered.
package heatmap

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// DefaultDPI is the pixel density figures render at unless changed.
const DefaultDPI = 100

// MaxPixels caps the canvas a figure may allocate, width times height.
const MaxPixels = 1 << 26

// ErrFigureTooLarge is returned for figures whose canvas exceeds MaxPixels.
var ErrFigureTooLarge = errors.New("figure too large")

// checkCanvas rejects a width x height inch figure at dpi that would
// exceed MaxPixels.
func checkCanvas(width, height, dpi float64) error {
	w, h := width*dpi, height*dpi
	if w*h > MaxPixels {
		return fmt.Errorf("%w: %.0fx%.0f px exceeds %d pixels", ErrFigureTooLarge, w, h, MaxPixels)
	}
	return nil
}

// Rect is a rectangle in figure fractions with its origin at the bottom left.
type Rect struct {
	Left   float64
	Bottom float64
	Width  float64
	Height float64
}

// SubplotParams positions stacked panels, in figure fractions.
type SubplotParams struct {
	Left   float64
	Right  float64
	Bottom float64
	Top    float64
	HSpace float64 // gap between panels as a fraction of panel height
}

// DefaultSubplotParams returns the margins used before any layout pass.
func DefaultSubplotParams() SubplotParams {
	return SubplotParams{Left: 0.125, Right: 0.9, Bottom: 0.11, Top: 0.88, HSpace: 0.2}
}

// TextStyle describes how a piece of text is drawn. Size is in points.
type TextStyle struct {
	Size  float64
	Color color.NRGBA
	Bold  bool
}

// Figure is an image-sized drawing surface holding one or more Axes. Nothing
// is drawn until Render; axes can be adjusted freely before that.
type Figure struct {
	Width      float64 // inches
	Height     float64 // inches
	DPI        float64
	Background color.NRGBA

	axes      []*Axes
	subplots  []*Axes
	params    SubplotParams
	colorbars []*colorbar

	title      string
	titleStyle TextStyle
}

// NewFigure creates a figure of the given size in inches.
func NewFigure(width, height float64) *Figure {
	return &Figure{
		Width:      width,
		Height:     height,
		DPI:        DefaultDPI,
		Background: MustParseColor("white"),
		params:     DefaultSubplotParams(),
		titleStyle: TextStyle{Size: 12, Color: MustParseColor("black")},
	}
}

// PixelSize returns the rendered image size.
func (f *Figure) PixelSize() (int, int) {
	return int(f.Width*f.DPI + 0.5), int(f.Height*f.DPI + 0.5)
}

// points converts a length in points to pixels.
func (f *Figure) points(pt float64) float64 {
	return pt * f.DPI / 72
}

// AddAxes adds a free-standing axes at rect.
func (f *Figure) AddAxes(rect Rect) *Axes {
	ax := newAxes(f, rect)
	f.axes = append(f.axes, ax)
	return ax
}

// Subplots adds n axes stacked in a single column, top to bottom.
func (f *Figure) Subplots(n int) []*Axes {
	out := make([]*Axes, n)
	for i := range out {
		out[i] = f.AddAxes(Rect{})
	}
	f.subplots = append(f.subplots, out...)
	f.layoutSubplots()
	return out
}

// Axes returns every axes on the figure, in creation order.
func (f *Figure) Axes() []*Axes { return f.axes }

// SubplotParams returns the current panel margins.
func (f *Figure) SubplotParams() SubplotParams { return f.params }

// SubplotsAdjust repositions the stacked panels.
func (f *Figure) SubplotsAdjust(p SubplotParams) {
	f.params = p
	f.layoutSubplots()
}

func (f *Figure) layoutSubplots() {
	n := len(f.subplots)
	if n == 0 {
		return
	}
	p := f.params
	h := (p.Top - p.Bottom) / (float64(n) + p.HSpace*float64(n-1))
	gap := h * p.HSpace
	for i, ax := range f.subplots {
		top := p.Top - float64(i)*(h+gap)
		ax.rect = Rect{Left: p.Left, Bottom: top - h, Width: p.Right - p.Left, Height: h}
	}
}

// SetTitle sets the overall figure title. An empty string removes it.
func (f *Figure) SetTitle(title string, style *TextStyle) {
	f.title = title
	if style != nil {
		f.titleStyle = *style
	}
}

// Title returns the figure title.
func (f *Figure) Title() string { return f.title }

// Colorbar draws m as a vertical bar filling cax.
func (f *Figure) Colorbar(m Mappable, cax *Axes) {
	cax.equal = false
	cax.isCax = true
	f.colorbars = append(f.colorbars, &colorbar{mappable: m, cax: cax})
}

// ColorbarBeside draws m as a vertical bar to the right of parent, matching
// its height.
func (f *Figure) ColorbarBeside(m Mappable, parent *Axes) {
	cb := &colorbar{mappable: m, parent: parent}
	parent.beside = cb
	f.colorbars = append(f.colorbars, cb)
}

// HasColorbar reports whether any colorbar was added.
func (f *Figure) HasColorbar() bool { return len(f.colorbars) > 0 }

// TightLayout shrinks the panel margins to just fit tick labels, year
// labels and the title.
func (f *Figure) TightLayout() error {
	if len(f.subplots) == 0 {
		return nil
	}

	pw, ph := f.PixelSize()
	fw, fh := float64(pw), float64(ph)
	border := f.points(1.08 * 10)

	var leftPx, rightPx, xTickPx float64
	for _, ax := range f.subplots {
		ext, err := ax.labelExtents()
		if err != nil {
			return err
		}
		leftPx = max(leftPx, ext.left)
		rightPx = max(rightPx, ext.right)
		xTickPx = max(xTickPx, ext.bottom)
	}

	topPx := border
	if f.title != "" {
		face, err := fontFace(f.titleStyle.Size, f.DPI, f.titleStyle.Bold)
		if err != nil {
			return err
		}
		_, th := textExtent(face, f.title)
		topPx += th + f.points(4)
	}

	left := (border + leftPx) / fw
	right := 1 - (border+rightPx)/fw
	bottom := (border + xTickPx) / fh
	top := 1 - topPx/fh

	n := float64(len(f.subplots))
	gapPx := xTickPx + f.points(4)
	usable := (top - bottom) * fh
	panelPx := (usable - gapPx*(n-1)) / n
	hspace := 0.0
	if panelPx > 0 {
		hspace = gapPx / panelPx
	}

	if right <= left || top <= bottom {
		return fmt.Errorf("figure %.1fx%.1f in is too small for its labels", f.Width, f.Height)
	}

	f.SubplotsAdjust(SubplotParams{Left: left, Right: right, Bottom: bottom, Top: top, HSpace: hspace})
	return nil
}

// renderer carries the drawing context and caches font faces for one render.
type renderer struct {
	dc    *gg.Context
	dpi   float64
	faces map[TextStyle]font.Face
}

func (r *renderer) face(style TextStyle) (font.Face, error) {
	key := TextStyle{Size: style.Size, Bold: style.Bold}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	f, err := fontFace(style.Size, r.dpi, style.Bold)
	if err != nil {
		return nil, err
	}
	r.faces[key] = f
	return f, nil
}

func (r *renderer) points(pt float64) float64 {
	return pt * r.dpi / 72
}

// text draws s anchored at (x, y) in pixels; ax and ay follow gg's anchor
// convention.
func (r *renderer) text(s string, x, y, ax, ay float64, style TextStyle) error {
	face, err := r.face(style)
	if err != nil {
		return err
	}
	r.dc.SetFontFace(face)
	r.dc.SetColor(style.Color)
	r.dc.DrawStringAnchored(s, x, y, ax, ay)
	return nil
}

// Render draws the figure onto a new gg context.
func (f *Figure) Render() (*gg.Context, error) {
	if err := checkCanvas(f.Width, f.Height, f.DPI); err != nil {
		return nil, err
	}
	w, h := f.PixelSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid figure size %dx%d px", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(f.Background)
	dc.Clear()

	r := &renderer{dc: dc, dpi: f.DPI, faces: make(map[TextStyle]font.Face)}
	for _, ax := range f.axes {
		if ax.isColorbarAxes() {
			continue
		}
		if err := ax.render(r); err != nil {
			return nil, err
		}
	}
	for _, cb := range f.colorbars {
		if err := cb.render(r); err != nil {
			return nil, err
		}
	}

	if f.title != "" {
		x := 0.5
		if len(f.subplots) > 0 {
			x = (f.params.Left + f.params.Right) / 2
		}
		if err := r.text(f.title, x*float64(w), 0.02*float64(h), 0.5, 1, f.titleStyle); err != nil {
			return nil, err
		}
	}

	return dc, nil
}

// Image renders the figure to an image.
func (f *Figure) Image() (image.Image, error) {
	dc, err := f.Render()
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// EncodePNG renders the figure and writes it as PNG.
func (f *Figure) EncodePNG(w io.Writer) error {
	dc, err := f.Render()
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// PNG renders the figure and returns the PNG bytes.
func (f *Figure) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG renders the figure to a PNG file.
func (f *Figure) SavePNG(path string) error {
	dc, err := f.Render()
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save PNG %s: %w", path, err)
	}
	return nil
}
