package heatmap

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"
)

// Colormap maps a normalized value in [0, 1] to a color.
type Colormap interface {
	At(t float64) color.NRGBA
	Name() string
}

// Norm linearly maps data values onto [0, 1].
type Norm struct {
	Vmin float64
	Vmax float64
}

// Scale normalizes v, clamping to [0, 1]. Equal bounds map everything to 0.
func (n Norm) Scale(v float64) float64 {
	if n.Vmax == n.Vmin {
		return 0
	}
	t := (v - n.Vmin) / (n.Vmax - n.Vmin)
	if math.IsInf(n.Vmax-n.Vmin, 0) {
		// the span overflows; halve both sides
		t = (v/2 - n.Vmin/2) / (n.Vmax/2 - n.Vmin/2)
	}
	return math.Max(0, math.Min(1, t))
}

// Valid reports whether both bounds are finite numbers.
func (n Norm) Valid() bool {
	return !math.IsNaN(n.Vmin) && !math.IsNaN(n.Vmax) && !math.IsInf(n.Vmin, 0) && !math.IsInf(n.Vmax, 0)
}

// Mappable is a colormap with the norm that feeds it; a colorbar draws one.
type Mappable struct {
	Cmap Colormap
	Norm Norm
}

// Color returns the color of data value v.
func (m Mappable) Color(v float64) color.NRGBA {
	return m.Cmap.At(m.Norm.Scale(v))
}

// Gradient interpolates linearly between evenly spaced color stops.
type Gradient struct {
	name  string
	stops []color.NRGBA
}

// NewGradient builds a gradient from at least two hex or named colors.
func NewGradient(name string, colors ...string) (*Gradient, error) {
	if len(colors) < 2 {
		return nil, fmt.Errorf("gradient %q needs at least two colors", name)
	}
	g := &Gradient{name: name}
	for _, s := range colors {
		c, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("gradient %q: %w", name, err)
		}
		g.stops = append(g.stops, c)
	}
	return g, nil
}

func (g *Gradient) Name() string { return g.name }

func (g *Gradient) At(t float64) color.NRGBA {
	if math.IsNaN(t) {
		return Transparent
	}
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(g.stops)-1)
	i := int(pos)
	if i >= len(g.stops)-1 {
		return g.stops[len(g.stops)-1]
	}
	f := pos - float64(i)
	a, b := g.stops[i], g.stops[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

// Reversed returns the gradient with its stops in opposite order.
func (g *Gradient) Reversed() *Gradient {
	r := &Gradient{name: g.name + "_r", stops: make([]color.NRGBA, len(g.stops))}
	for i, c := range g.stops {
		r.stops[len(g.stops)-1-i] = c
	}
	return r
}

// Listed picks one of a fixed set of colors, splitting [0, 1] into equal bins.
type Listed struct {
	colors []color.NRGBA
}

// NewListed builds a listed colormap.
func NewListed(colors ...color.NRGBA) *Listed {
	return &Listed{colors: colors}
}

func (l *Listed) Name() string { return "listed" }

func (l *Listed) At(t float64) color.NRGBA {
	if len(l.colors) == 0 || math.IsNaN(t) {
		return Transparent
	}
	i := int(t * float64(len(l.colors)))
	if i >= len(l.colors) {
		i = len(l.colors) - 1
	}
	if i < 0 {
		i = 0
	}
	return l.colors[i]
}

var colormapStops = map[string][]string{
	"viridis":  {"#440154", "#482475", "#414487", "#355f8d", "#2a788e", "#21918c", "#22a884", "#44bf70", "#7ad151", "#bddf26", "#fde725"},
	"plasma":   {"#0d0887", "#5302a3", "#8b0aa5", "#b83289", "#db5c68", "#f48849", "#febd2a", "#f0f921"},
	"magma":    {"#000004", "#2c115f", "#721f81", "#b73779", "#f1605d", "#feb078", "#fcfdbf"},
	"inferno":  {"#000004", "#320a5e", "#781c6d", "#bc3754", "#ed6925", "#fbb61a", "#fcffa4"},
	"cividis":  {"#00224e", "#35456c", "#666970", "#948e77", "#c8b866", "#fee838"},
	"YlGn":     {"#ffffe5", "#f7fcb9", "#d9f0a3", "#addd8e", "#78c679", "#41ab5d", "#238443", "#006837", "#004529"},
	"Greens":   {"#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#006d2c", "#00441b"},
	"Blues":    {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	"Reds":     {"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"},
	"Greys":    {"#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000"},
	"RdYlGn":   {"#a50026", "#d73027", "#f46d43", "#fdae61", "#fee08b", "#ffffbf", "#d9ef8b", "#a6d96a", "#66bd63", "#1a9850", "#006837"},
	"coolwarm": {"#3b4cc0", "#6788ee", "#9abbff", "#c9d7f0", "#edd1c2", "#f7a889", "#e26952", "#b40426"},
}

// DefaultColormap is used when no colormap is named.
const DefaultColormap = "viridis"

// LookupColormap returns a named colormap. A "_r" suffix reverses it.
// Names match case-insensitively.
func LookupColormap(name string) (Colormap, error) {
	if name == "" {
		name = DefaultColormap
	}
	base, reversed := strings.CutSuffix(name, "_r")

	for key, stops := range colormapStops {
		if !strings.EqualFold(key, base) {
			continue
		}
		g, err := NewGradient(key, stops...)
		if err != nil {
			return nil, err
		}
		if reversed {
			return g.Reversed(), nil
		}
		return g, nil
	}
	return nil, fmt.Errorf("unknown colormap %q", name)
}

// Colormaps lists the registered colormap names, sorted.
func Colormaps() []string {
	names := make([]string, 0, len(colormapStops))
	for name := range colormapStops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
