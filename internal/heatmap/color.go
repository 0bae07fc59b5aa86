package heatmap

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Transparent is the fully transparent color.
var Transparent = color.NRGBA{}

// ParseColor accepts SVG color names ("whitesmoke", "gray"), hex forms
// #rgb, #rrggbb and #rrggbbaa, and "none" or "transparent".
func ParseColor(s string) (color.NRGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "none", "transparent":
		return Transparent, nil
	case "":
		return Transparent, fmt.Errorf("empty color")
	}

	if strings.HasPrefix(name, "#") {
		return parseHex(name[1:])
	}
	if c, ok := colornames.Map[name]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return Transparent, fmt.Errorf("unknown color %q", s)
}

// MustParseColor is ParseColor for literals known to be valid.
func MustParseColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(h string) (color.NRGBA, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Transparent, fmt.Errorf("invalid hex color #%s", h)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Transparent, fmt.Errorf("invalid hex color #%s: %w", h, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// withAlpha scales the alpha channel of c by a in [0, 1].
func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(float64(c.A)*a + 0.5)
	return c
}

func isTransparent(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a == 0
}
