package palette

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Fallback is used for unparseable palette entries.
var Fallback = color.RGBA{R: 0xF5, G: 0xF1, B: 0xE8, A: 0xFF}

// Default is the palette used when a scene supplies none.
var Default = []string{"#f5f1e8", "#ff6b4a", "#2b2d42", "#8d99ae"}

// Parse converts a hex string ("#rrggbb", "#rgb") or CSS color name into
// an opaque RGBA. Invalid input yields Fallback.
func Parse(s string) color.RGBA {
	c, ok := Lookup(s)
	if !ok {
		return Fallback
	}
	return c
}

// Lookup is Parse with an explicit validity flag.
func Lookup(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, false
	}
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(expandShortHex(s))
		if err != nil {
			return color.RGBA{}, false
		}
		return toRGBA(c), true
	}
	if named, ok := colornames.Map[strings.ToLower(s)]; ok {
		return named, true
	}
	return color.RGBA{}, false
}

// Valid reports whether s parses as a color.
func Valid(s string) bool {
	_, ok := Lookup(s)
	return ok
}

func expandShortHex(s string) string {
	if len(s) != 4 {
		return s
	}
	var b strings.Builder
	b.WriteByte('#')
	for i := 1; i < 4; i++ {
		b.WriteByte(s[i])
		b.WriteByte(s[i])
	}
	return b.String()
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// Blend mixes a and b in Lab space; t is clamped to [0,1].
func Blend(a, b color.RGBA, t float64) color.RGBA {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	ca, _ := colorful.MakeColor(opaque(a))
	cb, _ := colorful.MakeColor(opaque(b))
	return toRGBA(ca.BlendLab(cb, t))
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 0xFF
	return c
}

// Pick returns the i-th palette entry, wrapping around. An empty palette
// falls back to Default.
func Pick(p []string, i int) color.RGBA {
	if len(p) == 0 {
		p = Default
	}
	if i < 0 {
		i = -i
	}
	return Parse(p[i%len(p)])
}

// Hex formats c as "#rrggbb".
func Hex(c color.RGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// Luminance returns relative luminance in [0,1].
func Luminance(c color.RGBA) float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}
