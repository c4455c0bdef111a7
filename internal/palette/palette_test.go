package palette

import (
	"image/color"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff0000", color.RGBA{R: 255, A: 255}},
		{"#0f0", color.RGBA{G: 255, A: 255}},
		{"navy", color.RGBA{B: 128, A: 255}},
		{"  White ", color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"not-a-color", Fallback},
		{"#zzzzzz", Fallback},
		{"", Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Parse(tt.in); got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBlendEndpoints(t *testing.T) {
	a := Parse("#102030")
	b := Parse("#f0e0d0")

	if got := Blend(a, b, 0); got != a {
		t.Errorf("Blend at 0 = %v, want %v", got, a)
	}
	if got := Blend(a, b, 1); got != b {
		t.Errorf("Blend at 1 = %v, want %v", got, b)
	}

	mid := Blend(a, b, 0.5)
	if Luminance(mid) <= Luminance(a) || Luminance(mid) >= Luminance(b) {
		t.Errorf("midpoint luminance %.3f not between %.3f and %.3f", Luminance(mid), Luminance(a), Luminance(b))
	}
}

func TestPickWraps(t *testing.T) {
	p := []string{"#000000", "#ffffff"}
	if Pick(p, 3) != Parse("#ffffff") {
		t.Error("Pick should wrap around the palette")
	}
	if Pick(nil, 0) != Parse(Default[0]) {
		t.Error("empty palette should fall back to Default")
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := Parse("#ff6b4a")
	if got := Hex(c); got != "#ff6b4a" {
		t.Errorf("Hex = %s, want #ff6b4a", got)
	}
}
