package system

import (
	"testing"

	"github.com/ivlev/lyric2video/internal/particles"
)

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		cores int
		ram   uint64
		want  particles.Tier
	}{
		{2, 8 * gib, particles.Mobile},
		{8, 2 * gib, particles.Mobile},
		{4, 8 * gib, particles.Tablet},
		{8, 4 * gib, particles.Tablet},
		{8, 16 * gib, particles.Desktop},
		{12, 8 * gib, particles.Desktop},
		{16, 32 * gib, particles.HighEnd},
	}
	for _, tt := range tests {
		if got := ClassifyTier(tt.cores, tt.ram); got != tt.want {
			t.Errorf("ClassifyTier(%d, %dGiB) = %s, want %s", tt.cores, tt.ram/gib, got, tt.want)
		}
	}
}

func TestResolveTier(t *testing.T) {
	if got := ResolveTier("Tablet"); got != particles.Tablet {
		t.Errorf("ResolveTier(Tablet) = %s", got)
	}
	if got := ResolveTier("toaster"); got != particles.Desktop {
		t.Errorf("unknown tier should fall back to desktop, got %s", got)
	}
	got := DetectTier()
	if got.Ceiling() < particles.Mobile.Ceiling() || got.Ceiling() > particles.HardCap {
		t.Errorf("detected tier out of range: %s", got)
	}
	t.Logf("Detected tier: %s", got)
}

func TestImagePool(t *testing.T) {
	p := NewImagePool()

	img := p.Get(64, 32)
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	img.Pix[0] = 0xFF
	p.Put(img)

	again := p.Get(64, 32)
	if again.Pix[0] != 0 {
		t.Error("pooled buffers must come back cleared")
	}
	if other := p.Get(16, 16); other.Bounds().Dx() != 16 {
		t.Error("sizes must not mix")
	}
	p.Put(nil)
}
