package director

import (
	"math"
	"sort"
)

// CrossfadeSeconds is how long before a chapter boundary the background
// starts blending into the next chapter.
const CrossfadeSeconds = 2.0

// Director answers time-based questions about a sanitized scene
type Director struct {
	scene Scene
}

// NewDirector creates a Director over a sanitized copy of scene
func NewDirector(scene Scene) *Director {
	return &Director{scene: Sanitize(scene)}
}

// Scene returns the sanitized scene
func (d *Director) Scene() Scene {
	return d.scene
}

// ChapterAt returns the index of the chapter covering t, or -1
func (d *Director) ChapterAt(t float64) int {
	chapters := d.scene.Direction.Chapters
	i := sort.Search(len(chapters), func(i int) bool { return chapters[i].Start > t }) - 1
	if i < 0 || t >= chapters[i].End {
		return -1
	}
	return i
}

// ChapterTitle returns the title of the chapter covering t, or ""
func (d *Director) ChapterTitle(t float64) string {
	if i := d.ChapterAt(t); i >= 0 {
		return d.scene.Direction.Chapters[i].Title
	}
	return ""
}

// TensionAt linearly interpolates the tension curve. Outside the curve the
// nearest end value holds; an empty curve is flat at 0.
func (d *Director) TensionAt(t float64) float64 {
	pts := d.scene.Direction.Tension
	if len(pts) == 0 {
		return 0
	}
	if t <= pts[0].T {
		return pts[0].Value
	}
	last := pts[len(pts)-1]
	if t >= last.T {
		return last.Value
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].T > t })
	a, b := pts[i-1], pts[i]
	span := b.T - a.T
	if span <= 0 {
		return b.Value
	}
	k := (t - a.T) / span
	return a.Value*(1-k) + b.Value*k
}

// ClimaxProximity is 1 at the climax and falls linearly to 0 at Width
// seconds away. Without a climax it is always 0.
func (d *Director) ClimaxProximity(t float64) float64 {
	c := d.scene.Direction.Climax
	if c == nil || c.Width <= 0 {
		return 0
	}
	return math.Max(0, 1-math.Abs(t-c.T)/c.Width)
}

// ParticlesAt returns the particle config in effect at t: the chapter's
// override if it has one, otherwise the scene default.
func (d *Director) ParticlesAt(t float64) ParticleConfig {
	if i := d.ChapterAt(t); i >= 0 {
		if p := d.scene.Direction.Chapters[i].Particles; p != nil {
			return *p
		}
	}
	if d.scene.Particles != nil {
		return *d.scene.Particles
	}
	return ParticleConfig{System: "none"}
}

// PaletteAt returns the chapter palette at t, falling back to the scene's
func (d *Director) PaletteAt(t float64) []string {
	if i := d.ChapterAt(t); i >= 0 {
		if p := d.scene.Direction.Chapters[i].Palette; len(p) > 0 {
			return p
		}
	}
	return d.scene.Palette
}

// ZoomAt returns the camera zoom target of the chapter at t
func (d *Director) ZoomAt(t float64) float64 {
	if i := d.ChapterAt(t); i >= 0 {
		return d.scene.Direction.Chapters[i].Zoom
	}
	return 1
}

// BackgroundBlend returns the chapter the background shows at t, the
// chapter it is fading into and the blend ratio between them. The fade
// runs over the last CrossfadeSeconds of a chapter that is directly
// followed by another.
func (d *Director) BackgroundBlend(t float64) (from, to int, ratio float64) {
	from = d.ChapterAt(t)
	if from < 0 {
		return -1, -1, 0
	}
	chapters := d.scene.Direction.Chapters
	next := from + 1
	if next >= len(chapters) || chapters[next].Start > chapters[from].End {
		return from, from, 0
	}
	fadeStart := chapters[from].End - CrossfadeSeconds
	if t < fadeStart {
		return from, from, 0
	}
	ratio = (t - fadeStart) / CrossfadeSeconds
	return from, next, math.Min(1, math.Max(0, ratio))
}
