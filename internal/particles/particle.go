package particles

import "strings"

// HardCap is the size of every pool. No tier may exceed it.
const HardCap = 200

// Tier is a device class with its own active-particle ceiling.
type Tier int

const (
	Mobile Tier = iota
	Tablet
	Desktop
	HighEnd
)

var tierCeilings = [...]int{Mobile: 30, Tablet: 60, Desktop: 100, HighEnd: 150}
var tierNames = [...]string{Mobile: "mobile", Tablet: "tablet", Desktop: "desktop", HighEnd: "high-end"}

// Ceiling returns the maximum number of active particles for the tier.
func (t Tier) Ceiling() int {
	if t < Mobile || t > HighEnd {
		return tierCeilings[Desktop]
	}
	return tierCeilings[t]
}

func (t Tier) String() string {
	if t < Mobile || t > HighEnd {
		return tierNames[Desktop]
	}
	return tierNames[t]
}

// ParseTier maps a tier name to a Tier; ok is false for unknown names.
func ParseTier(name string) (Tier, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range tierNames {
		if n == name {
			return Tier(i), true
		}
	}
	if name == "highend" || name == "high" {
		return HighEnd, true
	}
	return Desktop, false
}

// Kind selects the spawn, update and draw rules for a particle system.
type Kind int

const (
	None Kind = iota
	Embers
	Smoke
	Ash
	Rain
	Snow
	Lightning
	Fireflies
	Stars
	Petals
	Dust
	Bubbles
	Glitch
	Confetti
	Crystals
	Moths
	Sparks
	Bokeh
	Ripples

	kindCount
)

var kindNames = [kindCount]string{
	"none", "embers", "smoke", "ash", "rain", "snow", "lightning", "fireflies", "stars",
	"petals", "dust", "bubbles", "glitch", "confetti", "crystals", "moths", "sparks", "bokeh", "ripples",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return kindNames[None]
	}
	return kindNames[k]
}

// ParseKind maps a system name to a Kind. Unknown names map to None.
func ParseKind(name string) Kind {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == name {
			return Kind(i)
		}
	}
	return None
}

// Kinds returns every drawable kind, None excluded.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := Embers; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Particle is one pool slot. Spawning overwrites the fields of a free slot;
// slots are never allocated individually.
type Particle struct {
	X, Y     float64
	VX, VY   float64
	Life     float64 // 1 at spawn, 0 at death
	Decay    float64 // life lost per second
	Size     float64
	Rotation float64
	Spin     float64
	Opacity  float64
	Depth    float64 // 0 far, 1 near
	Phase    float64
	Aux      float64
	Color    int
	Active   bool
}

// Layer selects which particles a Draw call renders.
type Layer int

const (
	Background Layer = iota
	Foreground
)

// SafeZone is the rectangle reserved for lyric legibility.
type SafeZone struct {
	X, Y, W, H float64
}

// Contains reports whether (x,y) lies inside the zone.
func (z SafeZone) Contains(x, y float64) bool {
	return x >= z.X && x <= z.X+z.W && y >= z.Y && y <= z.Y+z.H
}

func (z SafeZone) empty() bool {
	return z.W <= 0 || z.H <= 0
}
