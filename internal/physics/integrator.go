package physics

import "math"

// DT is the fixed integration step in seconds.
const DT = 1.0 / 60.0

const (
	defaultViewportWidth  = 1280
	defaultViewportHeight = 720
)

// State is the bounded motion output recomputed on every tick.
type State struct {
	Scale       float64
	Blur        float64
	Glow        float64
	Shake       float64
	IsFractured bool

	Position float64
	Velocity float64
	Heat     float64

	SafeOffset float64
	MaxBlur    float64
	OffsetX    float64
	OffsetY    float64
	Rotation   float64
	Shatter    float64
}

// Integrator converts beat impulses into continuous spring-damper motion.
// It is not safe for concurrent use; each bake or preview owns its own.
type Integrator struct {
	spec Spec

	position   float64
	velocity   float64
	heat       float64
	impulseNow float64
	shatter    float64

	width, height float64
	state         State
}

// NewIntegrator creates an integrator at rest for a hydrated spec.
func NewIntegrator(spec Spec) *Integrator {
	in := &Integrator{
		spec:   spec,
		width:  defaultViewportWidth,
		height: defaultViewportHeight,
	}
	in.Reset()
	return in
}

// Spec returns the spec the integrator was built with.
func (in *Integrator) Spec() Spec {
	return in.spec
}

// Reset returns to rest: position, velocity, impulse and shatter are zeroed
// and heat goes back to the spec's initial heat.
func (in *Integrator) Reset() {
	in.position = 0
	in.velocity = 0
	in.impulseNow = 0
	in.shatter = 0
	in.heat = in.spec.Material.Heat
	in.state = in.derive()
}

// SetViewportBounds changes the envelope used by subsequent ticks.
func (in *Integrator) SetViewportBounds(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	in.width, in.height = w, h
}

// ShatterThreshold is the normalized strength a beat must reach to add to
// the shatter pulse.
func (in *Integrator) ShatterThreshold() float64 {
	return math.Min(1.25, 0.65+in.spec.Material.Brittleness*0.2)
}

// OnBeat applies a beat impulse. strength is clamped to [0,1].
func (in *Integrator) OnBeat(strength float64, downbeat bool) {
	strength = clamp(strength, 0, 1)

	impulse := in.spec.Response.BeatImpulse
	if downbeat {
		impulse = in.spec.Response.DownbeatImpulse
	}
	impulse *= strength

	in.velocity += impulse / in.spec.Material.Mass
	in.heat = math.Min(1, in.heat+0.1*impulse)
	if impulse > in.impulseNow {
		in.impulseNow = impulse
	}

	normalized := strength
	if downbeat {
		normalized += 0.25
	}
	if normalized >= in.ShatterThreshold() {
		in.shatter = math.Min(1, in.shatter+strength)
	}
}

// Tick advances one fixed step and returns the derived state.
func (in *Integrator) Tick() State {
	m := in.spec.Material

	// A body at rest stays at rest: ambient heat alone never starts motion.
	if in.position != 0 || in.velocity != 0 {
		spring := -m.Elasticity * in.position
		damping := -m.Damping * in.velocity
		buoyancy := -in.heat * 0.22

		in.velocity += (spring + damping + buoyancy) * DT
		in.position += in.velocity * DT
	}

	in.heat *= 0.95
	in.impulseNow *= 0.8
	in.shatter *= 0.86

	in.state = in.derive()
	return in.state
}

// State returns the state computed by the last Tick or Reset.
func (in *Integrator) State() State {
	return in.state
}

func (in *Integrator) derive() State {
	minAxis := math.Min(in.width, in.height)
	safe := clamp(minAxis*0.035, 6, 24)
	maxBlur := clamp(minAxis*0.015, 4, 10)

	absPos := math.Abs(in.position)
	absVel := math.Abs(in.velocity)

	return State{
		Scale:       math.Min(1.35, 1+absPos*0.5),
		Blur:        math.Min(maxBlur, absVel*2),
		Glow:        math.Min(30, in.heat*40),
		Shake:       math.Min(safe, in.impulseNow*safe*0.8),
		IsFractured: absPos > in.spec.Material.Brittleness,

		Position: in.position,
		Velocity: in.velocity,
		Heat:     in.heat,

		SafeOffset: safe,
		MaxBlur:    maxBlur,
		OffsetX:    clamp(in.velocity*safe*0.35, -safe, safe),
		OffsetY:    clamp(-in.position*safe*0.6-in.heat*safe*0.2, -safe, safe),
		Rotation:   clamp(in.velocity*0.012+in.heat*0.01*sign(in.position), -0.05, 0.05),
		Shatter:    in.shatter,
	}
}

// Beat is a single impulse in a replay sequence.
type Beat struct {
	Tick     int
	Strength float64
	Downbeat bool
}

// Replay runs ticks steps from rest, applying each beat before the tick
// with the same index, and returns every state produced.
func Replay(spec Spec, beats []Beat, ticks int) []State {
	in := NewIntegrator(spec)
	out := make([]State, 0, ticks)
	bi := 0
	for i := 0; i < ticks; i++ {
		for bi < len(beats) && beats[bi].Tick <= i {
			in.OnBeat(beats[bi].Strength, beats[bi].Downbeat)
			bi++
		}
		out = append(out, in.Tick())
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
