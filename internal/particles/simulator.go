package particles

import (
	"fmt"
	"image/color"
	"math"

	"github.com/ivlev/lyric2video/internal/palette"
	"github.com/ivlev/lyric2video/internal/prng"
)

const (
	// boundsMargin is how far outside the viewport a particle may drift
	// before its slot is released.
	boundsMargin = 120.0

	burstDuration   = 0.25
	burstMultiplier = 1.6

	baseTarget  = 20
	rangeTarget = 520
	maxDensity  = 1.5
)

// Config selects the active system and its density.
type Config struct {
	Kind              Kind
	Density           float64
	DensityMultiplier float64
	Palette           []string
}

// Simulator is a fixed-size particle pool. It is not safe for concurrent
// use; the frame loop owns it.
type Simulator struct {
	pool    [HardCap]Particle
	ceiling int
	active  int

	cfg    Config
	colors []color.RGBA
	rng    *prng.PRNG
	seed   string

	width, height float64
	safe          SafeZone

	burst   float64
	elapsed float64

	buckets [alphaBuckets][]int
}

// NewSimulator creates an empty pool limited to ceiling active particles.
// A ceiling outside 1..HardCap is a programming error and panics.
func NewSimulator(ceiling int, seed string) *Simulator {
	if ceiling < 1 || ceiling > HardCap {
		panic(fmt.Sprintf("particles: ceiling %d outside 1..%d", ceiling, HardCap))
	}
	s := &Simulator{
		ceiling: ceiling,
		seed:    seed,
		width:   1280,
		height:  720,
	}
	s.Reset()
	return s
}

// Reset deactivates every slot and rewinds the random stream.
func (s *Simulator) Reset() {
	for i := range s.pool {
		s.pool[i] = Particle{}
	}
	s.active = 0
	s.burst = 0
	s.elapsed = 0
	s.rng = prng.New(s.seed).Fork("particles")
}

// Configure switches the system. Particles of the previous kind are
// released when the kind changes.
func (s *Simulator) Configure(cfg Config) {
	if cfg.Kind < 0 || cfg.Kind >= kindCount {
		cfg.Kind = None
	}
	if cfg.DensityMultiplier == 0 {
		cfg.DensityMultiplier = 1
	}
	if cfg.Kind != s.cfg.Kind {
		s.releaseAll()
	}
	s.cfg = cfg
	s.colors = s.colors[:0]
	pal := cfg.Palette
	if len(pal) == 0 {
		pal = palette.Default
	}
	for _, c := range pal {
		s.colors = append(s.colors, palette.Parse(c))
	}
}

// Kind returns the configured system.
func (s *Simulator) Kind() Kind { return s.cfg.Kind }

// SetCeiling changes the tier ceiling, releasing slots above it.
func (s *Simulator) SetCeiling(ceiling int) {
	if ceiling < 1 || ceiling > HardCap {
		panic(fmt.Sprintf("particles: ceiling %d outside 1..%d", ceiling, HardCap))
	}
	s.ceiling = ceiling
	for i := HardCap - 1; i >= 0 && s.active > s.ceiling; i-- {
		if s.pool[i].Active {
			s.pool[i].Active = false
			s.active--
		}
	}
}

// Ceiling returns the current active-particle limit.
func (s *Simulator) Ceiling() int { return s.ceiling }

// SetBounds sets the viewport used for spawning and culling.
func (s *Simulator) SetBounds(w, h float64) {
	if w > 0 && h > 0 {
		s.width, s.height = w, h
	}
}

// SetSafeZone sets the lyric rectangle. A zero zone disables suppression.
func (s *Simulator) SetSafeZone(z SafeZone) { s.safe = z }

// Trigger starts a beat burst: for a short window the target count is
// raised, still capped by the ceiling.
func (s *Simulator) Trigger(strength float64) {
	if strength <= 0 {
		return
	}
	s.burst = burstDuration
	kick := math.Min(1, strength) * 40
	for i := range s.pool {
		p := &s.pool[i]
		if p.Active {
			p.VY -= kick * p.Depth
		}
	}
}

// ActiveCount returns the number of occupied slots.
func (s *Simulator) ActiveCount() int { return s.active }

// Target returns the active count Update is aiming for.
func (s *Simulator) Target() int {
	if s.cfg.Kind == None {
		return 0
	}
	d := clamp(s.cfg.Density*s.cfg.DensityMultiplier, 0, maxDensity)
	n := int(math.Floor(baseTarget + d*rangeTarget))
	if s.burst > 0 {
		n = int(math.Floor(float64(n) * burstMultiplier))
	}
	if n > s.ceiling {
		n = s.ceiling
	}
	return n
}

// Update spawns up to the target count and advances every active particle.
func (s *Simulator) Update(dt float64) {
	if dt <= 0 {
		return
	}
	s.elapsed += dt
	if s.burst > 0 {
		s.burst -= dt
	}

	target := s.Target()
	for i := 0; i < HardCap && s.active < target; i++ {
		if !s.pool[i].Active {
			s.spawn(&s.pool[i])
		}
	}

	b := &behaviors[s.cfg.Kind]
	for i := range s.pool {
		p := &s.pool[i]
		if !p.Active {
			continue
		}
		if b.update != nil {
			b.update(p, dt, s.elapsed)
		}
		p.X += p.VX * dt
		p.Y += p.VY * dt
		p.Rotation += p.Spin * dt
		p.Life -= p.Decay * dt

		if p.Life <= 0 || s.outside(p) {
			p.Active = false
			s.active--
		}
	}
}

func (s *Simulator) spawn(p *Particle) {
	*p = Particle{
		Life:    1,
		Decay:   0.2,
		Size:    2,
		Opacity: 1,
		Depth:   s.rng.Next(),
		Phase:   s.rng.Range(0, 2*math.Pi),
		Color:   s.rng.Intn(len(s.colors)),
		Active:  true,
	}
	if b := &behaviors[s.cfg.Kind]; b.spawn != nil {
		b.spawn(p, s.rng, s.width, s.height)
	}
	s.active++
}

func (s *Simulator) outside(p *Particle) bool {
	return p.X < -boundsMargin || p.X > s.width+boundsMargin ||
		p.Y < -boundsMargin || p.Y > s.height+boundsMargin
}

func (s *Simulator) releaseAll() {
	for i := range s.pool {
		s.pool[i].Active = false
	}
	s.active = 0
}

// Each calls fn for every active particle in slot order.
func (s *Simulator) Each(fn func(p *Particle)) {
	for i := range s.pool {
		if s.pool[i].Active {
			fn(&s.pool[i])
		}
	}
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
