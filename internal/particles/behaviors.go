package particles

import (
	"fmt"
	"math"

	"github.com/ivlev/lyric2video/internal/canvas"
	"github.com/ivlev/lyric2video/internal/prng"
)

// pathMode says how a batched kind closes its shared path.
type pathMode int

const (
	perParticle pathMode = iota
	batchFill
	batchStroke
)

type behavior struct {
	spawn      func(p *Particle, r *prng.PRNG, w, h float64)
	update     func(p *Particle, dt, t float64)
	shape      func(s canvas.Surface, p *Particle)
	batch      pathMode
	foreground bool
	halo       bool
}

// behaviors is indexed by Kind; None has no rules and never spawns.
var behaviors = [kindCount]behavior{
	None: {},
	Embers: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), h+r.Range(0, 40)
			p.VX, p.VY = r.Range(-15, 15), r.Range(-90, -40)
			p.Size = r.Range(1.5, 3.5)
			p.Decay = r.Range(0.25, 0.45)
		},
		update: func(p *Particle, dt, t float64) {
			p.VY -= 30 * dt
			p.VX += math.Sin(t*2+p.Phase) * 12 * dt
			p.Opacity = 0.6 + 0.4*math.Sin(t*9+p.Phase)
		},
		shape: dot,
	},
	Smoke: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), h*r.Range(0.5, 1.05)
			p.VX, p.VY = r.Range(-8, 8), r.Range(-20, -8)
			p.Size = r.Range(30, 70)
			p.Decay = r.Range(0.08, 0.15)
			p.Opacity = 0.12
		},
		update: func(p *Particle, dt, t float64) {
			p.Size += 6 * dt
			p.VX += math.Sin(t*0.5+p.Phase) * 3 * dt
		},
		shape: dot,
	},
	Ash: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), -r.Range(0, 40)
			p.VX, p.VY = r.Range(-10, 10), r.Range(15, 35)
			p.Size = r.Range(1.5, 3)
			p.Spin = r.Range(-2, 2)
			p.Decay = r.Range(0.08, 0.14)
			p.Opacity = 0.7
		},
		update: func(p *Particle, dt, t float64) {
			p.VX += math.Sin(t+p.Phase) * 8 * dt
		},
		shape:      flake,
		foreground: true,
	},
	Rain: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(-40, w), -r.Range(0, 100)
			p.VX, p.VY = r.Range(40, 70), r.Range(650, 900)
			p.Size = r.Range(10, 22)
			p.Decay = 0.5
			p.Opacity = r.Range(0.25, 0.6)
		},
		shape: streak,
		batch: batchStroke,
	},
	Snow: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), -r.Range(0, 60)
			p.VY = r.Range(20, 55)
			p.Size = r.Range(1.5, 4)
			p.Decay = r.Range(0.05, 0.1)
			p.Opacity = r.Range(0.5, 0.95)
		},
		update: func(p *Particle, dt, t float64) {
			p.VX = math.Sin(t*0.8+p.Phase) * 18 * (0.5 + p.Depth)
		},
		shape:      dot,
		foreground: true,
	},
	Lightning: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(w*0.1, w*0.9), 0
			p.Size = h * r.Range(0.3, 0.7)
			p.Aux = r.Range(0, 1000)
			p.Decay = r.Range(2.5, 4)
		},
		update: func(p *Particle, dt, t float64) {
			p.Opacity = 0.5 + 0.5*math.Abs(math.Sin(t*40+p.Phase))
		},
		shape: bolt,
	},
	Fireflies: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), r.Range(h*0.3, h)
			p.Size = r.Range(1.5, 3)
			p.Decay = r.Range(0.1, 0.2)
		},
		update: func(p *Particle, dt, t float64) {
			p.VX += math.Cos(t*1.3+p.Phase) * 30 * dt
			p.VY += math.Sin(t*1.7+p.Phase) * 30 * dt
			p.VX *= 0.98
			p.VY *= 0.98
			p.Opacity = 0.3 + 0.7*math.Max(0, math.Sin(t*2.5+p.Phase))
		},
		shape: dot,
		halo:  true,
	},
	Stars: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), r.Range(0, h*0.7)
			p.Size = r.Range(0.8, 2)
			p.Decay = r.Range(0.03, 0.06)
		},
		update: func(p *Particle, dt, t float64) {
			p.Opacity = 0.5 + 0.5*math.Sin(t*2+p.Phase)
		},
		shape: dot,
		batch: batchFill,
	},
	Petals: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(-100, w), -r.Range(0, 60)
			p.VX, p.VY = r.Range(10, 40), r.Range(25, 50)
			p.Size = r.Range(4, 8)
			p.Spin = r.Range(-1.5, 1.5)
			p.Decay = r.Range(0.06, 0.12)
			p.Opacity = 0.85
		},
		update: func(p *Particle, dt, t float64) {
			p.VX += math.Sin(t*1.1+p.Phase) * 10 * dt
		},
		shape:      petal,
		foreground: true,
	},
	Dust: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), r.Range(0, h)
			p.VX, p.VY = r.Range(-4, 4), r.Range(-4, 4)
			p.Size = r.Range(0.6, 1.6)
			p.Decay = r.Range(0.05, 0.1)
			p.Opacity = r.Range(0.2, 0.5)
		},
		update: func(p *Particle, dt, t float64) {
			p.VX += math.Cos(t*0.3+p.Phase) * 2 * dt
		},
		shape: dot,
		batch: batchFill,
	},
	Bubbles: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), h+r.Range(0, 30)
			p.VY = r.Range(-60, -25)
			p.Size = r.Range(3, 9)
			p.Decay = r.Range(0.1, 0.2)
			p.Opacity = 0.6
		},
		update: func(p *Particle, dt, t float64) {
			p.VX = math.Sin(t*2+p.Phase) * 12
		},
		shape: ring,
	},
	Glitch: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), r.Range(0, h)
			p.Size = r.Range(20, 120)
			p.Aux = r.Range(1, 4)
			p.Decay = r.Range(1.5, 3)
			p.Opacity = 0.5
		},
		update: func(p *Particle, dt, t float64) {
			// Hard horizontal jumps on a fixed cadence.
			if math.Mod(t*12+p.Phase, 1) < dt*12 {
				p.X += math.Sin(p.Phase*37+t) * 30
			}
		},
		shape: bar,
	},
	Confetti: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), -r.Range(0, 50)
			p.VX, p.VY = r.Range(-30, 30), r.Range(40, 90)
			p.Size = r.Range(3, 6)
			p.Spin = r.Range(-6, 6)
			p.Decay = r.Range(0.12, 0.2)
		},
		update: func(p *Particle, dt, t float64) {
			p.VY += 40 * dt
			p.VX *= 0.99
		},
		shape:      flake,
		foreground: true,
	},
	Crystals: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), -r.Range(0, 40)
			p.VY = r.Range(12, 30)
			p.Size = r.Range(3, 7)
			p.Spin = r.Range(-0.8, 0.8)
			p.Decay = r.Range(0.06, 0.1)
			p.Opacity = 0.8
		},
		shape:      diamond,
		foreground: true,
	},
	Moths: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(w*0.2, w*0.8), r.Range(h*0.2, h*0.8)
			p.Size = r.Range(3, 5)
			p.Decay = r.Range(0.1, 0.18)
			p.Opacity = 0.7
		},
		update: func(p *Particle, dt, t float64) {
			p.VX = math.Cos(t*3+p.Phase) * 40
			p.VY = math.Sin(t*4.3+p.Phase) * 30
			p.Rotation = math.Atan2(p.VY, p.VX)
		},
		shape: wings,
	},
	Sparks: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), r.Range(h*0.4, h)
			a := r.Range(-math.Pi, 0)
			v := r.Range(80, 200)
			p.VX, p.VY = math.Cos(a)*v, math.Sin(a)*v
			p.Size = r.Range(4, 10)
			p.Decay = r.Range(0.8, 1.4)
		},
		update: func(p *Particle, dt, t float64) {
			p.VY += 180 * dt
			p.VX *= 0.97
		},
		shape: spark,
	},
	Bokeh: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), r.Range(0, h)
			p.VX, p.VY = r.Range(-3, 3), r.Range(-3, 3)
			p.Size = r.Range(12, 40)
			p.Decay = r.Range(0.04, 0.08)
		},
		update: func(p *Particle, dt, t float64) {
			p.Opacity = 0.08 + 0.1*math.Sin(t*0.7+p.Phase)
		},
		shape: dot,
	},
	Ripples: {
		spawn: func(p *Particle, r *prng.PRNG, w, h float64) {
			p.X, p.Y = r.Range(0, w), r.Range(h*0.5, h)
			p.Size = 1
			p.Decay = r.Range(0.4, 0.7)
		},
		update: func(p *Particle, dt, t float64) {
			p.Size += 45 * dt
			p.Opacity = p.Life * 0.6
		},
		shape: ring,
	},
}

func dot(s canvas.Surface, p *Particle) {
	s.Circle(p.X, p.Y, p.Size)
}

func streak(s canvas.Surface, p *Particle) {
	l := math.Hypot(p.VX, p.VY)
	if l == 0 {
		return
	}
	s.MoveTo(p.X, p.Y)
	s.LineTo(p.X-p.VX/l*p.Size, p.Y-p.VY/l*p.Size)
}

func flake(s canvas.Surface, p *Particle) {
	s.Translate(p.X, p.Y)
	s.Rotate(p.Rotation)
	s.Rect(-p.Size/2, -p.Size/4, p.Size, p.Size/2)
}

func petal(s canvas.Surface, p *Particle) {
	s.Translate(p.X, p.Y)
	s.Rotate(p.Rotation)
	s.Scale(1, 0.5)
	s.Circle(0, 0, p.Size)
}

func diamond(s canvas.Surface, p *Particle) {
	s.Translate(p.X, p.Y)
	s.Rotate(p.Rotation)
	s.MoveTo(0, -p.Size)
	s.LineTo(p.Size*0.6, 0)
	s.LineTo(0, p.Size)
	s.LineTo(-p.Size*0.6, 0)
	s.ClosePath()
}

func wings(s canvas.Surface, p *Particle) {
	s.Translate(p.X, p.Y)
	s.Rotate(p.Rotation)
	s.MoveTo(0, 0)
	s.LineTo(-p.Size, -p.Size)
	s.LineTo(-p.Size, 0)
	s.ClosePath()
	s.MoveTo(0, 0)
	s.LineTo(-p.Size, p.Size)
	s.LineTo(-p.Size, 0)
	s.ClosePath()
}

func bar(s canvas.Surface, p *Particle) {
	s.Rect(p.X, p.Y, p.Size, p.Aux)
}

func ring(s canvas.Surface, p *Particle) {
	s.Circle(p.X, p.Y, p.Size)
}

func spark(s canvas.Surface, p *Particle) {
	l := math.Hypot(p.VX, p.VY)
	if l == 0 {
		return
	}
	s.MoveTo(p.X, p.Y)
	s.LineTo(p.X-p.VX/l*p.Size, p.Y-p.VY/l*p.Size)
}

func bolt(s canvas.Surface, p *Particle) {
	r := prng.New(boltSeed(p.Aux))
	x, y := p.X, p.Y
	s.MoveTo(x, y)
	steps := 8
	for i := 1; i <= steps; i++ {
		y = p.Y + p.Size*float64(i)/float64(steps)
		x += r.Range(-18, 18)
		s.LineTo(x, y)
	}
}

func boltSeed(aux float64) string {
	return fmt.Sprintf("bolt-%x", uint32(aux*1000))
}

func stroked(k Kind) bool {
	switch k {
	case Bubbles, Ripples, Sparks, Lightning:
		return true
	}
	return false
}
