package effects

import "math"

// Transform is the per-chunk displacement an effect contributes at a given
// progress. The zero progress is the start of the entry; at progress 1
// every effect settles to Identity.
type Transform struct {
	DX, DY float64
	Scale  float64
	ScaleX float64
	ScaleY float64
	Skew   float64
	Alpha  float64
}

// Identity is the settled transform.
var Identity = Transform{Scale: 1, ScaleX: 1, ScaleY: 1, Alpha: 1}

// Apply evaluates effect e at progress p in [0,1]. jitter in [0,1) is a
// per-chunk random value that keeps chunks from moving in lockstep.
func Apply(e Effect, p, jitter float64) Transform {
	p = Clamp01(p)
	if p >= 1 {
		return Identity
	}
	inv := 1 - p
	j := jitter - 0.5
	tr := Identity
	tr.Alpha = p

	switch e {
	case ShatterIn:
		tr.DX = j * 80 * inv
		tr.DY = -math.Abs(j) * 50 * inv
		tr.Skew = j * 0.4 * inv
		tr.Scale = 1 + 0.2*inv
	case TunnelRush:
		tr.Scale = 1 + 1.5*inv*inv
	case GravityDrop:
		tr.DY = -90 * inv * inv
	case PulseBloom:
		tr.Scale = 1 + 0.15*math.Sin(p*math.Pi)
	case RippleOut:
		w := 0.12 * math.Sin(p*math.Pi*3) * inv
		tr.ScaleX = 1 + w
		tr.ScaleY = 1 - w
	case GlitchFlash:
		step := math.Floor(p * 12)
		if math.Mod(step, 2) == 0 {
			tr.DX = j * 36 * inv
			tr.Alpha = p * 0.6
		}
	case WaveSurge:
		tr.DY = math.Sin(p*math.Pi*2+jitter*2*math.Pi) * 14 * inv
	case EmberRise:
		tr.DY = 36 * inv
	case HookFracture:
		tr.Scale = 1 + 0.25*inv
		tr.Skew = 0.15 * inv * sgn(j)
		tr.DX = j * 24 * inv
	}
	return tr
}

func sgn(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
