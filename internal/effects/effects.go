package effects

import (
	"strings"

	"github.com/ivlev/lyric2video/internal/physics"
)

// Effect is one of the canonical draw effects.
type Effect int

const (
	StaticResolve Effect = iota
	ShatterIn
	TunnelRush
	GravityDrop
	PulseBloom
	RippleOut
	GlitchFlash
	WaveSurge
	EmberRise
	HookFracture

	effectCount
)

var effectNames = [effectCount]string{
	"STATIC_RESOLVE", "SHATTER_IN", "TUNNEL_RUSH", "GRAVITY_DROP", "PULSE_BLOOM",
	"RIPPLE_OUT", "GLITCH_FLASH", "WAVE_SURGE", "EMBER_RISE", "HOOK_FRACTURE",
}

func (e Effect) String() string {
	if e < 0 || e >= effectCount {
		return effectNames[StaticResolve]
	}
	return effectNames[e]
}

// All returns the canonical effects in declaration order.
func All() []Effect {
	out := make([]Effect, effectCount)
	for i := range out {
		out[i] = Effect(i)
	}
	return out
}

// aliases maps descriptive keys from generated direction onto canonical
// effects. Keys are stored normalized (upper case, underscores).
var aliases = map[string]Effect{
	"ICE_SHARD_BURST":  ShatterIn,
	"GLASS_BREAK":      ShatterIn,
	"SHARD_SCATTER":    ShatterIn,
	"FRACTURE":         ShatterIn,
	"SHATTER":          ShatterIn,
	"CRYSTAL_SPLIT":    ShatterIn,
	"WARP_SPEED":       TunnelRush,
	"ZOOM_THROUGH":     TunnelRush,
	"HYPERDRIVE":       TunnelRush,
	"VORTEX_PULL":      TunnelRush,
	"FALL":             GravityDrop,
	"HEAVY_DROP":       GravityDrop,
	"SLAM_DOWN":        GravityDrop,
	"WEIGHT":           GravityDrop,
	"BASS_DROP":        GravityDrop,
	"HEARTBEAT":        PulseBloom,
	"BLOOM":            PulseBloom,
	"SWELL":            PulseBloom,
	"GLOW_PULSE":       PulseBloom,
	"BREATHE":          PulseBloom,
	"WATER_DROP":       RippleOut,
	"SHOCKWAVE":        RippleOut,
	"ECHO":             RippleOut,
	"SONAR":            RippleOut,
	"THUNDER_CRACK":    GlitchFlash,
	"STATIC_BURST":     GlitchFlash,
	"DATAMOSH":         GlitchFlash,
	"STROBE":           GlitchFlash,
	"LIGHTNING_STRIKE": GlitchFlash,
	"VHS_TEAR":         GlitchFlash,
	"TIDAL":            WaveSurge,
	"OCEAN_SWELL":      WaveSurge,
	"UNDULATE":         WaveSurge,
	"FLOW":             WaveSurge,
	"WIND_SWEEP":       WaveSurge,
	"FIRE_RISE":        EmberRise,
	"ASH_FLOAT":        EmberRise,
	"SMOLDER":          EmberRise,
	"IGNITE":           EmberRise,
	"FLAME_LICK":       EmberRise,
	"CHORUS_BREAK":     HookFracture,
	"HOOK_SLAM":        HookFracture,
	"ANTHEM_HIT":       HookFracture,
	"FADE":             StaticResolve,
	"HOLD":             StaticResolve,
	"STILL":            StaticResolve,
}

// Normalize maps a canonical name or alias onto an Effect. Unknown keys
// resolve to StaticResolve.
func Normalize(key string) Effect {
	e, _ := Lookup(key)
	return e
}

// Lookup is Normalize with a flag telling whether key was recognized.
func Lookup(key string) (Effect, bool) {
	k := canonicalKey(key)
	if k == "" {
		return StaticResolve, false
	}
	for i, name := range effectNames {
		if name == k {
			return Effect(i), true
		}
	}
	if e, ok := aliases[k]; ok {
		return e, true
	}
	return StaticResolve, false
}

func canonicalKey(key string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '.' {
			return '_'
		}
		return r
	}, key)
}

// ForSystem picks the effect a physics system shows in the given state.
func ForSystem(sys physics.System, st physics.State) Effect {
	switch sys {
	case physics.Fracture:
		switch {
		case st.IsFractured:
			return ShatterIn
		case st.Shatter > 0.3:
			return GlitchFlash
		}
	case physics.Pressure:
		switch {
		case st.Scale > 1.15:
			return TunnelRush
		case st.Velocity > 0.5:
			return GravityDrop
		case st.Shake > 0.25*st.SafeOffset:
			return PulseBloom
		}
	case physics.Breath:
		switch {
		case st.Heat > 0.3:
			return PulseBloom
		case abs(st.Position) > 0.2:
			return WaveSurge
		}
	case physics.Combustion:
		switch {
		case st.Heat > 0.5:
			return EmberRise
		case st.Shatter > 0.3:
			return PulseBloom
		case st.Heat > 0.2:
			return EmberRise
		}
	case physics.Orbit:
		switch {
		case abs(st.Velocity) > 0.4:
			return RippleOut
		case abs(st.Position) > 0.1:
			return WaveSurge
		}
	}
	return StaticResolve
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
