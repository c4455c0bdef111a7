package prng

// PRNG is a xorshift32 generator seeded from a string. It never reads
// external entropy: the sequence depends only on the seed and the number of
// calls made so far.
type PRNG struct {
	seed  string
	state uint32
}

// fallbackState replaces a zero hash, which would lock xorshift at zero.
const fallbackState uint32 = 0x9E3779B9

// Hash is the polynomial string hash (h = h*31 + c) used to seed a PRNG.
func Hash(seed string) uint32 {
	var h uint32
	for i := 0; i < len(seed); i++ {
		h = h*31 + uint32(seed[i])
	}
	return h
}

// New creates a generator for the given seed.
func New(seed string) *PRNG {
	p := &PRNG{seed: seed}
	p.Reset()
	return p
}

// Reset rewinds the generator to the start of its sequence.
func (p *PRNG) Reset() {
	p.state = Hash(p.seed)
	if p.state == 0 {
		p.state = fallbackState
	}
}

// Seed returns the seed string the generator was created with.
func (p *PRNG) Seed() string {
	return p.seed
}

func (p *PRNG) next32() uint32 {
	x := p.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	p.state = x
	return x
}

// Next returns the next value in [0,1).
func (p *PRNG) Next() float64 {
	return float64(p.next32()) / 4294967296.0
}

// Range returns a value in [lo,hi).
func (p *PRNG) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*p.Next()
}

// Intn returns an int in [0,n). n <= 0 returns 0.
func (p *PRNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(p.Next() * float64(n))
}

// Sign returns -1 or 1 with equal probability.
func (p *PRNG) Sign() float64 {
	if p.Next() < 0.5 {
		return -1
	}
	return 1
}

// Fork derives an independent generator from this one's seed and a label.
// The fork does not advance the parent, so subsystems that fork by label
// stay reproducible regardless of the order in which they are created.
func (p *PRNG) Fork(label string) *PRNG {
	return New(p.seed + "/" + label)
}
