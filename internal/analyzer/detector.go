package analyzer

// Line is one timed lyric line as seen by hook detection.
type Line struct {
	Text  string
	Start float64
	End   float64
}

// Hook represents a lyric span eligible for emphasized treatment
type Hook struct {
	Start      float64 `yaml:"start" json:"start"`
	End        float64 `yaml:"end" json:"end"`
	Text       string  `yaml:"text,omitempty" json:"text,omitempty"`
	Source     string  `yaml:"source,omitempty" json:"source,omitempty"` // "explicit", "repetition"
	Confidence float64 `yaml:"confidence,omitempty" json:"confidence,omitempty"`
}

// Contains reports whether t falls inside the hook span.
func (h Hook) Contains(t float64) bool {
	return t >= h.Start && t <= h.End
}

// Detector is the interface for hook detection strategies
type Detector interface {
	Detect(lines []Line) ([]Hook, error)
}
