package analyzer

import "sort"

// ExplicitDetector passes authored hook ranges through.
type ExplicitDetector struct {
	Hooks []Hook
}

// NewExplicitDetector creates a detector over authored hooks
func NewExplicitDetector(hooks []Hook) *ExplicitDetector {
	return &ExplicitDetector{Hooks: hooks}
}

// Detect returns the authored hooks sorted by start. Reversed ranges are
// swapped and empty ones dropped.
func (d *ExplicitDetector) Detect(lines []Line) ([]Hook, error) {
	out := make([]Hook, 0, len(d.Hooks))
	for _, h := range d.Hooks {
		if h.End < h.Start {
			h.Start, h.End = h.End, h.Start
		}
		if h.End == h.Start {
			continue
		}
		h.Source = "explicit"
		if h.Confidence == 0 {
			h.Confidence = 1
		}
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

// AutoDetector prefers authored hooks and falls back when there are none.
type AutoDetector struct {
	Explicit Detector
	Fallback Detector
}

func (d *AutoDetector) Detect(lines []Line) ([]Hook, error) {
	hooks, err := d.Explicit.Detect(lines)
	if err != nil {
		return nil, err
	}
	if len(hooks) > 0 {
		return hooks, nil
	}
	return d.Fallback.Detect(lines)
}
