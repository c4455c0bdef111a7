package analyzer

import "fmt"

// NewDetector creates a detector based on the specified variant.
// "auto" (the default) uses authored hooks when there are any and falls
// back to repetition otherwise.
func NewDetector(variant string, authored []Hook) (Detector, error) {
	switch variant {
	case "auto", "":
		return &AutoDetector{Explicit: NewExplicitDetector(authored), Fallback: NewRepetitionDetector()}, nil
	case "repetition":
		return NewRepetitionDetector(), nil
	case "explicit":
		return NewExplicitDetector(authored), nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
