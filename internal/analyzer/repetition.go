package analyzer

import (
	"sort"
	"strings"
	"unicode"
)

// RepetitionDetector synthesizes hooks from lines whose normalized text
// repeats often enough.
type RepetitionDetector struct {
	MinRepeats int // Occurrences needed for a line to count as repeated
	MaxHooks   int // Number of repeated spans kept
}

// NewRepetitionDetector creates a repetition detector with default settings
func NewRepetitionDetector() *RepetitionDetector {
	return &RepetitionDetector{
		MinRepeats: 3,
		MaxHooks:   2,
	}
}

// Detect groups consecutive repeated lines into spans and returns the
// first MaxHooks of them in time order.
func (d *RepetitionDetector) Detect(lines []Line) ([]Hook, error) {
	ordered := sortedLines(lines)

	counts := make(map[string]int, len(ordered))
	for _, l := range ordered {
		if key := Normalize(l.Text); key != "" {
			counts[key]++
		}
	}

	var hooks []Hook
	var cur *Hook
	for _, l := range ordered {
		key := Normalize(l.Text)
		if key == "" || counts[key] < d.MinRepeats {
			if cur != nil {
				hooks = append(hooks, *cur)
				cur = nil
				if len(hooks) >= d.MaxHooks {
					return hooks, nil
				}
			}
			continue
		}
		if cur == nil {
			cur = &Hook{Start: l.Start, End: l.End, Text: l.Text, Source: "repetition", Confidence: 0.6}
			continue
		}
		if l.End > cur.End {
			cur.End = l.End
		}
	}
	if cur != nil && len(hooks) < d.MaxHooks {
		hooks = append(hooks, *cur)
	}
	return hooks, nil
}

// RepeatIndex returns, for every line in time order, how many earlier
// lines share its normalized text.
func RepeatIndex(lines []Line) []int {
	seen := make(map[string]int, len(lines))
	out := make([]int, len(lines))
	for i, l := range lines {
		key := Normalize(l.Text)
		if key == "" {
			continue
		}
		out[i] = seen[key]
		seen[key]++
	}
	return out
}

// Normalize lowercases text, strips punctuation and collapses whitespace.
func Normalize(text string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}

func sortedLines(lines []Line) []Line {
	out := append([]Line(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
