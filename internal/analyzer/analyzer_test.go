package analyzer

import "testing"

func chorusLines() []Line {
	return []Line{
		{Text: "Walking alone", Start: 0, End: 2},
		{Text: "We burn, we burn!", Start: 2, End: 4},
		{Text: "Into the night", Start: 4, End: 6},
		{Text: "verse line", Start: 6, End: 8},
		{Text: "we  BURN we burn", Start: 8, End: 10},
		{Text: "into the night...", Start: 10, End: 12},
		{Text: "bridge", Start: 12, End: 14},
		{Text: "We burn, we burn", Start: 14, End: 16},
		{Text: "Into the night", Start: 16, End: 18},
	}
}

func TestRepetitionDetector(t *testing.T) {
	detector := NewRepetitionDetector()
	hooks, err := detector.Detect(chorusLines())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(hooks) != 2 {
		t.Fatalf("Expected 2 hooks, got %d: %+v", len(hooks), hooks)
	}
	if hooks[0].Start != 2 || hooks[0].End != 6 {
		t.Errorf("First hook = [%v,%v], want [2,6]", hooks[0].Start, hooks[0].End)
	}
	if hooks[1].Start != 8 || hooks[1].End != 12 {
		t.Errorf("Second hook = [%v,%v], want [8,12]", hooks[1].Start, hooks[1].End)
	}
	for i, h := range hooks {
		if h.Source != "repetition" {
			t.Errorf("Hook %d source = %q", i, h.Source)
		}
		t.Logf("Hook %d: [%.1f, %.1f] %q", i, h.Start, h.End, h.Text)
	}
}

func TestRepetitionNeedsThreeOccurrences(t *testing.T) {
	lines := []Line{
		{Text: "once", Start: 0, End: 1},
		{Text: "twice", Start: 1, End: 2},
		{Text: "twice", Start: 2, End: 3},
	}
	hooks, err := NewRepetitionDetector().Detect(lines)
	if err != nil {
		t.Fatal(err)
	}
	if len(hooks) != 0 {
		t.Errorf("Expected no hooks, got %+v", hooks)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"We burn, we burn!", "we burn we burn"},
		{"  Into   the\tnight... ", "into the night"},
		{"Ça va?", "ça va"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRepeatIndex(t *testing.T) {
	idx := RepeatIndex(chorusLines())
	want := []int{0, 0, 0, 0, 1, 1, 0, 2, 2}
	for i := range want {
		if idx[i] != want[i] {
			t.Errorf("RepeatIndex[%d] = %d, want %d", i, idx[i], want[i])
		}
	}
}

func TestAutoPrefersAuthoredHooks(t *testing.T) {
	authored := []Hook{{Start: 20, End: 15}, {Start: 3, End: 3}}
	d, err := NewDetector("", authored)
	if err != nil {
		t.Fatal(err)
	}
	hooks, err := d.Detect(chorusLines())
	if err != nil {
		t.Fatal(err)
	}
	if len(hooks) != 1 || hooks[0].Start != 15 || hooks[0].End != 20 || hooks[0].Source != "explicit" {
		t.Errorf("Unexpected hooks: %+v", hooks)
	}

	d, _ = NewDetector("auto", nil)
	hooks, _ = d.Detect(chorusLines())
	if len(hooks) != 2 || hooks[0].Source != "repetition" {
		t.Errorf("Expected synthesized hooks without authored ranges, got %+v", hooks)
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"auto", false},
		{"", false}, // default
		{"repetition", false},
		{"explicit", false},
		{"ocr", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant, nil)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if detector == nil {
					t.Error("Expected detector, got nil")
				}
			}
		})
	}
}
