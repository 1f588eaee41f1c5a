package scoring

import "testing"

func TestScoreExactMatch(t *testing.T) {
	tests := []string{
		"the wandering earth",
		"流浪地球",
		"Interstellar",
	}

	for _, title := range tests {
		t.Run(title, func(t *testing.T) {
			if got := Score(title, []string{title}); got != 100 {
				t.Errorf("Score(%q, [%q]) = %d, want 100", title, title, got)
			}
		})
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	if got := Score("THE MATRIX", []string{"the matrix"}); got != 100 {
		t.Errorf("Score = %d, want 100", got)
	}
}

func TestScoreContainment(t *testing.T) {
	tests := []struct {
		candidate string
		target    string
	}{
		{"the wandering earth 2019", "the wandering earth"},
		{"matrix", "the matrix"},
		{"流浪地球2", "流浪地球"},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			if got := Score(tt.candidate, []string{tt.target}); got != 95 {
				t.Errorf("Score(%q, [%q]) = %d, want 95", tt.candidate, tt.target, got)
			}
		})
	}
}

func TestScoreTokenReordering(t *testing.T) {
	// Reordered words compare equal after token sorting.
	if got := Score("earth wandering the", []string{"the wandering earth"}); got != 100 {
		t.Errorf("Score = %d, want 100", got)
	}
}

func TestScoreFuzzy(t *testing.T) {
	got := Score("the wandring earth", []string{"the wandering earth"})
	if got < 85 || got >= 100 {
		t.Errorf("Score = %d, want a high fuzzy score below 100", got)
	}

	low := Score("completely unrelated", []string{"流浪地球"})
	if low >= 85 {
		t.Errorf("Score = %d, want a low score for unrelated strings", low)
	}
}

func TestScoreBestOfTargets(t *testing.T) {
	targets := []string{"something else", "the matrix", ""}
	if got := Score("the matrix", targets); got != 100 {
		t.Errorf("Score = %d, want 100 from best target", got)
	}
}

func TestScoreEmptyInputs(t *testing.T) {
	if got := Score("", []string{"the matrix"}); got != 0 {
		t.Errorf("Score with empty candidate = %d, want 0", got)
	}
	if got := Score("the matrix", nil); got != 0 {
		t.Errorf("Score with no targets = %d, want 0", got)
	}
	if got := Score("   ", []string{"  "}); got != 0 {
		t.Errorf("Score with blank inputs = %d, want 0", got)
	}
}

func TestScoreBounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "z"},
		{"abcdefg", "zyxwvut"},
		{"流浪地球", "star wars"},
	}

	for _, p := range pairs {
		got := Score(p[0], []string{p[1]})
		if got < 0 || got > 100 {
			t.Errorf("Score(%q, [%q]) = %d, out of range", p[0], p[1], got)
		}
	}
}
