package ml

import "testing"

func TestLabelerBuckets(t *testing.T) {
	l, err := NewLabeler(0.30, 0.60)
	if err != nil {
		t.Fatalf("NewLabeler: %v", err)
	}

	tests := []struct {
		p    float64
		want string
	}{
		{0.0, LabelNormal},
		{0.29, LabelNormal},
		{0.30, LabelMediumRisk}, // boundary is inclusive upward
		{0.45, LabelMediumRisk},
		{0.59, LabelMediumRisk},
		{0.60, LabelHighRisk}, // boundary is inclusive upward
		{0.99, LabelHighRisk},
		{1.0, LabelHighRisk},
	}
	for _, tt := range tests {
		if got := l.Label(tt.p); got != tt.want {
			t.Errorf("Label(%v) = %s, want %s", tt.p, got, tt.want)
		}
	}
}

func TestLabelerMonotonic(t *testing.T) {
	l, err := NewLabeler(0.2, 0.5)
	if err != nil {
		t.Fatalf("NewLabeler: %v", err)
	}

	rank := map[string]int{LabelNormal: 0, LabelMediumRisk: 1, LabelHighRisk: 2}
	prev := -1
	for p := 0.0; p <= 1.0; p += 0.01 {
		r := rank[l.Label(p)]
		if r < prev {
			t.Fatalf("label rank decreased at p=%v", p)
		}
		prev = r
	}
}

func TestNewLabelerValidation(t *testing.T) {
	cases := []struct{ low, high float64 }{
		{-0.1, 0.5}, // low below 0
		{0.3, 1.1},  // high above 1
		{0.5, 0.5},  // equal
		{0.6, 0.3},  // inverted
	}
	for _, c := range cases {
		if _, err := NewLabeler(c.low, c.high); err == nil {
			t.Errorf("NewLabeler(%v, %v) should fail", c.low, c.high)
		}
	}

	if _, err := NewLabeler(0, 1); err != nil {
		t.Errorf("NewLabeler(0, 1) should be legal: %v", err)
	}
}
