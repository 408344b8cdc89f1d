package ml

import "fmt"

// Risk labels returned to the upstream decision layer.
const (
	LabelNormal     = "normal"
	LabelMediumRisk = "medium_risk"
	LabelHighRisk   = "high_risk"
)

// Default thresholds. The two source revisions of the original service
// disagreed (0.3/0.6 vs 0.2/0.5); these defaults follow the later one
// and both are plain configuration, not model output.
const (
	DefaultLowThreshold  = 0.30
	DefaultHighThreshold = 0.60
)

// Labeler maps a probability onto the three risk buckets using two
// ordered thresholds. Both bounds are inclusive at the upper bucket:
// p == Low yields medium_risk, p == High yields high_risk.
type Labeler struct {
	Low  float64
	High float64
}

// NewLabeler validates the threshold pair.
func NewLabeler(low, high float64) (*Labeler, error) {
	if low < 0 || high > 1 || low >= high {
		return nil, fmt.Errorf("risk labeler: thresholds must satisfy 0 <= low < high <= 1, got %v/%v", low, high)
	}
	return &Labeler{Low: low, High: high}, nil
}

// Label buckets a probability. Monotonic non-decreasing in p.
func (l *Labeler) Label(p float64) string {
	switch {
	case p >= l.High:
		return LabelHighRisk
	case p >= l.Low:
		return LabelMediumRisk
	default:
		return LabelNormal
	}
}
