// Package ml implements the scoring core of the riskgate gateway: a
// one-hot feature encoder, a bagged decision-tree classifier, the
// probability-to-label thresholding, and the trained-artifact bundle
// the serving path consumes read-only.
package ml

// CategoricalFields is the fixed encoding order of the categorical
// request fields. The encoder emits one-hot blocks in exactly this
// order, followed by the numeric risk_rule value. Changing this order
// invalidates every persisted artifact.
var CategoricalFields = []string{"method", "path", "role", "userId", "userAgent"}

// RequestContext is the request metadata record scored by the gateway.
// RiskRule is a pre-computed rule-engine score in [0,1] supplied by the
// upstream firewall layer; it is passed through to the feature vector
// unmodified.
type RequestContext struct {
	Method    string  `json:"method"`
	Path      string  `json:"path"`
	Role      string  `json:"role"`
	UserID    string  `json:"userId"`
	UserAgent string  `json:"userAgent"`
	RiskRule  float64 `json:"risk_rule"`
}

// categorical returns the field values in CategoricalFields order.
func (rc *RequestContext) categorical() [5]string {
	return [5]string{rc.Method, rc.Path, rc.Role, rc.UserID, rc.UserAgent}
}

// LabeledExample is a RequestContext with its derived ground truth.
// Labels are produced only by the training-side label deriver or the
// synthetic augmenter, never by hand.
type LabeledExample struct {
	Context  RequestContext `json:"context"`
	IsAttack bool           `json:"is_attack"`
}

// ScoreResult is the serving response: a probability and the discrete
// risk bucket derived from it. It is a pure function of the request and
// the loaded artifact.
type ScoreResult struct {
	MLRisk  float64 `json:"ml_risk"`
	MLLabel string  `json:"ml_label"`
}
