package ml

import (
	"log"

	"github.com/riskgate/riskgate/pkg/telemetry"
)

// Scorer is the serving-time pipeline: frozen encoder -> forest ->
// threshold labeler. It holds the artifact through a Handle so a
// retrained model can be swapped in without interrupting readers.
//
// Score is a total function over well-typed input: no path through it
// returns an error or panics during normal operation. Unknown
// categorical values degrade to zero blocks inside the encoder, and an
// out-of-range risk_rule is scored verbatim but flagged as a
// data-quality signal.
type Scorer struct {
	handle  *Handle
	labeler *Labeler
}

// NewScorer wires a loaded artifact handle to a configured labeler.
func NewScorer(handle *Handle, labeler *Labeler) *Scorer {
	return &Scorer{handle: handle, labeler: labeler}
}

// Handle exposes the underlying artifact handle for reload plumbing.
func (s *Scorer) Handle() *Handle {
	return s.handle
}

// Score computes {ml_risk, ml_label} for one request context.
func (s *Scorer) Score(rc *RequestContext) ScoreResult {
	if rc.RiskRule < 0 || rc.RiskRule > 1 {
		// Accepted, not rejected: the encoder passes the value through
		// and the forest saw only [0,1] in training, so flag it.
		log.Printf("[WARN] risk_rule %.4f outside [0,1] for %s %s", rc.RiskRule, rc.Method, rc.Path)
		telemetry.RiskRuleOutOfRange.Inc()
	}

	artifact := s.handle.Current()
	p := artifact.PredictProbability(rc)
	label := s.labeler.Label(p)
	telemetry.ScoresTotal.WithLabelValues(label).Inc()
	return ScoreResult{MLRisk: p, MLLabel: label}
}
