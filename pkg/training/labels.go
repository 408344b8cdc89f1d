// Package training implements the offline half of riskgate: weak-label
// derivation from historical logs, synthetic augmentation, dataset
// splitting, and the orchestrator that fits and persists the artifact.
package training

import (
	"github.com/riskgate/riskgate/pkg/ml"
	"github.com/riskgate/riskgate/pkg/patterns"
)

// LogRow is one row of the historical request log: the six scoring
// fields plus the response status the gateway recorded.
type LogRow struct {
	Method     string
	Path       string
	Role       string
	UserID     string
	UserAgent  string
	RiskRule   float64
	StatusCode int
}

// LabelRule is the weak-label heuristic. A row is labeled attack when
// any clause fires:
//
//	(a) statusCode >= StatusThreshold (the request was rejected/abnormal)
//	(b) risk_rule >= RuleScoreThreshold (the rule engine already flagged it)
//	(c) the path touches a decoy/honeypot pattern
//
// These are weak labels, not ground truth. The only guarantee is
// determinism: the same row always derives the same label.
type LabelRule struct {
	StatusThreshold    int
	RuleScoreThreshold float64
}

// DefaultLabelRule mirrors the original trainer (status >= 400) with
// the rule-engine clause at 0.7.
func DefaultLabelRule() LabelRule {
	return LabelRule{StatusThreshold: 400, RuleScoreThreshold: 0.7}
}

// Derive computes is_attack for one row.
func (r LabelRule) Derive(row *LogRow) bool {
	if row.StatusCode >= r.StatusThreshold {
		return true
	}
	if row.RiskRule >= r.RuleScoreThreshold {
		return true
	}
	return patterns.Get().MatchesDecoy(row.Path)
}

// Label derives labels for a whole log, preserving row order.
func (r LabelRule) Label(rows []LogRow) []ml.LabeledExample {
	out := make([]ml.LabeledExample, len(rows))
	for i := range rows {
		out[i] = ml.LabeledExample{
			Context: ml.RequestContext{
				Method:    rows[i].Method,
				Path:      rows[i].Path,
				Role:      rows[i].Role,
				UserID:    rows[i].UserID,
				UserAgent: rows[i].UserAgent,
				RiskRule:  rows[i].RiskRule,
			},
			IsAttack: r.Derive(&rows[i]),
		}
	}
	return out
}
