package ml

import "testing"

func TestScorerKnownAttack(t *testing.T) {
	a := fittedArtifact(t)
	labeler, err := NewLabeler(DefaultLowThreshold, DefaultHighThreshold)
	if err != nil {
		t.Fatalf("NewLabeler: %v", err)
	}
	s := NewScorer(NewHandle(a), labeler)

	rc := RequestContext{Method: "GET", Path: "/honeypot/db-export", Role: "guest", UserID: "u3", UserAgent: "masscan/1.3", RiskRule: 0.9}
	res := s.Score(&rc)

	if res.MLRisk < 0 || res.MLRisk > 1 {
		t.Fatalf("ml_risk = %v outside [0,1]", res.MLRisk)
	}
	switch res.MLLabel {
	case LabelNormal, LabelMediumRisk, LabelHighRisk:
	default:
		t.Fatalf("unexpected label %q", res.MLLabel)
	}
}

func TestScorerOutOfRangeRiskRuleStillScores(t *testing.T) {
	a := fittedArtifact(t)
	labeler, err := NewLabeler(0.3, 0.6)
	if err != nil {
		t.Fatalf("NewLabeler: %v", err)
	}
	s := NewScorer(NewHandle(a), labeler)

	// Out-of-range risk_rule is a data-quality signal, not a rejection.
	rc := RequestContext{Method: "GET", Path: "/info", Role: "user", UserID: "u1", UserAgent: "curl/8.5.0", RiskRule: 1.7}
	res := s.Score(&rc)
	if res.MLLabel == "" {
		t.Error("out-of-range risk_rule must still produce a label")
	}
}

func TestScorerSeesSwappedArtifact(t *testing.T) {
	a := fittedArtifact(t)
	labeler, err := NewLabeler(0.3, 0.6)
	if err != nil {
		t.Fatalf("NewLabeler: %v", err)
	}
	s := NewScorer(NewHandle(a), labeler)

	b := fittedArtifact(t)
	s.Handle().Swap(b)
	if s.Handle().Current() != b {
		t.Error("scorer should serve the swapped-in artifact")
	}

	rc := RequestContext{Method: "GET", Path: "/info", Role: "user", UserID: "u1", UserAgent: "curl/8.5.0", RiskRule: 0.1}
	if res := s.Score(&rc); res.MLLabel == "" {
		t.Error("scoring after swap failed")
	}
}
