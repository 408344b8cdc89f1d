package training

import (
	"reflect"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(200, nil, 42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(200, nil, 42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should produce identical examples")
	}

	c, err := Generate(200, nil, 43)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds should produce different examples")
	}
}

func TestGenerateCount(t *testing.T) {
	out, err := Generate(57, nil, 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out) != 57 {
		t.Errorf("got %d examples, want 57", len(out))
	}

	out, err = Generate(0, nil, 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("count 0 should yield no examples, got %d", len(out))
	}
}

func TestGenerateHoneypotArchetype(t *testing.T) {
	weights := map[string]float64{ArchetypeHoneypot: 1}
	out, err := Generate(100, weights, 7)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, ex := range out {
		if !ex.IsAttack {
			t.Fatalf("honeypot example labeled benign: %+v", ex.Context)
		}
		if ex.Context.RiskRule < 0.8 || ex.Context.RiskRule > 1.0 {
			t.Fatalf("honeypot risk_rule %v outside [0.8,1.0]", ex.Context.RiskRule)
		}
	}
}

func TestGenerateBenignArchetypesLowRisk(t *testing.T) {
	weights := map[string]float64{ArchetypeInfo: 1, ArchetypeProfile: 1}
	out, err := Generate(100, weights, 7)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, ex := range out {
		if ex.IsAttack {
			t.Fatalf("benign archetype produced attack: %+v", ex.Context)
		}
		if ex.Context.RiskRule > 0.3 {
			t.Fatalf("benign risk_rule %v above 0.3", ex.Context.RiskRule)
		}
	}
}

func TestGenerateBothClassesPresent(t *testing.T) {
	out, err := Generate(400, nil, 42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var attacks int
	for _, ex := range out {
		if ex.IsAttack {
			attacks++
		}
	}
	// Uniform over 2 benign + 2 attack archetypes: the split cannot be
	// wildly lopsided.
	if attacks < 100 || attacks > 300 {
		t.Errorf("attack count %d out of 400 is implausibly skewed", attacks)
	}
}

func TestGenerateValidation(t *testing.T) {
	if _, err := Generate(-1, nil, 1); err == nil {
		t.Error("negative count should fail")
	}
	if _, err := GenerateFrom(nil, 10, nil, 1); err == nil {
		t.Error("empty archetype set should fail")
	}
	if _, err := Generate(10, map[string]float64{ArchetypeInfo: -1}, 1); err == nil {
		t.Error("negative weight should fail")
	}
	if _, err := Generate(10, map[string]float64{"unknown": 1}, 1); err == nil {
		t.Error("weights matching no archetype should fail")
	}
}
