package training

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/riskgate/riskgate/pkg/ml"
)

// Archetype is one hand-authored traffic pattern the augmenter samples
// from. Historical logs are sparse and heavily imbalanced toward
// benign traffic; injecting balanced archetypes guarantees the forest
// sees enough of both classes to avoid degenerating into a
// majority-class predictor.
type Archetype struct {
	Name       string
	IsAttack   bool
	Methods    []string
	Paths      []string
	Roles      []string
	UserAgents []string

	// RiskRule produces the rule-engine score for a sampled example.
	// Fixed for most archetypes, role-dependent for admin access.
	RiskRule func(role string, rng *rand.Rand) float64
}

// ArchetypeHoneypot and friends name the built-in archetypes for use
// in weight maps and tests.
const (
	ArchetypeInfo        = "info"
	ArchetypeProfile     = "profile"
	ArchetypeAdminSecret = "admin_secret"
	ArchetypeHoneypot    = "honeypot"
)

// DefaultArchetypes returns the built-in archetype set: two benign
// access patterns and two malicious ones. Honeypot examples always
// carry risk_rule >= 0.8; the deception layer scores decoy hits that
// high by construction.
func DefaultArchetypes() []Archetype {
	return []Archetype{
		{
			Name:       ArchetypeInfo,
			IsAttack:   false,
			Methods:    []string{"GET"},
			Paths:      []string{"/info", "/info/status", "/info/version"},
			Roles:      []string{"user", "guest"},
			UserAgents: []string{"Mozilla/5.0", "curl/8.5.0", "okhttp/4.12"},
			RiskRule: func(_ string, rng *rand.Rand) float64 {
				return 0.05 + rng.Float64()*0.10
			},
		},
		{
			Name:       ArchetypeProfile,
			IsAttack:   false,
			Methods:    []string{"GET", "POST"},
			Paths:      []string{"/profile", "/profile/settings", "/profile/avatar"},
			Roles:      []string{"user", "admin"},
			UserAgents: []string{"Mozilla/5.0", "riskgate-sdk/1.2"},
			RiskRule: func(role string, rng *rand.Rand) float64 {
				// Admin profile edits trip more rules than user ones.
				if role == "admin" {
					return 0.15 + rng.Float64()*0.10
				}
				return 0.05 + rng.Float64()*0.10
			},
		},
		{
			Name:       ArchetypeAdminSecret,
			IsAttack:   true,
			Methods:    []string{"GET", "POST", "DELETE"},
			Paths:      []string{"/admin-secret", "/admin-secret/keys", "/internal/config"},
			Roles:      []string{"guest", "user"},
			UserAgents: []string{"sqlmap/1.8", "python-requests/2.31", "curl/8.5.0"},
			RiskRule: func(_ string, rng *rand.Rand) float64 {
				return 0.70 + rng.Float64()*0.25
			},
		},
		{
			Name:       ArchetypeHoneypot,
			IsAttack:   true,
			Methods:    []string{"GET", "POST"},
			Paths:      []string{"/honeypot/db-export", "/honeypot/admin", "/decoy/files"},
			Roles:      []string{"guest", "user"},
			UserAgents: []string{"masscan/1.3", "zgrab/0.x", "python-requests/2.31"},
			RiskRule: func(_ string, rng *rand.Rand) float64 {
				return 0.80 + rng.Float64()*0.20
			},
		},
	}
}

// Generate samples count labeled examples from the archetypes,
// selecting archetypes by the given weights (nil = uniform). Output is
// byte-identical across runs for the same arguments and seed.
func Generate(count int, weights map[string]float64, seed int64) ([]ml.LabeledExample, error) {
	return GenerateFrom(DefaultArchetypes(), count, weights, seed)
}

// GenerateFrom is Generate over an explicit archetype set.
func GenerateFrom(archetypes []Archetype, count int, weights map[string]float64, seed int64) ([]ml.LabeledExample, error) {
	if count < 0 {
		return nil, fmt.Errorf("synth: negative count %d", count)
	}
	if len(archetypes) == 0 {
		return nil, fmt.Errorf("synth: no archetypes")
	}

	// Cumulative weight table in name order for deterministic lookup.
	cum := make([]float64, len(archetypes))
	total := 0.0
	for i, a := range archetypes {
		w := 1.0
		if weights != nil {
			var ok bool
			if w, ok = weights[a.Name]; !ok {
				w = 0
			}
		}
		if w < 0 {
			return nil, fmt.Errorf("synth: negative weight for archetype %q", a.Name)
		}
		total += w
		cum[i] = total
	}
	if total == 0 {
		return nil, fmt.Errorf("synth: all archetype weights are zero")
	}

	rng := rand.New(rand.NewSource(seed))
	out := make([]ml.LabeledExample, 0, count)
	for n := 0; n < count; n++ {
		pick := rng.Float64() * total
		i := sort.SearchFloat64s(cum, pick)
		if i == len(archetypes) {
			i--
		}
		a := archetypes[i]

		role := a.Roles[rng.Intn(len(a.Roles))]
		out = append(out, ml.LabeledExample{
			Context: ml.RequestContext{
				Method:    a.Methods[rng.Intn(len(a.Methods))],
				Path:      a.Paths[rng.Intn(len(a.Paths))],
				Role:      role,
				UserID:    fmt.Sprintf("synth-%04d", rng.Intn(200)),
				UserAgent: a.UserAgents[rng.Intn(len(a.UserAgents))],
				RiskRule:  a.RiskRule(role, rng),
			},
			IsAttack: a.IsAttack,
		})
	}
	return out, nil
}
