// Package patterns provides a centralized registry of decoy and
// sensitive-path patterns for the riskgate training pipeline. All
// patterns are registered once at package init and shared by the label
// deriver and the synthetic augmenter.
//
// Design principles:
// - BUILD ONCE: the registry is populated at first use, not per row
// - DRY: single source of truth for decoy/honeypot path knowledge
// - CATEGORIZED: patterns organized by category for targeted checks
//
// Matching is plain substring containment: decoy paths are planted by
// the deception layer as literal URL segments, so regex machinery
// would buy nothing over strings.Contains on millions of log rows.
package patterns

import (
	"strings"
	"sync"
)

// Category groups path patterns by what planting them implies.
type Category string

const (
	// CategoryHoneypot marks paths only a deception endpoint serves;
	// any request touching one is an attack by definition.
	CategoryHoneypot Category = "honeypot"

	// CategoryAdminSecret marks sensitive administrative paths that
	// regular traffic has no business probing.
	CategoryAdminSecret Category = "admin_secret"

	// CategoryProbe marks generic scanner/recon paths seen in crawls.
	CategoryProbe Category = "probe"
)

// Pattern is one registered path substring with metadata.
type Pattern struct {
	Name        string   // Human-readable name for logging
	Substring   string   // Lowercase substring matched against paths
	Category    Category // Pattern category
	Severity    int      // Risk contribution (0-100)
	Description string   // What hitting this path implies
}

// Registry holds all registered patterns, organized by category.
type Registry struct {
	mu         sync.RWMutex
	byCategory map[Category][]*Pattern
	all        []*Pattern
}

// global singleton - initialized once at package load
var (
	globalRegistry *Registry
	initOnce       sync.Once
)

// Get returns the global pattern registry (singleton).
// Thread-safe and guaranteed to be initialized.
func Get() *Registry {
	initOnce.Do(func() {
		globalRegistry = newRegistry()
	})
	return globalRegistry
}

func newRegistry() *Registry {
	r := &Registry{
		byCategory: make(map[Category][]*Pattern),
		all:        make([]*Pattern, 0, 32),
	}
	r.registerHoneypotPatterns()
	r.registerAdminSecretPatterns()
	r.registerProbePatterns()
	return r
}

// register adds a pattern to the registry (internal use only)
func (r *Registry) register(name, substring string, category Category, severity int, description string) {
	p := &Pattern{
		Name:        name,
		Substring:   strings.ToLower(substring),
		Category:    category,
		Severity:    severity,
		Description: description,
	}
	r.byCategory[category] = append(r.byCategory[category], p)
	r.all = append(r.all, p)
}

// GetByCategory returns all patterns for a specific category.
// Returns empty slice if category not found (never nil).
func (r *Registry) GetByCategory(cat Category) []*Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if patterns, ok := r.byCategory[cat]; ok {
		return patterns
	}
	return []*Pattern{}
}

// MatchAny checks a request path against the given categories and
// returns the first matching pattern or nil. Optimized for early exit;
// the label deriver calls this once per log row.
func (r *Registry) MatchAny(path string, cats ...Category) *Pattern {
	lower := strings.ToLower(path)
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cat := range cats {
		for _, p := range r.byCategory[cat] {
			if strings.Contains(lower, p.Substring) {
				return p
			}
		}
	}
	return nil
}

// MatchesDecoy reports whether a path touches any honeypot or
// admin-secret pattern. This is the containment check the label
// deriver's honeypot clause uses.
func (r *Registry) MatchesDecoy(path string) bool {
	return r.MatchAny(path, CategoryHoneypot, CategoryAdminSecret) != nil
}

// TotalPatterns returns the total count of registered patterns.
func (r *Registry) TotalPatterns() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}

// CategoryCount returns the number of patterns in a category.
func (r *Registry) CategoryCount(cat Category) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCategory[cat])
}
