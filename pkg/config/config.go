// Package config holds the riskgate configuration. Every setting has
// an environment-variable default and can be overridden from a YAML
// file, so containerized deployments and local runs share one code
// path.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds global settings for the riskgate gateway and trainer.
type Config struct {
	// === Serving ===
	ListenPort   string `yaml:"listen_port"`   // HTTP port for the gateway (default: "5000")
	ArtifactPath string `yaml:"artifact_path"` // Path to the trained artifact file
	RegistryDir  string `yaml:"registry_dir"`  // Directory for artifact registry metadata
	RedisAddr    string `yaml:"redis_addr"`    // Optional Redis for registry mirroring ("" = disabled)

	// === Risk thresholds (0.0 - 1.0) ===
	// Probability < Low => normal; < High => medium_risk; else high_risk.
	// The two observed revisions of the service used different pairs
	// (0.3/0.6 and 0.2/0.5); neither is authoritative, so both bounds
	// are plain configuration.
	LowThreshold  float64 `yaml:"low_threshold"`
	HighThreshold float64 `yaml:"high_threshold"`

	// === Backpressure ===
	MaxConcurrentScores int `yaml:"max_concurrent_scores"` // Concurrent /score cap (default: 256)

	// === Training ===
	Training TrainingConfig `yaml:"training"`
}

// TrainingConfig drives the offline trainer.
type TrainingConfig struct {
	// Forest construction.
	Trees        int    `yaml:"trees"`         // Ensemble size (default: 100)
	MaxDepth     int    `yaml:"max_depth"`     // 0 = unbounded
	MinLeafSize  int    `yaml:"min_leaf_size"` // Minimum examples per leaf (default: 1)
	ClassBalance string `yaml:"class_balance"` // "balanced" or "none" (default: "balanced")

	// Pipeline.
	Seed           int64   `yaml:"seed"`            // Random seed for shuffle/split/forest (default: 42)
	TestFraction   float64 `yaml:"test_fraction"`   // Stratified test fold fraction (default: 0.3)
	SyntheticCount int     `yaml:"synthetic_count"` // Synthetic examples injected (default: 400)

	// Weak-label rule.
	StatusThreshold    int     `yaml:"status_threshold"`     // statusCode >= this labels attack (default: 400)
	RuleScoreThreshold float64 `yaml:"rule_score_threshold"` // risk_rule >= this labels attack (default: 0.7)
}

// NewDefaultConfig creates a Config with sensible defaults.
// All settings can be overridden via environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		ListenPort:   GetEnv("RISKGATE_PORT", "5000"),
		ArtifactPath: GetEnv("RISKGATE_ARTIFACT", "model/riskgate.model"),
		RegistryDir:  GetEnv("RISKGATE_REGISTRY_DIR", "model/registry"),
		RedisAddr:    GetEnv("RISKGATE_REDIS_ADDR", ""),

		LowThreshold:  GetEnvFloat("RISKGATE_LOW_THRESHOLD", 0.30),
		HighThreshold: GetEnvFloat("RISKGATE_HIGH_THRESHOLD", 0.60),

		MaxConcurrentScores: GetEnvInt("RISKGATE_MAX_CONCURRENT", 256),

		Training: TrainingConfig{
			Trees:        GetEnvInt("RISKGATE_TREES", 100),
			MaxDepth:     GetEnvInt("RISKGATE_MAX_DEPTH", 0),
			MinLeafSize:  GetEnvInt("RISKGATE_MIN_LEAF", 1),
			ClassBalance: GetEnv("RISKGATE_CLASS_BALANCE", "balanced"),

			Seed:           int64(GetEnvInt("RISKGATE_SEED", 42)),
			TestFraction:   GetEnvFloat("RISKGATE_TEST_FRACTION", 0.3),
			SyntheticCount: GetEnvInt("RISKGATE_SYNTHETIC_COUNT", 400),

			StatusThreshold:    GetEnvInt("RISKGATE_STATUS_THRESHOLD", 400),
			RuleScoreThreshold: GetEnvFloat("RISKGATE_RULE_THRESHOLD", 0.7),
		},
	}
}

// LoadFile overlays settings from a YAML file onto the receiver.
// Unset keys keep their current (env/default) values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Validate checks cross-field consistency. Called at startup; a
// misconfigured gateway must refuse to start, not serve junk labels.
func (c *Config) Validate() error {
	if c.LowThreshold < 0 || c.HighThreshold > 1 || c.LowThreshold >= c.HighThreshold {
		return fmt.Errorf("config: thresholds must satisfy 0 <= low < high <= 1, got %v/%v",
			c.LowThreshold, c.HighThreshold)
	}
	if c.Training.TestFraction <= 0 || c.Training.TestFraction >= 1 {
		return fmt.Errorf("config: test_fraction must be in (0,1), got %v", c.Training.TestFraction)
	}
	if c.Training.Trees <= 0 {
		return fmt.Errorf("config: trees must be positive, got %d", c.Training.Trees)
	}
	if cb := c.Training.ClassBalance; cb != "balanced" && cb != "none" {
		return fmt.Errorf("config: class_balance must be \"balanced\" or \"none\", got %q", cb)
	}
	if c.Training.RuleScoreThreshold < 0 || c.Training.RuleScoreThreshold > 1 {
		return fmt.Errorf("config: rule_score_threshold must be in [0,1], got %v", c.Training.RuleScoreThreshold)
	}
	return nil
}

// MustValidate calls Validate and fatally exits if validation fails.
// Call this at startup before starting the server.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: Configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] Configuration validated successfully")
}

// Helper functions for environment variable parsing.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
