// Package config defines the consumed configuration surface of the
// retrieval engine and its validation rules. The engine owns no file
// format beyond this YAML shape; callers may equally build the struct in
// code.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Strategy names accepted by the "strategy" field.
const (
	StrategyTagsOnly       = "tags_only"
	StrategyEmbeddingsOnly = "embeddings_only"
	StrategyHybrid         = "hybrid"
	StrategyAuto           = "auto"
)

// ValidStrategies lists every accepted strategy name.
func ValidStrategies() []string {
	return []string{StrategyTagsOnly, StrategyEmbeddingsOnly, StrategyHybrid, StrategyAuto}
}

var ErrInvalidConfig = errors.New("config: invalid configuration")

// TagNormalization controls tag expansion and hybrid candidate generation.
type TagNormalization struct {
	IncludeRelatedTags bool `yaml:"include_related_tags"`
	MaxCandidates      int  `yaml:"max_candidates"`
}

// Semantic controls embedding-based scoring.
type Semantic struct {
	Model       string  `yaml:"model"`
	ScoreWeight float64 `yaml:"score_weight"`
	MinScore    float64 `yaml:"min_score"`
}

// Auto controls strategy auto-selection thresholds. The thresholds live
// here and nowhere else; strategies never hardcode them.
type Auto struct {
	SimpleTaskThreshold        int  `yaml:"simple_task_threshold"`
	DescriptionLengthThreshold int  `yaml:"description_length_threshold"`
	UseSemanticForComplex      bool `yaml:"use_semantic_for_complex"`
}

// Config is the full retrieval configuration. MinScore is the engine-level
// floor applied to every strategy's final scores; Semantic.MinScore
// additionally filters raw cosine scores inside the embedding strategy.
type Config struct {
	Strategy         string           `yaml:"strategy"`
	MaxResults       int              `yaml:"max_results"`
	MinScore         float64          `yaml:"min_score"`
	TagNormalization TagNormalization `yaml:"tag_normalization"`
	Semantic         Semantic         `yaml:"semantic"`
	CacheEnabled     bool             `yaml:"cache_enabled"`
	CacheTTLSeconds  int              `yaml:"cache_ttl"`
	Auto             Auto             `yaml:"auto"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		Strategy:   StrategyAuto,
		MaxResults: 5,
		MinScore:   0,
		TagNormalization: TagNormalization{
			IncludeRelatedTags: false,
			MaxCandidates:      20,
		},
		Semantic: Semantic{
			ScoreWeight: 0.6,
			MinScore:    0,
		},
		CacheEnabled:    true,
		CacheTTLSeconds: 300,
		Auto: Auto{
			SimpleTaskThreshold:        2,
			DescriptionLengthThreshold: 20,
			UseSemanticForComplex:      true,
		},
	}
}

// Parse decodes YAML over the defaults, so omitted fields keep their
// documented values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// CacheTTL returns the cache TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate checks every field against its documented range. Validation
// failures are fatal: the caller must fix the configuration before
// retrying.
func (c Config) Validate() error {
	valid := false
	for _, s := range ValidStrategies() {
		if c.Strategy == s {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: unknown strategy %q, valid options: %v",
			ErrInvalidConfig, c.Strategy, ValidStrategies())
	}

	if c.MaxResults <= 0 {
		return fmt.Errorf("%w: max_results must be > 0, got %d", ErrInvalidConfig, c.MaxResults)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("%w: min_score must be in [0,1], got %g", ErrInvalidConfig, c.MinScore)
	}
	if c.TagNormalization.MaxCandidates <= 0 {
		return fmt.Errorf("%w: tag_normalization.max_candidates must be > 0, got %d",
			ErrInvalidConfig, c.TagNormalization.MaxCandidates)
	}
	if c.Semantic.ScoreWeight < 0 || c.Semantic.ScoreWeight > 1 {
		return fmt.Errorf("%w: semantic.score_weight must be in [0,1], got %g",
			ErrInvalidConfig, c.Semantic.ScoreWeight)
	}
	if c.Semantic.MinScore < 0 || c.Semantic.MinScore > 1 {
		return fmt.Errorf("%w: semantic.min_score must be in [0,1], got %g",
			ErrInvalidConfig, c.Semantic.MinScore)
	}
	if c.CacheEnabled && c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("%w: cache_ttl must be > 0 seconds when cache_enabled, got %d",
			ErrInvalidConfig, c.CacheTTLSeconds)
	}
	if c.Auto.SimpleTaskThreshold < 0 {
		return fmt.Errorf("%w: auto.simple_task_threshold must be >= 0, got %d",
			ErrInvalidConfig, c.Auto.SimpleTaskThreshold)
	}
	if c.Auto.DescriptionLengthThreshold < 0 {
		return fmt.Errorf("%w: auto.description_length_threshold must be >= 0, got %d",
			ErrInvalidConfig, c.Auto.DescriptionLengthThreshold)
	}
	return nil
}
