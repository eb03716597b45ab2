// Package config defines the reader configuration surface.
//
// Configuration is explicit rather than ambient: flags that change query
// construction (fast-fuzzy, stop-word stripping) live here and are threaded
// into the builder call signatures, keeping construction deterministic.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/miyachan/lnx/internal/logging"
)

// SearchField pairs an indexed field name with its relevancy boost.
// A boost of 0 means "no boost applied"; boosts must not be negative.
type SearchField struct {
	Field string  `yaml:"field" json:"field"`
	Boost float64 `yaml:"boost" json:"boost"`
}

// ReaderConfig configures a reader handler for one index.
type ReaderConfig struct {
	// IndexName identifies the index in logs.
	IndexName string `yaml:"index_name" json:"index_name"`

	// IndexPath is the on-disk index location. Empty selects an in-memory
	// index, useful for tests and ephemeral deployments.
	IndexPath string `yaml:"index_path" json:"index_path"`

	// MaxConcurrency bounds the number of simultaneous search/get
	// operations. It also sizes the dispatch pool and the executor pool,
	// so total reader threads = MaxConcurrency * ReaderThreads.
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency"`

	// ReaderThreads is the number of threads backing each executor.
	// 1 selects a single-threaded executor.
	ReaderThreads int `yaml:"reader_threads" json:"reader_threads"`

	// SearchFields are the fields (with boosts) queried by default.
	SearchFields []SearchField `yaml:"search_fields" json:"search_fields"`

	// UseFastFuzzy selects precomputed-correction matching for fuzzy
	// queries. Requires SearchFields to point at corrected shadow fields.
	UseFastFuzzy bool `yaml:"use_fast_fuzzy" json:"use_fast_fuzzy"`

	// StripStopWords removes stop words from fast-fuzzy queries when the
	// query contains anything besides stop words.
	StripStopWords bool `yaml:"strip_stop_words" json:"strip_stop_words"`

	// Logging configures structured log output.
	Logging logging.Config `yaml:"logging" json:"logging"`
}

// Default returns a configuration suitable for a single-node deployment.
func Default() ReaderConfig {
	return ReaderConfig{
		IndexName:      "default",
		MaxConcurrency: runtime.NumCPU(),
		ReaderThreads:  1,
		Logging:        logging.DefaultConfig(),
	}
}

// Load reads a ReaderConfig from a yaml file, applying defaults for
// omitted values before validation.
func Load(path string) (ReaderConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c ReaderConfig) Validate() error {
	if c.IndexName == "" {
		return fmt.Errorf("index_name must not be empty")
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be >= 1, got %d", c.MaxConcurrency)
	}
	if c.ReaderThreads < 1 {
		return fmt.Errorf("reader_threads must be >= 1, got %d", c.ReaderThreads)
	}
	for _, sf := range c.SearchFields {
		if sf.Field == "" {
			return fmt.Errorf("search field name must not be empty")
		}
		if sf.Boost < 0 {
			return fmt.Errorf("search field %q has negative boost %v", sf.Field, sf.Boost)
		}
	}
	return nil
}
