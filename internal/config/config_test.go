package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ReaderConfig)
	}{
		{"empty name", func(c *ReaderConfig) { c.IndexName = "" }},
		{"zero concurrency", func(c *ReaderConfig) { c.MaxConcurrency = 0 }},
		{"zero reader threads", func(c *ReaderConfig) { c.ReaderThreads = 0 }},
		{"negative boost", func(c *ReaderConfig) {
			c.SearchFields = []SearchField{{Field: "title", Boost: -1}}
		}},
		{"unnamed search field", func(c *ReaderConfig) {
			c.SearchFields = []SearchField{{Boost: 2}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_AppliesDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reader.yaml")
	raw := `
index_name: movies
max_concurrency: 4
search_fields:
  - field: title
    boost: 2.0
  - field: overview
    boost: 0
use_fast_fuzzy: true
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "movies", cfg.IndexName)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, 1, cfg.ReaderThreads, "default applied")
	assert.True(t, cfg.UseFastFuzzy)
	require.Len(t, cfg.SearchFields, 2)
	assert.Equal(t, 2.0, cfg.SearchFields[0].Boost)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reader.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_concurrency: -2\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
