package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 900, cfg.Chunker.MaxChars)
	assert.Equal(t, 120, cfg.Chunker.OverlapChars)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 5, cfg.Answerer.MaxSentences)
	assert.InDelta(t, 0.2, cfg.Answerer.QuantitativeThreshold, 1e-9)
}

func Test_Load_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  addr: \":9090\"\nchunker:\n  max_chars: 400\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 400, cfg.Chunker.MaxChars)
	// Unset fields fall back to defaults.
	assert.Equal(t, 120, cfg.Chunker.OverlapChars)
	assert.Equal(t, 5, cfg.Answerer.MaxSentences)
}

func Test_SaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Server.Addr = ":7777"
	cfg.Storage.WatchUploads = true
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", loaded.Server.Addr)
	assert.True(t, loaded.Storage.WatchUploads)
}

func Test_Load_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: a: map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
