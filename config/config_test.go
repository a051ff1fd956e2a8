package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate(t *testing.T) {
	t.Run("writes defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)

		cfg, err := LoadOrCreate(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)

		onDisk, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, onDisk)
	})

	t.Run("keeps existing values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		want := DefaultConfig()
		want.Providers = []Provider{{Name: "dev", URL: "ws://localhost:8546", Active: true}}
		want.SupportedChains = []int64{1, 31337}
		want.Logger = true
		require.NoError(t, Save(path, want))

		cfg, err := LoadOrCreate(path)
		require.NoError(t, err)
		assert.Equal(t, want, cfg)
	})

	t.Run("fills missing fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		require.NoError(t, os.WriteFile(path, []byte(`{"logger": true}`), 0o644))

		cfg, err := LoadOrCreate(path)
		require.NoError(t, err)
		assert.True(t, cfg.Logger)
		assert.Equal(t, "👋", cfg.SignMessage)
		assert.Equal(t, 12*time.Second, cfg.PollInterval())
		assert.Equal(t, "http://127.0.0.1:1248", cfg.ActiveProvider().URL)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))

		cfg, err := LoadOrCreate(path)
		assert.Error(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestProviderURL(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv(ProviderEnv, "")
	assert.Equal(t, "http://127.0.0.1:1248", cfg.ProviderURL(""))

	t.Setenv(ProviderEnv, "ws://127.0.0.1:1248")
	assert.Equal(t, "ws://127.0.0.1:1248", cfg.ProviderURL(""))
	assert.Equal(t, "http://localhost:8545", cfg.ProviderURL("http://localhost:8545"))
}

func TestActiveProvider(t *testing.T) {
	cfg := Config{Providers: []Provider{
		{Name: "a", URL: "http://a"},
		{Name: "b", URL: "http://b", Active: true},
	}}
	assert.Equal(t, "b", cfg.ActiveProvider().Name)

	cfg.Providers[1].Active = false
	assert.Equal(t, "a", cfg.ActiveProvider().Name)

	assert.Equal(t, Provider{}, Config{}.ActiveProvider())
}

func TestChainIDs(t *testing.T) {
	ids := Config{SupportedChains: []int64{1, 11155111}}.ChainIDs()
	require.Len(t, ids, 2)
	assert.Equal(t, int64(11155111), ids[1].Int64())
	assert.Empty(t, Config{}.ChainIDs())
}
