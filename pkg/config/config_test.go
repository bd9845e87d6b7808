//go:build unit || !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwm-project/techwm/pkg/config/types"
)

func TestConfig(t *testing.T) {
	// Cleanup viper settings after each test
	defer Reset()

	t.Run("KeyAsEnvVar", func(t *testing.T) {
		assert.Equal(t, "TECHWM_SERVER_PORT", KeyAsEnvVar(types.ServerPort))
		assert.Equal(t, "TECHWM_STORE_TYPE", KeyAsEnvVar(types.StoreType))
	})

	t.Run("LoadDefaults", func(t *testing.T) {
		defer Reset()
		path := t.TempDir()

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, Default(path), cfg)
		assert.Equal(t, filepath.Join(path, DatabaseFileName), cfg.Store.Path)
		assert.Equal(t, types.BoltDB, cfg.Store.Type)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		defer Reset()
		t.Setenv(KeyAsEnvVar(types.ServerPort), "9000")
		t.Setenv(KeyAsEnvVar(types.StoreType), "inmemory")
		t.Setenv(KeyAsEnvVar(types.ServerShutdownTimeout), "1m")

		cfg, err := Load(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, types.InMemory, cfg.Store.Type)
		assert.Equal(t, time.Minute, cfg.Server.ShutdownTimeout.AsTimeDuration())
		assert.Equal(t, "9000", Getenv(types.ServerPort))
	})

	t.Run("InvalidStoreType", func(t *testing.T) {
		defer Reset()
		t.Setenv(KeyAsEnvVar(types.StoreType), "postgres")

		_, err := Load(t.TempDir())
		require.Error(t, err)
	})

	t.Run("FileOverrides", func(t *testing.T) {
		defer Reset()
		path := t.TempDir()
		content := `
Server:
  Port: 4321
Store:
  Type: InMemory
Policy:
  Limits:
    research:
      MaxGPU: 4
`
		require.NoError(t, os.WriteFile(filepath.Join(path, "config.yaml"), []byte(content), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 4321, cfg.Server.Port)
		assert.Equal(t, DefaultHost, cfg.Server.Host)
		assert.Equal(t, types.InMemory, cfg.Store.Type)
		require.Contains(t, cfg.Policy.Limits, "research")
		require.NotNil(t, cfg.Policy.Limits["research"].MaxGPU)
		assert.Equal(t, 4, *cfg.Policy.Limits["research"].MaxGPU)
		assert.Nil(t, cfg.Policy.Limits["research"].MaxCPU)
	})

	t.Run("InitWritesFile", func(t *testing.T) {
		defer Reset()
		path := filepath.Join(t.TempDir(), "repo")

		written, err := Init(path)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(path, "config.yaml"))

		Reset()
		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, written, loaded)
	})
}
