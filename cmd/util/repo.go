package util

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/techwm-project/techwm/pkg/config"
	"github.com/techwm-project/techwm/pkg/config/types"
)

// RepoEnvVar points the CLI at a repo directory other than ~/.techwm.
const RepoEnvVar = "TECHWM_DIR"

const defaultRepoDirName = ".techwm"

var ShutdownSignals = []os.Signal{
	syscall.SIGTERM,
	syscall.SIGINT,
}

// DefaultRepoPath returns $TECHWM_DIR, falling back to ~/.techwm.
func DefaultRepoPath() (string, error) {
	if path := os.Getenv(RepoEnvVar); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the home directory, set %s: %w", RepoEnvVar, err)
	}
	return filepath.Join(home, defaultRepoDirName), nil
}

// Overrides are command line values that win over the config file and the
// environment. Empty fields are left alone.
type Overrides struct {
	Host string
	Port int
}

// LoadConfig reads the repo config and applies overrides on top. Earlier
// viper state is discarded first.
func LoadConfig(repoPath string, overrides Overrides) (types.TechwmConfig, error) {
	config.Reset()
	if _, err := config.Load(repoPath); err != nil {
		return types.TechwmConfig{}, fmt.Errorf("failed to load config from %s: %w", repoPath, err)
	}
	if overrides.Host != "" {
		config.Set(types.ServerHost, overrides.Host)
	}
	if overrides.Port != 0 {
		config.Set(types.ServerPort, overrides.Port)
	}
	cfg, err := config.Get()
	if err != nil {
		return types.TechwmConfig{}, err
	}
	return cfg, cfg.Validate()
}
