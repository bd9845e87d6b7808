package util

import (
	"context"

	"github.com/techwm-project/techwm/pkg/config/types"
	"github.com/techwm-project/techwm/pkg/system"
)

type contextKey struct {
	name string
}

var (
	SystemManagerKey = contextKey{name: "context key for storing the system manager"}
	ConfigKey        = contextKey{name: "context key for storing the loaded config"}
	RepoPathKey      = contextKey{name: "context key for storing the repo path"}
)

func GetCleanupManager(ctx context.Context) *system.CleanupManager {
	return ctx.Value(SystemManagerKey).(*system.CleanupManager)
}

func GetConfig(ctx context.Context) types.TechwmConfig {
	return ctx.Value(ConfigKey).(types.TechwmConfig)
}

func GetRepoPath(ctx context.Context) string {
	return ctx.Value(RepoPathKey).(string)
}
