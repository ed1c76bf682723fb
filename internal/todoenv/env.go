// Package todoenv applies environment variable overrides to a loaded config.
package todoenv

import (
	"os"

	"github.com/CrocodileWoodGordon/todolist/internal/config"
	internalstrings "github.com/CrocodileWoodGordon/todolist/internal/strings"
)

// Environment variables that override config file values.
const (
	BackendEnvVar   = "TODOLIST_BACKEND"
	StoreEnvVar     = "TODOLIST_STORE"
	ExportDirEnvVar = "TODOLIST_EXPORT_DIR"
	LogLevelEnvVar  = "TODOLIST_LOG_LEVEL"
)

// Apply overwrites cfg fields whose variable is set to a non-blank value.
func Apply(cfg *config.Config) {
	for name, target := range map[string]*string{
		BackendEnvVar:   &cfg.Storage.Backend,
		StoreEnvVar:     &cfg.Storage.Path,
		ExportDirEnvVar: &cfg.Export.Dir,
		LogLevelEnvVar:  &cfg.Log.Level,
	} {
		if value, ok := os.LookupEnv(name); ok && !internalstrings.IsBlank(value) {
			*target = internalstrings.TrimSpace(value)
		}
	}
}
