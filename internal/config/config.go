// Package config handles loading todolist.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/CrocodileWoodGordon/todolist/internal/paths"
	internalstrings "github.com/CrocodileWoodGordon/todolist/internal/strings"
)

// ProjectFile is the per-directory config file name.
const ProjectFile = "todolist.toml"

// Defaults applied by Resolve.
const (
	DefaultBackend  = "file"
	DefaultKey      = "todolist_items"
	DefaultExport   = "."
	DefaultLogLevel = "warn"
)

// Config represents the todolist.toml configuration file.
type Config struct {
	Storage Storage `toml:"storage"`
	Export  Export  `toml:"export"`
	Log     Log     `toml:"log"`
}

// Storage selects where the list is persisted.
type Storage struct {
	// Backend is one of "file", "sqlite" or "memory".
	Backend string `toml:"backend"`
	// Path is the data file. Defaults depend on Backend.
	Path string `toml:"path"`
	// Key is the key-value entry holding the list.
	Key string `toml:"key"`
}

// Export contains export-related configuration.
type Export struct {
	// Dir is where exports are written.
	Dir string `toml:"dir"`
}

// Log contains logging configuration.
type Log struct {
	// Level is a slog level name: debug, info, warn or error.
	Level string `toml:"level"`
	// File receives TUI logs.
	File string `toml:"file"`
}

// Load loads configuration from projectDir and the global config file.
// Returns an empty config if no config files exist.
func Load(projectDir string) (*Config, error) {
	globalPath, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return LoadFiles(globalPath, filepath.Join(projectDir, ProjectFile))
}

// LoadFiles merges the project file over the global file. Keys defined in
// the project file win, even when set to an empty value.
func LoadFiles(globalPath, projectPath string) (*Config, error) {
	globalCfg, _, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(projectPath)
	if err != nil {
		return nil, err
	}

	return mergeConfigs(globalCfg, projectCfg, projectMeta), nil
}

// GlobalPath returns the location of the per-user config file.
func GlobalPath() (string, error) {
	dir, err := paths.DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	if path == "" {
		return &Config{}, toml.MetaData{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: unknown key %s", path, undecoded[0])
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Storage.Backend = mergeString(projectMeta.IsDefined("storage", "backend"), projectCfg.Storage.Backend, globalCfg.Storage.Backend)
	merged.Storage.Path = mergeString(projectMeta.IsDefined("storage", "path"), projectCfg.Storage.Path, globalCfg.Storage.Path)
	merged.Storage.Key = mergeString(projectMeta.IsDefined("storage", "key"), projectCfg.Storage.Key, globalCfg.Storage.Key)
	merged.Export.Dir = mergeString(projectMeta.IsDefined("export", "dir"), projectCfg.Export.Dir, globalCfg.Export.Dir)
	merged.Log.Level = mergeString(projectMeta.IsDefined("log", "level"), projectCfg.Log.Level, globalCfg.Log.Level)
	merged.Log.File = mergeString(projectMeta.IsDefined("log", "file"), projectCfg.Log.File, globalCfg.Log.File)

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return internalstrings.TrimSpace(value)
}

// Resolve fills empty fields with defaults and expands "~" in paths.
func (c *Config) Resolve() error {
	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultBackend
	}
	c.Storage.Backend = internalstrings.NormalizeLowerTrimSpace(c.Storage.Backend)
	if c.Storage.Key == "" {
		c.Storage.Key = DefaultKey
	}
	if c.Storage.Path == "" && c.Storage.Backend != "memory" {
		dataDir, err := paths.DefaultDataDir()
		if err != nil {
			return err
		}
		name := "store.json"
		if c.Storage.Backend == "sqlite" {
			name = "store.db"
		}
		c.Storage.Path = filepath.Join(dataDir, name)
	}
	if c.Export.Dir == "" {
		c.Export.Dir = DefaultExport
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.File == "" {
		stateDir, err := paths.DefaultStateDir()
		if err != nil {
			return err
		}
		c.Log.File = filepath.Join(stateDir, "todolist.log")
	}

	for _, p := range []*string{&c.Storage.Path, &c.Export.Dir, &c.Log.File} {
		expanded, err := paths.ExpandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}
