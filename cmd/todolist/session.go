package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/CrocodileWoodGordon/todolist/internal/config"
	"github.com/CrocodileWoodGordon/todolist/internal/kv"
	"github.com/CrocodileWoodGordon/todolist/internal/logging"
	"github.com/CrocodileWoodGordon/todolist/internal/todoenv"
	"github.com/CrocodileWoodGordon/todolist/todo"
)

// session bundles the resolved config and the open store for one command.
type session struct {
	cfg    *config.Config
	kv     kv.Store
	store  *todo.Store
	logger *slog.Logger
	logs   io.Closer
}

// loadConfig reads config files, then applies environment and flag
// overrides in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if rootConfigPath != "" {
		if _, statErr := os.Stat(rootConfigPath); statErr != nil {
			return nil, fmt.Errorf("config: %w", statErr)
		}
		globalPath, pathErr := config.GlobalPath()
		if pathErr != nil {
			return nil, pathErr
		}
		cfg, err = config.LoadFiles(globalPath, rootConfigPath)
	} else {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return nil, fmt.Errorf("get working directory: %w", cwdErr)
		}
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return nil, err
	}
	todoenv.Apply(cfg)

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Storage.Backend = rootBackend
	}
	if flags.Changed("store") {
		cfg.Storage.Path = rootStorePath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = rootLogLevel
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession opens the configured store. With logToFile the logger writes
// to the configured log file instead of stderr.
func openSession(cmd *cobra.Command, logToFile bool) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	if logToFile {
		s.logger, s.logs, err = logging.OpenFile(cfg.Log.File, level)
		if err != nil {
			return nil, err
		}
	} else {
		s.logger = logging.New(cmd.ErrOrStderr(), level)
	}

	s.kv, err = kv.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.logger.Debug("opened store", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	s.store = todo.Open(s.kv, todo.Options{
		Key:    cfg.Storage.Key,
		Logger: s.logger,
	})
	return s, nil
}

// Close releases the key-value store and the log file.
func (s *session) Close() error {
	var errs []error
	if s.kv != nil {
		errs = append(errs, s.kv.Close())
	}
	if s.logs != nil {
		errs = append(errs, s.logs.Close())
	}
	return errors.Join(errs...)
}
