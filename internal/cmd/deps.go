package cmd

import (
	"fmt"

	"github.com/felixgeelhaar/dayflow/internal/config"
	"github.com/felixgeelhaar/dayflow/internal/log"
	"github.com/felixgeelhaar/dayflow/internal/planner"
	"github.com/felixgeelhaar/dayflow/internal/provider"
	"github.com/felixgeelhaar/dayflow/internal/session"
)

// loadConfig reads ~/.dayflow/config.yaml (or DAYFLOW_HOME), falling back
// to defaults when no file exists.
func loadConfig() (*config.Config, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

// newLogger builds the process logger from config and installs it as the
// package-global default.
func newLogger(cfg *config.Config) *log.Logger {
	logger := log.New(log.Config{
		Level:          log.ParseLevel(cfg.Log.Level),
		Format:         log.ParseFormat(cfg.Log.Format),
		Output:         log.OutputStderr(),
		ServiceName:    "dayflow",
		ServiceVersion: "dev",
	})
	log.SetDefaultLogger(logger)
	return logger
}

// newTransformer builds the provider client and planner from config. The
// caller owns the returned client and must Close it.
func newTransformer(cfg *config.Config, logger *log.Logger) (provider.Client, *planner.Transformer, error) {
	client, err := provider.New(cfg.Provider)
	if err != nil {
		return nil, nil, fmt.Errorf("configuring provider: %w", err)
	}
	return client, planner.New(client, planner.WithLogger(logger)), nil
}

// newMachine restores the focus session from its state file.
func newMachine(cfg *config.Config, logger *log.Logger) (*session.Machine, error) {
	store := session.NewFileStore(cfg.Session.StatePath)
	return session.NewMachine(store, session.SystemClock{}, logger)
}
