// Package common holds the setup shared by every localfeed subcommand.
package common

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/localfeed/internal/config"
	"github.com/dtnitsch/localfeed/pkg/db"
	"github.com/dtnitsch/localfeed/pkg/logging"
	"github.com/dtnitsch/localfeed/pkg/ratio"
	"github.com/dtnitsch/localfeed/pkg/remote"
)

// Env is the configuration and logger a subcommand runs with.
type Env struct {
	Config *config.Config
	Logger *zap.Logger
	Out    io.Writer
}

// GlobalFlags are accepted by the root command and read by Setup.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML config file", EnvVars: []string{config.ConfigPathEnvVar}},
		&cli.StringFlag{Name: "db", Usage: "sqlite database path (overrides database.path)"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		&cli.StringFlag{Name: "log-format", Usage: "console or json"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
	}
}

// Setup loads the config, applies global flag overrides and builds the logger.
func Setup(c *cli.Context) (*Env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if v := c.String("db"); v != "" {
		cfg.Database.Path = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.Logging.Format = v
	}
	if c.Bool("quiet") {
		cfg.Logging.Level = "error"
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	out := c.App.Writer
	if out == nil {
		out = io.Discard
	}
	return &Env{Config: cfg, Logger: logger, Out: out}, nil
}

// Close flushes the logger.
func (e *Env) Close() {
	_ = logging.Sync(e.Logger)
}

// OpenDB opens the configured sqlite database.
func (e *Env) OpenDB() (*db.DB, error) {
	database, err := db.Open(e.Config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// PreferenceService builds the write-through preference service over the
// local database and, when remote.url is set, the remote client.
func (e *Env) PreferenceService(local ratio.Store) *ratio.Service {
	var remoteStore ratio.Store
	if rc := e.Config.Remote; rc.URL != "" {
		remoteStore = remote.New(rc.URL,
			remote.WithTimeout(rc.Timeout),
			remote.WithBreaker(rc.MaxFailures, rc.OpenTimeout),
			remote.WithLogger(e.Logger),
		)
	}
	return ratio.NewService(local, remoteStore, e.Logger)
}

// Write renders v to the env's output as yaml or json.
func (e *Env) Write(format string, v any) error {
	return WriteOutput(e.Out, format, v)
}

// WriteOutput renders v as yaml (the default) or indented json.
func WriteOutput(w io.Writer, format string, v any) error {
	switch format {
	case "", "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (use yaml or json)", format)
	}
}

// FormatFlag is the --format flag shared by commands that print results.
func FormatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "yaml", Usage: "output format: yaml or json"}
}
