// Package serve implements the serve command: the feed and preferences HTTP API.
package serve

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/dtnitsch/localfeed/internal/common"
	"github.com/dtnitsch/localfeed/pkg/mixer"
	"github.com/dtnitsch/localfeed/pkg/server"
)

// Command returns the serve command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the mixed feed and ratio preferences over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Usage: "listen address (default: server.addr)"},
		},
		Action: ServeAction,
	}
}

func ServeAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()
	cfg := env.Config

	addr := cfg.Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	configs, err := cfg.Mix.Configs()
	if err != nil {
		return err
	}

	database, err := env.OpenDB()
	if err != nil {
		return err
	}
	defer database.Close()

	srv, err := server.New(database, env.PreferenceService(database), server.Config{
		DefaultN:        cfg.Mix.DefaultN,
		MaxN:            cfg.Mix.MaxN,
		Mode:            mixer.MatchMode(cfg.Mix.Mode),
		Window:          cfg.Mix.Window,
		RateLimit:       cfg.Server.RateLimit,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, env.Logger, mixer.WithConfigs(configs))
	if err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env.Logger.Info("starting server",
		zap.String("addr", addr),
		zap.String("database", database.Path()),
		zap.String("remote", cfg.Remote.URL))
	return srv.Run(ctx, addr)
}
