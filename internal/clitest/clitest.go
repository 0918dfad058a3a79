// Package clitest runs localfeed subcommands in tests against a throwaway
// database and cache.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/localfeed/internal/common"
)

// Isolate points the database and HTML cache at a temp dir, runs from that
// dir so no config file is found and returns the database path.
func Isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "localfeed.db")

	t.Setenv("LOCALFEED_CONFIG", "")
	t.Setenv("LOCALFEED_DATABASE_PATH", dbPath)
	t.Setenv("LOCALFEED_FETCH_CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("LOCALFEED_LOGGING_LEVEL", "error")
	t.Setenv("LOCALFEED_REMOTE_URL", "")
	t.Chdir(dir)
	return dbPath
}

// Run executes "localfeed <args>" with cmd registered and returns stdout.
func Run(t *testing.T, cmd *cli.Command, args ...string) (string, error) {
	t.Helper()
	return RunContext(context.Background(), t, cmd, args...)
}

// RunContext is Run with a caller supplied context.
func RunContext(ctx context.Context, t *testing.T, cmd *cli.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:     "localfeed",
		Flags:    common.GlobalFlags(),
		Commands: []*cli.Command{cmd},
		Writer:   &out,
		// Keep urfave from calling os.Exit on errors.
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.RunContext(ctx, append([]string{"localfeed"}, args...))
	return out.String(), err
}
