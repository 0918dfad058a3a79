package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/localfeed/internal/common"
	"github.com/dtnitsch/localfeed/internal/ingest"
	"github.com/dtnitsch/localfeed/internal/items"
	"github.com/dtnitsch/localfeed/internal/mix"
	"github.com/dtnitsch/localfeed/internal/prefs"
	"github.com/dtnitsch/localfeed/internal/serve"
	"github.com/dtnitsch/localfeed/pkg/help"
)

var version = "dev"

func newApp() *cli.App {
	return &cli.App{
		Name:    "localfeed",
		Usage:   "Ingest location-tagged news and serve feeds mixed by locality and topic",
		Version: version,
		Flags:   common.GlobalFlags(),
		Commands: []*cli.Command{
			ingest.Command(),
			mix.Command(),
			prefs.Command(),
			items.Command(),
			serve.Command(),
			{
				Name:  "quickstart",
				Usage: "Print a quick reference of commands and the HTTP API",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprint(c.App.Writer, help.ColdstartYAML)
					return err
				},
			},
		},
		EnableBashCompletion: true,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
