// Package prefs implements the prefs command: read and change a user's
// local/topical ratio.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/localfeed/internal/common"
	"github.com/dtnitsch/localfeed/models"
	"github.com/dtnitsch/localfeed/pkg/ratio"
)

// Command returns the prefs command and its subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Show or change a user's local/topical ratio",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show a user's ratio (defaults when none is stored)",
				ArgsUsage: "<user>",
				Flags:     []cli.Flag{common.FormatFlag()},
				Action:    GetAction,
			},
			{
				Name:      "set",
				Usage:     "Change a user's ratio; the other side is derived so both sum to 100",
				ArgsUsage: "<user>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "local", Usage: "local percentage, 0-100"},
					&cli.IntFlag{Name: "topical", Usage: "topical percentage, 0-100"},
					&cli.StringFlag{Name: "topic", Usage: "topical category, e.g. sport"},
					common.FormatFlag(),
				},
				Action: SetAction,
			},
			{
				Name:      "tri",
				Usage:     "Rebalance three weights after moving one of them",
				ArgsUsage: "<user>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "weights", Value: "34,33,33", Usage: "current weights, comma separated"},
					&cli.IntFlag{Name: "fixed", Usage: "index (0-2) of the weight being set"},
					&cli.IntFlag{Name: "value", Required: true, Usage: "new value for the fixed weight"},
					common.FormatFlag(),
				},
				Action: TriAction,
			},
		},
	}
}

func userArg(c *cli.Context) (string, error) {
	user := strings.TrimSpace(c.Args().First())
	if user == "" {
		return "", fmt.Errorf("missing <user>; usage: localfeed prefs %s <user>", c.Command.Name)
	}
	return user, nil
}

func GetAction(c *cli.Context) error {
	user, err := userArg(c)
	if err != nil {
		return err
	}

	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	database, err := env.OpenDB()
	if err != nil {
		return err
	}
	defer database.Close()

	prefs, err := env.PreferenceService(database).Get(c.Context, user)
	if err != nil {
		return err
	}
	return env.Write(c.String("format"), prefs)
}

func SetAction(c *cli.Context) error {
	user, err := userArg(c)
	if err != nil {
		return err
	}

	var update ratio.Update
	if c.IsSet("local") {
		v := c.Int("local")
		update.Local = &v
	}
	if c.IsSet("topical") {
		v := c.Int("topical")
		update.Topical = &v
	}
	if update.Local != nil && update.Topical != nil {
		return errors.New("set either --local or --topical, not both")
	}
	update.Topic = strings.TrimSpace(c.String("topic"))
	if update.Empty() {
		return errors.New("nothing to change; pass --local, --topical or --topic")
	}

	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	database, err := env.OpenDB()
	if err != nil {
		return err
	}
	defer database.Close()

	prefs, err := env.PreferenceService(database).Apply(c.Context, user, update)
	if errors.Is(err, ratio.ErrRemoteSync) {
		fmt.Fprintf(os.Stderr, "warning: saved locally, remote sync failed: %v\n", err)
	} else if err != nil {
		return err
	}
	return env.Write(c.String("format"), prefs)
}

// TriOutput is the result of prefs tri.
type TriOutput struct {
	User    string `json:"user" yaml:"user"`
	Weights []int  `json:"weights" yaml:"weights,flow"`
}

func TriAction(c *cli.Context) error {
	user, err := userArg(c)
	if err != nil {
		return err
	}

	values, err := common.ParseInts(c.String("weights"))
	if err != nil {
		return fmt.Errorf("invalid --weights: %w", err)
	}
	if len(values) != 3 {
		return fmt.Errorf("invalid --weights: want 3 values, got %d", len(values))
	}
	fixed := c.Int("fixed")
	if fixed < 0 || fixed > 2 {
		return fmt.Errorf("invalid --fixed %d: must be 0, 1 or 2", fixed)
	}

	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	tri := ratio.Rebalance3(models.TriRatio{values[0], values[1], values[2]}, fixed, c.Int("value"))
	return env.Write(c.String("format"), TriOutput{User: user, Weights: tri[:]})
}
