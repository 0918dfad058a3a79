// Package mix implements the mix command: build a location-weighted feed from
// stored items.
package mix

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/localfeed/internal/common"
	"github.com/dtnitsch/localfeed/models"
	"github.com/dtnitsch/localfeed/pkg/db"
	"github.com/dtnitsch/localfeed/pkg/mixer"
)

// poolLimit caps how many stored items one mix considers.
const poolLimit = 2000

// Command returns the mix command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "mix",
		Usage: "Print a feed mixed by location specificity",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "region", Usage: "user's region"},
			&cli.StringFlag{Name: "subregion", Usage: "user's sub-region"},
			&cli.StringFlag{Name: "locality", Usage: "user's locality"},
			&cli.IntFlag{Name: "n", Usage: "number of items (default: mix.default_n)"},
			&cli.StringFlag{Name: "mode", Usage: "match mode: text, tags or hybrid (default: mix.mode)"},
			&cli.StringFlag{Name: "user", Usage: "blend in the user's topical share by their ratio preferences"},
			&cli.DurationFlag{Name: "window", Usage: "only mix items published within this window (default: mix.window)"},
			&cli.Uint64Flag{Name: "seed", Usage: "shuffle seed for a reproducible mix"},
			&cli.BoolFlag{Name: "full", Usage: "include article bodies in the output"},
			common.FormatFlag(),
		},
		Action: MixAction,
	}
}

func MixAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()
	cfg := env.Config.Mix

	n := cfg.DefaultN
	if c.IsSet("n") {
		n = c.Int("n")
	}
	if n > cfg.MaxN {
		n = cfg.MaxN
	}

	mode := mixer.MatchMode(cfg.Mode)
	if c.IsSet("mode") {
		mode = mixer.MatchMode(strings.ToLower(c.String("mode")))
	}
	matcher, err := mixer.NewMatcher(mode)
	if err != nil {
		return err
	}

	configs, err := cfg.Configs()
	if err != nil {
		return err
	}
	opts := []mixer.Option{
		mixer.WithMatcher(matcher),
		mixer.WithConfigs(configs),
		mixer.WithLogger(env.Logger),
	}
	if c.IsSet("seed") {
		opts = append(opts, mixer.WithSeed(c.Uint64("seed")))
	}
	mx := mixer.New(opts...)

	window := cfg.Window
	if c.IsSet("window") {
		window = c.Duration("window")
	}

	database, err := env.OpenDB()
	if err != nil {
		return err
	}
	defer database.Close()

	q := db.ItemQuery{Limit: poolLimit}
	if window > 0 {
		q.Since = time.Now().Add(-window)
	}
	items, err := database.GetItems(q)
	if err != nil {
		return err
	}

	loc := models.Location{
		Region:    c.String("region"),
		SubRegion: c.String("subregion"),
		Locality:  c.String("locality"),
	}

	var res models.MixResult
	if user := strings.TrimSpace(c.String("user")); user != "" {
		prefs, err := env.PreferenceService(database).Get(c.Context, user)
		if err != nil {
			return fmt.Errorf("failed to load preferences: %w", err)
		}
		res = mx.Blend(items, loc, prefs, n)
	} else {
		res = mx.Mix(items, loc, n)
	}

	if !c.Bool("full") {
		for i := range res.Items {
			res.Items[i].Body = ""
		}
	}
	return env.Write(c.String("format"), res)
}
