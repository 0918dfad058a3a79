// Package items implements the items command: inspect and prune stored articles.
package items

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/localfeed/internal/common"
	"github.com/dtnitsch/localfeed/pkg/analytics"
	"github.com/dtnitsch/localfeed/pkg/db"
	"github.com/dtnitsch/localfeed/pkg/mapreduce"
)

// Command returns the items command and its subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "Inspect and prune stored items",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored items, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "region", Usage: "only items tagged with this region"},
					&cli.StringFlag{Name: "category", Usage: "only items in this category"},
					&cli.StringFlag{Name: "language", Usage: "only items in this language (ISO 639-1)"},
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "only items whose text contains this"},
					&cli.DurationFlag{Name: "since", Usage: "only items published within this window, e.g. 24h"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "maximum items"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "output format: table, yaml or json"},
				},
				Action: ListAction,
			},
			{
				Name:  "prune",
				Usage: "Delete items published before a cutoff",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "older-than", Required: true, Usage: "delete items older than this, e.g. 720h"},
				},
				Action: PruneAction,
			},
			{
				Name:  "stats",
				Usage: "Show item counts, recent ingest runs and top keywords",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "runs", Value: 5, Usage: "recent ingest runs to show"},
					&cli.IntFlag{Name: "keywords", Value: 10, Usage: "top keywords to show"},
				},
				Action: StatsAction,
			},
		},
	}
}

func ListAction(c *cli.Context) error {
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

	q := db.ItemQuery{
		Region:   strings.TrimSpace(c.String("region")),
		Category: strings.TrimSpace(c.String("category")),
		Language: strings.ToLower(strings.TrimSpace(c.String("language"))),
		Search:   strings.TrimSpace(c.String("search")),
		Limit:    c.Int("limit"),
	}
	if since := c.Duration("since"); since > 0 {
		q.Since = time.Now().Add(-since)
	}

	items, err := database.GetItems(q)
	if err != nil {
		return err
	}

	if format := c.String("format"); format != "table" {
		for i := range items {
			items[i].Body = ""
		}
		return env.Write(format, items)
	}

	if len(items) == 0 {
		fmt.Fprintln(env.Out, "No items found")
		return nil
	}

	fmt.Fprintf(env.Out, "%-16s %-16s %-12s %-14s %-14s %-12s %s\n",
		"ID", "Published", "Region", "Sub-region", "Locality", "Category", "Title")
	fmt.Fprintln(env.Out, strings.Repeat("-", 120))
	for _, it := range items {
		fmt.Fprintf(env.Out, "%-16s %-16s %-12s %-14s %-14s %-12s %s\n",
			it.ID,
			it.PublishedAt.Local().Format("2006-01-02 15:04"),
			dash(it.Region),
			dash(it.SubRegion),
			dash(it.Locality),
			dash(it.Category),
			truncate(it.Title, 60),
		)
	}
	fmt.Fprintf(env.Out, "\nTotal: %d items\n", len(items))
	return nil
}

func PruneAction(c *cli.Context) error {
	olderThan := c.Duration("older-than")
	if olderThan <= 0 {
		return errors.New("--older-than must be positive")
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

	n, err := database.PruneItems(olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Pruned %d items older than %s\n", n, olderThan)
	return nil
}

func StatsAction(c *cli.Context) error {
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

	total, err := database.CountItems()
	if err != nil {
		return err
	}
	byRegion, err := database.CountByRegion()
	if err != nil {
		return err
	}
	runs, err := database.ListIngestRuns(c.Int("runs"))
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "Items: %d\n", total)
	writeRegions(env.Out, byRegion)

	if len(runs) > 0 {
		fmt.Fprintln(env.Out, "\nRecent ingest runs:")
		fmt.Fprintf(env.Out, "%-36s %-20s %-6s %-8s %-6s\n", "Run", "Started", "URLs", "Success", "Failed")
		for _, r := range runs {
			fmt.Fprintf(env.Out, "%-36s %-20s %-6d %-8d %-6d\n",
				r.RunID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.URLCount, r.SuccessCount, r.FailedCount)
		}
	}

	if n := c.Int("keywords"); n > 0 && total > 0 {
		items, err := database.GetItems(db.ItemQuery{Limit: total})
		if err != nil {
			return err
		}
		a := &analytics.Analytics{}
		counts := make([]map[string]int, 0, len(items))
		for _, it := range items {
			counts = append(counts, mapreduce.Map(it.Title+"\n"+it.Body, a))
		}
		fmt.Fprintln(env.Out, "\nTop keywords:")
		if err := mapreduce.WriteTopKeywords(env.Out, mapreduce.Reduce(counts), n); err != nil {
			return err
		}
	}
	return nil
}

func writeRegions(w io.Writer, byRegion map[string]int) {
	regions := make([]string, 0, len(byRegion))
	for r := range byRegion {
		regions = append(regions, r)
	}
	sort.Slice(regions, func(i, j int) bool {
		if byRegion[regions[i]] != byRegion[regions[j]] {
			return byRegion[regions[i]] > byRegion[regions[j]]
		}
		return regions[i] < regions[j]
	})
	for _, r := range regions {
		name := r
		if name == "" {
			name = "(untagged)"
		}
		fmt.Fprintf(w, "  %-20s %d\n", name, byRegion[r])
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
