// Package ingest implements the ingest command: fetch, parse and store articles.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/dtnitsch/localfeed/internal/common"
	"github.com/dtnitsch/localfeed/models"
	"github.com/dtnitsch/localfeed/pkg/analytics"
	"github.com/dtnitsch/localfeed/pkg/caching"
	"github.com/dtnitsch/localfeed/pkg/db"
	"github.com/dtnitsch/localfeed/pkg/fetcher"
	"github.com/dtnitsch/localfeed/pkg/mapreduce"
	"github.com/dtnitsch/localfeed/pkg/parser"
)

// topKeywordCount is how many keywords a run records.
const topKeywordCount = 25

// Command returns the ingest command.
func Command() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Fetch articles, tag them by location and store them",
		ArgsUsage: "[url...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "urls", Aliases: []string{"u"}, Usage: "comma separated article URLs"},
			&cli.StringFlag{Name: "region", Usage: "region tag applied to every item (default: from the country TLD)"},
			&cli.StringFlag{Name: "subregion", Usage: "sub-region tag applied to every item"},
			&cli.StringFlag{Name: "locality", Usage: "locality tag applied to every item"},
			&cli.StringFlag{Name: "category", Usage: "category applied to every item (default: detected)"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "concurrent fetch workers (default: fetch.workers)"},
			&cli.BoolFlag{Name: "force-fetch", Usage: "bypass the HTML cache"},
			common.FormatFlag(),
		},
		Action: IngestAction,
	}
}

func IngestAction(c *cli.Context) error {
	startTime := time.Now()

	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()
	logger := env.Logger.Named("ingest")

	rawURLs := append(common.SplitList(c.String("urls")), c.Args().Slice()...)
	if len(rawURLs) == 0 {
		return errors.New(`no URLs provided; usage: localfeed ingest --urls "https://example.com/a,https://example.com/b"`)
	}

	urls, invalid := common.SanitizeAndValidateURLs(rawURLs)
	for _, bad := range invalid {
		fmt.Fprintf(os.Stderr, "skipping malformed URL: %s\n", bad)
	}
	if len(urls) == 0 {
		return fmt.Errorf("%d URL(s) are malformed (even after cleanup)", len(invalid))
	}

	cfg := models.IngestConfig{
		URLs:        urls,
		WorkerCount: env.Config.Fetch.Workers,
		Tags: models.LocationTags{
			Region:    strings.TrimSpace(c.String("region")),
			SubRegion: strings.TrimSpace(c.String("subregion")),
			Locality:  strings.TrimSpace(c.String("locality")),
		},
		Category:   strings.TrimSpace(c.String("category")),
		ForceFetch: c.Bool("force-fetch"),
	}
	if c.IsSet("workers") {
		cfg.WorkerCount = c.Int("workers")
	}

	fetchOpts := []fetcher.Option{
		fetcher.WithTimeout(env.Config.Fetch.Timeout),
		fetcher.WithUserAgent(env.Config.Fetch.UserAgent),
		fetcher.WithLogger(logger),
	}
	if dir := env.Config.Fetch.CacheDir; dir != "" {
		cache, err := caching.NewCache(dir, env.Config.Fetch.CacheTTL)
		if err != nil {
			return err
		}
		fetchOpts = append(fetchOpts, fetcher.WithCache(cache))
	}

	database, err := env.OpenDB()
	if err != nil {
		return err
	}
	defer database.Close()

	pipeline := &Pipeline{
		Fetcher:   fetcher.NewFetcher(fetchOpts...),
		Parser:    &parser.Parser{},
		Analytics: &analytics.Analytics{},
		Logger:    logger,
	}
	results, wordCounts := pipeline.Run(c.Context, cfg)

	out, err := store(database, results, wordCounts, startTime)
	if err != nil {
		return err
	}
	out.Stats.Invalid = len(invalid)
	out.Stats.TotalTimeSeconds = time.Since(startTime).Seconds()

	logger.Info("ingest finished",
		zap.String("run_id", out.RunID),
		zap.Int("successful", out.Stats.Successful),
		zap.Int("failed", out.Stats.Failed))

	if err := env.Write(c.String("format"), out); err != nil {
		return err
	}
	if out.Stats.Successful == 0 {
		return fmt.Errorf("all %d URL(s) failed", out.Stats.Failed)
	}
	return nil
}

// store upserts the parsed items and records the run.
func store(database *db.DB, results []Result, wordCounts map[string]int, startTime time.Time) (*FinalOutput, error) {
	out := &FinalOutput{
		RunID:   uuid.NewString(),
		Results: make([]ResultOutput, 0, len(results)),
		Stats: Stats{
			TotalURLs:   len(results),
			TopKeywords: mapreduce.TopKeywords(wordCounts, topKeywordCount),
		},
	}

	items := make([]models.ContentItem, 0, len(results))
	for _, r := range results {
		out.Results = append(out.Results, toOutput(r))
		if r.Error != nil || r.Item == nil {
			out.Stats.Failed++
			continue
		}
		out.Stats.Successful++
		items = append(items, *r.Item)
	}

	if err := database.UpsertItems(items); err != nil {
		return nil, err
	}

	keywords, err := json.Marshal(out.Stats.TopKeywords)
	if err != nil {
		return nil, fmt.Errorf("failed to encode keywords: %w", err)
	}
	if err := database.RecordIngestRun(db.IngestRun{
		RunID:        out.RunID,
		StartedAt:    startTime,
		URLCount:     out.Stats.TotalURLs,
		SuccessCount: out.Stats.Successful,
		FailedCount:  out.Stats.Failed,
		TopKeywords:  string(keywords),
	}); err != nil {
		return nil, err
	}

	switch {
	case out.Stats.Failed == 0:
		out.Status = "success"
	case out.Stats.Successful == 0:
		out.Status = "failed"
	default:
		out.Status = "partial"
	}
	return out, nil
}
