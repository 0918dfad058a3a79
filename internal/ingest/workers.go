package ingest

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/dtnitsch/localfeed/models"
	"github.com/dtnitsch/localfeed/pkg/analytics"
	"github.com/dtnitsch/localfeed/pkg/fetcher"
	"github.com/dtnitsch/localfeed/pkg/mapreduce"
	"github.com/dtnitsch/localfeed/pkg/parser"
)

// Pipeline fetches and parses articles with a fixed pool of workers.
type Pipeline struct {
	Fetcher   *fetcher.Fetcher
	Parser    *parser.Parser
	Analytics *analytics.Analytics
	Logger    *zap.Logger
}

// Run processes every URL in cfg and returns the per-URL results in input
// order together with the word counts reduced across all parsed items.
func (p *Pipeline) Run(ctx context.Context, cfg models.IngestConfig) ([]Result, map[string]int) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}
	if workers > len(cfg.URLs) {
		workers = len(cfg.URLs)
	}

	logger.Info("starting fetch phase",
		zap.Int("url_count", len(cfg.URLs)),
		zap.Int("workers", workers),
		zap.Bool("force_fetch", cfg.ForceFetch))

	var wg sync.WaitGroup
	jobs := make(chan Job, len(cfg.URLs))
	results := make(chan Result, len(cfg.URLs))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go p.worker(ctx, w, logger, cfg, &wg, jobs, results)
	}

	for _, rawURL := range cfg.URLs {
		jobs <- Job{URL: rawURL}
	}
	close(jobs)

	wg.Wait()
	close(results)
	logger.Debug("all fetch workers finished")

	order := make(map[string]int, len(cfg.URLs))
	for i, u := range cfg.URLs {
		order[u] = i
	}

	all := make([]Result, 0, len(cfg.URLs))
	intermediate := make([]map[string]int, 0, len(cfg.URLs))
	for result := range results {
		all = append(all, result)
		if result.WordCounts != nil {
			intermediate = append(intermediate, result.WordCounts)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return order[all[i].URL] < order[all[j].URL]
	})

	return all, mapreduce.Reduce(intermediate)
}

// worker is a goroutine that processes jobs from the jobs channel
// and sends results to the results channel.
func (p *Pipeline) worker(ctx context.Context, id int, logger *zap.Logger, cfg models.IngestConfig, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		results <- p.process(ctx, id, logger, cfg, job)
	}
}

func (p *Pipeline) process(ctx context.Context, id int, logger *zap.Logger, cfg models.IngestConfig, job Job) Result {
	result := Result{URL: job.URL}
	if err := ctx.Err(); err != nil {
		result.Error = err
		result.ErrorType = "cancelled"
		return result
	}

	logger.Debug("worker started job", zap.Int("worker_id", id), zap.String("url", job.URL))

	rawHTML, cached, err := p.Fetcher.Fetch(ctx, job.URL, cfg.ForceFetch)
	if err != nil {
		logger.Warn("error fetching url", zap.Int("worker_id", id), zap.String("url", job.URL), zap.Error(err))
		result.Error = err
		result.ErrorType = "fetch_error"
		return result
	}
	result.Cached = cached

	item, err := p.Parser.Parse(models.ParseRequest{
		URL:      job.URL,
		HTML:     string(rawHTML),
		Tags:     cfg.Tags,
		Category: cfg.Category,
	})
	if err != nil {
		logger.Warn("error parsing html", zap.Int("worker_id", id), zap.String("url", job.URL), zap.Error(err))
		result.Error = err
		result.ErrorType = "parse_error"
		return result
	}

	result.Item = item
	if p.Analytics != nil {
		result.WordCounts = mapreduce.Map(item.Title+"\n"+item.Body, p.Analytics)
	}

	logger.Debug("worker finished job",
		zap.Int("worker_id", id),
		zap.String("url", job.URL),
		zap.String("region", item.Region),
		zap.String("category", item.Category),
		zap.Bool("cached", cached))
	return result
}
