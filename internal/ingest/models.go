package ingest

import (
	"github.com/dtnitsch/localfeed/models"
)

type Job struct {
	URL string
}

// Result holds the outcome of a processed job.
type Result struct {
	URL        string
	Item       *models.ContentItem
	Cached     bool
	Error      error
	ErrorType  string
	WordCounts map[string]int
}

// ResultOutput is the structured output for a single URL.
type ResultOutput struct {
	URL       string `json:"url" yaml:"url"`
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Category  string `json:"category,omitempty" yaml:"category,omitempty"`
	Language  string `json:"language,omitempty" yaml:"language,omitempty"`
	Cached    bool   `json:"cached,omitempty" yaml:"cached,omitempty"`
	Status    string `json:"status" yaml:"status"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty" yaml:"error_type,omitempty"`
}

// FinalOutput is the structured output for the entire run.
type FinalOutput struct {
	RunID   string         `json:"run_id" yaml:"run_id"`
	Status  string         `json:"status" yaml:"status"`
	Results []ResultOutput `json:"results" yaml:"results"`
	Stats   Stats          `json:"stats" yaml:"stats"`
}

// Stats provides summary statistics for the run.
type Stats struct {
	TotalURLs        int      `json:"total_urls" yaml:"total_urls"`
	Successful       int      `json:"successful" yaml:"successful"`
	Failed           int      `json:"failed" yaml:"failed"`
	Invalid          int      `json:"invalid,omitempty" yaml:"invalid,omitempty"`
	TotalTimeSeconds float64  `json:"total_time_seconds" yaml:"total_time_seconds"`
	TopKeywords      []string `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`
}

func toOutput(r Result) ResultOutput {
	out := ResultOutput{URL: r.URL, Status: "success", Cached: r.Cached}
	if r.Error != nil {
		out.Status = "failed"
		out.Error = r.Error.Error()
		out.ErrorType = r.ErrorType
		return out
	}
	if r.Item != nil {
		out.ID = r.Item.ID
		out.Title = r.Item.Title
		out.Region = r.Item.Region
		out.Category = r.Item.Category
		out.Language = r.Item.Language
	}
	return out
}
