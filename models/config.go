// Package models defines data structures shared by the mixer, storage and CLI.
package models

// IngestConfig holds runtime configuration for ingest operations.
// All values come from CLI flags, not external config files.
type IngestConfig struct {
	URLs        []string
	WorkerCount int
	Tags        LocationTags
	Category    string
	ForceFetch  bool
}
