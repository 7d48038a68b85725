// Package config defines the report configuration model. A report file names
// the MovieLens datasets, the enrichment source, the ordered list of sections
// to compute and where the results go.
//
// Files are JSON by default; a .yaml or .yml extension selects YAML.
//
// Example (trimmed):
//
//	{
//	  "name": "weekly",
//	  "datasets": { "movies": "ml/movies.csv", "ratings": "ml/ratings.csv" },
//	  "sections": [
//	    { "kind": "movies.dist_by_genres" },
//	    { "kind": "ratings.movies.top_by_ratings", "options": { "n": 10, "metric": "median" } }
//	  ],
//	  "output":  { "format": "json", "path": "out/weekly.json" },
//	  "storage": { "kind": "sqlite", "dsn": "out/results.db", "table": "results" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is the top-level object of a report file.
type Report struct {
	// Name labels the run in logs, metrics and persisted rows.
	Name string `json:"name" yaml:"name"`

	Datasets   Datasets   `json:"datasets" yaml:"datasets"`
	Enrichment Enrichment `json:"enrichment" yaml:"enrichment"`

	// Sections are computed in order.
	Sections []Section `json:"sections" yaml:"sections"`

	Output  Output  `json:"output" yaml:"output"`
	Storage Storage `json:"storage" yaml:"storage"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Datasets holds the location of each MovieLens file. A location is a local
// path or an http(s) URL. Only the datasets used by some section are needed.
type Datasets struct {
	Movies  string `json:"movies" yaml:"movies"`
	Links   string `json:"links" yaml:"links"`
	Ratings string `json:"ratings" yaml:"ratings"`
	Tags    string `json:"tags" yaml:"tags"`
}

// Enrichment configures the remote metadata source used by links sections.
type Enrichment struct {
	// URLTemplate is the title page address; %s receives the IMDB id.
	// Empty selects the IMDB default.
	URLTemplate string `json:"url_template" yaml:"url_template"`

	// Limit bounds how many links are enriched. Zero means all.
	Limit int `json:"limit" yaml:"limit"`

	// Workers is the warm-up concurrency. Zero or one keeps it sequential.
	Workers int `json:"workers" yaml:"workers"`

	// Warm pre-fetches every linked page before sections run.
	Warm bool `json:"warm" yaml:"warm"`

	// TimeoutSeconds bounds a single page fetch.
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`

	// Retries is the number of extra attempts on transport errors and 5xx.
	Retries int `json:"retries" yaml:"retries"`

	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Timeout returns TimeoutSeconds as a duration (zero when unset).
func (e Enrichment) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// Section is one analysis of the report. Kind names the analysis (see
// SectionKinds); Options carries its parameters.
type Section struct {
	Kind string `json:"kind" yaml:"kind"`

	// Title overrides the section name in the rendered output.
	Title string `json:"title" yaml:"title"`

	Options Options `json:"options" yaml:"options"`
}

// Name returns Title, or Kind when no title is set.
func (s Section) Name() string {
	if strings.TrimSpace(s.Title) != "" {
		return s.Title
	}
	return s.Kind
}

// Output selects the renderer and its destination.
type Output struct {
	// Format is "text", "json" or "xlsx".
	Format string `json:"format" yaml:"format"`

	// Path is the output file; empty writes to stdout (not valid for xlsx).
	Path string `json:"path" yaml:"path"`
}

// Storage optionally persists every section row to a database.
type Storage struct {
	// Kind selects the backend: "sqlite", "postgres", "mysql" or "mssql".
	// Empty disables persistence.
	Kind string `json:"kind" yaml:"kind"`

	DSN   string `json:"dsn" yaml:"dsn"`
	Table string `json:"table" yaml:"table"`

	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// AutoCreateTable creates the results table when it is missing.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "", "none", "prometheus" or "datadog".
	Backend string `json:"backend" yaml:"backend"`

	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	Job            string `json:"job" yaml:"job"`

	DogStatsDAddr string   `json:"dogstatsd_addr" yaml:"dogstatsd_addr"`
	Namespace     string   `json:"namespace" yaml:"namespace"`
	Tags          []string `json:"tags" yaml:"tags"`
}

// Defaults applied by Load for zero values.
const (
	DefaultFormat    = "text"
	DefaultTable     = "movielens_results"
	DefaultBatchSize = 1000
	DefaultN         = 10
)

// Load reads and decodes the report file at path, then fills defaults.
func Load(path string) (Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var r Report
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &r)
	default:
		err = json.Unmarshal(b, &r)
	}
	if err != nil {
		return Report{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	r.ApplyDefaults()
	return r, nil
}

// ApplyDefaults fills zero values that have a sensible default.
func (r *Report) ApplyDefaults() {
	if r.Output.Format == "" {
		r.Output.Format = DefaultFormat
	}
	if r.Storage.Kind != "" {
		if r.Storage.Table == "" {
			r.Storage.Table = DefaultTable
		}
		if r.Storage.BatchSize == 0 {
			r.Storage.BatchSize = DefaultBatchSize
		}
	}
	if r.Enrichment.Workers == 0 {
		r.Enrichment.Workers = 1
	}
	if r.Metrics.Job == "" {
		r.Metrics.Job = r.Name
	}
	for i := range r.Sections {
		if r.Sections[i].Options == nil {
			r.Sections[i].Options = Options{}
		}
	}
}
