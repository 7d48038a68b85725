package config

import (
	"fmt"
	"strings"

	"movielens/internal/stats"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the
// report (e.g. "sections[2].options.metric").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints r without mutating it.
func Validate(r Report) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Name) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "name",
			Message:  "name must not be empty; it labels metrics and persisted rows",
		})
	}
	issues = append(issues, validateSections(r.Sections, r.Datasets)...)
	issues = append(issues, validateEnrichment(r.Enrichment)...)
	issues = append(issues, validateOutput(r.Output)...)
	issues = append(issues, validateStorage(r.Storage)...)
	issues = append(issues, validateMetrics(r.Metrics)...)
	return issues
}

func validateSections(ss []Section, ds Datasets) []Issue {
	var issues []Issue

	if len(ss) == 0 {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "sections",
			Message:  "at least one section is required",
		})
	}

	needs := map[string]string{
		"movies":  ds.Movies,
		"ratings": ds.Ratings,
		"tags":    ds.Tags,
		"links":   ds.Links,
	}

	for i, s := range ss {
		base := fmt.Sprintf("sections[%d]", i)
		if strings.TrimSpace(s.Kind) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: base + ".kind", Message: "section kind must not be empty"})
			continue
		}
		sk, ok := LookupSectionKind(s.Kind)
		if !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".kind",
				Message:  fmt.Sprintf("unknown section kind %q", s.Kind),
			})
			continue
		}

		group := Dataset(s.Kind)
		if strings.TrimSpace(needs[group]) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "datasets." + group,
				Message:  fmt.Sprintf("%s needs the %s dataset", s.Kind, group),
			})
		}
		if sk.NeedsTitles && group != "movies" && strings.TrimSpace(ds.Movies) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "datasets.movies",
				Message:  fmt.Sprintf("%s resolves titles and needs the movies dataset", s.Kind),
			})
		}

		if sk.TakesN && s.Options.Has("n") && s.Options.Int("n", 0) <= 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".options.n",
				Message:  "n must be a positive integer",
			})
		}
		if sk.TakesMetric {
			if _, err := stats.MetricByName(s.Options.String("metric", "average")); err != nil {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".options.metric",
					Message:  err.Error(),
				})
			}
		}

		switch s.Kind {
		case TagsWith:
			if strings.TrimSpace(s.Options.String("word", "")) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".options.word",
					Message:  "tags_with requires a non-empty word",
				})
			}
		case LinksIMDB:
			if len(s.Options.StringSlice("fields")) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".options.fields",
					Message:  "imdb export requires at least one field",
				})
			}
			if len(s.Options.IntSlice("movie_ids")) == 0 && s.Options.String("movie_ids_file", "") == "" {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     base + ".options.movie_ids",
					Message:  "no movie_ids given; the export will be empty",
				})
			}
		}
	}
	return issues
}

func validateEnrichment(e Enrichment) []Issue {
	var issues []Issue
	if e.URLTemplate != "" && strings.Count(e.URLTemplate, "%s") != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "enrichment.url_template",
			Message:  "url_template must contain exactly one %s",
		})
	}
	for path, v := range map[string]int{
		"enrichment.limit":           e.Limit,
		"enrichment.workers":         e.Workers,
		"enrichment.timeout_seconds": e.TimeoutSeconds,
		"enrichment.retries":         e.Retries,
	} {
		if v < 0 {
			issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: "must not be negative"})
		}
	}
	if e.Workers > 16 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "enrichment.workers",
			Message:  fmt.Sprintf("workers=%d; the remote site may throttle concurrent scraping", e.Workers),
		})
	}
	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue
	switch o.Format {
	case "", "text", "json":
	case "xlsx":
		if strings.TrimSpace(o.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "output.path",
				Message:  "xlsx output requires a file path",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.format",
			Message:  fmt.Sprintf("unknown output format %q; use text, json or xlsx", o.Format),
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	if s.Kind == "" {
		return issues
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty",
		})
	}
	if s.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "prometheus":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend without pushgateway_url; metrics will not be pushed unless -pushgateway-url is set",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DogStatsDAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.dogstatsd_addr",
				Message:  "datadog backend requires dogstatsd_addr (e.g. 127.0.0.1:8125)",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		})
	}
	return issues
}
