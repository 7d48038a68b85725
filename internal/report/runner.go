package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"movielens/internal/config"
	"movielens/internal/datasource/file"
	"movielens/internal/metrics"
	"movielens/internal/movielens"
	"movielens/internal/stats"
)

// Datasets are the analysis views a Runner can use. Nil views are
// unavailable; sections that need them fail.
type Datasets struct {
	Movies  *movielens.Movies
	Ratings *movielens.Ratings
	Tags    *movielens.Tags
	Links   *movielens.Links
}

// Runner computes sections against a fixed set of datasets.
type Runner struct {
	report  string
	ds      Datasets
	verbose bool
}

// NewRunner returns a Runner labelling metrics and logs with report.
func NewRunner(report string, ds Datasets) *Runner {
	return &Runner{report: report, ds: ds}
}

// SetVerbose enables per-row logging.
func (r *Runner) SetVerbose(v bool) { r.verbose = v }

// Run computes sections in order. The first failing section stops the run;
// the sections computed before it are returned with the error.
func (r *Runner) Run(ctx context.Context, sections []config.Section) ([]Section, error) {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		sec, err := r.RunSection(ctx, s)
		if err != nil {
			return out, err
		}
		out = append(out, sec)
	}
	return out, nil
}

// RunSection computes a single section.
func (r *Runner) RunSection(ctx context.Context, s config.Section) (Section, error) {
	start := time.Now()
	sec, err := r.compute(ctx, s)
	elapsed := time.Since(start)
	metrics.RecordSection(r.report, s.Kind, err, elapsed)
	if err != nil {
		log.Printf("report: section=%s status=error elapsed=%s err=%v", s.Name(), elapsed.Truncate(time.Millisecond), err)
		return Section{}, fmt.Errorf("report: section %s: %w", s.Name(), err)
	}
	log.Printf("report: section=%s rows=%d elapsed=%s", s.Name(), len(sec.Rows), elapsed.Truncate(time.Millisecond))
	if r.verbose {
		for _, row := range sec.Rows {
			log.Printf("report: section=%s rank=%d key=%q value=%s", s.Name(), row.Rank, row.Key, formatValue(row.Value))
		}
	}
	return sec, nil
}

var errNoDataset = errors.New("dataset not configured")

func (r *Runner) compute(ctx context.Context, s config.Section) (Section, error) {
	name, kind := s.Name(), s.Kind
	n := s.Options.Int("n", config.DefaultN)

	switch config.Dataset(kind) {
	case "movies":
		if r.ds.Movies == nil {
			return Section{}, fmt.Errorf("movies %w", errNoDataset)
		}
	case "ratings":
		if r.ds.Ratings == nil {
			return Section{}, fmt.Errorf("ratings %w", errNoDataset)
		}
	case "tags":
		if r.ds.Tags == nil {
			return Section{}, fmt.Errorf("tags %w", errNoDataset)
		}
	case "links":
		if r.ds.Links == nil {
			return Section{}, fmt.Errorf("links %w", errNoDataset)
		}
	}

	switch kind {
	case config.MoviesDistByRelease:
		res, err := r.ds.Movies.DistByRelease(ctx)
		return ranked(name, kind, res, err)
	case config.MoviesDistByGenres:
		res, err := r.ds.Movies.DistByGenres(ctx)
		return ranked(name, kind, res, err)
	case config.MoviesMostGenres:
		res, err := r.ds.Movies.MostGenres(ctx, n)
		return ranked(name, kind, res, err)

	case config.RatingsMoviesDistByYear:
		res, err := r.ds.Ratings.Movies().DistByYear(ctx)
		return ranked(name, kind, res, err)
	case config.RatingsMoviesDistByRating:
		res, err := r.ds.Ratings.Movies().DistByRating(ctx)
		return ranked(name, kind, res, err)
	case config.RatingsMoviesTopByNumOfRatings:
		res, err := r.ds.Ratings.Movies().TopByNumOfRatings(ctx, n)
		return ranked(name, kind, res, err)
	case config.RatingsMoviesTopByRatings:
		m, err := stats.MetricByName(s.Options.String("metric", ""))
		if err != nil {
			return Section{}, err
		}
		res, err := r.ds.Ratings.Movies().TopByRatings(ctx, n, m)
		return ranked(name, kind, res, err)
	case config.RatingsMoviesTopControversial:
		res, err := r.ds.Ratings.Movies().TopControversial(ctx, n)
		return ranked(name, kind, res, err)
	case config.RatingsUsersDistByRatingsNumber:
		res, err := r.ds.Ratings.Users().DistByRatingsNumber(ctx)
		return ranked(name, kind, res, err)
	case config.RatingsUsersDistByRatingsValues:
		m, err := stats.MetricByName(s.Options.String("metric", ""))
		if err != nil {
			return Section{}, err
		}
		res, err := r.ds.Ratings.Users().DistByRatingsValues(ctx, m)
		return ranked(name, kind, res, err)
	case config.RatingsUsersTopByVariance:
		res, err := r.ds.Ratings.Users().TopByVariance(ctx, n)
		return ranked(name, kind, res, err)

	case config.TagsMostWords:
		res, err := r.ds.Tags.MostWords(ctx, n)
		return ranked(name, kind, res, err)
	case config.TagsLongest:
		res, err := r.ds.Tags.Longest(ctx, n)
		return listed(name, kind, res, err)
	case config.TagsMostWordsAndLongest:
		res, err := r.ds.Tags.MostWordsAndLongest(ctx, n)
		return listed(name, kind, res, err)
	case config.TagsMostPopular:
		res, err := r.ds.Tags.MostPopular(ctx, n)
		return ranked(name, kind, res, err)
	case config.TagsWith:
		res, err := r.ds.Tags.TagsWith(ctx, s.Options.String("word", ""))
		return listed(name, kind, res, err)

	case config.LinksIMDB:
		ids := s.Options.IntSlice("movie_ids")
		if path := s.Options.String("movie_ids_file", ""); path != "" {
			more, err := file.ReadIDs(path)
			if err != nil {
				return Section{}, fmt.Errorf("movie_ids_file: %w", err)
			}
			ids = append(ids, more...)
		}
		fields := s.Options.StringSlice("fields")
		rows, err := r.ds.Links.IMDB(ctx, ids, fields)
		if err != nil {
			return Section{}, err
		}
		return FromIMDB(name, kind, fields, rows), nil
	case config.LinksTopDirectors:
		res, err := r.ds.Links.TopDirectors(ctx, n)
		return ranked(name, kind, res, err)
	case config.LinksMostExpensive:
		res, err := r.ds.Links.MostExpensive(ctx, n)
		return ranked(name, kind, res, err)
	case config.LinksMostProfitable:
		res, err := r.ds.Links.MostProfitable(ctx, n)
		return ranked(name, kind, res, err)
	case config.LinksLongest:
		res, err := r.ds.Links.Longest(ctx, n)
		return ranked(name, kind, res, err)
	case config.LinksTopCostPerMinute:
		res, err := r.ds.Links.TopCostPerMinute(ctx, n)
		return ranked(name, kind, res, err)
	}
	return Section{}, fmt.Errorf("unknown section kind %q", kind)
}
