package movielens

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"movielens/internal/aggregate"
	"movielens/internal/bitmap"
	"movielens/internal/dataset"
	"movielens/internal/datasource"
	"movielens/internal/enrich"
	"movielens/internal/stats"
)

// IMDB page labels used by the link analyses.
const (
	FieldDirector = "Director"
	FieldBudget   = "Budget"
	FieldGross    = "Gross worldwide"
	FieldRuntime  = "Runtime"
)

// Link is one row of links.csv.
type Link struct {
	MovieID int
	IMDBID  string
	TMDBID  int
}

// IMDBRow is the requested IMDB fields of one movie, in request order.
type IMDBRow struct {
	MovieID int
	Fields  []enrich.Field
}

// Links analyses links.csv together with fields scraped for each movie.
type Links struct {
	src      datasource.Source
	movies   *Movies
	enricher *enrich.Adapter
	limit    int
}

// NewLinks binds the analyses to src. movies resolves titles and enricher
// fetches IMDB fields.
func NewLinks(src datasource.Source, movies *Movies, enricher *enrich.Adapter) *Links {
	return &Links{src: src, movies: movies, enricher: enricher}
}

// WithLimit returns a copy that only considers the first n links. n <= 0
// means all links. The enrichment cache is shared with l.
func (l *Links) WithLimit(n int) *Links {
	c := *l
	c.limit = n
	return &c
}

// Each calls fn for every link within the limit.
func (l *Links) Each(ctx context.Context, fn func(Link) error) error {
	seen := 0
	return scan(ctx, l.src, LinksSchema, func(rec dataset.Record) error {
		if l.limit > 0 && seen >= l.limit {
			return errStop
		}
		seen++
		return fn(Link{
			MovieID: rec.Int(linkMovieID),
			IMDBID:  rec.String(linkIMDB),
			TMDBID:  rec.Int(linkTMDB),
		})
	})
}

// IMDBIDs lists the IMDB ids within the limit, in file order.
func (l *Links) IMDBIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := l.Each(ctx, func(link Link) error {
		ids = append(ids, link.IMDBID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("links: ids: %w", err)
	}
	return ids, nil
}

// IMDB returns the requested fields for every movie in movieIDs that has a
// link, sorted by movie id, highest first.
func (l *Links) IMDB(ctx context.Context, movieIDs []int, fields []string) ([]IMDBRow, error) {
	want := bitmap.Of(movieIDs...)

	var rows []IMDBRow
	err := l.Each(ctx, func(link Link) error {
		if !want.Has(link.MovieID) {
			return nil
		}
		got, err := l.enricher.FetchFields(ctx, link.IMDBID, fields...)
		if err != nil {
			return err
		}
		row := IMDBRow{MovieID: link.MovieID, Fields: make([]enrich.Field, len(fields))}
		for i, name := range fields {
			row.Fields[i] = got.Get(name)
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("links: imdb: %w", err)
	}
	slices.SortStableFunc(rows, func(a, b IMDBRow) int { return cmp.Compare(b.MovieID, a.MovieID) })
	return rows, nil
}

// TopDirectors counts movies per director and returns the n most frequent.
// Movies without a director are not counted.
func (l *Links) TopDirectors(ctx context.Context, n int) (aggregate.Ranking[string, int], error) {
	c := aggregate.NewCounter[string]()
	err := l.Each(ctx, func(link Link) error {
		got, err := l.enricher.FetchFields(ctx, link.IMDBID, FieldDirector)
		if err != nil {
			return err
		}
		if d := got.Get(FieldDirector); d.Present {
			c.Add(d.Text)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("links: top directors: %w", err)
	}
	return c.Top(n), nil
}

// MostExpensive returns the n titles with the highest budget.
func (l *Links) MostExpensive(ctx context.Context, n int) (aggregate.Ranking[string, float64], error) {
	r, err := l.perTitle(ctx, []string{FieldBudget}, func(f enrich.Fields) float64 {
		return f.Get(FieldBudget).Amount()
	})
	if err != nil {
		return nil, fmt.Errorf("links: most expensive: %w", err)
	}
	return r.Top(n), nil
}

// MostProfitable returns the n titles with the largest worldwide gross minus
// budget.
func (l *Links) MostProfitable(ctx context.Context, n int) (aggregate.Ranking[string, float64], error) {
	r, err := l.perTitle(ctx, []string{FieldGross, FieldBudget}, func(f enrich.Fields) float64 {
		return stats.Round(f.Get(FieldGross).Amount()-f.Get(FieldBudget).Amount(), Places)
	})
	if err != nil {
		return nil, fmt.Errorf("links: most profitable: %w", err)
	}
	return r.Top(n), nil
}

// Longest returns the n titles with the longest runtime in minutes.
func (l *Links) Longest(ctx context.Context, n int) (aggregate.Ranking[string, float64], error) {
	r, err := l.perTitle(ctx, []string{FieldRuntime}, func(f enrich.Fields) float64 {
		return f.Get(FieldRuntime).Minutes()
	})
	if err != nil {
		return nil, fmt.Errorf("links: longest: %w", err)
	}
	return r.Top(n), nil
}

// TopCostPerMinute returns the n titles with the highest budget per minute
// of runtime. Currencies are not converted.
func (l *Links) TopCostPerMinute(ctx context.Context, n int) (aggregate.Ranking[string, float64], error) {
	r, err := l.perTitle(ctx, []string{FieldBudget, FieldRuntime}, func(f enrich.Fields) float64 {
		minutes := f.Get(FieldRuntime).Minutes()
		if minutes == 0 {
			return math.NaN()
		}
		return stats.Round(f.Get(FieldBudget).Amount()/minutes, Places)
	})
	if err != nil {
		return nil, fmt.Errorf("links: top cost per minute: %w", err)
	}
	return r.Top(n), nil
}

// perTitle computes value for every link and sorts the titles by it,
// highest first. Absent fields yield NaN, which sorts last. A title seen more
// than once keeps the value of its last link.
func (l *Links) perTitle(ctx context.Context, fields []string, value func(enrich.Fields) float64) (aggregate.Ranking[string, float64], error) {
	titles, err := l.movies.Titles(ctx)
	if err != nil {
		return nil, err
	}
	scores := aggregate.NewScores[string, float64]()
	err = l.Each(ctx, func(link Link) error {
		got, err := l.enricher.FetchFields(ctx, link.IMDBID, fields...)
		if err != nil {
			return err
		}
		scores.Set(titles.Get(link.MovieID), value(got))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores.Desc(), nil
}
