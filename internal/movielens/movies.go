package movielens

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"movielens/internal/aggregate"
	"movielens/internal/dataset"
	"movielens/internal/datasource"
	"movielens/internal/lookup"

	"golang.org/x/text/unicode/norm"
)

// NullYear is the release bucket for titles without a "(yyyy)" suffix.
const NullYear = "Null"

var releaseYear = regexp.MustCompile(`\((\d{4})\)`)

// Movies analyses movies.csv and resolves movie ids to titles.
type Movies struct {
	src datasource.Source

	mu     sync.Mutex
	titles *lookup.Index[int, string]
}

// NewMovies binds the analyses to src.
func NewMovies(src datasource.Source) *Movies {
	return &Movies{src: src}
}

// DistByRelease counts movies per release year taken from the title, most
// common year first.
func (m *Movies) DistByRelease(ctx context.Context) (aggregate.Ranking[string, int], error) {
	c := aggregate.NewCounter[string]()
	err := scan(ctx, m.src, MoviesSchema, func(rec dataset.Record) error {
		year := NullYear
		if match := releaseYear.FindStringSubmatch(rec.String(movieTitle)); match != nil {
			year = match[1]
		}
		c.Add(year)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("movies: dist by release: %w", err)
	}
	return c.Distribution(), nil
}

// DistByGenres counts movies per genre, most common first.
func (m *Movies) DistByGenres(ctx context.Context) (aggregate.Ranking[string, int], error) {
	c := aggregate.NewCounter[string]()
	err := scan(ctx, m.src, MoviesSchema, func(rec dataset.Record) error {
		for _, g := range strings.Split(rec.String(movieGenres), "|") {
			if g = strings.TrimSpace(g); g != "" {
				c.Add(g)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("movies: dist by genres: %w", err)
	}
	return c.Distribution(), nil
}

// MostGenres returns the n titles listing the most genres. A title that
// appears twice keeps the genre count of its last row.
func (m *Movies) MostGenres(ctx context.Context, n int) (aggregate.Ranking[string, int], error) {
	c := aggregate.NewCounter[string]()
	err := scan(ctx, m.src, MoviesSchema, func(rec dataset.Record) error {
		c.Set(rec.String(movieTitle), len(strings.Split(rec.String(movieGenres), "|")))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("movies: most genres: %w", err)
	}
	return c.Top(n), nil
}

// Titles returns the movie id to title index, building it on first use.
// Titles are NFC normalized. Only a successful build is kept, so a failed or
// cancelled call does not affect later ones.
func (m *Movies) Titles(ctx context.Context) (*lookup.Index[int, string], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.titles != nil {
		return m.titles, nil
	}

	r, err := dataset.Open(ctx, m.src, MoviesSchema)
	if err != nil {
		return nil, fmt.Errorf("movies: title index: %w", err)
	}
	defer r.Close()

	ix, err := lookup.Build(r,
		func(rec dataset.Record) int { return rec.Int(movieID) },
		func(rec dataset.Record) string { return norm.NFC.String(rec.String(movieTitle)) },
	)
	if err != nil {
		return nil, fmt.Errorf("movies: title index: %w", err)
	}
	m.titles = ix
	return ix, nil
}

// Title resolves one movie id. Unknown ids report false.
func (m *Movies) Title(ctx context.Context, id int) (string, bool, error) {
	ix, err := m.Titles(ctx)
	if err != nil {
		return "", false, err
	}
	title, ok := ix.Lookup(id)
	return title, ok, nil
}
