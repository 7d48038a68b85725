package movielens

import (
	"context"
	"fmt"
	"time"

	"movielens/internal/aggregate"
	"movielens/internal/dataset"
	"movielens/internal/datasource"
	"movielens/internal/stats"
)

// Ratings analyses ratings.csv. Movie-level results are keyed by title,
// user-level results by user id.
type Ratings struct {
	src    datasource.Source
	movies *Movies
}

// NewRatings binds the analyses to src. movies resolves titles.
func NewRatings(src datasource.Source, movies *Movies) *Ratings {
	return &Ratings{src: src, movies: movies}
}

// Movies returns the per-movie view.
func (r *Ratings) Movies() RatingMovies { return RatingMovies{r: r} }

// Users returns the per-user view.
func (r *Ratings) Users() RatingUsers { return RatingUsers{r: r} }

// RatingMovies groups ratings by movie.
type RatingMovies struct{ r *Ratings }

// DistByYear counts ratings per UTC year of their timestamp, oldest year
// first.
func (v RatingMovies) DistByYear(ctx context.Context) (aggregate.Ranking[int, int], error) {
	c := aggregate.NewCounter[int]()
	err := scan(ctx, v.r.src, RatingsSchema, func(rec dataset.Record) error {
		c.Add(time.Unix(int64(rec.Int(ratingTstamp)), 0).UTC().Year())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ratings: dist by year: %w", err)
	}
	out := c.Entries()
	aggregate.SortByKey(out)
	return out, nil
}

// DistByRating counts ratings per rating value, lowest value first.
func (v RatingMovies) DistByRating(ctx context.Context) (aggregate.Ranking[float64, int], error) {
	c := aggregate.NewCounter[float64]()
	err := scan(ctx, v.r.src, RatingsSchema, func(rec dataset.Record) error {
		c.Add(rec.Float(ratingValue))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ratings: dist by rating: %w", err)
	}
	out := c.Entries()
	aggregate.SortByKey(out)
	return out, nil
}

// TopByNumOfRatings returns the n titles rated most often.
func (v RatingMovies) TopByNumOfRatings(ctx context.Context, n int) (aggregate.Ranking[string, int], error) {
	titles, err := v.r.movies.Titles(ctx)
	if err != nil {
		return nil, err
	}
	c := aggregate.NewCounter[string]()
	err = scan(ctx, v.r.src, RatingsSchema, func(rec dataset.Record) error {
		c.Add(titles.Get(rec.Int(ratingMovie)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ratings: top by number of ratings: %w", err)
	}
	return c.Top(n), nil
}

// TopByRatings returns the n titles with the highest metric over their
// ratings, rounded to Places decimals. A nil metric means average.
func (v RatingMovies) TopByRatings(ctx context.Context, n int, metric stats.Metric) (aggregate.Ranking[string, float64], error) {
	if metric == nil {
		metric = stats.Average
	}
	g, err := v.byTitle(ctx)
	if err != nil {
		return nil, fmt.Errorf("ratings: top by ratings: %w", err)
	}
	return g.TopByMetric(metric, Places, n)
}

// TopControversial returns the n titles whose ratings vary the most.
func (v RatingMovies) TopControversial(ctx context.Context, n int) (aggregate.Ranking[string, float64], error) {
	g, err := v.byTitle(ctx)
	if err != nil {
		return nil, fmt.Errorf("ratings: top controversial: %w", err)
	}
	return g.TopByMetric(stats.Variance, Places, n)
}

func (v RatingMovies) byTitle(ctx context.Context) (*aggregate.Groups[string], error) {
	titles, err := v.r.movies.Titles(ctx)
	if err != nil {
		return nil, err
	}
	g := aggregate.NewGroups[string]()
	err = scan(ctx, v.r.src, RatingsSchema, func(rec dataset.Record) error {
		g.Add(titles.Get(rec.Int(ratingMovie)), rec.Float(ratingValue))
		return nil
	})
	return g, err
}

// RatingUsers groups ratings by user.
type RatingUsers struct{ r *Ratings }

// DistByRatingsNumber returns every user with their number of ratings,
// fewest first.
func (v RatingUsers) DistByRatingsNumber(ctx context.Context) (aggregate.Ranking[int, int], error) {
	c := aggregate.NewCounter[int]()
	err := scan(ctx, v.r.src, RatingsSchema, func(rec dataset.Record) error {
		c.Add(rec.Int(ratingUser))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ratings: users by number of ratings: %w", err)
	}
	out := c.Entries()
	aggregate.SortAsc(out)
	return out, nil
}

// DistByRatingsValues returns every user with the metric over their ratings,
// lowest first. A nil metric means average.
func (v RatingUsers) DistByRatingsValues(ctx context.Context, metric stats.Metric) (aggregate.Ranking[int, float64], error) {
	if metric == nil {
		metric = stats.Average
	}
	g, err := v.byUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("ratings: users by rating values: %w", err)
	}
	out, err := g.Reduce(metric, Places)
	if err != nil {
		return nil, err
	}
	aggregate.SortAsc(out)
	return out, nil
}

// TopByVariance returns the n users whose ratings vary the most.
func (v RatingUsers) TopByVariance(ctx context.Context, n int) (aggregate.Ranking[int, float64], error) {
	g, err := v.byUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("ratings: users by variance: %w", err)
	}
	return g.TopByMetric(stats.Variance, Places, n)
}

func (v RatingUsers) byUser(ctx context.Context) (*aggregate.Groups[int], error) {
	g := aggregate.NewGroups[int]()
	err := scan(ctx, v.r.src, RatingsSchema, func(rec dataset.Record) error {
		g.Add(rec.Int(ratingUser), rec.Float(ratingValue))
		return nil
	})
	return g, err
}
