package movielens

import (
	"context"
	"testing"

	"movielens/internal/aggregate"
	"movielens/internal/stats"
)

func newRatings() *Ratings {
	return NewRatings(src("ratings.csv"), NewMovies(src("movies.csv")))
}

func TestRatingMovies_Distributions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newRatings().Movies()

	years, err := r.DistByYear(ctx)
	if err != nil {
		t.Fatalf("DistByYear: %v", err)
	}
	mustEqual(t, "DistByYear", years, aggregate.Ranking[int, int]{{Key: 2000, Value: 3}, {Key: 2011, Value: 4}, {Key: 2015, Value: 2}})

	ratings, err := r.DistByRating(ctx)
	if err != nil {
		t.Fatalf("DistByRating: %v", err)
	}
	mustEqual(t, "DistByRating", ratings, aggregate.Ranking[float64, int]{
		{Key: 0.5, Value: 1}, {Key: 2.5, Value: 1}, {Key: 3.0, Value: 1}, {Key: 3.5, Value: 1}, {Key: 4.0, Value: 2}, {Key: 4.5, Value: 1}, {Key: 5.0, Value: 2},
	})
}

func TestRatingMovies_TopByNumOfRatings(t *testing.T) {
	t.Parallel()

	got, err := newRatings().Movies().TopByNumOfRatings(context.Background(), 2)
	if err != nil {
		t.Fatalf("TopByNumOfRatings: %v", err)
	}
	mustEqual(t, "TopByNumOfRatings", got, aggregate.Ranking[string, int]{
		{Key: "Toy Story (1995)", Value: 3}, {Key: "Jumanji (1995)", Value: 2},
	})
}

func TestRatingMovies_TopByRatings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newRatings().Movies()

	avg, err := r.TopByRatings(ctx, 3, nil)
	if err != nil {
		t.Fatalf("TopByRatings: %v", err)
	}
	mustEqual(t, "average", avg, aggregate.Ranking[string, float64]{
		{Key: "American President, The (1995)", Value: 5}, {Key: "Toy Story (1995)", Value: 4}, {Key: "Grumpier Old Men (1995)", Value: 4},
	})

	all, err := r.TopByRatings(ctx, 10, stats.Median)
	if err != nil {
		t.Fatalf("TopByRatings(median): %v", err)
	}
	// A rating for a movie missing from movies.csv is grouped under "".
	mustEqual(t, "median keys", all.Keys(), []string{
		"American President, The (1995)", "Toy Story (1995)", "Grumpier Old Men (1995)", "", "Jumanji (1995)", "Avatar (2009)",
	})
}

func TestRatingMovies_TopControversial(t *testing.T) {
	t.Parallel()

	got, err := newRatings().Movies().TopControversial(context.Background(), 2)
	if err != nil {
		t.Fatalf("TopControversial: %v", err)
	}
	mustEqual(t, "TopControversial", got, aggregate.Ranking[string, float64]{
		{Key: "Jumanji (1995)", Value: 4}, {Key: "Toy Story (1995)", Value: 0.67},
	})
}

func TestRatingUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	u := newRatings().Users()

	counts, err := u.DistByRatingsNumber(ctx)
	if err != nil {
		t.Fatalf("DistByRatingsNumber: %v", err)
	}
	mustEqual(t, "DistByRatingsNumber", counts, aggregate.Ranking[int, int]{{Key: 4, Value: 1}, {Key: 2, Value: 2}, {Key: 1, Value: 3}, {Key: 3, Value: 3}})

	values, err := u.DistByRatingsValues(ctx, stats.Average)
	if err != nil {
		t.Fatalf("DistByRatingsValues: %v", err)
	}
	mustEqual(t, "DistByRatingsValues", values, aggregate.Ranking[int, float64]{{Key: 3, Value: 2.67}, {Key: 4, Value: 3.5}, {Key: 2, Value: 3.75}, {Key: 1, Value: 4.33}})

	variance, err := u.TopByVariance(ctx, 2)
	if err != nil {
		t.Fatalf("TopByVariance: %v", err)
	}
	mustEqual(t, "TopByVariance", variance, aggregate.Ranking[int, float64]{{Key: 3, Value: 3.39}, {Key: 2, Value: 0.56}})
}
