package movielens

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"movielens/internal/aggregate"
	"movielens/internal/datasource/file"
	"movielens/internal/enrich"
	"movielens/internal/errs"
)

func TestLinks_EachParsesEmptyTMDB(t *testing.T) {
	t.Parallel()

	l, _ := newLinks(t)
	var got []Link
	err := l.Each(context.Background(), func(link Link) error {
		got = append(got, link)
		return nil
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d links, want 4", len(got))
	}
	mustEqual(t, "last link", got[3], Link{MovieID: 170705, IMDBID: "0185906", TMDBID: 0})
}

func TestLinks_IMDBSortedByMovieIDDesc(t *testing.T) {
	t.Parallel()

	l, _ := newLinks(t)
	rows, err := l.IMDB(context.Background(), []int{1, 19995, 999}, []string{FieldDirector, FieldBudget, "Color"})
	if err != nil {
		t.Fatalf("IMDB: %v", err)
	}
	if len(rows) != 2 || rows[0].MovieID != 19995 || rows[1].MovieID != 1 {
		t.Fatalf("rows = %#v", rows)
	}
	mustEqual(t, "avatar fields", rows[0].Fields, []enrich.Field{
		{Text: "James Cameron", Present: true},
		{Text: "$237,000,000 (estimated)", Present: true},
		enrich.Absent,
	})
}

func TestLinks_TopDirectors(t *testing.T) {
	t.Parallel()

	l, ps := newLinks(t)
	got, err := l.TopDirectors(context.Background(), 5)
	if err != nil {
		t.Fatalf("TopDirectors: %v", err)
	}
	mustEqual(t, "TopDirectors", got, aggregate.Ranking[string, int]{
		{Key: "John Lasseter", Value: 1}, {Key: "Joe Johnston", Value: 1}, {Key: "James Cameron", Value: 1},
	})
	if ps.calls != 4 {
		t.Fatalf("fetches = %d, want 4", ps.calls)
	}
}

func TestLinks_MoneyAndRuntime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, ps := newLinks(t)
	nan := math.NaN()

	expensive, err := l.MostExpensive(ctx, 10)
	if err != nil {
		t.Fatalf("MostExpensive: %v", err)
	}
	if !sameFloats(expensive, aggregate.Ranking[string, float64]{
		{Key: "Avatar (2009)", Value: 237e6}, {Key: "Jumanji (1995)", Value: 65e6}, {Key: "Toy Story (1995)", Value: 30e6}, {Key: "Band of Brothers (2001)", Value: nan},
	}) {
		t.Fatalf("MostExpensive = %v", expensive)
	}

	profitable, err := l.MostProfitable(ctx, 10)
	if err != nil {
		t.Fatalf("MostProfitable: %v", err)
	}
	if !sameFloats(profitable, aggregate.Ranking[string, float64]{
		{Key: "Avatar (2009)", Value: 2686706026}, {Key: "Toy Story (1995)", Value: 364436586}, {Key: "Jumanji (1995)", Value: 197821940}, {Key: "Band of Brothers (2001)", Value: nan},
	}) {
		t.Fatalf("MostProfitable = %v", profitable)
	}

	longest, err := l.Longest(ctx, 2)
	if err != nil {
		t.Fatalf("Longest: %v", err)
	}
	mustEqual(t, "Longest", longest, aggregate.Ranking[string, float64]{
		{Key: "Band of Brothers (2001)", Value: 594}, {Key: "Avatar (2009)", Value: 162},
	})

	cost, err := l.TopCostPerMinute(ctx, 10)
	if err != nil {
		t.Fatalf("TopCostPerMinute: %v", err)
	}
	if !sameFloats(cost, aggregate.Ranking[string, float64]{
		{Key: "Avatar (2009)", Value: 1462962.96}, {Key: "Jumanji (1995)", Value: 625000}, {Key: "Toy Story (1995)", Value: 370370.37}, {Key: "Band of Brothers (2001)", Value: nan},
	}) {
		t.Fatalf("TopCostPerMinute = %v", cost)
	}

	// Four analyses over four links, one fetch per IMDB id.
	if ps.calls != 4 {
		t.Fatalf("fetches = %d, want 4", ps.calls)
	}
}

func TestLinks_UnknownIDsShareOneEntry(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "links.csv")
	const data = "movieId,imdbId,tmdbId\n1,0114709,862\n900001,0499549,19995\n900002,0113497,8844\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write links: %v", err)
	}
	l := NewLinks(file.NewLocal(path), NewMovies(src("movies.csv")), enrich.New(&pageSource{}))

	got, err := l.MostExpensive(context.Background(), 10)
	if err != nil {
		t.Fatalf("MostExpensive: %v", err)
	}
	mustEqual(t, "MostExpensive", got, aggregate.Ranking[string, float64]{
		{Key: "", Value: 65e6}, {Key: "Toy Story (1995)", Value: 30e6},
	})
}

func TestLinks_WithLimit(t *testing.T) {
	t.Parallel()

	l, ps := newLinks(t)
	limited := l.WithLimit(2)

	ids, err := limited.IMDBIDs(context.Background())
	if err != nil {
		t.Fatalf("IMDBIDs: %v", err)
	}
	mustEqual(t, "ids", ids, []string{"0114709", "0113497"})

	got, err := limited.TopDirectors(context.Background(), 5)
	if err != nil {
		t.Fatalf("TopDirectors: %v", err)
	}
	if len(got) != 2 || ps.calls != 2 {
		t.Fatalf("TopDirectors = %v with %d fetches", got, ps.calls)
	}

	all, err := l.IMDBIDs(context.Background())
	if err != nil || len(all) != 4 {
		t.Fatalf("unlimited ids = %v, %v", all, err)
	}
}

type failingSource struct{}

func (failingSource) Fetch(ctx context.Context, id string) (map[string]string, error) {
	return nil, &errs.RetrievalError{ID: id, URL: "https://www.imdb.com/title/tt" + id + "/", Status: 404}
}

func TestLinks_RetrievalErrorStopsAnalysis(t *testing.T) {
	t.Parallel()

	l := NewLinks(src("links.csv"), NewMovies(src("movies.csv")), enrich.New(failingSource{}))
	_, err := l.MostExpensive(context.Background(), 3)

	var re *errs.RetrievalError
	if !errors.As(err, &re) || re.Status != 404 || re.ID != "0114709" {
		t.Fatalf("err = %v, want RetrievalError 404 for 0114709", err)
	}
}
