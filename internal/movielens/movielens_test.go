package movielens

import (
	"context"
	"math"
	"reflect"
	"sync"
	"testing"

	"movielens/internal/aggregate"
	"movielens/internal/datasource/file"
	"movielens/internal/enrich"
)

func src(name string) *file.Local { return file.NewLocal("testdata/" + name) }

// pageSource serves fixed IMDB fields and counts fetches.
type pageSource struct {
	mu    sync.Mutex
	calls int
}

var pages = map[string]map[string]string{
	"0114709": {FieldDirector: "John Lasseter", FieldBudget: "$30,000,000 (estimated)", FieldGross: "$394,436,586", FieldRuntime: "1 hour 21 minutes"},
	"0113497": {FieldDirector: "Joe Johnston", FieldBudget: "$65,000,000 (estimated)", FieldGross: "$262,821,940", FieldRuntime: "1 hour 44 minutes"},
	"0499549": {FieldDirector: "James Cameron", FieldBudget: "$237,000,000 (estimated)", FieldGross: "$2,923,706,026", FieldRuntime: "2 hours 42 minutes"},
	"0185906": {FieldRuntime: "9 hours 54 minutes"},
}

func (p *pageSource) Fetch(ctx context.Context, id string) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return pages[id], nil
}

func newLinks(t *testing.T) (*Links, *pageSource) {
	t.Helper()
	ps := &pageSource{}
	return NewLinks(src("links.csv"), NewMovies(src("movies.csv")), enrich.New(ps)), ps
}

func sameFloats(a, b aggregate.Ranking[string, float64]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key {
			return false
		}
		if math.IsNaN(a[i].Value) != math.IsNaN(b[i].Value) {
			return false
		}
		if !math.IsNaN(a[i].Value) && a[i].Value != b[i].Value {
			return false
		}
	}
	return true
}

func mustEqual[T any](t *testing.T, name string, got, want T) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("%s =\n%v\nwant\n%v", name, got, want)
	}
}
