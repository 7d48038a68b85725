package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"movielens/internal/config"
	"movielens/internal/datasource/httpds"
	"movielens/internal/enrich"
	"movielens/internal/storage"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "internal", "movielens", "testdata", name)
}

// fakePages counts fetches and serves fixed fields.
type fakePages struct {
	mu    sync.Mutex
	calls map[string]int
	fail  string
}

func (f *fakePages) Fetch(ctx context.Context, id string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[id]++
	if id == f.fail {
		return nil, errors.New("503")
	}
	return map[string]string{"Director": "Director of " + id, "Budget": "$1,000"}, nil
}

// withSeams swaps the package seams for the duration of a test.
func withSeams(t *testing.T, pages *fakePages) {
	t.Helper()
	origSrc, origID, origNow := newEnrichSourceFn, newRunID, now
	t.Cleanup(func() { newEnrichSourceFn, newRunID, now = origSrc, origID, origNow })

	newEnrichSourceFn = func(*httpds.Client, config.Enrichment) enrich.Source { return pages }
	newRunID = func() string { return "run-1" }
	now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
}

func baseReport() config.Report {
	r := config.Report{
		Name: "weekly",
		Datasets: config.Datasets{
			Movies:  fixture("movies.csv"),
			Ratings: fixture("ratings.csv"),
			Tags:    fixture("tags.csv"),
			Links:   fixture("links.csv"),
		},
		Sections: []config.Section{
			{Kind: config.MoviesDistByRelease},
			{Kind: config.TagsMostPopular, Options: config.Options{"n": float64(2)}},
			{Kind: config.LinksTopDirectors},
		},
	}
	r.ApplyDefaults()
	return r
}

func TestRun_TextToStdoutWithWarmup(t *testing.T) {
	pages := &fakePages{}
	withSeams(t, pages)

	rep := baseReport()
	rep.Enrichment.Warm = true
	rep.Enrichment.Workers = 2
	rep.Enrichment.Limit = 3

	var out bytes.Buffer
	if err := run(context.Background(), rep, runOptions{stdout: &out}); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	for _, want := range []string{"# weekly (run run-1, 2024-03-01T12:00:00Z)", "== movies.dist_by_release ==", "== tags.most_popular ==", "funny", "Director of 0114709"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Director of 0185906") {
		t.Errorf("link beyond the limit was enriched:\n%s", text)
	}

	// Warm-up and the section share one cache: one fetch per id.
	if len(pages.calls) != 3 {
		t.Fatalf("fetched ids = %v", pages.calls)
	}
	for id, n := range pages.calls {
		if n != 1 {
			t.Errorf("id %s fetched %d times", id, n)
		}
	}
}

func TestRun_WarmupFailureStopsRun(t *testing.T) {
	withSeams(t, &fakePages{fail: "0113497"})

	rep := baseReport()
	rep.Enrichment.Warm = true

	err := run(context.Background(), rep, runOptions{stdout: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "enrich: warm") {
		t.Fatalf("err = %v", err)
	}
}

func TestRun_JSONFileAndSQLite(t *testing.T) {
	withSeams(t, &fakePages{})

	dir := t.TempDir()
	rep := baseReport()
	rep.Output = config.Output{Format: "json", Path: filepath.Join(dir, "out", "weekly.json")}
	rep.Storage = config.Storage{Kind: "sqlite", DSN: filepath.Join(dir, "results.db"), Table: "results", BatchSize: 2, AutoCreateTable: true}

	if err := run(context.Background(), rep, runOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	b, err := os.ReadFile(rep.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"run_id": "run-1"`) {
		t.Fatalf("json output:\n%s", b)
	}

	db, err := sql.Open("sqlite", rep.Storage.DSN)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM results WHERE run_id = 'run-1'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	// 4 release years + 2 popular tags + 4 directors.
	if n != 10 {
		t.Fatalf("persisted rows = %d, want 10", n)
	}
}

func TestRun_StorageFactoryError(t *testing.T) {
	withSeams(t, &fakePages{})
	orig := newRepositoryFn
	t.Cleanup(func() { newRepositoryFn = orig })
	newRepositoryFn = func(context.Context, storage.Config) (storage.Repository, error) {
		return nil, errors.New("connection refused")
	}

	rep := baseReport()
	rep.Storage = config.Storage{Kind: "postgres", DSN: "postgres://localhost/db", Table: "results", BatchSize: 10}
	err := run(context.Background(), rep, runOptions{stdout: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("err = %v", err)
	}
}

func TestUsesLinks(t *testing.T) {
	if usesLinks([]config.Section{{Kind: config.MoviesDistByGenres}}) {
		t.Fatal("movies section reported as links")
	}
	if !usesLinks([]config.Section{{Kind: config.MoviesDistByGenres}, {Kind: config.LinksLongest}}) {
		t.Fatal("links section not detected")
	}
}
