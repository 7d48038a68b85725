package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_JSON(t *testing.T) {
	t.Parallel()

	p := writeFile(t, "weekly.json", `{
	  "name": "weekly",
	  "datasets": { "movies": "ml/movies.csv", "ratings": "https://example.org/ratings.csv" },
	  "enrichment": { "limit": 50, "workers": 4, "warm": true, "timeout_seconds": 15 },
	  "sections": [
	    { "kind": "movies.dist_by_genres" },
	    { "kind": "ratings.movies.top_by_ratings", "title": "Best rated", "options": { "n": 5, "metric": "median" } },
	    { "kind": "links.imdb", "options": { "movie_ids": [1, 2, 3], "fields": ["Director", "Budget"] } }
	  ],
	  "output": { "format": "json", "path": "out/weekly.json" },
	  "storage": { "kind": "sqlite", "dsn": "out/results.db" }
	}`)

	r, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Name != "weekly" || r.Datasets.Ratings != "https://example.org/ratings.csv" {
		t.Fatalf("unexpected report: %+v", r)
	}
	if r.Enrichment.Workers != 4 || !r.Enrichment.Warm || r.Enrichment.Timeout().Seconds() != 15 {
		t.Fatalf("enrichment = %+v", r.Enrichment)
	}
	if len(r.Sections) != 3 {
		t.Fatalf("sections = %d", len(r.Sections))
	}

	// Defaults.
	if r.Storage.Table != DefaultTable || r.Storage.BatchSize != DefaultBatchSize {
		t.Fatalf("storage defaults not applied: %+v", r.Storage)
	}
	if r.Metrics.Job != "weekly" {
		t.Fatalf("metrics job = %q", r.Metrics.Job)
	}
	if r.Sections[0].Options == nil {
		t.Fatal("missing options should decode to an empty map")
	}

	s := r.Sections[1]
	if s.Name() != "Best rated" || s.Options.Int("n", 0) != 5 || s.Options.String("metric", "") != "median" {
		t.Fatalf("section 1 = %+v", s)
	}
	if got := r.Sections[2].Options.IntSlice("movie_ids"); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("movie_ids = %v", got)
	}
	if r.Sections[0].Name() != MoviesDistByGenres {
		t.Fatalf("untitled section name = %q", r.Sections[0].Name())
	}
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	p := writeFile(t, "weekly.yaml", `
name: weekly
datasets:
  tags: ml/tags.csv
sections:
  - kind: tags.tags_with
    options:
      word: comedy
  - kind: tags.most_words
    options:
      n: 3
  - kind: tags.longest
    options:
output:
  format: xlsx
  path: out/weekly.xlsx
metrics:
  backend: datadog
  tags: ["env:test", "team:data"]
`)

	r, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Sections[0].Options.String("word", "") != "comedy" {
		t.Fatalf("word = %+v", r.Sections[0].Options)
	}
	if r.Sections[1].Options.Int("n", 0) != 3 {
		t.Fatalf("n = %+v", r.Sections[1].Options)
	}
	if r.Sections[2].Options == nil {
		t.Fatal("null options should decode to an empty map")
	}
	if r.Output.Format != "xlsx" || !reflect.DeepEqual(r.Metrics.Tags, []string{"env:test", "team:data"}) {
		t.Fatalf("report = %+v", r)
	}
	if r.Storage.Table != "" {
		t.Fatalf("storage defaults applied without a kind: %+v", r.Storage)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil || !strings.Contains(err.Error(), "config: read") {
		t.Fatalf("missing file err = %v", err)
	}
	p := writeFile(t, "bad.json", `{"name": `)
	if _, err := Load(p); err == nil || !strings.Contains(err.Error(), "config: decode") {
		t.Fatalf("bad json err = %v", err)
	}
}

func TestOptions_Getters(t *testing.T) {
	t.Parallel()

	o := Options{
		"s":     "x",
		"b":     true,
		"f":     float64(7),
		"i":     3,
		"ss":    []any{"a", 1, "b"},
		"is":    []any{float64(1), "x", 2},
		"wrong": []any{},
	}
	if o.String("s", "d") != "x" || o.String("b", "d") != "d" || o.String("nope", "d") != "d" {
		t.Error("String")
	}
	if !o.Bool("b", false) || o.Bool("s", false) {
		t.Error("Bool")
	}
	if o.Int("f", 0) != 7 || o.Int("i", 0) != 3 || o.Int("s", 9) != 9 {
		t.Error("Int")
	}
	if !reflect.DeepEqual(o.StringSlice("ss"), []string{"a", "b"}) || o.StringSlice("nope") != nil {
		t.Error("StringSlice")
	}
	if !reflect.DeepEqual(o.IntSlice("is"), []int{1, 2}) || o.IntSlice("s") != nil {
		t.Error("IntSlice")
	}
	if !o.Has("wrong") || o.Has("nope") {
		t.Error("Has")
	}
}

func TestSectionKinds(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, k := range SectionKinds() {
		if seen[k.Kind] {
			t.Fatalf("duplicate kind %q", k.Kind)
		}
		seen[k.Kind] = true
		switch Dataset(k.Kind) {
		case "movies", "ratings", "tags", "links":
		default:
			t.Fatalf("kind %q has no dataset group", k.Kind)
		}
	}
	if _, ok := LookupSectionKind("movies.nope"); ok {
		t.Fatal("unknown kind found")
	}
	if k, ok := LookupSectionKind(RatingsMoviesTopByRatings); !ok || !k.TakesMetric || !k.NeedsTitles {
		t.Fatalf("descriptor = %+v", k)
	}
}
