package file_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"movielens/internal/dataset"
	"movielens/internal/datasource/file"
)

var linkSchema = dataset.Schema{
	Name: "links",
	Columns: []dataset.Column{
		{Name: "movieId", Coerce: dataset.Int},
		{Name: "imdbId", Coerce: dataset.Text},
		{Name: "tmdbId", Coerce: dataset.IntOrZero},
	},
}

func writeLinks(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "links.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write links: %v", err)
	}
	return path
}

func TestLocal_ReadsDatasetTwice(t *testing.T) {
	t.Parallel()

	src := file.NewLocal(writeLinks(t, "movieId,imdbId,tmdbId\n1,0114709,862\n170705,0185906,\n"))

	// Every Open starts a fresh pass from the header.
	for pass := 1; pass <= 2; pass++ {
		r, err := dataset.Open(context.Background(), src, linkSchema)
		if err != nil {
			t.Fatalf("pass %d: Open: %v", pass, err)
		}
		var ids []int
		for rec, err := range r.All() {
			if err != nil {
				t.Fatalf("pass %d: record: %v", pass, err)
			}
			ids = append(ids, rec.Int(0))
		}
		r.Close()
		if len(ids) != 2 || ids[0] != 1 || ids[1] != 170705 {
			t.Fatalf("pass %d: ids=%v", pass, ids)
		}
	}
}

func TestLocal_MissingDataset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ratings.csv")
	_, err := dataset.Open(context.Background(), file.NewLocal(path), linkSchema)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v want os.ErrNotExist", err)
	}
}

func TestLocal_CancelledBeforeOpen(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc, err := file.NewLocal(writeLinks(t, "movieId,imdbId,tmdbId\n")).Open(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
	if rc != nil {
		t.Fatalf("got a stream on error")
	}
}

func TestLocal_RawBytes(t *testing.T) {
	t.Parallel()

	const body = "movieId,imdbId,tmdbId\n2,0113497,8844"
	l := file.NewLocal(writeLinks(t, body))
	if filepath.Base(l.Path()) != "links.csv" {
		t.Fatalf("Path()=%q", l.Path())
	}
	rc, err := l.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil || string(got) != body {
		t.Fatalf("read %q, %v", got, err)
	}
}
