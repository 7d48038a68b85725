package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"movielens/internal/config"
	"movielens/internal/datasource"
	"movielens/internal/datasource/httpds"
	"movielens/internal/enrich"
	"movielens/internal/movielens"
	"movielens/internal/report"
	"movielens/internal/storage"
)

type runOptions struct {
	progress bool
	verbose  bool
	stdout   io.Writer
}

// Function variables used as test seams.
var (
	newRepositoryFn = storage.New

	newEnrichSourceFn = func(client *httpds.Client, e config.Enrichment) enrich.Source {
		return enrich.NewIMDB(client, e.URLTemplate)
	}

	newRunID = uuid.NewString
	now      = time.Now
)

// run computes, renders and persists one report.
func run(ctx context.Context, rep config.Report, opt runOptions) error {
	start := now()

	client := httpds.NewClient(httpds.Config{
		Timeout:    rep.Enrichment.Timeout(),
		MaxRetries: rep.Enrichment.Retries,
		UserAgent:  rep.Enrichment.UserAgent,
	})
	enricher := enrich.New(newEnrichSourceFn(client, rep.Enrichment))
	ds := buildDatasets(rep, client, enricher)

	if rep.Enrichment.Warm && ds.Links != nil && usesLinks(rep.Sections) {
		if err := warm(ctx, ds.Links, enricher, rep.Enrichment.Workers, opt); err != nil {
			return err
		}
	}

	runner := report.NewRunner(rep.Name, ds)
	runner.SetVerbose(opt.verbose)
	sections, err := runner.Run(ctx, rep.Sections)
	if err != nil {
		return err
	}

	doc := report.Document{Report: rep.Name, RunID: newRunID(), GeneratedAt: now(), Sections: sections}
	if err := writeOutput(rep.Output, doc, opt.stdout); err != nil {
		return err
	}

	var persisted storage.LoadResult
	if rep.Storage.Kind != "" {
		if persisted, err = persist(ctx, rep.Storage, doc); err != nil {
			return err
		}
	}

	log.Printf("mlreport: report=%s run_id=%s sections=%d rows=%s persisted=%s remote_requests=%s elapsed=%s",
		rep.Name, doc.RunID, len(doc.Sections),
		humanize.Comma(int64(doc.Rows())), humanize.Comma(persisted.Rows), humanize.Comma(enricher.Requests()),
		time.Since(start).Truncate(time.Millisecond))
	return nil
}

// buildDatasets opens a view for every configured dataset location.
func buildDatasets(rep config.Report, client *httpds.Client, enricher *enrich.Adapter) report.Datasets {
	var ds report.Datasets
	if loc := rep.Datasets.Movies; loc != "" {
		ds.Movies = movielens.NewMovies(datasource.Resolve(loc, client))
	}
	if loc := rep.Datasets.Ratings; loc != "" {
		ds.Ratings = movielens.NewRatings(datasource.Resolve(loc, client), ds.Movies)
	}
	if loc := rep.Datasets.Tags; loc != "" {
		ds.Tags = movielens.NewTags(datasource.Resolve(loc, client))
	}
	if loc := rep.Datasets.Links; loc != "" {
		ds.Links = movielens.NewLinks(datasource.Resolve(loc, client), ds.Movies, enricher).WithLimit(rep.Enrichment.Limit)
	}
	return ds
}

func usesLinks(sections []config.Section) bool {
	for _, s := range sections {
		if config.Dataset(s.Kind) == "links" {
			return true
		}
	}
	return false
}

// warm pre-fetches every linked page so sections read from the cache.
func warm(ctx context.Context, links *movielens.Links, enricher *enrich.Adapter, workers int, opt runOptions) error {
	ids, err := links.IMDBIDs(ctx)
	if err != nil {
		return err
	}
	log.Printf("enrich: warming ids=%s workers=%d", humanize.Comma(int64(len(ids))), workers)

	var bar *progressbar.ProgressBar
	if opt.progress {
		bar = progressbar.NewOptions(len(ids),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("imdb"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	err = enricher.Warm(ctx, ids, workers, func(id string, err error) {
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil || opt.verbose {
			log.Printf("enrich: id=%s err=%v", id, err)
		}
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("enrich: warm: %w", err)
	}
	log.Printf("enrich: warmed cached=%s requests=%s", humanize.Comma(int64(enricher.Len())), humanize.Comma(enricher.Requests()))
	return nil
}

// writeOutput renders doc to out.Path, or to stdout when no path is set.
func writeOutput(out config.Output, doc report.Document, stdout io.Writer) error {
	if out.Path == "" {
		if stdout == nil {
			stdout = os.Stdout
		}
		return report.Render(stdout, out.Format, doc)
	}

	if dir := filepath.Dir(out.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}
	f, err := os.Create(out.Path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := report.Render(f, out.Format, doc); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	log.Printf("output: format=%s path=%s", out.Format, out.Path)
	return nil
}

// persist writes doc to the configured backend, creating the results table
// first when asked to.
func persist(ctx context.Context, sc config.Storage, doc report.Document) (storage.LoadResult, error) {
	log.Printf("storage: kind=%s table=%s batch=%d", sc.Kind, sc.Table, sc.BatchSize)

	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:    sc.Kind,
		DSN:     sc.DSN,
		Table:   sc.Table,
		Columns: storage.ResultColumns,
	})
	if err != nil {
		return storage.LoadResult{}, fmt.Errorf("storage: %w", err)
	}
	defer repo.Close()

	if sc.AutoCreateTable {
		if err := storage.EnsureTable(ctx, sc.Kind, repo, storage.ResultsTable(sc.Table)); err != nil {
			return storage.LoadResult{}, fmt.Errorf("storage: ensure table %s: %w", sc.Table, err)
		}
	}
	res, err := report.Persist(ctx, repo, sc.Kind, doc, sc.BatchSize)
	if err != nil {
		return res, err
	}
	log.Printf("storage: inserted=%s batches=%d table=%s", humanize.Comma(res.Rows), res.Batches, sc.Table)
	return res, nil
}
