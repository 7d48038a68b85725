// Package movielens implements the report analyses over the four MovieLens
// datasets: movies, links, ratings and tags.
//
// Every analysis re-reads its dataset from the start, so the types here hold
// no record state between calls. The only state is the lazily built title
// index of Movies and the enrichment cache behind Links.
package movielens

import (
	"context"
	"errors"

	"movielens/internal/dataset"
	"movielens/internal/datasource"
	"movielens/internal/metrics"
)

// Dataset schemas. Column order matches the MovieLens CSV headers.
var (
	MoviesSchema = dataset.Schema{Name: "movies", Columns: []dataset.Column{
		{Name: "movieId", Coerce: dataset.Int},
		{Name: "title", Coerce: dataset.Text},
		{Name: "genres", Coerce: dataset.Text},
	}}

	LinksSchema = dataset.Schema{Name: "links", Columns: []dataset.Column{
		{Name: "movieId", Coerce: dataset.Int},
		{Name: "imdbId", Coerce: dataset.Text},
		{Name: "tmdbId", Coerce: dataset.IntOrZero},
	}}

	RatingsSchema = dataset.Schema{Name: "ratings", Columns: []dataset.Column{
		{Name: "userId", Coerce: dataset.Int},
		{Name: "movieId", Coerce: dataset.Int},
		{Name: "rating", Coerce: dataset.Float},
		{Name: "timestamp", Coerce: dataset.Int},
	}}

	TagsSchema = dataset.Schema{Name: "tags", Columns: []dataset.Column{
		{Name: "userId", Coerce: dataset.Int},
		{Name: "movieId", Coerce: dataset.Int},
		{Name: "tag", Coerce: dataset.Text},
		{Name: "timestamp", Coerce: dataset.Int},
	}}
)

// Column positions.
const (
	movieID     = 0
	movieTitle  = 1
	movieGenres = 2

	linkMovieID = 0
	linkIMDB    = 1
	linkTMDB    = 2

	ratingUser   = 0
	ratingMovie  = 1
	ratingValue  = 2
	ratingTstamp = 3

	tagText = 2
)

// Places is the number of decimals metric values are rounded to.
const Places = 2

// errStop ends a scan early without reporting an error.
var errStop = errors.New("stop")

// scan walks every record of src and reports how many were read.
func scan(ctx context.Context, src datasource.Source, schema dataset.Schema, fn func(dataset.Record) error) error {
	var n int64
	err := dataset.Each(ctx, src, schema, func(rec dataset.Record) error {
		n++
		return fn(rec)
	})
	metrics.RecordRecords(schema.Name, n)
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}
