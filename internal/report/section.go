// Package report turns configured sections into computed result tables,
// renders them as text, JSON or XLSX, and persists them to a storage
// backend.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"movielens/internal/aggregate"
	"movielens/internal/enrich"
	"movielens/internal/movielens"
	"movielens/internal/stats"
)

// Row is one line of a section. Value is NaN when the metric could not be
// computed; Text carries non-numeric detail.
type Row struct {
	Rank  int
	Key   string
	Value float64
	Text  string
}

// Section is the result of one configured analysis.
type Section struct {
	Name string
	Kind string

	// Numeric is false for list sections whose rows carry no Value.
	Numeric bool

	Rows []Row
}

// Document is a complete report run.
type Document struct {
	Report      string
	RunID       string
	GeneratedAt time.Time
	Sections    []Section
}

// Rows returns the total row count across sections.
func (d Document) Rows() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Rows)
	}
	return n
}

// FromRanking converts a ranking, rounding values to two decimals.
func FromRanking[K comparable, V aggregate.Number](name, kind string, r aggregate.Ranking[K, V]) Section {
	s := Section{Name: name, Kind: kind, Numeric: true, Rows: make([]Row, len(r))}
	for i, e := range r {
		s.Rows[i] = Row{Rank: i + 1, Key: fmt.Sprint(e.Key), Value: stats.Round(float64(e.Value), movielens.Places)}
	}
	return s
}

// FromList converts an ordered list of keys.
func FromList(name, kind string, items []string) Section {
	s := Section{Name: name, Kind: kind, Rows: make([]Row, len(items))}
	for i, it := range items {
		s.Rows[i] = Row{Rank: i + 1, Key: it, Value: math.NaN()}
	}
	return s
}

// FromIMDB converts exported IMDB rows. Each row's Text lists the fields as
// "name=value" pairs; absent fields read "name=n/a".
func FromIMDB(name, kind string, fields []string, rows []movielens.IMDBRow) Section {
	s := Section{Name: name, Kind: kind, Rows: make([]Row, len(rows))}
	for i, r := range rows {
		s.Rows[i] = Row{Rank: i + 1, Key: strconv.Itoa(r.MovieID), Value: math.NaN(), Text: fieldText(fields, r.Fields)}
	}
	return s
}

func fieldText(names []string, fields []enrich.Field) string {
	parts := make([]string, len(names))
	for i, n := range names {
		v := "n/a"
		if i < len(fields) && fields[i].Present {
			v = fields[i].Text
		}
		parts[i] = n + "=" + v
	}
	return strings.Join(parts, "; ")
}

// formatValue renders a row value for humans. Integral values lose their
// decimals; NaN reads "n/a".
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
