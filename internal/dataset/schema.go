// Package dataset turns delimited text files into typed records.
//
// A Schema fixes the column order and how each column is coerced. A Reader
// walks a stream line by line, discarding the header, so memory stays flat no
// matter how large the file is.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"movielens/internal/errs"
)

// CoerceFunc converts one raw field into its typed value.
type CoerceFunc func(raw string) (any, error)

// Column names a field and how to coerce it.
type Column struct {
	Name   string
	Coerce CoerceFunc
}

// Schema is the ordered column list for one dataset file.
type Schema struct {
	Name    string
	Columns []Column
}

// Width is the number of fields every line must have.
func (s Schema) Width() int { return len(s.Columns) }

// Record is one parsed line. Values sit at the position of their column.
type Record []any

// Int returns field i as an int. It panics if the column is not an int
// column, which is a programming error rather than bad data.
func (r Record) Int(i int) int { return r[i].(int) }

// Float returns field i as a float64.
func (r Record) Float(i int) float64 { return r[i].(float64) }

// String returns field i as a string.
func (r Record) String(i int) string { return r[i].(string) }

// Int coerces a base-10 integer.
func Int(raw string) (any, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

// IntOrZero is Int, except that an empty field becomes 0.
func IntOrZero(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return Int(raw)
}

// Float coerces a decimal number.
func Float(raw string) (any, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// Text keeps the field verbatim.
func Text(raw string) (any, error) { return raw, nil }

var errFieldCount = errors.New("field count mismatch")

// SplitLine breaks line into raw fields on commas. A double-quoted field may
// contain commas and keeps them; its outer quotes are dropped and a doubled
// quote inside it becomes one quote.
func SplitLine(line string) []string {
	if !strings.Contains(line, `"`) {
		return strings.Split(line, ",")
	}
	var (
		fields []string
		b      strings.Builder
		quoted bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && quoted && i+1 < len(line) && line[i+1] == '"':
			b.WriteByte('"')
			i++
		case c == '"':
			quoted = !quoted
		case c == ',' && !quoted:
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(fields, b.String())
}

// ParseLine parses one data line. lineNo is only used in errors.
func (s Schema) ParseLine(line string, lineNo int) (Record, error) {
	fields := SplitLine(line)
	if len(fields) != s.Width() {
		return nil, &errs.ParseError{
			Dataset: s.Name,
			Line:    lineNo,
			Err:     fmt.Errorf("%w: expected %d, got %d", errFieldCount, s.Width(), len(fields)),
		}
	}

	rec := make(Record, len(fields))
	for i, col := range s.Columns {
		v, err := col.Coerce(fields[i])
		if err != nil {
			return nil, &errs.ParseError{
				Dataset: s.Name,
				Line:    lineNo,
				Field:   col.Name,
				Value:   fields[i],
				Err:     err,
			}
		}
		rec[i] = v
	}
	return rec, nil
}
