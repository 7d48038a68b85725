package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/xuri/excelize/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "xlsx"}

// Render writes doc to w in format.
func Render(w io.Writer, format string, doc Document) error {
	switch format {
	case "", "text":
		return renderText(w, doc)
	case "json":
		return renderJSON(w, doc)
	case "xlsx":
		return renderXLSX(w, doc)
	}
	return fmt.Errorf("report: unknown format %q", format)
}

func renderText(w io.Writer, doc Document) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "# %s (run %s, %s)\n", doc.Report, doc.RunID, doc.GeneratedAt.UTC().Format(time.RFC3339))
	for _, s := range doc.Sections {
		fmt.Fprintf(tw, "\n== %s ==\n", s.Name)
		if len(s.Rows) == 0 {
			fmt.Fprintln(tw, "(no rows)")
			continue
		}
		for _, r := range s.Rows {
			switch {
			case s.Numeric:
				fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Rank, r.Key, formatValue(r.Value))
			case r.Text != "":
				fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Rank, r.Key, r.Text)
			default:
				fmt.Fprintf(tw, "%d\t%s\n", r.Rank, r.Key)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("report: text: %w", err)
	}
	return nil
}

type jsonRow struct {
	Rank  int      `json:"rank"`
	Key   string   `json:"key"`
	Value *float64 `json:"value,omitempty"`
	Text  string   `json:"text,omitempty"`
}

type jsonSection struct {
	Name string    `json:"name"`
	Kind string    `json:"kind"`
	Rows []jsonRow `json:"rows"`
}

type jsonDocument struct {
	Report      string        `json:"report"`
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Sections    []jsonSection `json:"sections"`
}

// renderJSON writes doc as one indented object. NaN values, which JSON
// cannot carry, are written as null.
func renderJSON(w io.Writer, doc Document) error {
	out := jsonDocument{Report: doc.Report, RunID: doc.RunID, GeneratedAt: doc.GeneratedAt.UTC(), Sections: make([]jsonSection, len(doc.Sections))}
	for i, s := range doc.Sections {
		js := jsonSection{Name: s.Name, Kind: s.Kind, Rows: make([]jsonRow, len(s.Rows))}
		for j, r := range s.Rows {
			jr := jsonRow{Rank: r.Rank, Key: r.Key, Text: r.Text}
			if s.Numeric && !math.IsNaN(r.Value) {
				v := r.Value
				jr.Value = &v
			}
			js.Rows[j] = jr
		}
		out.Sections[i] = js
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("report: json: %w", err)
	}
	return nil
}

// renderXLSX writes one sheet per section with a Rank/Item/Value header.
func renderXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	used := map[string]bool{}
	for i, s := range doc.Sections {
		sheet := sheetName(s.Name, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("report: xlsx: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("report: xlsx: sheet %q: %w", sheet, err)
		}

		third := "Value"
		if !s.Numeric {
			third = "Detail"
		}
		if err := f.SetSheetRow(sheet, "A1", &[]any{"Rank", "Item", third}); err != nil {
			return fmt.Errorf("report: xlsx: %w", err)
		}
		for j, r := range s.Rows {
			var v any = r.Text
			if s.Numeric {
				v = nil
				if !math.IsNaN(r.Value) {
					v = r.Value
				}
			}
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return fmt.Errorf("report: xlsx: %w", err)
			}
			if err := f.SetSheetRow(sheet, cell, &[]any{r.Rank, r.Key, v}); err != nil {
				return fmt.Errorf("report: xlsx: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: xlsx: write: %w", err)
	}
	return nil
}

// sheetName makes name a valid, unique worksheet name: at most 31 runes,
// none of []:*?/\ and not already in used.
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	if clean == "" {
		clean = "section"
	}
	base := truncate(clean, 31)
	out := base
	for i := 2; used[out]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		out = truncate(base, 31-len(suffix)) + suffix
	}
	used[out] = true
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
