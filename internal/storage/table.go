package storage

import (
	"fmt"
	"strings"
)

// Type is a dialect-neutral column type. Backends map it to SQL.
type Type int

const (
	TypeText Type = iota
	TypeInt
	TypeFloat
	TypeTimestamp
)

// ColumnDef describes one column of a table to create.
type ColumnDef struct {
	Name     string
	Type     Type
	Nullable bool
}

// TableDef is a table to create.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ResultColumns is the insert order of the results table.
var ResultColumns = []string{"run_id", "report", "section", "position", "item", "metric", "detail", "created_at"}

// ResultsTable returns the definition of the results table named fqn. metric
// is NULL when the value could not be computed.
func ResultsTable(fqn string) TableDef {
	return TableDef{
		FQN: fqn,
		Columns: []ColumnDef{
			{Name: "run_id", Type: TypeText},
			{Name: "report", Type: TypeText},
			{Name: "section", Type: TypeText},
			{Name: "position", Type: TypeInt},
			{Name: "item", Type: TypeText},
			{Name: "metric", Type: TypeFloat, Nullable: true},
			{Name: "detail", Type: TypeText, Nullable: true},
			{Name: "created_at", Type: TypeTimestamp},
		},
	}
}

// Dialect renders identifiers and types for one SQL flavor.
type Dialect struct {
	Name        string
	QuoteIdent  func(string) string
	TypeName    func(Type) string
	IfNotExists bool
}

// CreateTableSQL renders t as a CREATE TABLE statement in d.
func CreateTableSQL(d Dialect, t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table name must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, fqn)
		}
		col := d.QuoteIdent(name) + " " + d.TypeName(c.Type)
		if !c.Nullable {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}

	create := "CREATE TABLE "
	if d.IfNotExists {
		create += "IF NOT EXISTS "
	}
	return fmt.Sprintf("%s%s (\n  %s\n)", create, QuoteFQN(d, fqn), strings.Join(cols, ",\n  ")), nil
}

// QuoteFQN quotes every dot-separated segment of name. Empty segments are
// dropped.
func QuoteFQN(d Dialect, name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, d.QuoteIdent(p))
		}
	}
	return strings.Join(out, ".")
}

// QuoteIdents quotes every name in cols.
func QuoteIdents(d Dialect, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = d.QuoteIdent(c)
	}
	return out
}
