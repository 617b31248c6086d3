// Package report implements the cross-reference algorithms run over a
// normalized inventory snapshot. Every function is pure: it never mutates its
// input and always sorts its own output.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Row is one flat result record keyed by column name. Values are scalars.
type Row map[string]any

// Table is an ordered list of rows with a fixed column order, handed to the
// output sinks.
type Table struct {
	Name    string
	Title   string
	Columns []string
	Rows    []Row
}

func NewTable(name, title string, columns ...string) *Table {
	return &Table{Name: name, Title: title, Columns: columns}
}

// Add appends a row built from values given in column order.
func (t *Table) Add(values ...any) {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("report %s: %d values for %d columns", t.Name, len(values), len(t.Columns)))
	}

	row := make(Row, len(values))
	for i, column := range t.Columns {
		row[column] = values[i]
	}

	t.Rows = append(t.Rows, row)
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the values of column in row order.
func (t *Table) Column(column string) []any {
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[column]
	}

	return values
}

// Strings renders the row values in column order.
func (t *Table) Strings(row Row) []string {
	out := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		out[i] = FormatValue(row[column])
	}

	return out
}

// FormatValue renders a row value as plain text.
func FormatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []string:
		return strings.Join(value, ", ")
	case time.Time:
		if value.IsZero() {
			return ""
		}

		return value.UTC().Format(time.RFC3339)
	case bool:
		if value {
			return "yes"
		}

		return "no"
	default:
		return fmt.Sprint(value)
	}
}

// sortByIntDesc stably sorts rows by an integer column, largest first.
func sortByIntDesc(rows []Row, column string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][column].(int) > rows[j][column].(int)
	})
}
