package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kedare/netscope/internal/report"
)

func detectTerminalWidth() (int, bool) {
	if raw, ok := os.LookupEnv("COLUMNS"); ok {
		if width, err := strconv.Atoi(raw); err == nil && width > 0 {
			return width, true
		}
	}

	return systemTerminalWidth()
}

// Render writes tables to w in format.
func Render(w io.Writer, format string, tables ...*report.Table) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, tables)
	case FormatCSV:
		return renderCSV(w, tables)
	case FormatTable, "":
		return renderTables(w, tables)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func renderTables(w io.Writer, tables []*report.Table) error {
	width, hasWidth := detectTerminalWidth()

	for i, tbl := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		if tbl.Len() == 0 {
			if _, err := fmt.Fprintf(w, "%s: nothing found.\n", tbl.Title); err != nil {
				return err
			}

			continue
		}

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.Style().Format.Header = text.FormatDefault
		t.SetTitle(tbl.Title)
		if hasWidth {
			t.SetAllowedRowLength(width)
		}

		header := make(table.Row, len(tbl.Columns))
		for j, column := range tbl.Columns {
			header[j] = column
		}
		t.AppendHeader(header)

		for _, row := range tbl.Rows {
			values := tbl.Strings(row)
			cells := make(table.Row, len(values))
			for j, value := range values {
				cells[j] = value
			}
			t.AppendRow(cells)
		}

		t.Render()
	}

	return nil
}

type jsonTable struct {
	Name    string       `json:"name"`
	Title   string       `json:"title"`
	Columns []string     `json:"columns"`
	Rows    []report.Row `json:"rows"`
}

func renderJSON(w io.Writer, tables []*report.Table) error {
	out := make([]jsonTable, 0, len(tables))
	for _, tbl := range tables {
		rows := tbl.Rows
		if rows == nil {
			rows = []report.Row{}
		}

		out = append(out, jsonTable{Name: tbl.Name, Title: tbl.Title, Columns: tbl.Columns, Rows: rows})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(out)
}

// renderCSV writes one header and row block per table, separated by an empty
// line. A leading "table" column names the table of every record.
func renderCSV(w io.Writer, tables []*report.Table) error {
	writer := csv.NewWriter(w)

	for i, tbl := range tables {
		if i > 0 {
			writer.Flush()
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		if err := writer.Write(append([]string{"table"}, tbl.Columns...)); err != nil {
			return err
		}

		for _, row := range tbl.Rows {
			if err := writer.Write(append([]string{tbl.Name}, tbl.Strings(row)...)); err != nil {
				return err
			}
		}
	}

	writer.Flush()

	return writer.Error()
}
