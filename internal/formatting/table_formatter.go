package formatting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	textutil "argware/pkg/strings"
)

const maxValueWidth = 100

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// FormatData renders maps as KEY/VALUE rows, nested keys joined with dots.
func (f *TableFormatter) FormatData(data any) error {
	switch d := data.(type) {
	case map[string]any:
		return f.formatObjectData(d)
	case []any:
		return f.formatArrayData(d)
	case string:
		_, err := fmt.Fprintln(f.options.Output, d)
		return err
	default:
		_, err := fmt.Fprintf(f.options.Output, "%v\n", d)
		return err
	}
}

// FormatRows renders a table with the given headers.
func (f *TableFormatter) FormatRows(headers []string, rows [][]string) error {
	if len(rows) == 0 {
		return f.formatEmptyMessage("No items found")
	}

	t := f.createTable()
	header := make(table.Row, 0, len(headers))
	for _, h := range headers {
		header = append(header, f.header(strings.ToUpper(h)))
	}
	t.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, 0, len(row))
		for _, cell := range row {
			r = append(r, cell)
		}
		t.AppendRow(r)
	}

	t.Render()
	return nil
}

// Helper methods

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.Output)
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) header(s string) string {
	if !f.options.Color {
		return s
	}
	return text.FgHiCyan.Sprint(s)
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(message string) error {
	if f.options.Color {
		message = text.FgYellow.Sprint(message)
	}
	_, err := fmt.Fprintln(f.options.Output, message)
	return err
}

// formatObjectData formats object data as key-value pairs
func (f *TableFormatter) formatObjectData(data map[string]any) error {
	flat := map[string]any{}
	flatten("", data, flat)
	if len(flat) == 0 {
		return f.formatEmptyMessage("No values")
	}

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	t := f.createTable()
	t.AppendHeader(table.Row{f.header("KEY"), f.header("VALUE")})
	for _, key := range keys {
		t.AppendRow(table.Row{key, formatValue(flat[key])})
	}

	t.Render()
	return nil
}

// formatArrayData formats array data as a simple table
func (f *TableFormatter) formatArrayData(data []any) error {
	if len(data) == 0 {
		return f.formatEmptyMessage("No items found")
	}

	t := f.createTable()
	t.AppendHeader(table.Row{f.header("#"), f.header("VALUE")})
	for i, item := range data {
		t.AppendRow(table.Row{i + 1, formatValue(item)})
	}
	t.Render()
	return nil
}

// flatten stores every leaf of data in out under its dotted path.
// Empty maps are kept as leaves.
func flatten(prefix string, data map[string]any, out map[string]any) {
	for key, value := range data {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
			flatten(path, nested, out)
			continue
		}
		out[path] = value
	}
}

func formatValue(value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		s = "null"
	case string:
		s = v
	case map[string]any, []any:
		s = compactJSON(v)
	default:
		s = fmt.Sprintf("%v", v)
	}
	return textutil.Truncate(s, maxValueWidth)
}
