package formatting

import (
	"fmt"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// FormatData writes data as indented JSON.
func (f *JSONFormatter) FormatData(data any) error {
	_, err := fmt.Fprintln(f.options.Output, PrettyJSON(data))
	return err
}

// FormatRows writes the rows as a JSON list of objects.
func (f *JSONFormatter) FormatRows(headers []string, rows [][]string) error {
	return f.FormatData(rowsToRecords(headers, rows))
}
