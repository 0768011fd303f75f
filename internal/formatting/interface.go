// Package formatting renders command output as a table, JSON or YAML.
package formatting

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Formats lists the supported output formats.
var Formats = []OutputFormat{FormatTable, FormatJSON, FormatYAML}

// ParseFormat validates a user supplied format name.
func ParseFormat(name string) (OutputFormat, error) {
	for _, format := range Formats {
		if strings.EqualFold(name, string(format)) {
			return format, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (valid: table, json, yaml)", name)
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool      // Enable colored output
	Output io.Writer // Defaults to os.Stdout
}

// Formatter writes data in one output format.
type Formatter interface {
	// FormatData renders a document: a map, a list or a scalar.
	FormatData(data any) error
	// FormatRows renders records sharing the same columns.
	FormatRows(headers []string, rows [][]string) error
}

// New creates the formatter for options.Format. Unknown formats render tables.
func New(options Options) Formatter {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{options: options}
	case FormatYAML:
		return &YAMLFormatter{options: options}
	default:
		return &TableFormatter{options: options}
	}
}

// rowsToRecords turns rows into maps keyed by the lower-cased headers.
func rowsToRecords(headers []string, rows [][]string) []map[string]string {
	records := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				record[strings.ToLower(header)] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}
