package formatting

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// FormatData writes data as YAML.
func (f *YAMLFormatter) FormatData(data any) error {
	_, err := fmt.Fprint(f.options.Output, f.marshal(data))
	return err
}

// FormatRows writes the rows as a YAML list of mappings.
func (f *YAMLFormatter) FormatRows(headers []string, rows [][]string) error {
	return f.FormatData(rowsToRecords(headers, rows))
}

// marshal converts data to YAML string
func (f *YAMLFormatter) marshal(data any) string {
	yamlBytes, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("error: \"Failed to format YAML: %v\"\n", err)
	}

	return string(yamlBytes)
}
