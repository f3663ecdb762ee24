package helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// OutputWriter handles different output formats
type OutputWriter struct {
	writer io.Writer
	format OutputFormat
	color  bool
}

// NewOutputWriter creates a new output writer
func NewOutputWriter(writer io.Writer, format OutputFormat, color bool) *OutputWriter {
	return &OutputWriter{
		writer: writer,
		format: format,
		color:  color,
	}
}

// Format returns the output format of the writer.
func (ow *OutputWriter) Format() OutputFormat {
	return ow.format
}

// WriteData writes data in the specified format. Table output expects rows
// built with WriteTable.
func (ow *OutputWriter) WriteData(data any) error {
	switch ow.format {
	case OutputFormatJSON:
		return ow.writeJSON(data)
	case OutputFormatYAML:
		return ow.writeYAML(data)
	default:
		return fmt.Errorf("unsupported output format: %s", ow.format)
	}
}

// writeJSON writes data as indented JSON, colorized on terminals
func (ow *OutputWriter) writeJSON(data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	out := pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  "})
	if ow.color {
		out = pretty.Color(out, pretty.TerminalStyle)
	}
	_, err = ow.writer.Write(out)
	return err
}

// writeYAML writes data as YAML
func (ow *OutputWriter) writeYAML(data any) error {
	encoder := yaml.NewEncoder(ow.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// WriteTable writes rows under header as an aligned table, sorted by the
// first column.
func (ow *OutputWriter) WriteTable(header []string, rows [][]string) error {
	w := tabwriter.NewWriter(ow.writer, 0, 0, 2, ' ', 0)
	sorted := append([][]string(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i][0] < sorted[j][0]
	})
	writeRow(w, header)
	sep := make([]string, len(header))
	for i, h := range header {
		sep[i] = dashes(len(h))
	}
	writeRow(w, sep)
	for _, row := range sorted {
		writeRow(w, row)
	}
	return w.Flush()
}

func writeRow(w io.Writer, cols []string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func dashes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}
