package helpers

// OutputFormat represents different output formats
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates format against the allowed formats.
func ParseOutputFormat(format string, allowed ...OutputFormat) (OutputFormat, error) {
	values := make([]string, len(allowed))
	for i, f := range allowed {
		if string(f) == format {
			return f, nil
		}
		values[i] = string(f)
	}
	return "", ValidateEnum(format, values, "format")
}
