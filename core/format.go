package core

import (
	"fmt"
	"strings"
)

// Format identifies one of the supported extraction output formats.
type Format string

// Supported output formats.
const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatXML      Format = "xml"
	FormatYAML     Format = "yaml"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
)

// Formats lists every supported format in a stable order.
// Useful for validation messages and renderer registration.
func Formats() []Format {
	return []Format{
		FormatMarkdown,
		FormatJSON,
		FormatXML,
		FormatYAML,
		FormatHTML,
		FormatCSV,
	}
}

// ParseFormat validates a format string from user input.
// Parsing is case-insensitive; "md" is accepted as an alias for markdown.
//
// Returns a ValidationError for anything outside the supported set.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "html":
		return FormatHTML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", NewValidationError("format",
			fmt.Sprintf("unsupported format %q (supported: %s)", s, supportedFormatList()))
	}
}

// Extension returns the file extension (without dot) used for files in this format.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatYAML:
		return "yaml"
	default:
		return string(f)
	}
}

// ContentType returns the MIME type served for files in this format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatXML:
		return "application/xml"
	case FormatYAML:
		return "application/yaml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func supportedFormatList() string {
	formats := Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
