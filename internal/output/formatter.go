// Package output renders sweep reports in the supported formats.
package output

import (
	"io"

	"github.com/spiffcs/stalesweep/internal/sweep"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter defines the interface for report formatters
type Formatter interface {
	Format(report *sweep.Report, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}
