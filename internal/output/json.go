package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/stalesweep/internal/sweep"
)

// JSONFormatter formats the report as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format outputs the report as JSON
func (f *JSONFormatter) Format(report *sweep.Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(report)
}
