package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/stalesweep/internal/sweep"
)

// MarkdownFormatter formats the report as a markdown summary, suitable for
// a CI job summary or a posted comment.
type MarkdownFormatter struct{}

// Format outputs the report as markdown
func (f *MarkdownFormatter) Format(report *sweep.Report, w io.Writer) error {
	title := "Sweep report"
	if report.DryRun {
		title = "Sweep report (dry run)"
	}
	fmt.Fprintf(w, "# %s\n\n", title)
	fmt.Fprintf(w, "Repositories: %s\n\n", strings.Join(report.Repos, ", "))
	fmt.Fprintf(w, "- Scanned: %d\n", report.Scanned)
	fmt.Fprintf(w, "- Marked stale: %d\n", report.MarkedStale)
	fmt.Fprintf(w, "- Unmarked: %d\n", report.Unmarked)
	fmt.Fprintf(w, "- Closed: %d\n", report.Closed)
	fmt.Fprintf(w, "- Failed operations: %d\n", report.FailedOps)
	if report.Truncated {
		fmt.Fprintf(w, "- Truncated to operation budget\n")
	}

	if len(report.Results) == 0 {
		fmt.Fprintf(w, "\nNothing to do.\n")
		return nil
	}

	fmt.Fprintf(w, "\n| Status | Op | Entity | Title |\n")
	fmt.Fprintf(w, "|--------|----|--------|-------|\n")
	for _, res := range report.Results {
		ent := res.Operation.Entity
		fmt.Fprintf(w, "| %s | %s | [%s](%s) | %s |\n",
			res.Status,
			res.Operation.Kind,
			ent.ID,
			entityURL(ent),
			escapePipes(ent.Title))
	}

	if len(report.FetchErrors) > 0 {
		fmt.Fprintf(w, "\n## Fetch errors\n\n")
		for _, fe := range report.FetchErrors {
			fmt.Fprintf(w, "- %s\n", fe)
		}
	}

	return nil
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
