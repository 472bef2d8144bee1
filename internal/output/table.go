package output

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/spiffcs/stalesweep/internal/format"
	"github.com/spiffcs/stalesweep/internal/model"
	"github.com/spiffcs/stalesweep/internal/sweep"
)

// TableFormatter formats the report as a terminal table
type TableFormatter struct{}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(text, url string) string {
	// Only use hyperlinks if stdout is a terminal
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// entityURL builds the web URL for an entity. The issues path redirects
// correctly for pull requests as well.
func entityURL(ent model.Entity) string {
	return fmt.Sprintf("https://github.com/%s/issues/%d", ent.Repository.FullName(), ent.Number)
}

func opDisplay(kind model.OpKind) string {
	switch kind {
	case model.OpClose:
		return color.RedString("close")
	case model.OpUnmarkStale:
		return color.GreenString("unmark")
	case model.OpMarkStale:
		return color.YellowString("mark")
	default:
		return string(kind)
	}
}

func statusDisplay(status sweep.OperationStatus) string {
	switch status {
	case sweep.StatusApplied:
		return color.GreenString("applied")
	case sweep.StatusFailed:
		return color.RedString("failed")
	case sweep.StatusPlanned:
		return color.CyanString("planned")
	default:
		return string(status)
	}
}

// Format outputs the report as a table
func (f *TableFormatter) Format(report *sweep.Report, w io.Writer) error {
	mode := "swept"
	if report.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(w, "%s %s: scanned %d open entities in %s\n",
		"stalesweep", mode, report.Scanned, strings.Join(report.Repos, ", "))

	if len(report.Results) == 0 {
		fmt.Fprintln(w, "Nothing to do.")
		return f.footer(report, w)
	}

	const (
		colStatus  = 8
		colOp      = 7
		colKind    = 5
		colEntity  = 28
		colTitle   = 40
		colStaleFr = 9
	)

	fmt.Fprintf(w, "\n%s  %s  %s  %s  %s  %s\n",
		format.PadRight("Status", colStatus),
		format.PadRight("Op", colOp),
		format.PadRight("Kind", colKind),
		format.PadRight("Entity", colEntity),
		format.PadRight("Title", colTitle),
		"Inactive")
	fmt.Fprintln(w, strings.Repeat("-", colStatus+colOp+colKind+colEntity+colTitle+colStaleFr+10))

	for _, res := range report.Results {
		ent := res.Operation.Entity

		inactive := ""
		if !ent.LastActivityAt.IsZero() {
			inactive = format.Age(report.StartedAt.Sub(ent.LastActivityAt))
		}

		entityID := format.Truncate(ent.ID, colEntity)
		fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s\n",
			format.PadRight(statusDisplay(res.Status), colStatus+colorPadding(statusDisplay(res.Status))),
			format.PadRight(opDisplay(res.Operation.Kind), colOp+colorPadding(opDisplay(res.Operation.Kind))),
			format.PadRight(ent.Kind.Display(), colKind),
			format.PadRight(hyperlink(entityID, entityURL(ent)), colEntity+hyperlinkPadding(entityID, entityURL(ent))),
			format.PadRight(format.Truncate(ent.Title, colTitle), colTitle),
			inactive)

		if res.Error != "" {
			fmt.Fprintf(w, "%s  %s\n", strings.Repeat(" ", colStatus), color.RedString(res.Error))
		}
	}

	return f.footer(report, w)
}

// colorPadding returns the number of invisible ANSI bytes in a colored
// string, so PadRight can target the visible width.
func colorPadding(s string) int {
	return len(s) - len(stripAnsi(s))
}

// hyperlinkPadding returns the invisible byte count added by an OSC 8 link.
func hyperlinkPadding(text, url string) int {
	linked := hyperlink(text, url)
	return len(linked) - len(text)
}

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripAnsi removes ANSI escape sequences from a string
func stripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func (f *TableFormatter) footer(report *sweep.Report, w io.Writer) error {
	fmt.Fprintf(w, "\n%d marked stale, %d unmarked, %d closed, %d failed",
		report.MarkedStale, report.Unmarked, report.Closed, report.FailedOps)

	if len(report.SkippedInvalid) > 0 {
		fmt.Fprintf(w, ", %d skipped (malformed)", len(report.SkippedInvalid))
	}
	if report.Truncated {
		fmt.Fprint(w, " (truncated to operation budget)")
	}
	fmt.Fprintln(w)

	for _, fe := range report.FetchErrors {
		fmt.Fprintf(w, "%s %s\n", color.RedString("fetch error:"), fe)
	}

	return nil
}
