package sweep

import (
	"time"

	"github.com/spiffcs/stalesweep/internal/model"
)

// OperationStatus is the outcome of one operation in a run.
type OperationStatus string

const (
	// StatusPlanned means the operation was computed but not applied (dry run).
	StatusPlanned OperationStatus = "planned"
	// StatusApplied means the mutation was accepted by GitHub.
	StatusApplied OperationStatus = "applied"
	// StatusFailed means GitHub rejected the mutation; the operation is
	// recorded and the run continues.
	StatusFailed OperationStatus = "failed"
)

// OperationResult pairs an operation with its outcome.
type OperationResult struct {
	Operation model.Operation `json:"operation"`
	Status    OperationStatus `json:"status"`
	Error     string          `json:"error,omitempty"`
}

// Report summarizes one sweep run. It is handed to the post-run hook and
// rendered by the output formatters.
type Report struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	DryRun     bool      `json:"dryRun"`

	Repos   []string `json:"repos"`
	Scanned int      `json:"scanned"`

	MarkedStale int `json:"markedStale"`
	Unmarked    int `json:"unmarked"`
	Closed      int `json:"closed"`
	FailedOps   int `json:"failedOps"`

	SkippedInvalid []string `json:"skippedInvalid,omitempty"`
	Truncated      bool     `json:"truncated,omitempty"`
	FetchErrors    []string `json:"fetchErrors,omitempty"`

	Results []OperationResult `json:"results"`
}

// record tallies one operation result into the report counters.
func (r *Report) record(res OperationResult) {
	r.Results = append(r.Results, res)

	if res.Status == StatusFailed {
		r.FailedOps++
		return
	}

	switch res.Operation.Kind {
	case model.OpClose:
		r.Closed++
	case model.OpUnmarkStale:
		r.Unmarked++
	case model.OpMarkStale:
		r.MarkedStale++
	}
}
