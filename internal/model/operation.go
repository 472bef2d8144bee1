package model

// OpKind represents the kind of mutation an operation performs.
type OpKind string

const (
	// OpClose closes a stale entity that has passed its close threshold.
	// It posts the close message first, then closes with the configured reason.
	OpClose OpKind = "close"

	// OpUnmarkStale removes the stale label from an entity that saw new
	// activity after it was marked.
	OpUnmarkStale OpKind = "unmark_stale"

	// OpMarkStale adds the stale label and posts the stale message.
	OpMarkStale OpKind = "mark_stale"
)

// CloseReason is the state reason attached when closing an entity.
type CloseReason string

const (
	CloseCompleted  CloseReason = "completed"
	CloseNotPlanned CloseReason = "not_planned"
)

// Operation is a single mutation command targeting one entity. Each
// operation is independently idempotent: re-applying after a partial run
// re-derives only what is still needed from fresh entity state.
type Operation struct {
	Kind        OpKind      `json:"kind"`
	EntityID    string      `json:"entityId"`
	Entity      Entity      `json:"entity"`
	Label       string      `json:"label,omitempty"`
	Comment     string      `json:"comment,omitempty"`
	CloseReason CloseReason `json:"closeReason,omitempty"`
}

// Batch is the ordered set of operations produced by one policy
// evaluation: closes first, then unmarks, then new stale marks.
type Batch struct {
	Operations []Operation `json:"operations"`

	// SkippedInvalid lists entity ids skipped because the record was
	// malformed (missing last-activity timestamp).
	SkippedInvalid []string `json:"skippedInvalid,omitempty"`

	// Truncated is true when the operation list was cut to the
	// configured per-run operation budget.
	Truncated bool `json:"truncated,omitempty"`
}

// Len returns the number of operations in the batch.
func (b Batch) Len() int {
	return len(b.Operations)
}

// CountByKind returns how many operations of the given kind the batch holds.
func (b Batch) CountByKind(kind OpKind) int {
	n := 0
	for _, op := range b.Operations {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
