// Package policy implements the stale lifecycle policy engine.
//
// The engine is a pure function of (entities, policy, now): it performs no
// I/O and issues no mutations itself. All externally visible effects are
// realized by the caller applying the returned batch.
package policy

import (
	"errors"
	"fmt"
	"time"

	"github.com/spiffcs/stalesweep/config"
	"github.com/spiffcs/stalesweep/internal/model"
)

// ErrInvalidConfig is returned when the policy configuration is malformed
// or out of range. It is fatal: no operations are produced.
var ErrInvalidConfig = errors.New("invalid policy configuration")

// ErrInvalidEntity marks a malformed entity record. Invalid entities are
// skipped, never fatal to the run.
var ErrInvalidEntity = errors.New("invalid entity")

const day = 24 * time.Hour

// Engine evaluates the stale lifecycle policy over a set of open entities.
type Engine struct {
	policy config.Policy
}

// NewEngine creates an engine for the given resolved policy.
func NewEngine(p config.Policy) *Engine {
	return &Engine{policy: p}
}

// Evaluate computes the operation batch for one scheduled run.
//
// Per-entity state machine: fresh -> stale (label + comment),
// stale -> fresh (label removal on new activity, when enabled),
// stale -> closed (comment + close, terminal). Closed entities are never
// present in the input; the source queries open entities only.
//
// The result is ordered closes first, then unmarks, then new stale marks,
// and truncated to the configured per-run operation budget. Closing
// reduces future work fastest, so closes survive truncation first.
func (e *Engine) Evaluate(entities []model.Entity, now time.Time) (model.Batch, error) {
	if err := validatePolicy(e.policy); err != nil {
		return model.Batch{}, err
	}

	var closes, unmarks, marks []model.Operation
	var skipped []string

	for i := range entities {
		ent := &entities[i]

		if err := validateEntity(ent); err != nil {
			skipped = append(skipped, ent.ID)
			continue
		}

		kp := e.kindPolicy(ent.Kind)

		if len(e.policy.AnyOfLabels) > 0 && !ent.HasAnyLabel(e.policy.AnyOfLabels) {
			continue
		}
		if ent.HasAnyLabel(kp.ExemptLabels) {
			continue
		}

		if !ent.IsStale() {
			if now.Sub(ent.LastActivityAt) >= time.Duration(kp.DaysBeforeStale)*day {
				marks = append(marks, model.Operation{
					Kind:     model.OpMarkStale,
					EntityID: ent.ID,
					Entity:   *ent,
					Label:    kp.StaleLabel,
					Comment:  kp.StaleMessage,
				})
			}
			continue
		}

		// Already stale: new activity clears staleness before any close
		// progress is considered.
		if e.policy.RemoveStaleWhenUpdated && ent.LastActivityAt.After(*ent.StaleSince) {
			unmarks = append(unmarks, model.Operation{
				Kind:     model.OpUnmarkStale,
				EntityID: ent.ID,
				Entity:   *ent,
				Label:    kp.StaleLabel,
			})
			continue
		}

		if now.Sub(*ent.StaleSince) >= time.Duration(kp.DaysBeforeClose)*day {
			closes = append(closes, model.Operation{
				Kind:        model.OpClose,
				EntityID:    ent.ID,
				Entity:      *ent,
				Comment:     kp.CloseMessage,
				CloseReason: model.CloseReason(kp.CloseReason),
			})
		}
	}

	batch := model.Batch{SkippedInvalid: skipped}
	batch.Operations = append(batch.Operations, closes...)
	batch.Operations = append(batch.Operations, unmarks...)
	batch.Operations = append(batch.Operations, marks...)

	if len(batch.Operations) > e.policy.OperationsPerRun {
		batch.Operations = batch.Operations[:e.policy.OperationsPerRun]
		batch.Truncated = true
	}

	return batch, nil
}

func (e *Engine) kindPolicy(kind model.Kind) config.KindPolicy {
	if kind == model.KindPullRequest {
		return e.policy.PullRequests
	}
	return e.policy.Issues
}

// validateEntity rejects records the engine cannot reason about. A stale
// entity always carries a stale-since time; the source guarantees it.
func validateEntity(ent *model.Entity) error {
	if ent.LastActivityAt.IsZero() {
		return fmt.Errorf("%w: %s has no activity timestamp", ErrInvalidEntity, ent.ID)
	}
	if ent.StaleSince != nil && ent.StaleSince.IsZero() {
		return fmt.Errorf("%w: %s has a zero stale-since time", ErrInvalidEntity, ent.ID)
	}
	return nil
}

// validatePolicy checks ranges before any operation is produced.
func validatePolicy(p config.Policy) error {
	for _, kp := range []struct {
		kind string
		config.KindPolicy
	}{
		{"issue", p.Issues},
		{"pull_request", p.PullRequests},
	} {
		if kp.DaysBeforeStale < 0 {
			return fmt.Errorf("%w: days before stale for %s is negative (%d)", ErrInvalidConfig, kp.kind, kp.DaysBeforeStale)
		}
		if kp.DaysBeforeClose < 0 {
			return fmt.Errorf("%w: days before close for %s is negative (%d)", ErrInvalidConfig, kp.kind, kp.DaysBeforeClose)
		}
		if kp.StaleLabel == "" {
			return fmt.Errorf("%w: stale label for %s is empty", ErrInvalidConfig, kp.kind)
		}
	}

	if p.OperationsPerRun <= 0 {
		return fmt.Errorf("%w: operations_per_run must be positive (%d)", ErrInvalidConfig, p.OperationsPerRun)
	}

	switch p.Issues.CloseReason {
	case string(model.CloseCompleted), string(model.CloseNotPlanned), "":
	default:
		return fmt.Errorf("%w: unknown close reason %q", ErrInvalidConfig, p.Issues.CloseReason)
	}

	return nil
}
