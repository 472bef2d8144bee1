// Package sweep orchestrates one scheduled run: fetch open entities,
// evaluate the stale policy once, apply the resulting batch.
package sweep

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/stalesweep/config"
	"github.com/spiffcs/stalesweep/internal/ghclient"
	"github.com/spiffcs/stalesweep/internal/hook"
	"github.com/spiffcs/stalesweep/internal/log"
	"github.com/spiffcs/stalesweep/internal/model"
	"github.com/spiffcs/stalesweep/internal/policy"
)

// fetchConcurrency bounds how many repositories are listed at once.
const fetchConcurrency = 4

// Runner drives one sweep over the configured repositories.
type Runner struct {
	source  ghclient.EntitySource
	mutator ghclient.Mutator
	policy  config.Policy
	repos   []model.Repository

	hook   hook.Hook
	dryRun bool
	now    func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithDryRun computes and reports operations without applying them.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithHook sets the post-run hook.
func WithHook(h hook.Hook) Option {
	return func(r *Runner) {
		r.hook = h
	}
}

// WithNow overrides the clock (for testing).
func WithNow(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a runner for the given source, mutator, and policy.
func NewRunner(source ghclient.EntitySource, mutator ghclient.Mutator, p config.Policy, repos []model.Repository, opts ...Option) *Runner {
	r := &Runner{
		source:  source,
		mutator: mutator,
		policy:  p,
		repos:   repos,
		hook:    hook.Noop{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one sweep. A single now is used for the whole evaluation so
// the batch is a pure function of the fetched state. Mutation failures are
// isolated per operation; only configuration errors abort the run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		StartedAt: r.now(),
		DryRun:    r.dryRun,
	}
	for _, repo := range r.repos {
		report.Repos = append(report.Repos, repo.FullName())
	}

	entities, fetchErrs := r.fetchAll(ctx)
	report.Scanned = len(entities)
	report.FetchErrors = fetchErrs

	if len(fetchErrs) == len(r.repos) && len(r.repos) > 0 {
		report.FinishedAt = r.now()
		return report, fmt.Errorf("all repositories failed to fetch: %s", fetchErrs[0])
	}

	engine := policy.NewEngine(r.policy)
	batch, err := engine.Evaluate(entities, report.StartedAt)
	if err != nil {
		report.FinishedAt = r.now()
		return report, err
	}

	report.SkippedInvalid = batch.SkippedInvalid
	report.Truncated = batch.Truncated
	for _, id := range batch.SkippedInvalid {
		log.Warn("skipping malformed entity", "entity", id)
	}
	log.Info("evaluated policy",
		"closes", batch.CountByKind(model.OpClose),
		"unmarks", batch.CountByKind(model.OpUnmarkStale),
		"marks", batch.CountByKind(model.OpMarkStale),
		"truncated", batch.Truncated)

	r.apply(ctx, batch, report)
	report.FinishedAt = r.now()

	if err := r.hook.AfterRun(ctx, report); err != nil {
		log.Warn("post-run hook failed", "error", err)
	}

	return report, nil
}

// fetchAll lists open entities for every configured repository. Fetch
// failures are isolated per repository.
func (r *Runner) fetchAll(ctx context.Context) ([]model.Entity, []string) {
	perRepo := make([][]model.Entity, len(r.repos))
	errs := make([]error, len(r.repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for i, repo := range r.repos {
		i, repo := i, repo
		g.Go(func() error {
			entities, err := r.source.ListOpenEntities(gctx, repo, r.policy)
			if err != nil {
				log.Warn("failed to fetch repository", "repo", repo.FullName(), "error", err)
				errs[i] = err
				return nil
			}
			perRepo[i] = entities
			return nil
		})
	}
	_ = g.Wait()

	var entities []model.Entity
	var fetchErrs []string
	for i := range r.repos {
		if errs[i] != nil {
			fetchErrs = append(fetchErrs, errs[i].Error())
			continue
		}
		entities = append(entities, perRepo[i]...)
	}
	return entities, fetchErrs
}

// apply executes the batch sequentially. In dry-run mode every operation is
// recorded as planned. Already-applied operations are never rolled back on
// cancellation; a later run re-derives the remaining work from fresh state.
func (r *Runner) apply(ctx context.Context, batch model.Batch, report *Report) {
	for _, op := range batch.Operations {
		if r.dryRun {
			report.record(OperationResult{Operation: op, Status: StatusPlanned})
			continue
		}

		if ctx.Err() != nil {
			log.Warn("run cancelled, remaining operations skipped",
				"remaining", batch.Len()-len(report.Results))
			return
		}

		if err := r.applyOne(ctx, op); err != nil {
			log.Warn("operation failed", "kind", op.Kind, "entity", op.EntityID, "error", err)
			report.record(OperationResult{Operation: op, Status: StatusFailed, Error: err.Error()})
			continue
		}

		log.Info("applied operation", "kind", op.Kind, "entity", op.EntityID)
		report.record(OperationResult{Operation: op, Status: StatusApplied})
	}
}

// applyOne issues the mutations for a single operation. No retry here: the
// next scheduled run naturally re-derives anything that failed.
func (r *Runner) applyOne(ctx context.Context, op model.Operation) error {
	repo, number := op.Entity.Repository, op.Entity.Number

	switch op.Kind {
	case model.OpClose:
		if op.Comment != "" {
			if err := r.mutator.PostComment(ctx, repo, number, op.Comment); err != nil {
				return err
			}
		}
		return r.mutator.Close(ctx, repo, number, op.CloseReason)

	case model.OpUnmarkStale:
		return r.mutator.RemoveLabel(ctx, repo, number, op.Label)

	case model.OpMarkStale:
		if op.Comment != "" {
			if err := r.mutator.PostComment(ctx, repo, number, op.Comment); err != nil {
				return err
			}
		}
		return r.mutator.AddLabel(ctx, repo, number, op.Label)

	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}
