package ghclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/stalesweep/config"
	"github.com/spiffcs/stalesweep/internal/log"
	"github.com/spiffcs/stalesweep/internal/model"
)

const listPageSize = 100

// maxListRetries bounds backoff retries for a single listing call.
const maxListRetries = 3

// ListOpenEntities pages through the open issues and pull requests of one
// repository and converts them to entities. Only open state is queried, so
// closed entities are never revisited by a later run.
//
// For entities carrying the configured stale label, StaleSince is derived
// from the label's most recent "labeled" event.
func (c *Client) ListOpenEntities(ctx context.Context, repo model.Repository, policy config.Policy) ([]model.Entity, error) {
	opts := &gh.IssueListByRepoOptions{
		State:     "open",
		Sort:      "updated",
		Direction: "asc",
		ListOptions: gh.ListOptions{
			PerPage: listPageSize,
		},
	}

	var entities []model.Entity

	for {
		issues, resp, err := c.listPage(ctx, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list open issues for %s: %w", repo.FullName(), err)
		}

		for _, issue := range issues {
			ent := issueToEntity(issue, repo)

			staleLabel := policy.Issues.StaleLabel
			if ent.Kind == model.KindPullRequest {
				staleLabel = policy.PullRequests.StaleLabel
			}

			if ent.HasLabel(staleLabel) {
				since, err := c.staleSince(ctx, repo, ent.Number, staleLabel)
				if err != nil {
					log.Warn("could not resolve stale label event, using last activity",
						"entity", ent.ID, "error", err)
					since = ent.LastActivityAt
				}
				ent.StaleSince = &since
			}

			entities = append(entities, ent)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage

		log.Trace("fetched page of open entities", "repo", repo.FullName(), "next", resp.NextPage)
	}

	log.Debug("listed open entities", "repo", repo.FullName(), "count", len(entities))
	return entities, nil
}

// listPage fetches one page of the issue list, retrying transient failures
// with exponential backoff. Rate limit errors are not retried: the run's
// remaining work will be re-derived by the next scheduled invocation.
func (c *Client) listPage(ctx context.Context, repo model.Repository, opts *gh.IssueListByRepoOptions) ([]*gh.Issue, *gh.Response, error) {
	var issues []*gh.Issue
	var resp *gh.Response

	operation := func() error {
		var err error
		issues, resp, err = c.client.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrRateLimited) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		log.Debug("retrying issue list", "repo", repo.FullName(), "error", err)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxListRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, nil, err
	}

	return issues, resp, nil
}

// staleSince returns the time the stale label was most recently applied.
func (c *Client) staleSince(ctx context.Context, repo model.Repository, number int, staleLabel string) (time.Time, error) {
	opts := &gh.ListOptions{PerPage: listPageSize}

	var latest time.Time
	for {
		events, resp, err := c.client.Issues.ListIssueEvents(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to list issue events: %w", err)
		}

		if t, ok := latestLabeledEvent(events, staleLabel); ok && t.After(latest) {
			latest = t
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if latest.IsZero() {
		return time.Time{}, fmt.Errorf("no labeled event found for %q", staleLabel)
	}
	return latest, nil
}

// latestLabeledEvent scans events for the most recent application of the
// given label.
func latestLabeledEvent(events []*gh.IssueEvent, label string) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, ev := range events {
		if ev.GetEvent() != "labeled" {
			continue
		}
		if ev.GetLabel().GetName() != label {
			continue
		}
		if t := ev.GetCreatedAt().Time; t.After(latest) {
			latest = t
			found = true
		}
	}
	return latest, found
}

// issueToEntity converts a GitHub issue (which may represent a pull
// request) to the domain entity.
func issueToEntity(issue *gh.Issue, repo model.Repository) model.Entity {
	kind := model.KindIssue
	if issue.IsPullRequest() {
		kind = model.KindPullRequest
	}

	var labels []string
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	return model.Entity{
		ID:             model.EntityID(repo, issue.GetNumber()),
		Kind:           kind,
		Number:         issue.GetNumber(),
		Title:          issue.GetTitle(),
		Author:         issue.GetUser().GetLogin(),
		Repository:     repo,
		Labels:         labels,
		LastActivityAt: issue.GetUpdatedAt().Time,
	}
}

// ParseRepo splits an owner/name string into a Repository.
func ParseRepo(fullName string) (model.Repository, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return model.Repository{}, fmt.Errorf("invalid repository %q (expected owner/name)", fullName)
	}
	return model.Repository{Owner: owner, Name: name}, nil
}
