package ghclient

import (
	"context"
	"errors"
	"fmt"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/stalesweep/internal/model"
)

// ErrMutation marks a mutation rejected by GitHub (rate limit, permission,
// missing entity). Mutation failures are isolated per operation: the caller
// records the failure and proceeds, and the next scheduled run re-derives
// whatever is still needed.
var ErrMutation = errors.New("mutation failed")

// AddLabel adds a label to an issue or pull request.
func (c *Client) AddLabel(ctx context.Context, repo model.Repository, number int, label string) error {
	_, _, err := c.client.Issues.AddLabelsToIssue(ctx, repo.Owner, repo.Name, number, []string{label})
	if err != nil {
		return fmt.Errorf("%w: add label %q to %s#%d: %v", ErrMutation, label, repo.FullName(), number, err)
	}
	return nil
}

// RemoveLabel removes a label from an issue or pull request.
func (c *Client) RemoveLabel(ctx context.Context, repo model.Repository, number int, label string) error {
	_, err := c.client.Issues.RemoveLabelForIssue(ctx, repo.Owner, repo.Name, number, label)
	if err != nil {
		return fmt.Errorf("%w: remove label %q from %s#%d: %v", ErrMutation, label, repo.FullName(), number, err)
	}
	return nil
}

// PostComment posts a comment on an issue or pull request.
func (c *Client) PostComment(ctx context.Context, repo model.Repository, number int, body string) error {
	comment := &gh.IssueComment{Body: gh.String(body)}
	_, _, err := c.client.Issues.CreateComment(ctx, repo.Owner, repo.Name, number, comment)
	if err != nil {
		return fmt.Errorf("%w: comment on %s#%d: %v", ErrMutation, repo.FullName(), number, err)
	}
	return nil
}

// Close closes an issue or pull request. The state reason is only sent for
// issues; GitHub does not accept one for pull requests.
func (c *Client) Close(ctx context.Context, repo model.Repository, number int, reason model.CloseReason) error {
	req := &gh.IssueRequest{State: gh.String("closed")}
	if reason != "" {
		req.StateReason = gh.String(string(reason))
	}

	_, _, err := c.client.Issues.Edit(ctx, repo.Owner, repo.Name, number, req)
	if err != nil {
		return fmt.Errorf("%w: close %s#%d: %v", ErrMutation, repo.FullName(), number, err)
	}
	return nil
}
