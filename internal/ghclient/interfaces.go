// Package ghclient provides GitHub API access for stalesweep: listing open
// entities and applying the mutations the policy engine produces.
package ghclient

import (
	"context"

	"github.com/spiffcs/stalesweep/config"
	"github.com/spiffcs/stalesweep/internal/model"
)

// EntitySource queries open entities from the external tracker.
// This interface enables mocking the GitHub API in unit tests.
type EntitySource interface {
	ListOpenEntities(ctx context.Context, repo model.Repository, policy config.Policy) ([]model.Entity, error)
}

// Mutator applies mutation commands keyed by repository and entity number.
// Authentication and authorization are enforced by GitHub, not here.
type Mutator interface {
	AddLabel(ctx context.Context, repo model.Repository, number int, label string) error
	RemoveLabel(ctx context.Context, repo model.Repository, number int, label string) error
	PostComment(ctx context.Context, repo model.Repository, number int, body string) error
	Close(ctx context.Context, repo model.Repository, number int, reason model.CloseReason) error
}

// Ensure Client implements both interfaces.
var (
	_ EntitySource = (*Client)(nil)
	_ Mutator      = (*Client)(nil)
)
