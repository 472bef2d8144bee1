// Package model contains domain types for the stalesweep application.
// These types are independent of any external GitHub library.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Kind represents whether an entity is an issue or pull request.
type Kind string

const (
	KindIssue       Kind = "issue"
	KindPullRequest Kind = "pull_request"
)

// Display returns a short human-readable kind.
func (k Kind) Display() string {
	switch k {
	case KindIssue:
		return "issue"
	case KindPullRequest:
		return "PR"
	default:
		return string(k)
	}
}

// Repository identifies a GitHub repository by owner and name.
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// FullName returns the owner/name form.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// Entity is one open issue or pull request as seen at the start of a run.
// Entities are owned by GitHub; stalesweep only reads and annotates them,
// so an Entity is a transient per-run view.
type Entity struct {
	ID             string     `json:"id"` // owner/repo#number
	Kind           Kind       `json:"kind"`
	Number         int        `json:"number"`
	Title          string     `json:"title"`
	Author         string     `json:"author,omitempty"`
	Repository     Repository `json:"repository"`
	Labels         []string   `json:"labels,omitempty"`
	LastActivityAt time.Time  `json:"lastActivityAt"`

	// StaleSince is set iff the entity currently carries the configured
	// stale label. The source layer derives it from the label's most
	// recent "labeled" event.
	StaleSince *time.Time `json:"staleSince,omitempty"`
}

// EntityID builds the canonical entity id.
func EntityID(repo Repository, number int) string {
	return fmt.Sprintf("%s#%d", repo.FullName(), number)
}

// HasLabel reports whether the entity carries the given label.
// GitHub label matching is case-insensitive, so ours is too.
func (e *Entity) HasLabel(name string) bool {
	for _, l := range e.Labels {
		if equalFoldLabel(l, name) {
			return true
		}
	}
	return false
}

// HasAnyLabel reports whether the entity carries at least one of the
// given labels. An empty list never matches.
func (e *Entity) HasAnyLabel(names []string) bool {
	for _, n := range names {
		if e.HasLabel(n) {
			return true
		}
	}
	return false
}

// IsStale reports whether the entity is currently marked stale.
func (e *Entity) IsStale() bool {
	return e.StaleSince != nil
}

// equalFoldLabel compares labels the way GitHub does: case-insensitively.
func equalFoldLabel(a, b string) bool {
	return strings.EqualFold(a, b)
}
