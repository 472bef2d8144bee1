package ghclient

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when the GitHub API quota is exhausted. The
// run fails fast instead of sleeping until reset; the next scheduled
// invocation re-derives whatever work remains.
var ErrRateLimited = errors.New("rate limited")

// RateLimitStatus is a point-in-time view of the API quota as observed on
// response headers.
type RateLimitStatus struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
	Exhausted bool
}

// rateLimitState tracks quota across requests. One client per process, so
// the state is shared by every transport the process creates.
type rateLimitState struct {
	mu        sync.RWMutex
	exhausted bool
	resetAt   time.Time
	remaining int
	limit     int
}

var globalRateLimitState = &rateLimitState{}

// isLimited reports whether requests should be refused outright. An
// exhausted quota clears itself once the reset time passes.
func (s *rateLimitState) isLimited() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exhausted && time.Now().Before(s.resetAt)
}

// setExhausted marks the quota depleted until resetAt.
func (s *rateLimitState) setExhausted(resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exhausted = true
	s.resetAt = resetAt
}

// observe records quota headers from a response.
func (s *rateLimitState) observe(remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining = remaining
	s.limit = limit
	s.resetAt = resetAt
	if remaining == 0 {
		s.exhausted = true
	}
}

func (s *rateLimitState) status() RateLimitStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RateLimitStatus{
		Remaining: s.remaining,
		Limit:     s.limit,
		ResetAt:   s.resetAt,
		Exhausted: s.exhausted && time.Now().Before(s.resetAt),
	}
}

// GetRateLimitStatus returns the quota last observed by the transport.
func GetRateLimitStatus() RateLimitStatus {
	return globalRateLimitState.status()
}
