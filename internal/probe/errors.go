package probe

import "errors"

var (
	// ErrUnhealthy is returned when the service health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrStatus is returned when the service answers with an unexpected status.
	ErrStatus = errors.New("unexpected status")
	// ErrMismatch is returned when two views of the same bracket disagree.
	ErrMismatch = errors.New("bracket mismatch")
	// ErrInconsistent is returned when the leaderboard contradicts itself.
	ErrInconsistent = errors.New("leaderboard inconsistent")
)
