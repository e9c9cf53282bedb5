// Package model contains domain models passed between layers.
package model

import "time"

// JobKind says what a grading job should do with a saved model.
type JobKind string

const (
	// JobGrade re-reads the model and places it on its edition's leaderboard
	// when public, or takes it off every board otherwise.
	JobGrade JobKind = "grade"
	// JobRemove takes a deleted model off every board.
	JobRemove JobKind = "remove"
)

// Job is a unit of leaderboard work keyed by saved model id.
type Job struct {
	ModelID  string
	Kind     JobKind
	Enqueued time.Time
}

// Key identifies jobs that can be coalesced while waiting.
func (j Job) Key() string {
	return string(j.Kind) + ":" + j.ModelID
}
