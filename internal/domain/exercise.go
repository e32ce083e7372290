package domain

import (
	"strings"
	"time"
)

// CustomExercise is a user-defined exercise referenced by trainings.
type CustomExercise struct {
	ID      string
	UserID  string
	Name    string
	ImageID string
	Hidden  bool

	IsSynced     bool
	EverSynced   bool
	ShouldDelete bool
	CreateDate   time.Time
	ModifyDate   time.Time
}

// MarkDirty records a local mutation that has not reached the server.
func (e *CustomExercise) MarkDirty(now time.Time) {
	e.IsSynced = false
	e.ModifyDate = now.UTC()
}

// MarkDeleted turns the exercise into a tombstone.
func (e *CustomExercise) MarkDeleted(now time.Time) {
	e.ShouldDelete = true
	e.MarkDirty(now)
}

// MarkSynced records a confirmed match with the server.
func (e *CustomExercise) MarkSynced() {
	e.IsSynced = true
	e.EverSynced = true
	e.ShouldDelete = false
}

// IsEmpty reports whether the exercise carries no usable data.
func (e *CustomExercise) IsEmpty() bool {
	return strings.TrimSpace(e.Name) == ""
}

// ExerciseSnapshot is an immutable copy of a CustomExercise for concurrent
// network tasks.
type ExerciseSnapshot struct {
	ID      string
	UserID  string
	Name    string
	ImageID string
	Hidden  bool

	IsSynced     bool
	EverSynced   bool
	ShouldDelete bool
	CreateDate   time.Time
	ModifyDate   time.Time
}

// Snapshot extracts an ExerciseSnapshot. Pure transform, no side effects.
func (e *CustomExercise) Snapshot() ExerciseSnapshot {
	return ExerciseSnapshot(*e)
}

// EqualPayload compares the user-visible fields, ignoring sync bookkeeping.
func (e *CustomExercise) EqualPayload(other *CustomExercise) bool {
	return e.Name == other.Name && e.ImageID == other.ImageID && e.Hidden == other.Hidden
}

// CopyPayloadFrom overwrites the user-visible fields with the other
// exercise's data.
func (e *CustomExercise) CopyPayloadFrom(other *CustomExercise) {
	e.Name = other.Name
	e.ImageID = other.ImageID
	e.Hidden = other.Hidden
}
