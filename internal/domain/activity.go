// Package domain defines the syncable entities of the hundred-day program
// and the pure helpers the sync engine relies on.
package domain

import "time"

// ActivityKind classifies what the user did on a program day.
type ActivityKind string

const (
	KindWorkout ActivityKind = "workout"
	KindRest    ActivityKind = "rest"
	KindStretch ActivityKind = "stretch"
	KindSick    ActivityKind = "sick"
)

// ExecutionMode describes how the workout sets are performed.
type ExecutionMode string

const (
	ExecutionStandard ExecutionMode = "standard"
	ExecutionCircuit  ExecutionMode = "circuit"
	ExecutionLight    ExecutionMode = "light"
)

// Training is a single exercise line item of a daily activity. Exactly one of
// ExerciseType and CustomExerciseID is set. Trainings are exclusively owned
// by their DailyActivity and cascade-deleted with it.
type Training struct {
	ExerciseType     string
	CustomExerciseID string
	Count            int
	SortOrder        int
}

// DailyActivity is the workout record for one program day.
//
// IsSynced is true iff the record's data is known to match the server as of
// ModifyDate. ShouldDelete marks a tombstone: the record is hidden from reads
// and retained until the server confirms the deletion. EverSynced stays true
// once the record has reached the server at least once; a tombstone that
// never did is deleted locally without a network round trip.
type DailyActivity struct {
	UserID        string
	Day           int
	Kind          ActivityKind
	PlannedCount  int
	ActualCount   int
	ExecutionMode ExecutionMode
	Comment       string
	Trainings     []Training

	IsSynced     bool
	EverSynced   bool
	ShouldDelete bool
	CreateDate   time.Time
	ModifyDate   time.Time
}

// MarkDirty records a local mutation that has not reached the server.
func (a *DailyActivity) MarkDirty(now time.Time) {
	a.IsSynced = false
	a.ModifyDate = now.UTC()
}

// MarkDeleted turns the record into a tombstone.
func (a *DailyActivity) MarkDeleted(now time.Time) {
	a.ShouldDelete = true
	a.MarkDirty(now)
}

// MarkSynced records a confirmed match with the server.
func (a *DailyActivity) MarkSynced() {
	a.IsSynced = true
	a.EverSynced = true
	a.ShouldDelete = false
}

// IsEmpty reports whether the record carries no user data at all. Emptied
// records are tombstoned during sync selection so the server prunes them
// instead of storing blanks.
func (a *DailyActivity) IsEmpty() bool {
	return a.Kind == "" && len(a.Trainings) == 0 && a.Comment == ""
}

// ActivitySnapshot is an immutable copy of a DailyActivity, safe to hand to
// concurrent network tasks. It shares no memory with the store record.
type ActivitySnapshot struct {
	UserID        string
	Day           int
	Kind          ActivityKind
	PlannedCount  int
	ActualCount   int
	ExecutionMode ExecutionMode
	Comment       string
	Trainings     []Training

	IsSynced     bool
	EverSynced   bool
	ShouldDelete bool
	CreateDate   time.Time
	ModifyDate   time.Time
}

// Snapshot extracts an ActivitySnapshot. Pure transform, no side effects.
func (a *DailyActivity) Snapshot() ActivitySnapshot {
	trainings := make([]Training, len(a.Trainings))
	copy(trainings, a.Trainings)
	return ActivitySnapshot{
		UserID:        a.UserID,
		Day:           a.Day,
		Kind:          a.Kind,
		PlannedCount:  a.PlannedCount,
		ActualCount:   a.ActualCount,
		ExecutionMode: a.ExecutionMode,
		Comment:       a.Comment,
		Trainings:     trainings,
		IsSynced:      a.IsSynced,
		EverSynced:    a.EverSynced,
		ShouldDelete:  a.ShouldDelete,
		CreateDate:    a.CreateDate,
		ModifyDate:    a.ModifyDate,
	}
}

// EqualPayload compares the user-visible fields of two activities, ignoring
// sync bookkeeping. Used by the resolver for the equal-timestamp case.
func (a *DailyActivity) EqualPayload(other *DailyActivity) bool {
	if a.Kind != other.Kind ||
		a.PlannedCount != other.PlannedCount ||
		a.ActualCount != other.ActualCount ||
		a.ExecutionMode != other.ExecutionMode ||
		a.Comment != other.Comment ||
		len(a.Trainings) != len(other.Trainings) {
		return false
	}
	for i := range a.Trainings {
		if a.Trainings[i] != other.Trainings[i] {
			return false
		}
	}
	return true
}

// CopyPayloadFrom overwrites the user-visible fields with the other record's
// data, leaving identity and sync bookkeeping untouched.
func (a *DailyActivity) CopyPayloadFrom(other *DailyActivity) {
	a.Kind = other.Kind
	a.PlannedCount = other.PlannedCount
	a.ActualCount = other.ActualCount
	a.ExecutionMode = other.ExecutionMode
	a.Comment = other.Comment
	a.Trainings = make([]Training, len(other.Trainings))
	copy(a.Trainings, other.Trainings)
}
