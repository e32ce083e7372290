package domain

import "time"

// EntityType names the three independently synchronized record families.
type EntityType string

const (
	EntityActivities EntityType = "activities"
	EntityProgress   EntityType = "progress"
	EntityExercises  EntityType = "exercises"
)

// SyncResult classifies the outcome of one journal run.
type SyncResult string

const (
	// ResultSuccess means the run finished with no errors.
	ResultSuccess SyncResult = "success"
	// ResultPartial means errors occurred but some operations succeeded.
	ResultPartial SyncResult = "partial"
	// ResultError means errors occurred and no operation succeeded.
	ResultError SyncResult = "error"
)

// EntityStats counts store mutations made while reconciling one entity type.
type EntityStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

// Total returns the number of successful operations.
func (s EntityStats) Total() int {
	return s.Created + s.Updated + s.Deleted
}

// Add accumulates another stats value.
func (s *EntityStats) Add(other EntityStats) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Deleted += other.Deleted
}

// SyncError is one itemized failure from a journal run.
type SyncError struct {
	Type       string     `json:"type"`
	Message    string     `json:"message"`
	EntityType EntityType `json:"entity_type,omitempty"`
	EntityID   string     `json:"entity_id,omitempty"`
}

// JournalEntry is the audit record of one orchestrator run.
type JournalEntry struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Result     SyncResult
	Stats      map[EntityType]EntityStats
	Errors     []SyncError
}

// Classify derives the run result from stats and errors.
func Classify(stats map[EntityType]EntityStats, errs []SyncError) SyncResult {
	if len(errs) == 0 {
		return ResultSuccess
	}
	for _, s := range stats {
		if s.Total() > 0 {
			return ResultPartial
		}
	}
	return ResultError
}
