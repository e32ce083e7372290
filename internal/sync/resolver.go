package sync

import "time"

// TieBreakPolicy selects the winner when local and server carry the same
// modification timestamp but different payloads.
type TieBreakPolicy int

const (
	// TieBreakServer prefers the server copy on an exact timestamp tie.
	TieBreakServer TieBreakPolicy = iota
	// TieBreakLocal prefers the local copy on an exact timestamp tie.
	TieBreakLocal
)

// Resolution is the outcome of comparing one local record with its server
// counterpart.
type Resolution int

const (
	// KeepLocal leaves the local record untouched; a dirty record uploads on
	// the next run.
	KeepLocal Resolution = iota
	// TakeServer overwrites the local payload with the server copy and marks
	// the record synced.
	TakeServer
	// AlreadyInSync means both sides match; the record is marked synced
	// without copying anything.
	AlreadyInSync
)

// Resolver applies last-write-wins over modification timestamps. A local
// tombstone always wins: server data never resurrects a deleted record.
type Resolver struct {
	TieBreak TieBreakPolicy
}

// Resolve decides which side of a record pair survives. The decision is a
// pure function of its inputs, so repeated runs over unchanged data converge.
func (r Resolver) Resolve(localModify, serverModify time.Time, localTombstoned, payloadsEqual bool) Resolution {
	if localTombstoned {
		return KeepLocal
	}
	switch {
	case localModify.After(serverModify):
		return KeepLocal
	case serverModify.After(localModify):
		return TakeServer
	}
	if payloadsEqual {
		return AlreadyInSync
	}
	if r.TieBreak == TieBreakLocal {
		return KeepLocal
	}
	return TakeServer
}
