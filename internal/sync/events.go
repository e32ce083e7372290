package sync

// eventKind classifies the outcome of one upload task.
type eventKind int

const (
	// eventCreatedOrUpdated carries the server's echo of an upserted record.
	eventCreatedOrUpdated eventKind = iota
	// eventDeleted confirms the server removed the record.
	eventDeleted
	// eventAlreadyExists marks a failed delete; the download sweep settles it
	// against the server list.
	eventAlreadyExists
	// eventFailed carries a per-record upload error. The record stays dirty
	// and retries on the next run.
	eventFailed
)

// uploadEvent is the fan-in result for one dispatched snapshot.
type uploadEvent[P any] struct {
	kind    eventKind
	payload P
	err     error
}
