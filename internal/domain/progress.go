package domain

import (
	"bytes"
	"time"
)

// PhotoKind identifies one of the three progress photo slots.
type PhotoKind string

const (
	PhotoFront PhotoKind = "front"
	PhotoSide  PhotoKind = "side"
	PhotoBack  PhotoKind = "back"
)

// PhotoKinds lists the slots in their fixed display order.
var PhotoKinds = []PhotoKind{PhotoFront, PhotoSide, PhotoBack}

// ProgressPhoto is one photo slot of a progress record. A slot is in exactly
// one of three states: raw bytes pending upload, a remote URL once the server
// stores the image, or marked for deletion on the server.
type ProgressPhoto struct {
	Kind              PhotoKind
	PendingUpload     []byte
	RemoteURL         string
	MarkedForDeletion bool
}

// IsEmpty reports whether the slot holds nothing to show or sync.
func (p ProgressPhoto) IsEmpty() bool {
	return len(p.PendingUpload) == 0 && p.RemoteURL == "" && !p.MarkedForDeletion
}

// ProgressRecord captures body metrics and photos for one program day.
// Day is an internal index and is translated by the day mapper at the wire
// boundary. All four metrics are optional.
type ProgressRecord struct {
	UserID  string
	Day     int
	Weight  *float64
	PullUps *int
	PushUps *int
	Squats  *int
	Photos  []ProgressPhoto

	IsSynced     bool
	EverSynced   bool
	ShouldDelete bool
	CreateDate   time.Time
	ModifyDate   time.Time
}

// Photo returns the slot for the given kind, or a zero slot if unset.
func (r *ProgressRecord) Photo(kind PhotoKind) ProgressPhoto {
	for _, p := range r.Photos {
		if p.Kind == kind {
			return p
		}
	}
	return ProgressPhoto{Kind: kind}
}

// SetPhoto replaces the slot for the photo's kind.
func (r *ProgressRecord) SetPhoto(photo ProgressPhoto) {
	for i := range r.Photos {
		if r.Photos[i].Kind == photo.Kind {
			r.Photos[i] = photo
			return
		}
	}
	r.Photos = append(r.Photos, photo)
}

// MarkDirty records a local mutation that has not reached the server.
func (r *ProgressRecord) MarkDirty(now time.Time) {
	r.IsSynced = false
	r.ModifyDate = now.UTC()
}

// MarkDeleted turns the record into a tombstone.
func (r *ProgressRecord) MarkDeleted(now time.Time) {
	r.ShouldDelete = true
	r.MarkDirty(now)
}

// MarkSynced records a confirmed match with the server.
func (r *ProgressRecord) MarkSynced() {
	r.IsSynced = true
	r.EverSynced = true
	r.ShouldDelete = false
}

// IsEmpty reports whether every metric is unset and every photo slot empty.
func (r *ProgressRecord) IsEmpty() bool {
	if r.Weight != nil || r.PullUps != nil || r.PushUps != nil || r.Squats != nil {
		return false
	}
	for _, p := range r.Photos {
		if !p.IsEmpty() {
			return false
		}
	}
	return true
}

// ProgressSnapshot is an immutable copy of a ProgressRecord for concurrent
// network tasks. Photo bytes are copied, not aliased.
type ProgressSnapshot struct {
	UserID  string
	Day     int
	Weight  *float64
	PullUps *int
	PushUps *int
	Squats  *int
	Photos  []ProgressPhoto

	IsSynced     bool
	EverSynced   bool
	ShouldDelete bool
	CreateDate   time.Time
	ModifyDate   time.Time
}

// Snapshot extracts a ProgressSnapshot. Pure transform, no side effects.
func (r *ProgressRecord) Snapshot() ProgressSnapshot {
	photos := make([]ProgressPhoto, len(r.Photos))
	for i, p := range r.Photos {
		cp := p
		if len(p.PendingUpload) > 0 {
			cp.PendingUpload = append([]byte(nil), p.PendingUpload...)
		}
		photos[i] = cp
	}
	return ProgressSnapshot{
		UserID:       r.UserID,
		Day:          r.Day,
		Weight:       copyFloat(r.Weight),
		PullUps:      copyInt(r.PullUps),
		PushUps:      copyInt(r.PushUps),
		Squats:       copyInt(r.Squats),
		Photos:       photos,
		IsSynced:     r.IsSynced,
		EverSynced:   r.EverSynced,
		ShouldDelete: r.ShouldDelete,
		CreateDate:   r.CreateDate,
		ModifyDate:   r.ModifyDate,
	}
}

// EqualPayload compares metrics and photos, ignoring sync bookkeeping.
func (r *ProgressRecord) EqualPayload(other *ProgressRecord) bool {
	if !equalFloat(r.Weight, other.Weight) ||
		!equalInt(r.PullUps, other.PullUps) ||
		!equalInt(r.PushUps, other.PushUps) ||
		!equalInt(r.Squats, other.Squats) {
		return false
	}
	for _, kind := range PhotoKinds {
		a, b := r.Photo(kind), other.Photo(kind)
		if a.RemoteURL != b.RemoteURL ||
			a.MarkedForDeletion != b.MarkedForDeletion ||
			!bytes.Equal(a.PendingUpload, b.PendingUpload) {
			return false
		}
	}
	return true
}

// CopyPayloadFrom overwrites metrics and photos with the other record's data.
func (r *ProgressRecord) CopyPayloadFrom(other *ProgressRecord) {
	r.Weight = copyFloat(other.Weight)
	r.PullUps = copyInt(other.PullUps)
	r.PushUps = copyInt(other.PushUps)
	r.Squats = copyInt(other.Squats)
	r.Photos = make([]ProgressPhoto, len(other.Photos))
	for i, p := range other.Photos {
		cp := p
		if len(p.PendingUpload) > 0 {
			cp.PendingUpload = append([]byte(nil), p.PendingUpload...)
		}
		r.Photos[i] = cp
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
