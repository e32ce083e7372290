// Package api implements the typed REST client for the remote system of
// record. Payload day numbers use the server's external numbering; callers
// translate with the domain day mapper at the boundary.
package api

import "time"

// serverTimeLayout is the timestamp format the server emits.
const serverTimeLayout = "2006-01-02T15:04:05"

// ParseServerTime parses a server timestamp string. Empty or unparseable
// input yields the zero time, which LWW treats as "no timestamp".
func ParseServerTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	ts, err := time.Parse(serverTimeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// FormatServerTime renders a timestamp in the server's format.
func FormatServerTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(serverTimeLayout)
}

// TrainingPayload is one exercise line item on the wire.
type TrainingPayload struct {
	ExerciseType     string `json:"exercise_type,omitempty"`
	CustomExerciseID string `json:"custom_exercise_id,omitempty"`
	Count            int    `json:"count"`
	SortOrder        int    `json:"sort_order"`
}

// ActivityPayload is the wire form of a daily activity.
type ActivityPayload struct {
	Day           int               `json:"day"`
	Kind          string            `json:"kind"`
	PlannedCount  int               `json:"planned_count"`
	ActualCount   int               `json:"actual_count"`
	ExecutionMode string            `json:"execution_mode,omitempty"`
	Comment       string            `json:"comment,omitempty"`
	Trainings     []TrainingPayload `json:"trainings,omitempty"`
	CreateDate    string            `json:"create_date,omitempty"`
	ModifyDate    string            `json:"modify_date,omitempty"`
}

// ModifyTime returns the payload's LWW timestamp: the modification timestamp
// when present and parseable, otherwise the create date, otherwise zero.
func (p ActivityPayload) ModifyTime() time.Time {
	if ts := ParseServerTime(p.ModifyDate); !ts.IsZero() {
		return ts
	}
	return ParseServerTime(p.CreateDate)
}

// ProgressPhotoPayload is one photo slot on the wire. Image holds base64
// bytes on upload; URL is set by the server once stored.
type ProgressPhotoPayload struct {
	Kind  string `json:"kind"`
	Image []byte `json:"image,omitempty"`
	URL   string `json:"url,omitempty"`
}

// ProgressPayload is the wire form of a progress record.
type ProgressPayload struct {
	Day        int                    `json:"day"`
	Weight     *float64               `json:"weight,omitempty"`
	PullUps    *int                   `json:"pull_ups,omitempty"`
	PushUps    *int                   `json:"push_ups,omitempty"`
	Squats     *int                   `json:"squats,omitempty"`
	Photos     []ProgressPhotoPayload `json:"photos,omitempty"`
	CreateDate string                 `json:"create_date,omitempty"`
	ModifyDate string                 `json:"modify_date,omitempty"`
}

// ModifyTime returns the payload's LWW timestamp, see ActivityPayload.
func (p ProgressPayload) ModifyTime() time.Time {
	if ts := ParseServerTime(p.ModifyDate); !ts.IsZero() {
		return ts
	}
	return ParseServerTime(p.CreateDate)
}

// ExercisePayload is the wire form of a user-defined exercise.
type ExercisePayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ImageID    string `json:"image_id,omitempty"`
	Hidden     bool   `json:"hidden"`
	CreateDate string `json:"create_date,omitempty"`
	ModifyDate string `json:"modify_date,omitempty"`
}

// ModifyTime returns the payload's LWW timestamp, see ActivityPayload.
func (p ExercisePayload) ModifyTime() time.Time {
	if ts := ParseServerTime(p.ModifyDate); !ts.IsZero() {
		return ts
	}
	return ParseServerTime(p.CreateDate)
}
