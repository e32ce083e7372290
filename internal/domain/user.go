package domain

import "time"

// User is the owner aggregate for all syncable records. Deleting a user
// cascades to every owned record; a failure there indicates store corruption
// and is treated as unrecoverable by callers.
type User struct {
	ID         string
	StartDate  time.Time
	CreateDate time.Time
}

// CurrentDay returns the 1-based program day for the given wall clock,
// clamped to FinalDay once the program is over. Returns 0 before the start.
func (u User) CurrentDay(now time.Time) int {
	if u.StartDate.IsZero() || now.Before(u.StartDate) {
		return 0
	}
	day := int(now.Sub(u.StartDate).Hours()/24) + 1
	if day > FinalDay {
		return FinalDay
	}
	return day
}
