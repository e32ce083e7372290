package sqlite

import "time"

// Timestamps are stored as unix nanoseconds; zero means "unset".

func encodeTime(ts time.Time) int64 {
	if ts.IsZero() {
		return 0
	}
	return ts.UnixNano()
}

func decodeTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(0, v).UTC()
}
