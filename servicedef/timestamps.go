package servicedef

import "time"

const dateLayout = "2006-01-02"

// Timestamp converts t to the API's millisecond timestamp representation.
func Timestamp(t time.Time) int64 {
	return t.UnixMilli()
}

// TimeFromTimestamp converts a millisecond timestamp to a time.Time in the local zone.
func TimeFromTimestamp(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// TimestampToDateString formats a millisecond timestamp as a zero-padded YYYY-MM-DD
// calendar date in loc. A nil loc means the local time zone.
func TimestampToDateString(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(dateLayout)
}
