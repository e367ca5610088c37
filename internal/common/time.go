package common

import "time"

// TimestampLayout is ISO 8601 in UTC with millisecond precision. Values in
// this layout sort lexicographically in time order.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
