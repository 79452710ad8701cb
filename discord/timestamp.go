package discord

import (
	"time"
	_ "time/tzdata"
)

// TimestampLayout renders milliseconds and a numeric offset.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// TimestampZone is the fixed zone every embed timestamp is rendered in.
const TimestampZone = "CET"

var timestampLocation = loadTimestampLocation()

func loadTimestampLocation() *time.Location {
	location, err := time.LoadLocation(TimestampZone)
	if err != nil {
		return time.FixedZone(TimestampZone, int(time.Hour/time.Second))
	}
	return location
}

// FormatTimestamp is the single normalization routine for embed timestamps.
// The caller's zone is ignored.
func FormatTimestamp(t time.Time) string {
	return t.In(timestampLocation).Format(TimestampLayout)
}

// FormatTimestampMillis formats an epoch millisecond instant.
func FormatTimestampMillis(millis int64) string {
	return FormatTimestamp(time.UnixMilli(millis))
}
