package service

import "time"

// Wall-clock layouts for the mass schedule columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// DefaultTimezone is the reference zone masses are interpreted in when
// the configuration does not override it. The zone is part of the
// scoring contract: a different zone shifts completion near midnight
// and DST boundaries.
const DefaultTimezone = "America/Sao_Paulo"

// tryParseMassTime combines a mass's date and time strings into a single
// instant in the reference zone. Malformed values report ok=false instead
// of an error: one bad record must not corrupt time-based filtering or
// the leaderboard.
func tryParseMassTime(date, clock string, zone *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, zone)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
