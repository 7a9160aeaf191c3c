package hours

import "time"

// Annotate recomputes open_now from the record's weekly periods and writes
// it back into the opening_hours substructure (and current_opening_hours
// when present - the upstream API duplicates the flag there). The stored
// open_now is never trusted; this runs on every read so the flag reflects
// read time, not write time.
//
// Annotate mutates record in place. Pass a private copy when the record is
// shared (the lookup hit path deep-copies before calling this).
func Annotate(record map[string]any, now time.Time) bool {
	openNow := IsOpenNow(PeriodsFrom(record), now)
	for _, key := range [2]string{"opening_hours", "current_opening_hours"} {
		if oh, ok := record[key].(map[string]any); ok {
			oh["open_now"] = openNow
		}
	}
	return openNow
}

// ResultFor computes the full next-transition prediction for a record.
func ResultFor(record map[string]any, now time.Time) Result {
	return NextRelevantTime(PeriodsFrom(record), now)
}
