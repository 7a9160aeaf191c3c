// Package hours computes open/closed state and next-transition predictions
// from weekly-recurring business hours.
//
// All functions are pure: callers pass "now" explicitly and the package keeps
// no state. Every calculation runs in a single fixed reference timezone
// (UTC), not the place's local timezone - the upstream payload does not
// reliably carry one, so a record for a place in another region is judged by
// the reference clock. Known limitation, pinned by tests; do not paper over
// it by inventing per-record zones.
package hours

import (
	"fmt"
	"strings"
	"time"
)

// TimePoint is one endpoint of a weekly-recurring window: a day of week
// (0=Sunday..6=Saturday) and a 4-digit 24-hour wall time "HHMM".
type TimePoint struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// Period is one open/close window. Close.Day != Open.Day means the window
// spans midnight; days always recur weekly.
type Period struct {
	Open  TimePoint `json:"open"`
	Close TimePoint `json:"close"`
}

// Result is the prediction attached to a lookup response when requested.
type Result struct {
	OpenNow   bool       `json:"openNow"`
	NextAt    *time.Time `json:"nextDate"`
	NextLabel string     `json:"nextLabel"`
	Human     string     `json:"humanString"`
}

// parseHHMM converts "HHMM" to minutes since midnight.
// ok=false for anything that is not exactly 4 digits.
func parseHHMM(s string) (int, bool) {
	if len(s) != 4 {
		return 0, false
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[2]-'0')*10 + int(s[3]-'0')
	return h*60 + m, true
}

// IsOpenNow reports whether any period covers now. Same-day periods are
// half-open [open, close); overnight periods cover the tail of open.Day and
// the head of close.Day. No periods means closed.
func IsOpenNow(periods []Period, now time.Time) bool {
	now = now.UTC()
	today := int(now.Weekday())
	nowMins := now.Hour()*60 + now.Minute()

	for _, p := range periods {
		oM, okO := parseHHMM(p.Open.Time)
		cM, okC := parseHHMM(p.Close.Time)
		if !okO || !okC {
			continue
		}
		if p.Open.Day == p.Close.Day {
			if today == p.Open.Day && nowMins >= oM && nowMins < cM {
				return true
			}
		} else {
			// overnight span
			if (today == p.Open.Day && nowMins >= oM) || (today == p.Close.Day && nowMins < cM) {
				return true
			}
		}
	}
	return false
}

// NextOccurrence returns the next instant at or after now matching the
// weekly-recurring endpoint. The boundary is exclusive: an endpoint whose
// day and time exactly equal now rolls a full week forward.
func NextOccurrence(tp TimePoint, now time.Time) (time.Time, bool) {
	tpMins, ok := parseHHMM(tp.Time)
	if !ok || tp.Day < 0 || tp.Day > 6 {
		return time.Time{}, false
	}

	now = now.UTC()
	nowMins := now.Hour()*60 + now.Minute()

	days := (tp.Day - int(now.Weekday()) + 7) % 7
	if days == 0 && tpMins <= nowMins {
		days = 7
	}

	t := time.Date(now.Year(), now.Month(), now.Day()+days,
		tpMins/60, tpMins%60, 0, 0, time.UTC)
	return t, true
}

// NextLabel renders a friendly phrase for when target occurs relative to now.
// The day bucket is a calendar-day difference, not a fractional one.
func NextLabel(target, now time.Time) string {
	target = target.UTC()
	now = now.UTC()

	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	targetDate := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	diffDays := int(targetDate.Sub(nowDate).Hours() / 24)

	switch {
	case diffDays == 0:
		switch h := target.Hour(); {
		case h < 12:
			return "this morning"
		case h < 18:
			return "this afternoon"
		default:
			return "tonight"
		}
	case diffDays == 1:
		return "tomorrow"
	case diffDays < 7:
		weekday := strings.ToLower(target.Weekday().String())
		// An equal-or-earlier weekday index means the occurrence falls in
		// the following calendar week.
		if target.Weekday() <= now.Weekday() {
			return "next " + weekday
		}
		return "this " + weekday
	default:
		return fmt.Sprintf("in %d days", diffDays)
	}
}

// NextRelevantTime computes the full prediction for a record's periods:
// current open state and the earliest upcoming transition across every
// period's open and close endpoints. A record without periods yields the
// all-neutral Result; this function never fails.
func NextRelevantTime(periods []Period, now time.Time) Result {
	if len(periods) == 0 {
		return Result{}
	}
	now = now.UTC()

	openNow := IsOpenNow(periods, now)

	var next *time.Time
	for _, p := range periods {
		for _, tp := range [2]TimePoint{p.Close, p.Open} {
			t, ok := NextOccurrence(tp, now)
			if !ok {
				continue
			}
			if next == nil || t.Before(*next) {
				tt := t
				next = &tt
			}
		}
	}
	if next == nil {
		return Result{OpenNow: openNow}
	}

	label := NextLabel(*next, now)
	return Result{
		OpenNow:   openNow,
		NextAt:    next,
		NextLabel: label,
		Human:     humanString(openNow, *next, label),
	}
}

func humanString(openNow bool, next time.Time, label string) string {
	at := next.UTC().Format("3:04 PM")
	if openNow {
		return fmt.Sprintf("Open until %s today", at)
	}
	return fmt.Sprintf("Closed. Opening at %s %s", at, label)
}
