package quota

import "time"

// StartOfDay truncates t to midnight in loc. Day boundaries are calendar days
// in the reference zone, not rolling 24 hour windows.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// NextReset returns the instant the quota window following now begins
func NextReset(now time.Time, loc *time.Location) time.Time {
	return StartOfDay(now, loc).AddDate(0, 0, 1)
}

// beforeToday reports whether last falls on a calendar day earlier than now's
func beforeToday(last, now time.Time, loc *time.Location) bool {
	return StartOfDay(last, loc).Before(StartOfDay(now, loc))
}
