package ledger

import "time"

// LastBusinessDay returns the last weekday (Mon-Fri) of the month
// containing t. Movements fall due at month end; no holiday calendar is
// applied, weekend days only shift the date back to Friday.
func LastBusinessDay(t time.Time) time.Time {
	// Day zero of the next month is the last calendar day of this one.
	last := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
	switch last.Weekday() {
	case time.Saturday:
		return last.AddDate(0, 0, -1)
	case time.Sunday:
		return last.AddDate(0, 0, -2)
	default:
		return last
	}
}
