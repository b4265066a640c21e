package grading

import "time"

// AddBusinessDays advances from the given instant one calendar day at a time,
// counting only Monday through Friday, until the requested number of business
// days has accumulated. The nth qualifying day is the returned date.
func AddBusinessDays(from time.Time, days int) time.Time {
	due := from
	for counted := 0; counted < days; {
		due = due.AddDate(0, 0, 1)
		if wd := due.Weekday(); wd != time.Saturday && wd != time.Sunday {
			counted++
		}
	}
	return due
}
