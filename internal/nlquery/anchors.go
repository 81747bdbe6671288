package nlquery

import "time"

const dateLayout = "2006-01-02"

// Anchors are the absolute UTC dates relative phrases resolve to.
type Anchors struct {
	Today          string
	Tomorrow       string
	Yesterday      string
	LastWeekStart  string
	ThisMonthStart string
	NextMonthStart string
}

// AnchorsAt computes the anchors for the UTC day containing now.
func AnchorsAt(now time.Time) Anchors {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	return Anchors{
		Today:          today.Format(dateLayout),
		Tomorrow:       today.AddDate(0, 0, 1).Format(dateLayout),
		Yesterday:      today.AddDate(0, 0, -1).Format(dateLayout),
		LastWeekStart:  today.AddDate(0, 0, -7).Format(dateLayout),
		ThisMonthStart: month.Format(dateLayout),
		NextMonthStart: month.AddDate(0, 1, 0).Format(dateLayout),
	}
}
