package jira

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const dueDateLayout = "2006-01-02"

var absoluteLayouts = []string{
	dueDateLayout,
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/2006",
}

// ResolveDueDate turns a due date phrase into an ISO date. Keywords are
// resolved relative to now; "friday" and "monday" mean the next
// occurrence with today counting, "next friday" means the occurrence
// after that, "next week" means the coming Monday.
func ResolveDueDate(value string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "today":
		return now.Format(dueDateLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(dueDateLayout), nil
	case "friday", "end of week", "eow":
		return upcomingWeekday(now, time.Friday).Format(dueDateLayout), nil
	case "monday":
		return upcomingWeekday(now, time.Monday).Format(dueDateLayout), nil
	case "next week":
		return nextWeekday(now, time.Monday).Format(dueDateLayout), nil
	case "next friday":
		return upcomingWeekday(now, time.Friday).AddDate(0, 0, 7).Format(dueDateLayout), nil
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t.Format(dueDateLayout), nil
		}
	}

	return "", goerr.New("unrecognized due date", goerr.V("value", value))
}

// upcomingWeekday returns the next occurrence of the weekday, with today
// counting as an occurrence.
func upcomingWeekday(now time.Time, day time.Weekday) time.Time {
	offset := (int(day) - int(now.Weekday()) + 7) % 7
	return now.AddDate(0, 0, offset)
}

// nextWeekday returns the next strictly future occurrence of the weekday.
func nextWeekday(now time.Time, day time.Weekday) time.Time {
	offset := (int(day) - int(now.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return now.AddDate(0, 0, offset)
}
