package render

import (
	"fmt"
	"time"
)

// RelativeTimeText converts a timestamp into a short human label relative to
// now: "Just now", "5 minutes ago", "in 2 hours". Differences of a day or
// more fall through to RelativeDateText.
func RelativeTimeText(t, now time.Time) string {
	if t.Before(now) {
		span := now.Sub(t)
		switch {
		case span >= 24*time.Hour:
			return RelativeDateText(t, now, true)
		case span >= time.Hour:
			return fmt.Sprintf("%d hour%s ago", int(span.Hours()), plural(int(span.Hours())))
		case span >= time.Minute:
			return fmt.Sprintf("%d minute%s ago", int(span.Minutes()), plural(int(span.Minutes())))
		case span >= time.Second:
			return fmt.Sprintf("%d second%s ago", int(span.Seconds()), plural(int(span.Seconds())))
		default:
			return "Just now"
		}
	}

	span := t.Sub(now)
	switch {
	case span >= 24*time.Hour:
		return RelativeDateText(t, now, true)
	case span >= time.Hour:
		return fmt.Sprintf("in %d hour%s", int(span.Hours()), plural(int(span.Hours())))
	case span >= time.Minute:
		return fmt.Sprintf("in %d minute%s", int(span.Minutes()), plural(int(span.Minutes())))
	case span >= time.Second:
		return fmt.Sprintf("in %d second%s", int(span.Seconds()), plural(int(span.Seconds())))
	default:
		return "Just now"
	}
}

// RelativeDateText converts a timestamp into a calendar-level label relative
// to now: "Today", "Yesterday", "3 days ago", "Tomorrow", "in 3 days". Beyond
// four days it falls back to a short date, prefixed with "on" when
// includePreposition is set.
func RelativeDateText(t, now time.Time, includePreposition bool) string {
	date := truncateToDay(t)
	today := truncateToDay(now)

	if date.Equal(today) {
		return "Today"
	}

	prep := ""
	if includePreposition {
		prep = "on "
	}

	if date.Before(today) {
		days := daysBetween(date, today)
		switch {
		case days == 1:
			return "Yesterday"
		case days <= 4:
			return fmt.Sprintf("%d days ago", days)
		default:
			return prep + date.Format("1/2/2006")
		}
	}

	days := daysBetween(today, date)
	switch {
	case days == 1:
		return "Tomorrow"
	case days <= 4:
		if includePreposition {
			return fmt.Sprintf("in %d days", days)
		}
		return fmt.Sprintf("%d days", days)
	default:
		return prep + date.Format("1/2/2006")
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysBetween(earlier, later time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
