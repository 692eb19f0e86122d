package quiz

import (
	"fmt"
	"time"
)

type timeUnit struct {
	seconds  int64
	singular string
	plural   string
}

var timeUnits = []timeUnit{
	{365 * 24 * 3600, "year", "years"},
	{24 * 3600, "day", "days"},
	{3600, "hour", "hours"},
	{60, "min", "mins"},
	{1, "sec", "secs"},
}

// FormatDuration renders d the way quiz time limits are shown to learners:
// the two most significant non-empty units, e.g. "1 hour 30 mins".
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = -total
	}
	if total == 0 {
		return "now"
	}

	for i, u := range timeUnits {
		if total < u.seconds {
			continue
		}
		major := total / u.seconds
		out := plural(major, u)
		if i+1 < len(timeUnits) {
			next := timeUnits[i+1]
			if minor := (total % u.seconds) / next.seconds; minor > 0 {
				out += " " + plural(minor, next)
			}
		}
		return out
	}
	return "now"
}

func plural(n int64, u timeUnit) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", u.singular)
	}
	return fmt.Sprintf("%d %s", n, u.plural)
}
