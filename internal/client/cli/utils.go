package cli

import (
	"fmt"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekdays converts input like "mon,wed,fri" into a weekday set.
// An empty string or "once" yields an empty set (a one-shot alarm).
func ParseWeekdays(s string) ([]time.Weekday, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "once" {
		return nil, nil
	}
	if s == "daily" {
		return []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday}, nil
	}

	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if len(part) > 3 {
			part = part[:3]
		}
		d, ok := weekdayNames[part]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, d)
	}
	return days, nil
}

// FormatWeekdays renders a weekday set for display; an empty set is "once".
func FormatWeekdays(days []time.Weekday) string {
	if len(days) == 0 {
		return "once"
	}
	if len(days) == 7 {
		return "daily"
	}
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strings.ToLower(d.String()[:3]))
	}
	return strings.Join(parts, ",")
}

// ParseTimeOfDay parses "HH:MM" into hour and minute.
func ParseTimeOfDay(s string) (int, int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", s)
	}
	return hour, minute, nil
}
