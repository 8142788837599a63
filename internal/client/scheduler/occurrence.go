package scheduler

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/teambition/rrule-go"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// NextOccurrence computes the earliest instant at or after now when the
// alarm should fire. For a non-empty weekday set this is a weekly
// recurrence over the configured days; an empty set means the next
// matching time of day (today or tomorrow), after which the alarm is a
// spent one-shot.
//
// Failures wrap common.ErrScheduling; callers log and skip the alarm for
// this cycle rather than dropping it.
func NextOccurrence(a models.Alarm, now time.Time) (time.Time, error) {
	loc := now.Location()

	if len(a.Days) == 0 {
		next := time.Date(now.Year(), now.Month(), now.Day(), a.Hour, a.Minute, 0, 0, loc)
		if next.Before(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next, nil
	}

	byweekday := make([]rrule.Weekday, 0, len(a.Days))
	for _, d := range a.Days {
		w, ok := rruleWeekdays[d]
		if !ok {
			return time.Time{}, fmt.Errorf("%w: weekday %d out of range", common.ErrScheduling, d)
		}
		byweekday = append(byweekday, w)
	}

	// Dtstart a week back guarantees the rule is already "running" at now.
	dtstart := time.Date(now.Year(), now.Month(), now.Day(), a.Hour, a.Minute, 0, 0, loc).AddDate(0, 0, -7)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byweekday,
		Dtstart:   dtstart,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrScheduling, err)
	}

	next := r.After(now, true)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("%w: no future occurrence for alarm %s", common.ErrScheduling, a.ID)
	}
	return next, nil
}
