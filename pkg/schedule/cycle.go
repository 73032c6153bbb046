package schedule

import (
	"fmt"
	"time"

	"github.com/atpar/actus-core/pkg/models"
)

// AddPeriod advances ts by n periods of the given unit. Month-based units
// clamp the day of month when the anchor day does not exist in the target
// month (Jan 31 + 1M = Feb 28/29), instead of normalizing into the
// following month the way time.AddDate does.
func AddPeriod(ts int64, unit models.PeriodUnit, n int) (int64, error) {
	switch unit {
	case models.PeriodDay:
		return ts + int64(n)*secondsPerDay, nil
	case models.PeriodWeek:
		return ts + int64(n)*7*secondsPerDay, nil
	case models.PeriodMonth:
		return addMonthsClamped(ts, n), nil
	case models.PeriodQuarter:
		return addMonthsClamped(ts, 3*n), nil
	case models.PeriodHalfYear:
		return addMonthsClamped(ts, 6*n), nil
	case models.PeriodYear:
		return addMonthsClamped(ts, 12*n), nil
	default:
		return 0, fmt.Errorf("schedule: invalid period unit %d", unit)
	}
}

// addMonthsClamped shifts by whole months keeping the day of month, clamped
// to the last day of the target month.
func addMonthsClamped(ts int64, months int) int64 {
	t := time.Unix(ts, 0).UTC()
	firstOfTarget := time.Date(t.Year(), t.Month(), 1,
		t.Hour(), t.Minute(), t.Second(), 0, time.UTC).AddDate(0, months, 0)

	day := t.Day()
	if last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), 0, time.UTC).Unix()
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// endOfMonth returns the last day of ts's month, preserving time of day.
func endOfMonth(ts int64) int64 {
	t := time.Unix(ts, 0).UTC()
	return time.Date(t.Year(), t.Month(), daysInMonth(t.Year(), t.Month()),
		t.Hour(), t.Minute(), t.Second(), 0, time.UTC).Unix()
}

// isLastDayOfMonth reports whether ts falls on its month's final day.
func isLastDayOfMonth(ts int64) bool {
	t := time.Unix(ts, 0).UTC()
	return t.Day() == daysInMonth(t.Year(), t.Month())
}

// ════════════════════════════════════════════════════════════════════
// Schedule Generation
// ════════════════════════════════════════════════════════════════════

// GenerateSchedule rolls a cycle forward from anchor until end, returning
// the generated dates in ascending order.
//
// An unset cycle yields nil regardless of its other fields. A set cycle
// with count zero yields the anchor alone: a recurrence that is configured
// but never advances. When the rollout does not land exactly on end and the
// cycle requests a long trailing stub, the last generated date is dropped
// so the final period extends to end; a short stub keeps it. With
// includeEnd, end itself is appended when not already present.
//
// Schedules are bounded in practice (at most a few thousand entries), so
// the sequence is materialized eagerly.
func GenerateSchedule(anchor int64, c models.Cycle, end int64, includeEnd bool) ([]int64, error) {
	if !c.IsSet {
		return nil, nil
	}
	if anchor > end {
		return nil, nil
	}
	if c.Count < 0 {
		return nil, fmt.Errorf("schedule: negative cycle count %d", c.Count)
	}

	dates := []int64{anchor}
	if c.Count > 0 {
		for i := 1; ; i++ {
			// Each date is derived from the anchor, not the previous date,
			// so month-end clamping never drifts the day of month.
			next, err := AddPeriod(anchor, c.Unit, c.Count*i)
			if err != nil {
				return nil, err
			}
			if next > end {
				break
			}
			dates = append(dates, next)
		}
	}

	landed := dates[len(dates)-1] == end
	if c.Stub == models.StubLong && !landed && len(dates) > 1 {
		dates = dates[:len(dates)-1]
	}
	if includeEnd && dates[len(dates)-1] != end {
		dates = append(dates, end)
	}
	return dates, nil
}

// GenerateScheduleEOM is GenerateSchedule with the end-of-month convention
// applied: when the convention is EOM, the anchor falls on a month end, and
// the cycle advances in whole months, every generated date is rolled to the
// end of its month.
func GenerateScheduleEOM(anchor int64, c models.Cycle, end int64, includeEnd bool,
	eom models.EndOfMonthConvention) ([]int64, error) {

	dates, err := GenerateSchedule(anchor, c, end, includeEnd)
	if err != nil || len(dates) == 0 {
		return dates, err
	}
	if eom != models.EOMEndOfMonth || !isLastDayOfMonth(anchor) || !monthly(c.Unit) {
		return dates, nil
	}
	for i, d := range dates {
		if includeEnd && d == end {
			continue
		}
		dates[i] = endOfMonth(d)
	}
	return dates, nil
}

func monthly(u models.PeriodUnit) bool {
	switch u {
	case models.PeriodMonth, models.PeriodQuarter, models.PeriodHalfYear, models.PeriodYear:
		return true
	}
	return false
}
