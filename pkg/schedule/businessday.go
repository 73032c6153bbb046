// Package schedule implements the date arithmetic shared by every contract
// engine: business-day shifting against a calendar, day-count year
// fractions, and cycle rollout from an anchor date.
//
// All functions are pure and operate on Unix timestamps in UTC.
package schedule

import (
	"time"

	"github.com/atpar/actus-core/pkg/models"
)

// IsBusinessDay reports whether the day containing ts is a business day
// under the given calendar.
func IsBusinessDay(cal models.Calendar, ts int64) bool {
	if cal != models.CalendarMondayToFriday {
		return true
	}
	wd := time.Unix(ts, 0).UTC().Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// ShiftEventTime applies a business-day convention to a schedule time.
//
// The NULL convention is the identity. Following advances day by day until
// the calendar reports a business day. Modified-following does the same but
// reverts to the preceding business day when the shift would cross into the
// next month. Timestamps on or after the maturity date are never shifted,
// so a contract's final event stays on its contractual date.
//
// An unknown convention value is a caller contract violation and panics.
func ShiftEventTime(ts int64, bdc models.BusinessDayConvention, cal models.Calendar, maturity int64) int64 {
	if bdc == models.BDCNull {
		return ts
	}
	if maturity != 0 && ts >= maturity {
		return ts
	}

	switch bdc {
	case models.BDCFollowing:
		return shiftFollowing(ts, cal)
	case models.BDCModifiedFollowing:
		shifted := shiftFollowing(ts, cal)
		if sameMonth(ts, shifted) {
			return shifted
		}
		return shiftPreceding(ts, cal)
	default:
		panic("schedule: unknown business day convention")
	}
}

// shiftFollowing advances to the next business day, day by day.
func shiftFollowing(ts int64, cal models.Calendar) int64 {
	for !IsBusinessDay(cal, ts) {
		ts += 86400
	}
	return ts
}

// shiftPreceding walks back to the previous business day.
func shiftPreceding(ts int64, cal models.Calendar) int64 {
	for !IsBusinessDay(cal, ts) {
		ts -= 86400
	}
	return ts
}

func sameMonth(a, b int64) bool {
	ta, tb := time.Unix(a, 0).UTC(), time.Unix(b, 0).UTC()
	return ta.Year() == tb.Year() && ta.Month() == tb.Month()
}
