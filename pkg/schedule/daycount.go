package schedule

import (
	"math/big"
	"time"

	"github.com/atpar/actus-core/pkg/fixedpoint"
	"github.com/atpar/actus-core/pkg/models"
)

const secondsPerDay = 86400

var fpScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(fixedpoint.Scale), nil)

// ratio computes num/den at 18-decimal fixed point, truncating toward zero.
// Every year fraction goes through this single helper so the rounding
// behavior is centralized.
func ratio(num, den int64) *fixedpoint.Int {
	if den == 0 {
		return fixedpoint.Zero()
	}
	r := new(big.Int).Mul(big.NewInt(num), fpScale)
	r.Quo(r, big.NewInt(den))
	return fixedpoint.FromScaled(r)
}

// YearFraction converts the span [start, end] into a year fraction under
// the given day-count convention. A non-positive span yields zero. The
// maturity parameter is part of the call contract for conventions that cap
// accrual at the contract's end; the four supported conventions ignore it.
func YearFraction(start, end int64, dcc models.DayCountConvention, maturity int64) *fixedpoint.Int {
	_ = maturity
	if end <= start {
		return fixedpoint.Zero()
	}

	switch dcc {
	case models.DCCActual360:
		return ratio(end-start, 360*secondsPerDay)
	case models.DCCActual365:
		return ratio(end-start, 365*secondsPerDay)
	case models.DCCThirtyE360:
		return thirtyE360(start, end)
	case models.DCCActualActual:
		return actualActual(start, end)
	default:
		return ratio(end-start, 365*secondsPerDay)
	}
}

// thirtyE360 treats every month as 30 days and the year as 360.
func thirtyE360(start, end int64) *fixedpoint.Int {
	s := time.Unix(start, 0).UTC()
	e := time.Unix(end, 0).UTC()

	d1, d2 := s.Day(), e.Day()
	if d1 > 30 {
		d1 = 30
	}
	if d2 > 30 {
		d2 = 30
	}

	days := int64(360*(e.Year()-s.Year()) + 30*(int(e.Month())-int(s.Month())) + (d2 - d1))
	return ratio(days, 360)
}

// actualActual splits the span at calendar-year boundaries and relates each
// piece to the true length of its year, so a span across a leap year and a
// common year weights each portion correctly.
func actualActual(start, end int64) *fixedpoint.Int {
	total := fixedpoint.Zero()
	cur := start
	for cur < end {
		y := time.Unix(cur, 0).UTC().Year()
		nextYear := time.Date(y+1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
		segEnd := end
		if nextYear < segEnd {
			segEnd = nextYear
		}
		total = total.Add(ratio(segEnd-cur, secondsInYear(y)))
		cur = segEnd
	}
	return total
}

func secondsInYear(year int) int64 {
	if isLeapYear(year) {
		return 366 * secondsPerDay
	}
	return 365 * secondsPerDay
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
