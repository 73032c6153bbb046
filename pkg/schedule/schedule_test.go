package schedule

import (
	"testing"
	"time"

	"github.com/atpar/actus-core/pkg/fixedpoint"
	"github.com/atpar/actus-core/pkg/models"
)

func ts(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

// ════════════════════════════════════════════════════════════════════
// Business-Day Shifting
// ════════════════════════════════════════════════════════════════════

func TestIsBusinessDay(t *testing.T) {
	sat := ts(2024, time.March, 16)
	mon := ts(2024, time.March, 18)
	if IsBusinessDay(models.CalendarMondayToFriday, sat) {
		t.Error("Saturday should not be a business day")
	}
	if !IsBusinessDay(models.CalendarMondayToFriday, mon) {
		t.Error("Monday should be a business day")
	}
	if !IsBusinessDay(models.CalendarNone, sat) {
		t.Error("every day is a business day without a calendar")
	}
}

func TestShiftEventTime_Null(t *testing.T) {
	sat := ts(2024, time.March, 16)
	if got := ShiftEventTime(sat, models.BDCNull, models.CalendarMondayToFriday, 0); got != sat {
		t.Error("NULL convention must be the identity")
	}
}

func TestShiftEventTime_Following(t *testing.T) {
	sat := ts(2024, time.March, 16)
	want := ts(2024, time.March, 18) // Monday
	if got := ShiftEventTime(sat, models.BDCFollowing, models.CalendarMondayToFriday, 0); got != want {
		t.Errorf("expected %d, got %d", want, got)
	}
}

func TestShiftEventTime_FollowingOnBusinessDay(t *testing.T) {
	wed := ts(2024, time.March, 13)
	if got := ShiftEventTime(wed, models.BDCFollowing, models.CalendarMondayToFriday, 0); got != wed {
		t.Error("business days must not shift")
	}
}

func TestShiftEventTime_ModifiedFollowing(t *testing.T) {
	// Saturday 2024-03-30: following lands on Monday 2024-04-01, which
	// crosses the month boundary, so the shift reverts to Friday 2024-03-29.
	sat := ts(2024, time.March, 30)
	want := ts(2024, time.March, 29)
	got := ShiftEventTime(sat, models.BDCModifiedFollowing, models.CalendarMondayToFriday, 0)
	if got != want {
		t.Errorf("expected %s, got %s",
			time.Unix(want, 0).UTC().Format("2006-01-02"),
			time.Unix(got, 0).UTC().Format("2006-01-02"))
	}
}

func TestShiftEventTime_ModifiedFollowingMidMonth(t *testing.T) {
	// Mid-month weekend behaves like plain following.
	sat := ts(2024, time.March, 16)
	want := ts(2024, time.March, 18)
	got := ShiftEventTime(sat, models.BDCModifiedFollowing, models.CalendarMondayToFriday, 0)
	if got != want {
		t.Errorf("expected %d, got %d", want, got)
	}
}

func TestShiftEventTime_MaturityNotShifted(t *testing.T) {
	maturity := ts(2024, time.March, 16) // Saturday
	if got := ShiftEventTime(maturity, models.BDCFollowing, models.CalendarMondayToFriday, maturity); got != maturity {
		t.Error("dates on or after maturity must not shift")
	}
}

// ════════════════════════════════════════════════════════════════════
// Day Counts
// ════════════════════════════════════════════════════════════════════

func TestYearFraction_ZeroSpan(t *testing.T) {
	at := ts(2024, time.June, 1)
	for _, dcc := range []models.DayCountConvention{
		models.DCCActualActual, models.DCCActual360,
		models.DCCActual365, models.DCCThirtyE360,
	} {
		if !YearFraction(at, at, dcc, 0).IsZero() {
			t.Errorf("%s: zero span should yield zero", dcc)
		}
	}
}

func TestYearFraction_NegativeSpanYieldsZero(t *testing.T) {
	a, b := ts(2024, time.June, 1), ts(2024, time.January, 1)
	if !YearFraction(a, b, models.DCCActual360, 0).IsZero() {
		t.Error("negative span should yield zero, not fail")
	}
}

func TestYearFraction_A360(t *testing.T) {
	start := ts(2024, time.January, 1)
	end := start + 360*86400
	if got := YearFraction(start, end, models.DCCActual360, 0); !got.Equal(fixedpoint.One()) {
		t.Errorf("360 days under A/360 should be exactly 1, got %s", got)
	}
}

func TestYearFraction_A365(t *testing.T) {
	start := ts(2023, time.January, 1)
	end := start + 365*86400
	if got := YearFraction(start, end, models.DCCActual365, 0); !got.Equal(fixedpoint.One()) {
		t.Errorf("365 days under A/365 should be exactly 1, got %s", got)
	}
	// 73 days = exactly 0.2 years.
	end = start + 73*86400
	if got := YearFraction(start, end, models.DCCActual365, 0); !got.Equal(fixedpoint.MustParse("0.2")) {
		t.Errorf("73 days under A/365 should be 0.2, got %s", got)
	}
}

func TestYearFraction_ThirtyE360(t *testing.T) {
	// One calendar month counts as 30/360 regardless of actual length.
	start := ts(2024, time.January, 1)
	end := ts(2024, time.February, 1)
	want := fixedpoint.New(1).Div(fixedpoint.New(12))
	if got := YearFraction(start, end, models.DCCThirtyE360, 0); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}

	// A full year is exactly 1.
	end = ts(2025, time.January, 1)
	if got := YearFraction(start, end, models.DCCThirtyE360, 0); !got.Equal(fixedpoint.One()) {
		t.Errorf("expected 1, got %s", got)
	}
}

func TestYearFraction_ThirtyE360ClampsDay31(t *testing.T) {
	// Jan 31 -> Mar 31 is two 30-day months.
	start := ts(2024, time.January, 31)
	end := ts(2024, time.March, 31)
	want := fixedpoint.New(60).Div(fixedpoint.New(360))
	if got := YearFraction(start, end, models.DCCThirtyE360, 0); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestYearFraction_ActualActual_WholeYears(t *testing.T) {
	// A common year and a leap year are each exactly 1.
	if got := YearFraction(ts(2023, time.January, 1), ts(2024, time.January, 1), models.DCCActualActual, 0); !got.Equal(fixedpoint.One()) {
		t.Errorf("2023 should be exactly 1, got %s", got)
	}
	if got := YearFraction(ts(2024, time.January, 1), ts(2025, time.January, 1), models.DCCActualActual, 0); !got.Equal(fixedpoint.One()) {
		t.Errorf("leap 2024 should be exactly 1, got %s", got)
	}
}

func TestYearFraction_ActualActual_AcrossBoundary(t *testing.T) {
	// Jul 2023 - Jul 2024 spans 184 days of a 365-day year and 182 days of
	// a 366-day year.
	got := YearFraction(ts(2023, time.July, 1), ts(2024, time.July, 1), models.DCCActualActual, 0)
	want := fixedpoint.New(184).Div(fixedpoint.New(365)).
		Add(fixedpoint.New(182).Div(fixedpoint.New(366)))
	if !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestYearFraction_NonNegative(t *testing.T) {
	a := ts(2020, time.February, 29)
	b := ts(2031, time.November, 17)
	for _, dcc := range []models.DayCountConvention{
		models.DCCActualActual, models.DCCActual360,
		models.DCCActual365, models.DCCThirtyE360,
	} {
		if YearFraction(a, b, dcc, 0).Sign() < 0 {
			t.Errorf("%s: year fraction must be non-negative", dcc)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Period Arithmetic
// ════════════════════════════════════════════════════════════════════

func TestAddPeriod_Days(t *testing.T) {
	got, err := AddPeriod(ts(2024, time.January, 1), models.PeriodDay, 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ts(2024, time.February, 15) {
		t.Errorf("expected Feb 15, got %s", time.Unix(got, 0).UTC())
	}
}

func TestAddPeriod_MonthClampsToEndOfMonth(t *testing.T) {
	// Jan 31 + 1M = Feb 29 in a leap year, not Mar 2.
	got, err := AddPeriod(ts(2024, time.January, 31), models.PeriodMonth, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ts(2024, time.February, 29) {
		t.Errorf("expected Feb 29, got %s", time.Unix(got, 0).UTC())
	}

	// Non-leap year clamps to Feb 28.
	got, _ = AddPeriod(ts(2023, time.January, 31), models.PeriodMonth, 1)
	if got != ts(2023, time.February, 28) {
		t.Errorf("expected Feb 28, got %s", time.Unix(got, 0).UTC())
	}
}

func TestAddPeriod_QuarterHalfYear(t *testing.T) {
	base := ts(2024, time.January, 15)
	if got, _ := AddPeriod(base, models.PeriodQuarter, 1); got != ts(2024, time.April, 15) {
		t.Error("quarter should advance three months")
	}
	if got, _ := AddPeriod(base, models.PeriodHalfYear, 1); got != ts(2024, time.July, 15) {
		t.Error("half-year should advance six months")
	}
	if got, _ := AddPeriod(base, models.PeriodYear, 2); got != ts(2026, time.January, 15) {
		t.Error("year should advance twelve months per step")
	}
}

func TestAddPeriod_InvalidUnit(t *testing.T) {
	if _, err := AddPeriod(0, models.PeriodUnit(99), 1); err == nil {
		t.Error("expected error for invalid period unit")
	}
}

// ════════════════════════════════════════════════════════════════════
// Schedule Generation
// ════════════════════════════════════════════════════════════════════

func TestGenerateSchedule_UnsetCycle(t *testing.T) {
	c := models.Cycle{Count: 3, Unit: models.PeriodMonth} // IsSet false
	dates, err := GenerateSchedule(ts(2024, time.January, 1), c, ts(2030, time.January, 1), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 0 {
		t.Errorf("unset cycle must yield an empty schedule, got %d dates", len(dates))
	}
}

func TestGenerateSchedule_ZeroCount(t *testing.T) {
	anchor := ts(2024, time.January, 1)
	c := models.NewCycle(0, models.PeriodMonth, models.StubShort)
	dates, err := GenerateSchedule(anchor, c, ts(2030, time.January, 1), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 1 || dates[0] != anchor {
		t.Errorf("zero-count set cycle should yield the anchor alone, got %v", dates)
	}
}

func TestGenerateSchedule_ExactLanding(t *testing.T) {
	anchor := ts(2024, time.January, 1)
	end := ts(2029, time.January, 1)
	c := models.NewCycle(1, models.PeriodYear, models.StubShort)
	dates, err := GenerateSchedule(anchor, c, end, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 6 {
		t.Fatalf("expected 6 dates, got %d", len(dates))
	}
	for i, d := range dates {
		if want := ts(2024+i, time.January, 1); d != want {
			t.Errorf("date %d: expected %s, got %s", i,
				time.Unix(want, 0).UTC().Format("2006-01-02"),
				time.Unix(d, 0).UTC().Format("2006-01-02"))
		}
	}
}

func TestGenerateSchedule_LongStubMergesTrailingPeriod(t *testing.T) {
	anchor := ts(2024, time.January, 1)
	end := ts(2028, time.June, 1)
	c := models.NewCycle(1, models.PeriodYear, models.StubLong)
	dates, err := GenerateSchedule(anchor, c, end, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2024..2028 generated; 2028-01-01 dropped (merged into the final
	// period); end appended.
	want := []int64{
		ts(2024, time.January, 1), ts(2025, time.January, 1),
		ts(2026, time.January, 1), ts(2027, time.January, 1),
		end,
	}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("date %d mismatch", i)
		}
	}
}

func TestGenerateSchedule_ShortStubKeepsTrailingPeriod(t *testing.T) {
	anchor := ts(2024, time.January, 1)
	end := ts(2028, time.June, 1)
	c := models.NewCycle(1, models.PeriodYear, models.StubShort)
	dates, err := GenerateSchedule(anchor, c, end, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 6 {
		t.Fatalf("expected 6 dates, got %d", len(dates))
	}
	if dates[4] != ts(2028, time.January, 1) || dates[5] != end {
		t.Error("short stub should keep the last generated date and append end")
	}
}

func TestGenerateSchedule_AnchorAfterEnd(t *testing.T) {
	c := models.NewCycle(1, models.PeriodMonth, models.StubShort)
	dates, err := GenerateSchedule(ts(2030, time.January, 1), c, ts(2024, time.January, 1), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 0 {
		t.Error("anchor after end should yield an empty schedule")
	}
}

func TestGenerateSchedule_MonthEndDoesNotDrift(t *testing.T) {
	// Rolling monthly from Jan 31 must clamp each month independently:
	// Feb 29, Mar 31, Apr 30 — not drift to the clamped day forever.
	anchor := ts(2024, time.January, 31)
	c := models.NewCycle(1, models.PeriodMonth, models.StubShort)
	dates, err := GenerateSchedule(anchor, c, ts(2024, time.April, 30), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{
		ts(2024, time.January, 31), ts(2024, time.February, 29),
		ts(2024, time.March, 31), ts(2024, time.April, 30),
	}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("date %d: expected %s, got %s", i,
				time.Unix(want[i], 0).UTC().Format("2006-01-02"),
				time.Unix(dates[i], 0).UTC().Format("2006-01-02"))
		}
	}
}

func TestGenerateScheduleEOM(t *testing.T) {
	// Feb 29 2024 anchor with EOM convention rolls on month ends.
	anchor := ts(2024, time.February, 29)
	c := models.NewCycle(1, models.PeriodMonth, models.StubShort)
	dates, err := GenerateScheduleEOM(anchor, c, ts(2024, time.May, 31), false, models.EOMEndOfMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{
		ts(2024, time.February, 29), ts(2024, time.March, 31),
		ts(2024, time.April, 30), ts(2024, time.May, 31),
	}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d: %v", len(want), len(dates), dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("date %d: expected %s, got %s", i,
				time.Unix(want[i], 0).UTC().Format("2006-01-02"),
				time.Unix(dates[i], 0).UTC().Format("2006-01-02"))
		}
	}
}

func TestGenerateScheduleEOM_SameDayConventionUnchanged(t *testing.T) {
	anchor := ts(2024, time.February, 29)
	c := models.NewCycle(1, models.PeriodMonth, models.StubShort)
	dates, err := GenerateScheduleEOM(anchor, c, ts(2024, time.May, 31), false, models.EOMSameDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Same-day convention keeps the anchor's day (clamped), so March is the
	// 29th, not the 31st.
	if dates[1] != ts(2024, time.March, 29) {
		t.Errorf("expected Mar 29, got %s", time.Unix(dates[1], 0).UTC().Format("2006-01-02"))
	}
}
