package engine

import (
	"fmt"

	"github.com/atpar/actus-core/pkg/fixedpoint"
	"github.com/atpar/actus-core/pkg/models"
	"github.com/atpar/actus-core/pkg/schedule"
)

// ════════════════════════════════════════════════════════════════════════════
// CERTF — Certificate
// ════════════════════════════════════════════════════════════════════════════

// certf models a fund certificate: a quantity of units issued at a
// price, with cyclic coupon and redemption streams. Each stream is a
// fixing event followed by a settlement event one settlement period
// later; the fixing captures the observed amount, the settlement pays
// it.
type certf struct {
	dispatch
}

func newCERTFEngine() *certf {
	e := &certf{}
	e.contractType = models.ContractTypeCERTF
	e.states = map[models.EventType]stateFn{
		models.EventISS: stfUnitISS,
		models.EventCOF: stfCOF,
		models.EventCOP: stfCOP,
		models.EventREF: stfREF,
		models.EventREP: stfREP,
		models.EventXD:  stfCERTFXD,
		models.EventSTD: stfUnitSTD,
		models.EventMD:  stfUnitMD,
		models.EventTD:  stfUnitTD,
		models.EventCE:  stfCE,
	}
	e.payoffs = map[models.EventType]payoffFn{
		models.EventISS: pofUnitISS,
		models.EventCOF: pofZero,
		models.EventCOP: pofCOP,
		models.EventREF: pofZero,
		models.EventREP: pofREP,
		models.EventXD:  pofZero,
		models.EventSTD: pofUnitSTD,
		models.EventMD:  pofZero,
		models.EventTD:  pofUnitTD,
		models.EventCE:  pofZero,
	}
	return e
}

func (e *certf) ContractType() models.ContractType { return models.ContractTypeCERTF }

func (e *certf) ComputeInitialState(t *models.Terms) (*models.State, error) {
	if err := validateUnitTerms(t); err != nil {
		return nil, fmt.Errorf("certf: %w", err)
	}
	return initialUnitState(t), nil
}

func (e *certf) ComputeNonCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64) ([]models.Event, error) {
	if err := validateUnitTerms(t); err != nil {
		return nil, fmt.Errorf("certf: %w", err)
	}
	var events []models.Event
	events = append(events, pointEvent(t, models.EventISS, t.IssueDate, segmentStart, segmentEnd)...)
	events = append(events, pointEvent(t, models.EventTD, t.TerminationDate, segmentStart, segmentEnd)...)
	if t.MaturityDate != 0 && t.MaturityDate >= segmentStart && t.MaturityDate < segmentEnd {
		events = append(events, models.EncodeEvent(models.EventMD, t.MaturityDate))
	}
	models.SortEvents(events)
	return events, nil
}

func (e *certf) ComputeCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64, et models.EventType) ([]models.Event, error) {
	if err := validateUnitTerms(t); err != nil {
		return nil, fmt.Errorf("certf: %w", err)
	}
	switch et {
	case models.EventCOF:
		dates, err := couponFixingDates(t, segmentEnd)
		if err != nil {
			return nil, err
		}
		return shiftEncode(t, models.EventCOF, dates, segmentStart, segmentEnd), nil
	case models.EventCOP:
		dates, err := couponFixingDates(t, segmentEnd)
		if err != nil {
			return nil, err
		}
		return shiftEncode(t, models.EventCOP, settlementDates(t, dates), segmentStart, segmentEnd), nil
	case models.EventREF:
		dates, err := redemptionFixingDates(t, segmentEnd)
		if err != nil {
			return nil, err
		}
		return shiftEncode(t, models.EventREF, dates, segmentStart, segmentEnd), nil
	case models.EventREP:
		dates, err := redemptionFixingDates(t, segmentEnd)
		if err != nil {
			return nil, err
		}
		return shiftEncode(t, models.EventREP, settlementDates(t, dates), segmentStart, segmentEnd), nil
	}
	return nil, fmt.Errorf("event type %s is not cyclic for this contract type", et)
}

func (e *certf) ComputeStateForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*models.State, error) {
	return e.stateFor(t, st, event, external)
}

func (e *certf) ComputePayoffForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*fixedpoint.Int, error) {
	return e.payoffFor(t, st, event, external)
}

func validateUnitTerms(t *models.Terms) error {
	if err := requireTermDates(map[string]int64{
		"statusDate": t.StatusDate,
		"issueDate":  t.IssueDate,
	}); err != nil {
		return err
	}
	return requireTermAmounts(map[string]*fixedpoint.Int{
		"quantity":   t.Quantity,
		"issuePrice": t.IssuePrice,
	})
}

// unitCycleDates rolls a cyclic stream for a unit based contract. With a
// maturity date the rollout runs to maturity under the cycle's stub
// handling. Open ended contracts have no contract end, so the segment
// boundary is a pure filter bound: no stub merging and no appended end
// date, which keeps the rolled dates independent of where a caller cuts
// its segments.
func unitCycleDates(t *models.Terms, anchor int64, c models.Cycle, segmentEnd int64) ([]int64, error) {
	if t.MaturityDate != 0 {
		return cycleDates(t, anchor, c, t.MaturityDate, true)
	}
	c.Stub = models.StubShort
	return cycleDates(t, anchor, c, segmentEnd, false)
}

func couponFixingDates(t *models.Terms, segmentEnd int64) ([]int64, error) {
	if !t.CycleOfCoupon.IsSet {
		return nil, nil
	}
	anchor := models.ScheduleAnchor(t.CycleAnchorDateOfCoupon, t.IssueDate)
	return unitCycleDates(t, anchor, t.CycleOfCoupon, segmentEnd)
}

func redemptionFixingDates(t *models.Terms, segmentEnd int64) ([]int64, error) {
	if !t.CycleOfRedemption.IsSet {
		return nil, nil
	}
	anchor := models.ScheduleAnchor(t.CycleAnchorDateOfRedemption, t.IssueDate)
	return unitCycleDates(t, anchor, t.CycleOfRedemption, segmentEnd)
}

// settlementDates lags each fixing date by the settlement period.
func settlementDates(t *models.Terms, fixings []int64) []int64 {
	if !t.SettlementPeriod.IsSet {
		return fixings
	}
	out := make([]int64, 0, len(fixings))
	for _, d := range fixings {
		lagged, err := schedule.AddPeriod(d, t.SettlementPeriod.Unit, t.SettlementPeriod.Count)
		if err != nil {
			lagged = d
		}
		out = append(out, lagged)
	}
	return out
}

// ════════════════════════════════════════════════════════════════════════════
// Unit Contract Behavior (shared with STK)
// ════════════════════════════════════════════════════════════════════════════

func initialUnitState(t *models.Terms) *models.State {
	return &models.State{
		ContractPerformance: models.PerformancePerformant,
		StatusDate:          t.StatusDate,
		MaturityDate:        t.MaturityDate,
		Quantity:            roleSign(t).Mul(t.Quantity),
		CouponAmountFixed:   fixedpoint.Zero(),
		ExerciseQuantity:    fixedpoint.Zero(),
		ExerciseAmount:      fixedpoint.Zero(),
		DividendAmount:      fixedpoint.Zero(),
		SplitRatio:          fixedpoint.Zero(),
	}
}

func stfUnitISS(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	st.Quantity = roleSign(t).Mul(t.Quantity)
	st.StatusDate = at
	return st, nil
}

func pofUnitISS(t *models.Terms, st *models.State, _ int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	return st.Quantity.Neg().Mul(t.IssuePrice), nil
}

// stfCOF fixes the per unit coupon: the observed amount when one is
// supplied, otherwise the coupon rate applied to the nominal price.
func stfCOF(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	amount := external
	if amount == nil || amount.IsZero() {
		amount = t.CouponRate.Mul(t.NominalPrice)
	}
	st.CouponAmountFixed = amount.Clone()
	st.StatusDate = at
	return st, nil
}

func pofCOP(_ *models.Terms, st *models.State, _ int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	return st.Quantity.Mul(st.CouponAmountFixed), nil
}

func stfCOP(_ *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	st.CouponAmountFixed = fixedpoint.Zero()
	st.StatusDate = at
	return st, nil
}

// stfREF fixes the quantity tendered for redemption, bounded by the
// outstanding quantity.
func stfREF(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	tendered := roleSign(t).Mul(external)
	if tendered.Abs().Cmp(st.Quantity.Abs()) > 0 {
		tendered = st.Quantity.Clone()
	}
	st.ExerciseQuantity = tendered
	st.StatusDate = at
	return st, nil
}

func pofREP(t *models.Terms, st *models.State, _ int64, external *fixedpoint.Int) (*fixedpoint.Int, error) {
	price := external
	if price == nil || price.IsZero() {
		price = t.NominalPrice
	}
	return st.ExerciseQuantity.Mul(price), nil
}

func stfREP(_ *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	st.Quantity = st.Quantity.Sub(st.ExerciseQuantity)
	st.ExerciseQuantity = fixedpoint.Zero()
	st.StatusDate = at
	return st, nil
}

// stfCERTFXD fixes the per unit exercise price for a full redemption.
func stfCERTFXD(_ *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	st.ExerciseAmount = st.Quantity.Mul(external)
	st.ExerciseDate = at
	st.StatusDate = at
	return st, nil
}

func pofUnitSTD(_ *models.Terms, st *models.State, _ int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	return st.ExerciseAmount.Clone(), nil
}

func stfUnitSTD(_ *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	st.Quantity = fixedpoint.Zero()
	st.ExerciseAmount = fixedpoint.Zero()
	st.ContractPerformance = models.PerformanceTerminated
	st.TerminationDate = at
	st.StatusDate = at
	return st, nil
}

func stfUnitMD(_ *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	st.Quantity = fixedpoint.Zero()
	st.ContractPerformance = models.PerformanceMatured
	st.StatusDate = at
	return st, nil
}

func pofUnitTD(t *models.Terms, st *models.State, _ int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	return st.Quantity.Mul(t.PriceAtTerminationDate), nil
}

func stfUnitTD(_ *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	st.Quantity = fixedpoint.Zero()
	st.ContractPerformance = models.PerformanceTerminated
	st.TerminationDate = at
	st.StatusDate = at
	return st, nil
}
