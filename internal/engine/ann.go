package engine

import (
	"fmt"

	"github.com/atpar/actus-core/pkg/fixedpoint"
	"github.com/atpar/actus-core/pkg/models"
	"github.com/atpar/actus-core/pkg/schedule"
)

// ════════════════════════════════════════════════════════════════════════════
// ANN — Annuity
// ════════════════════════════════════════════════════════════════════════════

// ann amortizes the notional through cyclic principal redemption
// events. Each redemption pays the annuity amount less the interest
// accrued over the period; the interest itself settles through the
// interest payment event at the same date, which is why redemptions
// sort ahead of interest payments within an instant.
type ann struct {
	dispatch
}

func newANNEngine() *ann {
	base := newPAMEngine()
	e := &ann{}
	e.contractType = models.ContractTypeANN
	e.states = make(map[models.EventType]stateFn, len(base.states)+1)
	for k, v := range base.states {
		e.states[k] = v
	}
	e.states[models.EventPR] = stfANNPR
	e.states[models.EventRR] = stfANNRR
	e.states[models.EventRRF] = stfANNRRF
	e.payoffs = make(map[models.EventType]payoffFn, len(base.payoffs)+1)
	for k, v := range base.payoffs {
		e.payoffs[k] = v
	}
	e.payoffs[models.EventPR] = pofANNPR
	return e
}

func (e *ann) ContractType() models.ContractType { return models.ContractTypeANN }

func (e *ann) ComputeInitialState(t *models.Terms) (*models.State, error) {
	if err := validateANNTerms(t); err != nil {
		return nil, fmt.Errorf("ann: %w", err)
	}
	st := initialInterestBearingState(t)
	if t.NextPrincipalRedemptionPayment != nil {
		st.NextPrincipalRedemptionPayment = roleSign(t).Mul(t.NextPrincipalRedemptionPayment)
	} else {
		st.NextPrincipalRedemptionPayment = annuityPayment(t, st, t.StatusDate)
	}
	return st, nil
}

func (e *ann) ComputeNonCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64) ([]models.Event, error) {
	if err := validateANNTerms(t); err != nil {
		return nil, fmt.Errorf("ann: %w", err)
	}
	return pamEngine.ComputeNonCyclicScheduleSegment(t, segmentStart, segmentEnd)
}

func (e *ann) ComputeCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64, et models.EventType) ([]models.Event, error) {
	if err := validateANNTerms(t); err != nil {
		return nil, fmt.Errorf("ann: %w", err)
	}
	if et == models.EventPR {
		dates, err := principalRedemptionDates(t)
		if err != nil {
			return nil, err
		}
		return shiftEncode(t, models.EventPR, dates, segmentStart, segmentEnd), nil
	}
	// An annuity without its own interest cycle pays interest on the
	// redemption dates.
	if (et == models.EventIP || et == models.EventIPCI) && !t.CycleOfInterestPayment.IsSet {
		effective := *t
		effective.CycleOfInterestPayment = t.CycleOfPrincipalRedemption
		effective.CycleAnchorDateOfInterestPayment = t.CycleAnchorDateOfPrincipalRedemption
		return interestBearingCyclicSegment(&effective, segmentStart, segmentEnd, et)
	}
	return interestBearingCyclicSegment(t, segmentStart, segmentEnd, et)
}

func (e *ann) ComputeStateForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*models.State, error) {
	return e.stateFor(t, st, event, external)
}

func (e *ann) ComputePayoffForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*fixedpoint.Int, error) {
	return e.payoffFor(t, st, event, external)
}

func validateANNTerms(t *models.Terms) error {
	if err := validatePAMTerms(t); err != nil {
		return err
	}
	if !t.CycleOfPrincipalRedemption.IsSet {
		return fmt.Errorf("mandatory term cycleOfPrincipalRedemption is not set")
	}
	return nil
}

// principalRedemptionDates rolls the redemption cycle up to but not
// including maturity; the maturity event itself retires the remainder.
func principalRedemptionDates(t *models.Terms) ([]int64, error) {
	anchor := models.ScheduleAnchor(t.CycleAnchorDateOfPrincipalRedemption, t.InitialExchangeDate)
	dates, err := cycleDates(t, anchor, t.CycleOfPrincipalRedemption, t.MaturityDate, false)
	if err != nil {
		return nil, err
	}
	// The anchor itself is an exchange, not a redemption, and the
	// maturity event retires whatever is left.
	if len(dates) > 0 && dates[0] == anchor && anchor == t.InitialExchangeDate {
		dates = dates[1:]
	}
	return datesBefore(dates, t.MaturityDate), nil
}

// principalPortion is the part of the annuity payment that redeems
// notional: the payment less all interest accrued up to the event,
// bounded by the outstanding notional.
func principalPortion(t *models.Terms, st *models.State, at int64) *fixedpoint.Int {
	interest := st.AccruedInterest.Add(interestSince(t, st, at))
	principal := st.NextPrincipalRedemptionPayment.Sub(interest)
	if principal.Abs().Cmp(st.NotionalPrincipal.Abs()) > 0 {
		return st.NotionalPrincipal.Clone()
	}
	return principal
}

func pofANNPR(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	return st.NotionalScalingMultiplier.Mul(principalPortion(t, st, at)), nil
}

func stfANNPR(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	principal := principalPortion(t, st, at)
	accrue(t, st, at)
	st.NotionalPrincipal = st.NotionalPrincipal.Sub(principal)
	return st, nil
}

// Rate resets re-derive the annuity payment over the remaining
// redemption schedule at the new rate.
func stfANNRR(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	if _, err := stfRR(t, st, at, external); err != nil {
		return nil, err
	}
	st.NextPrincipalRedemptionPayment = annuityPayment(t, st, at)
	return st, nil
}

func stfANNRRF(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	if _, err := stfRRF(t, st, at, external); err != nil {
		return nil, err
	}
	st.NextPrincipalRedemptionPayment = annuityPayment(t, st, at)
	return st, nil
}

// annuityPayment solves for the constant payment that amortizes the
// outstanding balance over the remaining redemption dates, maturity
// included, at the current nominal rate:
//
//	A = (N + I) · Π f_i / Σ_i Π_{j>i} f_j  with  f_i = 1 + r·yf_i
//
// With equal periods this reduces to the textbook annuity formula. The
// result carries the sign of the outstanding balance.
func annuityPayment(t *models.Terms, st *models.State, at int64) *fixedpoint.Int {
	dates, err := principalRedemptionDates(t)
	if err != nil {
		return st.NotionalPrincipal.Clone()
	}
	var boundaries []int64
	boundaries = append(boundaries, at)
	for _, d := range dates {
		if d > at {
			boundaries = append(boundaries, d)
		}
	}
	if t.MaturityDate > at {
		boundaries = append(boundaries, t.MaturityDate)
	}
	n := len(boundaries) - 1
	outstanding := st.NotionalPrincipal.Add(st.AccruedInterest)
	if n <= 0 {
		return outstanding
	}

	one := fixedpoint.One()
	product := one
	sum := fixedpoint.Zero()
	// Walk the periods backwards so that after step i the product
	// holds Π_{j>i} f_j, which is exactly the summand for period i.
	for i := n - 1; i >= 0; i-- {
		sum = sum.Add(product)
		yf := schedule.YearFraction(boundaries[i], boundaries[i+1], t.DayCountConvention, t.MaturityDate)
		product = product.Mul(one.Add(st.NominalInterestRate.Mul(yf)))
	}
	if sum.IsZero() {
		return outstanding
	}
	return outstanding.Mul(product).Div(sum)
}
