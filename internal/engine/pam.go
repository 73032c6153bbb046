package engine

import (
	"fmt"

	"github.com/atpar/actus-core/pkg/fixedpoint"
	"github.com/atpar/actus-core/pkg/models"
)

// ════════════════════════════════════════════════════════════════════════════
// PAM — Principal at Maturity
// ════════════════════════════════════════════════════════════════════════════

// pam is a bullet loan: the full notional is exchanged at the initial
// exchange date, interest is paid cyclically, and the principal is
// repaid in one amount at maturity.
type pam struct {
	dispatch
}

func newPAMEngine() *pam {
	e := &pam{}
	e.contractType = models.ContractTypePAM
	e.states = map[models.EventType]stateFn{
		models.EventIED:  stfIED,
		models.EventIP:   stfIP,
		models.EventIPCI: stfIPCI,
		models.EventFP:   stfFP,
		models.EventPP:   stfPP,
		models.EventPY:   stfAccrueOnly,
		models.EventPRD:  stfAccrueOnly,
		models.EventRR:   stfRR,
		models.EventRRF:  stfRRF,
		models.EventSC:   stfSC,
		models.EventMD:   stfMD,
		models.EventTD:   stfTD,
		models.EventCE:   stfCE,
	}
	e.payoffs = map[models.EventType]payoffFn{
		models.EventIED:  pofIED,
		models.EventIP:   pofIP,
		models.EventIPCI: pofZero,
		models.EventFP:   pofFP,
		models.EventPP:   pofPP,
		models.EventPY:   pofPY,
		models.EventPRD:  pofPRD,
		models.EventRR:   pofZero,
		models.EventRRF:  pofZero,
		models.EventSC:   pofZero,
		models.EventMD:   pofMD,
		models.EventTD:   pofTD,
		models.EventCE:   pofZero,
	}
	return e
}

func (e *pam) ContractType() models.ContractType { return models.ContractTypePAM }

func (e *pam) ComputeInitialState(t *models.Terms) (*models.State, error) {
	if err := validatePAMTerms(t); err != nil {
		return nil, fmt.Errorf("pam: %w", err)
	}
	return initialInterestBearingState(t), nil
}

func (e *pam) ComputeNonCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64) ([]models.Event, error) {
	if err := validatePAMTerms(t); err != nil {
		return nil, fmt.Errorf("pam: %w", err)
	}
	var events []models.Event
	events = append(events, pointEvent(t, models.EventIED, t.InitialExchangeDate, segmentStart, segmentEnd)...)
	events = append(events, pointEvent(t, models.EventPRD, t.PurchaseDate, segmentStart, segmentEnd)...)
	events = append(events, pointEvent(t, models.EventTD, t.TerminationDate, segmentStart, segmentEnd)...)
	// Maturity is never shifted by the business-day convention.
	if t.MaturityDate >= segmentStart && t.MaturityDate < segmentEnd {
		events = append(events, models.EncodeEvent(models.EventMD, t.MaturityDate))
	}
	models.SortEvents(events)
	return events, nil
}

func (e *pam) ComputeCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64, et models.EventType) ([]models.Event, error) {
	if err := validatePAMTerms(t); err != nil {
		return nil, fmt.Errorf("pam: %w", err)
	}
	return interestBearingCyclicSegment(t, segmentStart, segmentEnd, et)
}

func (e *pam) ComputeStateForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*models.State, error) {
	return e.stateFor(t, st, event, external)
}

func (e *pam) ComputePayoffForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*fixedpoint.Int, error) {
	return e.payoffFor(t, st, event, external)
}

func validatePAMTerms(t *models.Terms) error {
	if err := requireTermDates(map[string]int64{
		"statusDate":          t.StatusDate,
		"initialExchangeDate": t.InitialExchangeDate,
		"maturityDate":        t.MaturityDate,
	}); err != nil {
		return err
	}
	return requireTermAmounts(map[string]*fixedpoint.Int{
		"notionalPrincipal": t.NotionalPrincipal,
	})
}

// initialInterestBearingState seeds the state shared by the interest
// bearing types. Amounts are role-signed so every derived payoff flips
// with the contract role.
func initialInterestBearingState(t *models.Terms) *models.State {
	sign := roleSign(t)
	return &models.State{
		ContractPerformance:       models.PerformancePerformant,
		StatusDate:                t.StatusDate,
		MaturityDate:              t.MaturityDate,
		NotionalPrincipal:         sign.Mul(t.NotionalPrincipal),
		NominalInterestRate:       t.NominalInterestRate.Clone(),
		AccruedInterest:           sign.Mul(t.AccruedInterest),
		FeeAccrued:                sign.Mul(t.FeeAccrued),
		InterestScalingMultiplier: fixedpoint.One(),
		NotionalScalingMultiplier: fixedpoint.One(),
	}
}

// interestBearingCyclicSegment rolls out one cyclic event type for the
// interest bearing contract family. A requested type whose cycle is not
// set in the terms yields an empty segment; a type that is never cyclic
// for the family is an error.
func interestBearingCyclicSegment(t *models.Terms, segmentStart, segmentEnd int64, et models.EventType) ([]models.Event, error) {
	switch et {
	case models.EventIP:
		dates, err := interestPaymentDates(t)
		if err != nil {
			return nil, err
		}
		// Dates up to the capitalization end belong to the IPCI stream.
		if t.CapitalizationEndDate != 0 {
			dates = datesAfter(dates, t.CapitalizationEndDate)
		}
		return shiftEncode(t, models.EventIP, dates, segmentStart, segmentEnd), nil

	case models.EventIPCI:
		if t.CapitalizationEndDate == 0 {
			return nil, nil
		}
		dates, err := interestPaymentDates(t)
		if err != nil {
			return nil, err
		}
		return shiftEncode(t, models.EventIPCI, datesUpTo(dates, t.CapitalizationEndDate), segmentStart, segmentEnd), nil

	case models.EventRR:
		if !t.CycleOfRateReset.IsSet {
			return nil, nil
		}
		anchor := models.ScheduleAnchor(t.CycleAnchorDateOfRateReset, t.InitialExchangeDate)
		dates, err := cycleDates(t, anchor, t.CycleOfRateReset, t.MaturityDate, false)
		if err != nil {
			return nil, err
		}
		dates = datesBefore(dates, t.MaturityDate)
		// A known next reset rate turns the first reset after the
		// status date into a fixed reset.
		var firstReset int64
		if t.NextResetRate != nil {
			firstReset = firstAfter(dates, t.StatusDate)
		}
		var events []models.Event
		for _, d := range dates {
			et := models.EventRR
			if d == firstReset {
				et = models.EventRRF
			}
			events = append(events, shiftEncode(t, et, []int64{d}, segmentStart, segmentEnd)...)
		}
		return events, nil

	case models.EventFP:
		if !t.CycleOfFee.IsSet || t.FeeRate == nil {
			return nil, nil
		}
		anchor := models.ScheduleAnchor(t.CycleAnchorDateOfFee, t.InitialExchangeDate)
		dates, err := cycleDates(t, anchor, t.CycleOfFee, t.MaturityDate, true)
		if err != nil {
			return nil, err
		}
		return shiftEncode(t, models.EventFP, dates, segmentStart, segmentEnd), nil

	case models.EventSC:
		if !t.CycleOfScalingIndex.IsSet || t.ScalingEffect == models.Scaling000 {
			return nil, nil
		}
		anchor := models.ScheduleAnchor(t.CycleAnchorDateOfScalingIndex, t.InitialExchangeDate)
		dates, err := cycleDates(t, anchor, t.CycleOfScalingIndex, t.MaturityDate, false)
		if err != nil {
			return nil, err
		}
		return shiftEncode(t, models.EventSC, datesBefore(dates, t.MaturityDate), segmentStart, segmentEnd), nil
	}
	return nil, fmt.Errorf("event type %s is not cyclic for this contract type", et)
}

func interestPaymentDates(t *models.Terms) ([]int64, error) {
	if !t.CycleOfInterestPayment.IsSet {
		return nil, nil
	}
	anchor := models.ScheduleAnchor(t.CycleAnchorDateOfInterestPayment, t.InitialExchangeDate)
	return cycleDates(t, anchor, t.CycleOfInterestPayment, t.MaturityDate, true)
}

func datesAfter(dates []int64, cutoff int64) []int64 {
	var out []int64
	for _, d := range dates {
		if d > cutoff {
			out = append(out, d)
		}
	}
	return out
}

func datesUpTo(dates []int64, cutoff int64) []int64 {
	var out []int64
	for _, d := range dates {
		if d <= cutoff {
			out = append(out, d)
		}
	}
	return out
}

func datesBefore(dates []int64, cutoff int64) []int64 {
	var out []int64
	for _, d := range dates {
		if d < cutoff {
			out = append(out, d)
		}
	}
	return out
}

func firstAfter(dates []int64, cutoff int64) int64 {
	for _, d := range dates {
		if d > cutoff {
			return d
		}
	}
	return 0
}

// ════════════════════════════════════════════════════════════════════════════
// State Transitions
// ════════════════════════════════════════════════════════════════════════════

func stfAccrueOnly(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	return st, nil
}

func stfIED(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	sign := roleSign(t)
	st.NotionalPrincipal = sign.Mul(t.NotionalPrincipal)
	st.NominalInterestRate = t.NominalInterestRate.Clone()
	st.AccruedInterest = sign.Mul(t.AccruedInterest)
	st.StatusDate = at
	return st, nil
}

func stfIP(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	st.AccruedInterest = fixedpoint.Zero()
	return st, nil
}

func stfIPCI(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	st.NotionalPrincipal = st.NotionalPrincipal.Add(st.AccruedInterest)
	st.AccruedInterest = fixedpoint.Zero()
	return st, nil
}

func stfFP(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	st.FeeAccrued = fixedpoint.Zero()
	return st, nil
}

func stfPP(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	st.NotionalPrincipal = st.NotionalPrincipal.Sub(roleSign(t).Mul(external))
	return st, nil
}

func stfRR(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	prior := st.NominalInterestRate
	rate := external.Mul(rateMultiplier(t)).Add(t.RateSpread)
	st.NominalInterestRate = applyRateBounds(t, prior, rate)
	return st, nil
}

func stfRRF(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	st.NominalInterestRate = t.NextResetRate.Clamp(t.LifeFloor, t.LifeCap)
	return st, nil
}

func stfSC(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	if t.ScalingIndexAtContractDealDate.IsZero() {
		return st, nil
	}
	multiplier := external.Div(t.ScalingIndexAtContractDealDate)
	if t.ScalingEffect.ScalesInterest() {
		st.InterestScalingMultiplier = multiplier
	}
	if t.ScalingEffect.ScalesNotional() {
		st.NotionalScalingMultiplier = multiplier
	}
	return st, nil
}

func stfMD(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	st.NotionalPrincipal = fixedpoint.Zero()
	st.AccruedInterest = fixedpoint.Zero()
	st.FeeAccrued = fixedpoint.Zero()
	st.ContractPerformance = models.PerformanceMatured
	return st, nil
}

func stfTD(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	st.NotionalPrincipal = fixedpoint.Zero()
	st.AccruedInterest = fixedpoint.Zero()
	st.FeeAccrued = fixedpoint.Zero()
	st.ContractPerformance = models.PerformanceTerminated
	st.TerminationDate = at
	return st, nil
}

// stfCE records a credit event. The external word may carry the new
// performance level as an integer code; absent one the contract goes
// straight to defaulted.
func stfCE(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	st.ContractPerformance = models.PerformanceDefaulted
	for _, level := range []models.ContractPerformance{
		models.PerformanceDelayed,
		models.PerformanceDelinquent,
		models.PerformanceDefaulted,
	} {
		if external.Equal(fixedpoint.New(int64(level))) {
			st.ContractPerformance = level
		}
	}
	st.NonPerformingDate = at
	return st, nil
}

// ════════════════════════════════════════════════════════════════════════════
// Payoff Functions
// ════════════════════════════════════════════════════════════════════════════

func pofZero(_ *models.Terms, _ *models.State, _ int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	return fixedpoint.Zero(), nil
}

func pofIED(t *models.Terms, _ *models.State, _ int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	return roleSign(t).Neg().Mul(t.NotionalPrincipal.Add(t.PremiumDiscountAtIED)), nil
}

func pofIP(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	return st.InterestScalingMultiplier.Mul(st.AccruedInterest.Add(interestSince(t, st, at))), nil
}

func pofFP(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	if t.FeeRate == nil {
		return fixedpoint.Zero(), nil
	}
	if t.FeeBasis == models.FeeBasisAbsolute {
		return roleSign(t).Mul(t.FeeRate), nil
	}
	return yearFraction(t, st, at).Mul(t.FeeRate).Mul(st.NotionalPrincipal).Add(st.FeeAccrued), nil
}

func pofPP(t *models.Terms, _ *models.State, _ int64, external *fixedpoint.Int) (*fixedpoint.Int, error) {
	return roleSign(t).Mul(external), nil
}

func pofPY(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*fixedpoint.Int, error) {
	switch t.PenaltyType {
	case models.PenaltyAbsolute:
		return roleSign(t).Mul(t.PenaltyRate), nil
	case models.PenaltyNominalRate:
		return yearFraction(t, st, at).Mul(t.PenaltyRate).Mul(st.NotionalPrincipal), nil
	case models.PenaltyInterestDiff:
		diff := st.NominalInterestRate.Sub(external).Abs()
		return yearFraction(t, st, at).Mul(diff).Mul(st.NotionalPrincipal), nil
	default:
		return fixedpoint.Zero(), nil
	}
}

func pofPRD(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	price := roleSign(t).Mul(t.PriceAtPurchaseDate)
	return price.Neg().Sub(st.AccruedInterest).Sub(interestSince(t, st, at)), nil
}

func pofTD(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	price := roleSign(t).Mul(t.PriceAtTerminationDate)
	return price.Add(st.AccruedInterest).Add(interestSince(t, st, at)), nil
}

func pofMD(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	principal := st.NotionalScalingMultiplier.Mul(st.NotionalPrincipal)
	interest := st.InterestScalingMultiplier.Mul(st.AccruedInterest.Add(interestSince(t, st, at)))
	return principal.Add(interest), nil
}
