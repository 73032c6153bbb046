package engine

import (
	"fmt"

	"github.com/atpar/actus-core/pkg/fixedpoint"
	"github.com/atpar/actus-core/pkg/models"
)

// ════════════════════════════════════════════════════════════════════════════
// CEG — Guarantee
// ════════════════════════════════════════════════════════════════════════════

// ceg guarantees a covered contract. A credit event on the covered
// contract triggers an execution that fixes the exercise amount from
// the coverage ratio; the settlement event then pays it out together
// with any accrued guarantee fee. Executions and settlements are not
// part of the deterministic schedule, they are fed in when the covered
// contract actually defaults.
type ceg struct {
	dispatch
}

func newCEGEngine() *ceg {
	e := &ceg{}
	e.contractType = models.ContractTypeCEG
	e.states = map[models.EventType]stateFn{
		models.EventPRD: stfAccrueFeeOnly,
		models.EventFP:  stfFP,
		models.EventXD:  stfCEGXD,
		models.EventSTD: stfEnhancementSTD,
		models.EventMD:  stfEnhancementMD,
		models.EventCE:  stfCE,
	}
	e.payoffs = map[models.EventType]payoffFn{
		models.EventPRD: pofEnhancementPRD,
		models.EventFP:  pofFP,
		models.EventXD:  pofZero,
		models.EventSTD: pofEnhancementSTD,
		models.EventMD:  pofZero,
		models.EventCE:  pofZero,
	}
	return e
}

func (e *ceg) ContractType() models.ContractType { return models.ContractTypeCEG }

func (e *ceg) ComputeInitialState(t *models.Terms) (*models.State, error) {
	if err := validateEnhancementTerms(t); err != nil {
		return nil, fmt.Errorf("ceg: %w", err)
	}
	return initialEnhancementState(t), nil
}

func (e *ceg) ComputeNonCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64) ([]models.Event, error) {
	if err := validateEnhancementTerms(t); err != nil {
		return nil, fmt.Errorf("ceg: %w", err)
	}
	var events []models.Event
	events = append(events, pointEvent(t, models.EventPRD, t.PurchaseDate, segmentStart, segmentEnd)...)
	if t.MaturityDate >= segmentStart && t.MaturityDate < segmentEnd {
		events = append(events, models.EncodeEvent(models.EventMD, t.MaturityDate))
	}
	models.SortEvents(events)
	return events, nil
}

func (e *ceg) ComputeCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64, et models.EventType) ([]models.Event, error) {
	if err := validateEnhancementTerms(t); err != nil {
		return nil, fmt.Errorf("ceg: %w", err)
	}
	if et != models.EventFP {
		return nil, fmt.Errorf("event type %s is not cyclic for this contract type", et)
	}
	if !t.CycleOfFee.IsSet || t.FeeRate == nil {
		return nil, nil
	}
	anchor := models.ScheduleAnchor(t.CycleAnchorDateOfFee, t.StatusDate)
	dates, err := cycleDates(t, anchor, t.CycleOfFee, t.MaturityDate, true)
	if err != nil {
		return nil, err
	}
	return shiftEncode(t, models.EventFP, dates, segmentStart, segmentEnd), nil
}

func (e *ceg) ComputeStateForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*models.State, error) {
	return e.stateFor(t, st, event, external)
}

func (e *ceg) ComputePayoffForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*fixedpoint.Int, error) {
	return e.payoffFor(t, st, event, external)
}

// ════════════════════════════════════════════════════════════════════════════
// CEC — Collateral
// ════════════════════════════════════════════════════════════════════════════

// cec is a collateral position covering a contract. Unlike a guarantee
// it carries no fee stream, and on execution the claim is capped by the
// observed collateral value.
type cec struct {
	dispatch
}

func newCECEngine() *cec {
	e := &cec{}
	e.contractType = models.ContractTypeCEC
	e.states = map[models.EventType]stateFn{
		models.EventXD:  stfCECXD,
		models.EventSTD: stfEnhancementSTD,
		models.EventMD:  stfEnhancementMD,
		models.EventCE:  stfCE,
	}
	e.payoffs = map[models.EventType]payoffFn{
		models.EventXD:  pofZero,
		models.EventSTD: pofEnhancementSTD,
		models.EventMD:  pofZero,
		models.EventCE:  pofZero,
	}
	return e
}

func (e *cec) ContractType() models.ContractType { return models.ContractTypeCEC }

func (e *cec) ComputeInitialState(t *models.Terms) (*models.State, error) {
	if err := validateEnhancementTerms(t); err != nil {
		return nil, fmt.Errorf("cec: %w", err)
	}
	return initialEnhancementState(t), nil
}

func (e *cec) ComputeNonCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64) ([]models.Event, error) {
	if err := validateEnhancementTerms(t); err != nil {
		return nil, fmt.Errorf("cec: %w", err)
	}
	var events []models.Event
	if t.MaturityDate >= segmentStart && t.MaturityDate < segmentEnd {
		events = append(events, models.EncodeEvent(models.EventMD, t.MaturityDate))
	}
	return events, nil
}

func (e *cec) ComputeCyclicScheduleSegment(t *models.Terms, _, _ int64, et models.EventType) ([]models.Event, error) {
	if err := validateEnhancementTerms(t); err != nil {
		return nil, fmt.Errorf("cec: %w", err)
	}
	return nil, fmt.Errorf("event type %s is not cyclic for this contract type", et)
}

func (e *cec) ComputeStateForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*models.State, error) {
	return e.stateFor(t, st, event, external)
}

func (e *cec) ComputePayoffForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*fixedpoint.Int, error) {
	return e.payoffFor(t, st, event, external)
}

// ════════════════════════════════════════════════════════════════════════════
// Shared Credit Enhancement Behavior
// ════════════════════════════════════════════════════════════════════════════

func validateEnhancementTerms(t *models.Terms) error {
	if err := requireTermDates(map[string]int64{
		"statusDate":   t.StatusDate,
		"maturityDate": t.MaturityDate,
	}); err != nil {
		return err
	}
	if err := requireTermAmounts(map[string]*fixedpoint.Int{
		"notionalPrincipal":           t.NotionalPrincipal,
		"coverageOfCreditEnhancement": t.CoverageOfCreditEnhancement,
	}); err != nil {
		return err
	}
	for _, ref := range t.ContractReferences {
		if ref.Role == models.ReferenceRoleCoveredContract || ref.Role == models.ReferenceRoleCoveringContract {
			return nil
		}
	}
	return fmt.Errorf("mandatory contract reference with a covered or covering role is not set")
}

// initialEnhancementState carries the covered exposure, scaled by the
// coverage ratio, as the notional of the enhancement itself.
func initialEnhancementState(t *models.Terms) *models.State {
	sign := roleSign(t)
	return &models.State{
		ContractPerformance: models.PerformancePerformant,
		StatusDate:          t.StatusDate,
		MaturityDate:        t.MaturityDate,
		NotionalPrincipal:   sign.Mul(t.CoverageOfCreditEnhancement).Mul(t.NotionalPrincipal),
		NominalInterestRate: fixedpoint.Zero(),
		AccruedInterest:     fixedpoint.Zero(),
		FeeAccrued:          sign.Mul(t.FeeAccrued),
		ExerciseAmount:      fixedpoint.Zero(),
	}
}

// stfAccrueFeeOnly advances fee accrual without touching interest,
// which credit enhancements do not carry.
func stfAccrueFeeOnly(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	return st, nil
}

// stfCEGXD fixes the guarantee claim. The external value is the
// outstanding exposure of the covered contract at default; absent an
// observation the covered notional from the terms stands in.
func stfCEGXD(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	exposure := external
	if exposure == nil || exposure.IsZero() {
		exposure = t.NotionalPrincipal
	}
	st.ExerciseAmount = roleSign(t).Mul(t.CoverageOfCreditEnhancement).Mul(exposure)
	st.ExerciseDate = at
	return st, nil
}

// stfCECXD fixes the collateral claim: the covered exposure capped by
// the observed collateral value.
func stfCECXD(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	claim := t.CoverageOfCreditEnhancement.Mul(t.NotionalPrincipal)
	if external != nil && !external.IsZero() && external.Cmp(claim) < 0 {
		claim = external
	}
	st.ExerciseAmount = roleSign(t).Mul(claim)
	st.ExerciseDate = at
	return st, nil
}

func pofEnhancementSTD(_ *models.Terms, st *models.State, _ int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	return st.ExerciseAmount.Add(st.FeeAccrued), nil
}

func stfEnhancementSTD(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	st.NotionalPrincipal = fixedpoint.Zero()
	st.ExerciseAmount = fixedpoint.Zero()
	st.FeeAccrued = fixedpoint.Zero()
	st.ContractPerformance = models.PerformanceTerminated
	st.TerminationDate = at
	return st, nil
}

func stfEnhancementMD(t *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	accrue(t, st, at)
	st.NotionalPrincipal = fixedpoint.Zero()
	st.FeeAccrued = fixedpoint.Zero()
	st.ContractPerformance = models.PerformanceMatured
	return st, nil
}

func pofEnhancementPRD(t *models.Terms, _ *models.State, _ int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	return roleSign(t).Neg().Mul(t.PriceAtPurchaseDate), nil
}
