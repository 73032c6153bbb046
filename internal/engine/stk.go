package engine

import (
	"fmt"

	"github.com/atpar/actus-core/pkg/fixedpoint"
	"github.com/atpar/actus-core/pkg/models"
)

// ════════════════════════════════════════════════════════════════════════════
// STK — Stock
// ════════════════════════════════════════════════════════════════════════════

// stk is a quantity of shares. Dividends follow a declared cycle as
// fixing and payment pairs; splits and buybacks are corporate actions
// announced ad hoc, so their events are fed in by the caller rather
// than scheduled.
type stk struct {
	dispatch
}

func newSTKEngine() *stk {
	e := &stk{}
	e.contractType = models.ContractTypeSTK
	e.states = map[models.EventType]stateFn{
		models.EventISS: stfUnitISS,
		models.EventDIF: stfDIF,
		models.EventDIP: stfDIP,
		models.EventSPF: stfSPF,
		models.EventSPS: stfSPS,
		models.EventREF: stfREF,
		models.EventREP: stfREP,
		models.EventTD:  stfUnitTD,
		models.EventCE:  stfCE,
	}
	e.payoffs = map[models.EventType]payoffFn{
		models.EventISS: pofUnitISS,
		models.EventDIF: pofZero,
		models.EventDIP: pofDIP,
		models.EventSPF: pofZero,
		models.EventSPS: pofZero,
		models.EventREF: pofZero,
		models.EventREP: pofREP,
		models.EventTD:  pofUnitTD,
		models.EventCE:  pofZero,
	}
	return e
}

func (e *stk) ContractType() models.ContractType { return models.ContractTypeSTK }

func (e *stk) ComputeInitialState(t *models.Terms) (*models.State, error) {
	if err := validateUnitTerms(t); err != nil {
		return nil, fmt.Errorf("stk: %w", err)
	}
	st := initialUnitState(t)
	st.MaturityDate = 0 // shares do not mature
	return st, nil
}

func (e *stk) ComputeNonCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64) ([]models.Event, error) {
	if err := validateUnitTerms(t); err != nil {
		return nil, fmt.Errorf("stk: %w", err)
	}
	var events []models.Event
	events = append(events, pointEvent(t, models.EventISS, t.IssueDate, segmentStart, segmentEnd)...)
	events = append(events, pointEvent(t, models.EventTD, t.TerminationDate, segmentStart, segmentEnd)...)
	models.SortEvents(events)
	return events, nil
}

func (e *stk) ComputeCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64, et models.EventType) ([]models.Event, error) {
	if err := validateUnitTerms(t); err != nil {
		return nil, fmt.Errorf("stk: %w", err)
	}
	switch et {
	case models.EventDIF, models.EventDIP:
		if !t.CycleOfDividend.IsSet {
			return nil, nil
		}
		anchor := models.ScheduleAnchor(t.CycleAnchorDateOfDividend, t.IssueDate)
		dates, err := unitCycleDates(t, anchor, t.CycleOfDividend, segmentEnd)
		if err != nil {
			return nil, err
		}
		if et == models.EventDIP {
			dates = settlementDates(t, dates)
		}
		return shiftEncode(t, et, dates, segmentStart, segmentEnd), nil
	}
	return nil, fmt.Errorf("event type %s is not cyclic for this contract type", et)
}

func (e *stk) ComputeStateForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*models.State, error) {
	return e.stateFor(t, st, event, external)
}

func (e *stk) ComputePayoffForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*fixedpoint.Int, error) {
	return e.payoffFor(t, st, event, external)
}

// stfDIF fixes the total dividend from the observed per share amount.
func stfDIF(_ *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	st.DividendAmount = st.Quantity.Mul(external)
	st.StatusDate = at
	return st, nil
}

func pofDIP(_ *models.Terms, st *models.State, _ int64, _ *fixedpoint.Int) (*fixedpoint.Int, error) {
	return st.DividendAmount.Clone(), nil
}

func stfDIP(_ *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	st.DividendAmount = fixedpoint.Zero()
	st.StatusDate = at
	return st, nil
}

// stfSPF fixes the announced split ratio, e.g. 2.0 for a two for one
// split or 0.5 for a reverse split.
func stfSPF(_ *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error) {
	st.SplitRatio = external.Clone()
	st.StatusDate = at
	return st, nil
}

func stfSPS(_ *models.Terms, st *models.State, at int64, _ *fixedpoint.Int) (*models.State, error) {
	if !st.SplitRatio.IsZero() {
		st.Quantity = st.Quantity.Mul(st.SplitRatio)
	}
	st.SplitRatio = fixedpoint.Zero()
	st.StatusDate = at
	return st, nil
}
