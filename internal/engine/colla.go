package engine

import (
	"fmt"

	"github.com/atpar/actus-core/pkg/fixedpoint"
	"github.com/atpar/actus-core/pkg/models"
)

// ════════════════════════════════════════════════════════════════════════════
// COLLA — Collateralized Bullet Loan
// ════════════════════════════════════════════════════════════════════════════

// colla is a bullet loan backed by collateral referenced through the
// contract structure. The cash mechanics are those of a principal at
// maturity contract without fees, penalties or scaling; the collateral
// itself lives in a linked position, so here it only narrows the legal
// event set and makes the credit event path first class.
type colla struct {
	dispatch
}

func newCOLLAEngine() *colla {
	e := &colla{}
	e.contractType = models.ContractTypeCOLLA
	e.states = map[models.EventType]stateFn{
		models.EventIED:  stfIED,
		models.EventIP:   stfIP,
		models.EventIPCI: stfIPCI,
		models.EventPP:   stfPP,
		models.EventRR:   stfRR,
		models.EventRRF:  stfRRF,
		models.EventMD:   stfMD,
		models.EventCE:   stfCE,
	}
	e.payoffs = map[models.EventType]payoffFn{
		models.EventIED:  pofIED,
		models.EventIP:   pofIP,
		models.EventIPCI: pofZero,
		models.EventPP:   pofPP,
		models.EventRR:   pofZero,
		models.EventRRF:  pofZero,
		models.EventMD:   pofMD,
		models.EventCE:   pofZero,
	}
	return e
}

func (e *colla) ContractType() models.ContractType { return models.ContractTypeCOLLA }

func (e *colla) ComputeInitialState(t *models.Terms) (*models.State, error) {
	if err := validateCOLLATerms(t); err != nil {
		return nil, fmt.Errorf("colla: %w", err)
	}
	return initialInterestBearingState(t), nil
}

func (e *colla) ComputeNonCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64) ([]models.Event, error) {
	if err := validateCOLLATerms(t); err != nil {
		return nil, fmt.Errorf("colla: %w", err)
	}
	var events []models.Event
	events = append(events, pointEvent(t, models.EventIED, t.InitialExchangeDate, segmentStart, segmentEnd)...)
	if t.MaturityDate >= segmentStart && t.MaturityDate < segmentEnd {
		events = append(events, models.EncodeEvent(models.EventMD, t.MaturityDate))
	}
	models.SortEvents(events)
	return events, nil
}

func (e *colla) ComputeCyclicScheduleSegment(t *models.Terms, segmentStart, segmentEnd int64, et models.EventType) ([]models.Event, error) {
	if err := validateCOLLATerms(t); err != nil {
		return nil, fmt.Errorf("colla: %w", err)
	}
	switch et {
	case models.EventIP, models.EventIPCI, models.EventRR:
		return interestBearingCyclicSegment(t, segmentStart, segmentEnd, et)
	}
	return nil, fmt.Errorf("event type %s is not cyclic for this contract type", et)
}

func (e *colla) ComputeStateForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*models.State, error) {
	return e.stateFor(t, st, event, external)
}

func (e *colla) ComputePayoffForEvent(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*fixedpoint.Int, error) {
	return e.payoffFor(t, st, event, external)
}

func validateCOLLATerms(t *models.Terms) error {
	if err := validatePAMTerms(t); err != nil {
		return err
	}
	for _, ref := range t.ContractReferences {
		if ref.Type == models.ReferenceMarketObject || ref.Role == models.ReferenceRoleCoveringContract {
			return nil
		}
	}
	return fmt.Errorf("mandatory collateral contract reference is not set")
}
