// Package engine implements the deterministic contract engines. Each
// contract type exposes the same surface: derive an initial state from
// the contract terms, generate schedule segments, and evaluate payoff
// and state-transition functions per event. Engines are stateless;
// every call receives the terms and the prior state explicitly so that
// replays are reproducible from inputs alone.
package engine

import (
	"fmt"

	"github.com/atpar/actus-core/pkg/fixedpoint"
	"github.com/atpar/actus-core/pkg/models"
	"github.com/atpar/actus-core/pkg/schedule"
)

// ════════════════════════════════════════════════════════════════════════════
// Engine Interface
// ════════════════════════════════════════════════════════════════════════════

// Engine is the uniform surface of a contract-type state machine.
//
// Schedule segments are half-open windows [segmentStart, segmentEnd):
// an event whose shifted time falls on segmentEnd belongs to the next
// segment. ComputePayoffForEvent is evaluated against the state PRIOR
// to the event; ComputeStateForEvent then produces the post-event
// state. The external value carries observed market data for events
// that need one (rate fixings, redemption ratios, dividend amounts);
// engines ignore it for events that are fully determined by terms and
// state.
type Engine interface {
	ContractType() models.ContractType
	ComputeInitialState(terms *models.Terms) (*models.State, error)
	ComputeNonCyclicScheduleSegment(terms *models.Terms, segmentStart, segmentEnd int64) ([]models.Event, error)
	ComputeCyclicScheduleSegment(terms *models.Terms, segmentStart, segmentEnd int64, eventType models.EventType) ([]models.Event, error)
	ComputeStateForEvent(terms *models.Terms, state *models.State, event models.Event, external *fixedpoint.Int) (*models.State, error)
	ComputePayoffForEvent(terms *models.Terms, state *models.State, event models.Event, external *fixedpoint.Int) (*fixedpoint.Int, error)
}

// ForContractType returns the engine for the given contract type.
func ForContractType(ct models.ContractType) (Engine, error) {
	switch ct {
	case models.ContractTypePAM:
		return pamEngine, nil
	case models.ContractTypeANN:
		return annEngine, nil
	case models.ContractTypeCEG:
		return cegEngine, nil
	case models.ContractTypeCEC:
		return cecEngine, nil
	case models.ContractTypeCERTF:
		return certfEngine, nil
	case models.ContractTypeSTK:
		return stkEngine, nil
	case models.ContractTypeCOLLA:
		return collaEngine, nil
	default:
		return nil, fmt.Errorf("engine: unsupported contract type %q", ct)
	}
}

var (
	pamEngine   = newPAMEngine()
	annEngine   = newANNEngine()
	cegEngine   = newCEGEngine()
	cecEngine   = newCECEngine()
	certfEngine = newCERTFEngine()
	stkEngine   = newSTKEngine()
	collaEngine = newCOLLAEngine()
)

// ════════════════════════════════════════════════════════════════════════════
// Dispatch Tables
// ════════════════════════════════════════════════════════════════════════════

// stateFn mutates the (already cloned) state in place for an event at
// the given shifted time and returns it.
type stateFn func(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*models.State, error)

// payoffFn computes the cashflow of an event from the prior state.
type payoffFn func(t *models.Terms, st *models.State, at int64, external *fixedpoint.Int) (*fixedpoint.Int, error)

type dispatch struct {
	contractType models.ContractType
	states       map[models.EventType]stateFn
	payoffs      map[models.EventType]payoffFn
}

func (d *dispatch) stateFor(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*models.State, error) {
	fn, ok := d.states[event.Type()]
	if !ok {
		return nil, fmt.Errorf("engine %s: no state transition for event type %s", d.contractType, event.Type())
	}
	next := st.Clone()
	out, err := fn(t, next, event.ScheduleTime(), external)
	if err != nil {
		return nil, fmt.Errorf("engine %s: state transition %s: %w", d.contractType, event.Type(), err)
	}
	return out, nil
}

func (d *dispatch) payoffFor(t *models.Terms, st *models.State, event models.Event, external *fixedpoint.Int) (*fixedpoint.Int, error) {
	fn, ok := d.payoffs[event.Type()]
	if !ok {
		return nil, fmt.Errorf("engine %s: no payoff function for event type %s", d.contractType, event.Type())
	}
	out, err := fn(t, st, event.ScheduleTime(), external)
	if err != nil {
		return nil, fmt.Errorf("engine %s: payoff %s: %w", d.contractType, event.Type(), err)
	}
	return out, nil
}

// ════════════════════════════════════════════════════════════════════════════
// Schedule Helpers
// ════════════════════════════════════════════════════════════════════════════

// shiftEncode applies the business-day convention to each date, keeps
// those inside [segmentStart, segmentEnd) and encodes them. The result
// is in ascending time order because the inputs are.
func shiftEncode(t *models.Terms, et models.EventType, dates []int64, segmentStart, segmentEnd int64) []models.Event {
	var out []models.Event
	for _, d := range dates {
		shifted := schedule.ShiftEventTime(d, t.BusinessDayConvention, t.Calendar, t.MaturityDate)
		if shifted >= segmentStart && shifted < segmentEnd {
			out = append(out, models.EncodeEvent(et, shifted))
		}
	}
	return out
}

// pointEvent encodes a single dated event if the date is set and its
// shifted time falls inside the segment window.
func pointEvent(t *models.Terms, et models.EventType, date, segmentStart, segmentEnd int64) []models.Event {
	if date == 0 {
		return nil
	}
	return shiftEncode(t, et, []int64{date}, segmentStart, segmentEnd)
}

// cycleDates rolls out a cycle between anchor and end, honoring the
// end-of-month convention from the terms.
func cycleDates(t *models.Terms, anchor int64, c models.Cycle, end int64, includeEnd bool) ([]int64, error) {
	return schedule.GenerateScheduleEOM(anchor, c, end, includeEnd, t.EndOfMonthConvention)
}

// ════════════════════════════════════════════════════════════════════════════
// Shared State Helpers
// ════════════════════════════════════════════════════════════════════════════

// roleSign returns +1 or -1 as a fixed-point factor for the contract
// role. State amounts are stored role-signed so that payoffs derived
// from them flip sign when the role flips.
func roleSign(t *models.Terms) *fixedpoint.Int {
	return fixedpoint.New(int64(t.ContractRole.Sign()))
}

// yearFraction measures accrual time from the state's status date.
func yearFraction(t *models.Terms, st *models.State, at int64) *fixedpoint.Int {
	return schedule.YearFraction(st.StatusDate, at, t.DayCountConvention, t.MaturityDate)
}

// interestSince is the interest accrued between the status date and at,
// on the current signed notional at the current nominal rate.
func interestSince(t *models.Terms, st *models.State, at int64) *fixedpoint.Int {
	return yearFraction(t, st, at).Mul(st.NominalInterestRate).Mul(st.NotionalPrincipal)
}

// accrue advances interest and, for relative fee bases, fee accrual to
// the event time and moves the status date. Every state transition that
// is time-sensitive starts here.
func accrue(t *models.Terms, st *models.State, at int64) {
	yf := yearFraction(t, st, at)
	st.AccruedInterest = st.AccruedInterest.Add(yf.Mul(st.NominalInterestRate).Mul(st.NotionalPrincipal))
	if t.FeeRate != nil && t.FeeBasis == models.FeeBasisNotional {
		st.FeeAccrued = st.FeeAccrued.Add(yf.Mul(t.FeeRate).Mul(st.NotionalPrincipal))
	}
	st.StatusDate = at
}

// rateMultiplier treats an absent multiplier as the identity.
func rateMultiplier(t *models.Terms) *fixedpoint.Int {
	if t.RateMultiplier == nil {
		return fixedpoint.One()
	}
	return t.RateMultiplier
}

// applyRateBounds clamps a freshly reset rate: first the period caps
// bound the move relative to the prior rate, then the life caps bound
// the absolute level.
func applyRateBounds(t *models.Terms, prior, rate *fixedpoint.Int) *fixedpoint.Int {
	if t.PeriodCap != nil {
		if rate.Sub(prior).Cmp(t.PeriodCap) > 0 {
			rate = prior.Add(t.PeriodCap)
		}
	}
	if t.PeriodFloor != nil {
		if prior.Sub(rate).Cmp(t.PeriodFloor) > 0 {
			rate = prior.Sub(t.PeriodFloor)
		}
	}
	return rate.Clamp(t.LifeFloor, t.LifeCap)
}

// requireTermDates reports the first unset mandatory date field.
func requireTermDates(fields map[string]int64) error {
	for _, name := range []string{"statusDate", "initialExchangeDate", "maturityDate", "issueDate"} {
		if v, ok := fields[name]; ok && v == 0 {
			return fmt.Errorf("mandatory term %s is not set", name)
		}
	}
	return nil
}

// requireTermAmounts reports the first nil mandatory amount field.
func requireTermAmounts(fields map[string]*fixedpoint.Int) error {
	for name, v := range fields {
		if v == nil {
			return fmt.Errorf("mandatory term %s is not set", name)
		}
	}
	return nil
}
