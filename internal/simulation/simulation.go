// Package simulation assembles full event schedules from engine
// segments and replays them into projected cashflow tables. A replay is
// a pure fold: identical terms, window and observations always produce
// the identical row sequence.
package simulation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/atpar/actus-core/internal/engine"
	"github.com/atpar/actus-core/pkg/fixedpoint"
	"github.com/atpar/actus-core/pkg/models"
)

// batchConcurrency bounds the number of contracts replayed in parallel.
const batchConcurrency = 8

// Externals maps events to their observed values (rate fixings,
// redemption ratios, dividend amounts). Missing entries read as nil,
// which every engine treats as "no observation".
type Externals map[models.Event]*fixedpoint.Int

// Contract is one replay input: immutable terms plus the observations
// the schedule needs.
type Contract struct {
	ID        string        `json:"id"`
	Terms     *models.Terms `json:"terms"`
	Externals Externals     `json:"externals,omitempty"`
}

// Row is one line of the projected cashflow table: the event, the
// payoff it produced and a snapshot of the state after it.
type Row struct {
	Event       models.Event               `json:"event"`
	EventType   models.EventType           `json:"event_type"`
	Time        int64                      `json:"time"`
	Payoff      *fixedpoint.Int            `json:"payoff"`
	Notional    *fixedpoint.Int            `json:"notional"`
	Accrued     *fixedpoint.Int            `json:"accrued"`
	Performance models.ContractPerformance `json:"performance"`
}

// Result is a completed replay.
type Result struct {
	RunID      string        `json:"run_id"`
	ContractID string        `json:"contract_id"`
	Rows       []Row         `json:"rows"`
	FinalState *models.State `json:"final_state"`
}

// cyclicEventTypes lists the event streams each contract type can
// schedule; the full schedule is the merge of all of them plus the
// non-cyclic segment.
var cyclicEventTypes = map[models.ContractType][]models.EventType{
	models.ContractTypePAM:   {models.EventIP, models.EventIPCI, models.EventFP, models.EventRR, models.EventSC},
	models.ContractTypeANN:   {models.EventPR, models.EventIP, models.EventIPCI, models.EventFP, models.EventRR, models.EventSC},
	models.ContractTypeCEG:   {models.EventFP},
	models.ContractTypeCEC:   nil,
	models.ContractTypeCERTF: {models.EventCOF, models.EventCOP, models.EventREF, models.EventREP},
	models.ContractTypeSTK:   {models.EventDIF, models.EventDIP},
	models.ContractTypeCOLLA: {models.EventIP, models.EventIPCI, models.EventRR},
}

// Schedule produces the canonical event schedule of a contract over
// [start, end): every cyclic stream plus the one-off events, merged,
// sorted and deduplicated.
func Schedule(terms *models.Terms, start, end int64) ([]models.Event, error) {
	eng, err := engine.ForContractType(terms.ContractType)
	if err != nil {
		return nil, err
	}
	nonCyclic, err := eng.ComputeNonCyclicScheduleSegment(terms, start, end)
	if err != nil {
		return nil, err
	}
	segments := [][]models.Event{nonCyclic}
	for _, et := range cyclicEventTypes[terms.ContractType] {
		segment, err := eng.ComputeCyclicScheduleSegment(terms, start, end, et)
		if err != nil {
			return nil, fmt.Errorf("cyclic segment %s: %w", et, err)
		}
		segments = append(segments, segment)
	}
	return models.MergeSchedules(segments...), nil
}

// Horizon returns the natural replay window end for the terms: just
// past maturity when one is set, otherwise the fallback.
func Horizon(terms *models.Terms, fallback int64) int64 {
	if terms.MaturityDate != 0 {
		return terms.MaturityDate + 1
	}
	return fallback
}

// Run replays a single contract over [start, end).
func Run(ctx context.Context, c Contract, start, end int64) (*Result, error) {
	eng, err := engine.ForContractType(c.Terms.ContractType)
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", c.ID, err)
	}
	events, err := Schedule(c.Terms, start, end)
	if err != nil {
		return nil, fmt.Errorf("contract %s: schedule: %w", c.ID, err)
	}
	state, err := eng.ComputeInitialState(c.Terms)
	if err != nil {
		return nil, fmt.Errorf("contract %s: initial state: %w", c.ID, err)
	}

	rows := make([]Row, 0, len(events))
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		external := c.Externals[ev]
		payoff, err := eng.ComputePayoffForEvent(c.Terms, state, ev, external)
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", c.ID, err)
		}
		state, err = eng.ComputeStateForEvent(c.Terms, state, ev, external)
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", c.ID, err)
		}
		rows = append(rows, Row{
			Event:       ev,
			EventType:   ev.Type(),
			Time:        ev.ScheduleTime(),
			Payoff:      payoff,
			Notional:    state.NotionalPrincipal.Clone(),
			Accrued:     state.AccruedInterest.Clone(),
			Performance: state.ContractPerformance,
		})
	}
	return &Result{
		RunID:      uuid.NewString(),
		ContractID: c.ID,
		Rows:       rows,
		FinalState: state,
	}, nil
}

// RunBatch replays independent contracts concurrently. Results come
// back in input order; the first failure cancels the remaining runs.
func RunBatch(ctx context.Context, contracts []Contract, start, end int64) ([]*Result, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	results := make([]*Result, len(contracts))
	for i, c := range contracts {
		i, c := i, c
		g.Go(func() error {
			res, err := Run(ctx, c, start, end)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
