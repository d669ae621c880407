// Package signal converts daily closing prices into per-pair position
// decisions and sizes those decisions into share-quantity orders.
package signal

import (
	"math"
	"time"

	"pairtrade/internal/domain"
	"pairtrade/internal/util"
)

// Engine evaluates the per-pair state machine. Pairs are evaluated
// independently, in construction order, so decision output is
// deterministic. The states map is shared with the Sizer for the lifetime
// of one simulation window; the engine mutates only the Position field.
type Engine struct {
	pairs  []domain.Pair
	params map[domain.Pair]domain.PairParams
	states map[domain.Pair]*domain.PairState
}

func NewEngine(
	pairs []domain.Pair,
	params map[domain.Pair]domain.PairParams,
	states map[domain.Pair]*domain.PairState,
) *Engine {
	return &Engine{
		pairs:  pairs,
		params: params,
		states: states,
	}
}

// Spreads computes the log-linear spread for every pair from current close
// prices. A missing or NaN leg price yields a NaN spread; that is data
// absence, not an error.
func (e *Engine) Spreads(closes map[int32]float64) map[domain.Pair]float64 {
	spreads := make(map[domain.Pair]float64, len(e.pairs))
	for _, pair := range e.pairs {
		spreads[pair] = e.params[pair].Spread(closeOrNaN(closes, pair.Leg1), closeOrNaN(closes, pair.Leg2))
	}
	return spreads
}

// Decide emits one entry per state change on this date, exit before
// re-entry when both happen in the same step.
//
// Per pair, in priority order:
//   - either leg at or past its last observed date: force-exit if
//     positioned, then skip the pair entirely (no re-entry);
//   - LONG exits on spread >= 0 or spread <= -stopLoss;
//   - SHORT exits on spread <= 0 or spread >= stopLoss;
//   - FLAT (including a position closed this same step) enters SHORT on
//     threshold < spread < stopLoss, LONG on the mirrored band. Entry
//     bounds are strict so a spread already at its own exit level never
//     opens a position.
//
// A NaN spread fails every comparison, so the position is held unchanged.
func (e *Engine) Decide(
	date time.Time,
	closes map[int32]float64,
	lastObserved map[int32]time.Time,
) []domain.Decision {
	decisions := []domain.Decision{}
	spreads := e.Spreads(closes)

	for _, pair := range e.pairs {
		state := e.states[pair]

		if util.DateGte(date, lastObserved[pair.Leg1]) || util.DateGte(date, lastObserved[pair.Leg2]) {
			if state.Position != domain.PositionSide_Flat {
				decisions = append(decisions, domain.Decision{Pair: pair, Target: domain.PositionSide_Flat})
				state.Position = domain.PositionSide_Flat
			}
			continue
		}

		spread := spreads[pair]
		params := e.params[pair]

		if state.Position == domain.PositionSide_Long {
			if spread >= 0 || spread <= -params.StopLoss {
				decisions = append(decisions, domain.Decision{Pair: pair, Target: domain.PositionSide_Flat})
				state.Position = domain.PositionSide_Flat
			}
		}

		if state.Position == domain.PositionSide_Short {
			if spread <= 0 || spread >= params.StopLoss {
				decisions = append(decisions, domain.Decision{Pair: pair, Target: domain.PositionSide_Flat})
				state.Position = domain.PositionSide_Flat
			}
		}

		if state.Position == domain.PositionSide_Flat {
			if spread > params.Threshold && spread < params.StopLoss {
				decisions = append(decisions, domain.Decision{Pair: pair, Target: domain.PositionSide_Short})
				state.Position = domain.PositionSide_Short
			} else if spread < -params.Threshold && spread > -params.StopLoss {
				decisions = append(decisions, domain.Decision{Pair: pair, Target: domain.PositionSide_Long})
				state.Position = domain.PositionSide_Long
			}
		}
	}

	return decisions
}

func closeOrNaN(prices map[int32]float64, permno int32) float64 {
	if price, ok := prices[permno]; ok {
		return price
	}
	return math.NaN()
}
