package signal

import (
	"math"

	"pairtrade/internal/domain"
)

// Sizer translates decisions into signed share quantities at a fixed dollar
// exposure per pair, preserving decision order. It shares the per-window
// states map with the Engine and is the only writer of the leg quantities.
type Sizer struct {
	params         map[domain.Pair]domain.PairParams
	states         map[domain.Pair]*domain.PairState
	dollarPerTrade float64
}

func NewSizer(
	params map[domain.Pair]domain.PairParams,
	states map[domain.Pair]*domain.PairState,
	dollarPerTrade float64,
) *Sizer {
	return &Sizer{
		params:         params,
		states:         states,
		dollarPerTrade: dollarPerTrade,
	}
}

// Size converts each decision into its two leg trades at the day's open
// prices.
//
// Exits emit the exact negation of the recorded leg quantities and reset
// them to zero. Entries split the dollar exposure between the legs with the
// hedge ratio: ratio1 = 1/(1+alpha), ratio2 = alpha/(1+alpha), leg2 opposite
// in sign to leg1. Quantities are fractional; a missing open price
// propagates as a NaN quantity for the account ledger to reject when it
// prices the batch.
func (s *Sizer) Size(decisions []domain.Decision, opens map[int32]float64) []domain.Trade {
	trades := []domain.Trade{}

	for _, decision := range decisions {
		state := s.states[decision.Pair]

		if decision.Target == domain.PositionSide_Flat {
			trades = append(trades,
				domain.Trade{Permno: decision.Pair.Leg1, Quantity: -state.Qty1},
				domain.Trade{Permno: decision.Pair.Leg2, Quantity: -state.Qty2},
			)
			state.Qty1 = 0
			state.Qty2 = 0
			continue
		}

		alpha := s.params[decision.Pair].Alpha
		ratio1 := 1 / (1 + alpha)
		ratio2 := alpha / (1 + alpha)
		target := float64(decision.Target)

		quantity1 := target * ratio1 * s.dollarPerTrade / openOrNaN(opens, decision.Pair.Leg1)
		quantity2 := -target * ratio2 * s.dollarPerTrade / openOrNaN(opens, decision.Pair.Leg2)

		trades = append(trades,
			domain.Trade{Permno: decision.Pair.Leg1, Quantity: quantity1},
			domain.Trade{Permno: decision.Pair.Leg2, Quantity: quantity2},
		)
		state.Qty1 = quantity1
		state.Qty2 = quantity2
	}

	return trades
}

func openOrNaN(prices map[int32]float64, permno int32) float64 {
	if price, ok := prices[permno]; ok {
		return price
	}
	return math.NaN()
}
