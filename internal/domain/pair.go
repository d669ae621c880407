package domain

import (
	"fmt"
	"math"
)

// Pair is two PERMNOs traded as one statistically linked unit. The tuple
// itself is the identity, so it is used as a map key throughout.
type Pair struct {
	Leg1 int32
	Leg2 int32
}

func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.Leg1, p.Leg2)
}

// PairParams are the regression coefficients and bands for one pair, fixed
// for the lifetime of a simulation window.
//
// The spread is ln(price1) - Alpha*ln(price2) - Beta, so Alpha is the hedge
// ratio and Beta the intercept. Threshold and StopLoss are positive spread
// magnitudes; StopLoss is assumed (not enforced) to exceed Threshold.
type PairParams struct {
	Alpha     float64
	Beta      float64
	Threshold float64
	StopLoss  float64
}

// Spread computes the log-linear spread from the legs' close prices. NaN
// inputs propagate.
func (p PairParams) Spread(price1, price2 float64) float64 {
	return math.Log(price1) - p.Alpha*math.Log(price2) - p.Beta
}

type PositionSide int

const (
	PositionSide_Short PositionSide = -1
	PositionSide_Flat  PositionSide = 0
	PositionSide_Long  PositionSide = 1
)

// PairState is the mutable per-pair book state: the current side and the
// exact leg quantities last executed, which an exit must negate.
type PairState struct {
	Position PositionSide
	Qty1     float64
	Qty2     float64
}

// NewPairStates builds the initial flat state map for a window.
func NewPairStates(pairs []Pair) map[Pair]*PairState {
	states := map[Pair]*PairState{}
	for _, pair := range pairs {
		states[pair] = &PairState{}
	}
	return states
}

// Decision targets a position for one pair on one day. Target is +1 to
// enter long, -1 to enter short, 0 to exit.
type Decision struct {
	Pair   Pair
	Target PositionSide
}

// Trade is a signed share quantity for one security. Fractional quantities
// are valid; this is a paper simulation.
type Trade struct {
	Permno   int32
	Quantity float64
}
