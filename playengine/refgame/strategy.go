package refgame

import "math"

// BogowinTable is a compact, formula-based stand-in for a real win%
// lookup table: it estimates win probability from a spread and how many
// tile-equivalents of the game remain, via a logistic curve rather than an
// empirically trained table. mode is accepted but unused; it exists only to
// satisfy playengine.StrategyTable's signature for callers that distinguish
// between opening, midgame, and endgame tables.
type BogowinTable struct{}

func (BogowinTable) Bogowin(spreadFloor, resourceUnits, mode int) float64 {
	if resourceUnits < 1 {
		resourceUnits = 1
	}
	x := float64(spreadFloor) / (2 * float64(resourceUnits))
	p := 1 / (1 + math.Exp(-x))
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
