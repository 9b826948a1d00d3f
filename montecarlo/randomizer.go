package montecarlo

import (
	"math/rand/v2"

	"github.com/cnolan/simrollout/playengine"
)

// randomizeOppoRacks takes a snapshot of the unseen bag and, for every
// player other than the one the simulation is run for, removes the known
// partial rack's tiles from that snapshot, refills the rack to capacity
// from what's left, and installs it on the original position. The bag is
// normalized before and after via EnsureProperBag, matching sim.cpp.
//
// Opponent rack inference is an acknowledged future extension point here:
// today this draws uniformly from the unseen tiles, consistent with
// whatever partial rack SetPartialOppoRack fixed.
func (s *Simulator) randomizeOppoRacks() error {
	pos := s.originalGame
	pos.EnsureProperBag()

	workingBag := append([]playengine.Tile{}, pos.UnseenBag()...)
	current := pos.CurrentPlayer().ID()

	for _, p := range pos.Players() {
		if p.ID() == current {
			continue
		}

		rack := append([]playengine.Tile{}, s.partialOppoRack...)
		workingBag = removeTiles(workingBag, rack)
		rack, workingBag = refillRack(rack, workingBag, pos.RackCapacity())

		if err := pos.SetPlayerRack(p.ID(), playengine.SimpleRack(rack), true); err != nil {
			return err
		}
	}

	pos.EnsureProperBag()
	return nil
}

// randomizeDrawingOrder asks the bag for a freshly shuffled permutation of
// its tiles and installs it as the deterministic draw order for the
// iteration, so every subsequent refill during the rollout draws from the
// same fixed sequence.
func (s *Simulator) randomizeDrawingOrder() {
	order := s.originalGame.Bag().SomeShuffledTiles()
	s.originalGame.SetDrawingOrder(order)
}

// removeTiles returns bag with one occurrence of each tile in toRemove
// taken out.
func removeTiles(bag []playengine.Tile, toRemove []playengine.Tile) []playengine.Tile {
	if len(toRemove) == 0 {
		return bag
	}
	remaining := make(map[playengine.Tile]int, len(toRemove))
	for _, t := range toRemove {
		remaining[t]++
	}
	out := make([]playengine.Tile, 0, len(bag))
	for _, t := range bag {
		if remaining[t] > 0 {
			remaining[t]--
			continue
		}
		out = append(out, t)
	}
	return out
}

// refillRack draws uniformly at random from bag, without replacement, until
// rack reaches capacity tiles (or the bag runs dry). It returns the filled
// rack and the bag with the drawn tiles removed.
func refillRack(rack []playengine.Tile, bag []playengine.Tile, capacity int) ([]playengine.Tile, []playengine.Tile) {
	for len(rack) < capacity && len(bag) > 0 {
		i := rand.IntN(len(bag))
		rack = append(rack, bag[i])
		bag[i] = bag[len(bag)-1]
		bag = bag[:len(bag)-1]
	}
	return rack, bag
}
