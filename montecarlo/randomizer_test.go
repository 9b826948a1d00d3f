package montecarlo

import (
	"testing"

	"github.com/matryer/is"

	"github.com/cnolan/simrollout/playengine"
	"github.com/cnolan/simrollout/playengine/refgame"
)

func TestRemoveTiles(t *testing.T) {
	is := is.New(t)
	bag := []playengine.Tile{1, 1, 2, 3, 3, 3}
	out := removeTiles(bag, []playengine.Tile{1, 3})
	is.Equal(len(out), 4)

	counts := map[playengine.Tile]int{}
	for _, tl := range out {
		counts[tl]++
	}
	is.Equal(counts[1], 1)
	is.Equal(counts[2], 1)
	is.Equal(counts[3], 2)
}

func TestRefillRackStopsAtCapacityOrEmptyBag(t *testing.T) {
	is := is.New(t)
	rack, bag := refillRack(nil, []playengine.Tile{1, 2, 3}, 7)
	is.Equal(len(rack), 3)
	is.Equal(len(bag), 0)

	rack, bag = refillRack([]playengine.Tile{9, 9}, []playengine.Tile{1, 2, 3, 4, 5, 6, 7, 8}, 5)
	is.Equal(len(rack), 5)
	is.Equal(len(bag), 5)
}

func TestRandomizeOppoRacksKeepsBagAccountingConsistent(t *testing.T) {
	is := is.New(t)
	g := refgame.NewGame(3, 7)

	s := NewSimulator(refgame.BogowinTable{})
	s.originalGame = g

	totalBefore := g.Bag().Size()
	for _, p := range g.Players() {
		totalBefore += p.Rack().NumTiles()
	}

	is.NoErr(s.randomizeOppoRacks())

	totalAfter := g.Bag().Size()
	for _, p := range g.Players() {
		is.Equal(p.Rack().NumTiles(), 7)
		totalAfter += p.Rack().NumTiles()
	}
	is.Equal(totalAfter, totalBefore)
}

func TestRandomizeOppoRacksRespectsPartialRack(t *testing.T) {
	is := is.New(t)
	g := refgame.NewGame(2, 7)

	s := NewSimulator(refgame.BogowinTable{})
	s.originalGame = g
	s.partialOppoRack = []playengine.Tile{0, 0, 0}

	is.NoErr(s.randomizeOppoRacks())

	opp := g.Players()[1].Rack().Tiles()
	count := 0
	for _, tl := range opp {
		if tl == 0 {
			count++
		}
	}
	is.True(count >= 3)
}
