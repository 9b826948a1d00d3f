package refgame

import (
	"fmt"
	"sort"

	"github.com/cnolan/simrollout/playengine"
)

// Move is the only concrete playengine.Move implementation in this package:
// playing zero or more tiles from the current rack for their summed point
// value, with a fixed bonus for emptying a full rack in one turn.
type Move struct {
	tiles  []playengine.Tile
	leave  []playengine.Tile
	score  int
	equity float64
	win    float64
	bingo  bool
	pass   bool
}

// BingoBonus is added to a move's score when it plays every tile of a full
// rack in one turn, mirroring the standard "bingo" bonus.
const BingoBonus = 50

func (m Move) Score() int { return m.score }

func (m Move) Equity() float64 { return m.equity }

func (m Move) Win() float64 { return m.win }

func (m Move) IsBingo() bool { return m.bingo }

func (m Move) Leave() []playengine.Tile {
	return append([]playengine.Tile{}, m.leave...)
}

// Equals compares tile multisets, not order, since two differently-sorted
// plays of the same tiles are the same move.
func (m Move) Equals(other playengine.Move) bool {
	o, ok := other.(Move)
	if !ok {
		return false
	}
	if m.pass != o.pass {
		return false
	}
	return sameTileMultiset(m.tiles, o.tiles)
}

func (m Move) WithEquityAndWin(equity, win float64) playengine.Move {
	m.equity = equity
	m.win = win
	return m
}

func (m Move) String() string {
	if m.pass {
		return "(pass)"
	}
	return fmt.Sprintf("play %v for %d", m.tiles, m.score)
}

func sameTileMultiset(a, b []playengine.Tile) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]playengine.Tile{}, a...)
	bs := append([]playengine.Tile{}, b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
