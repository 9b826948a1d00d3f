package montecarlo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cnolan/simrollout/playengine"
)

// fakeMove is a minimal playengine.Move double used across this package's
// tests, independent of any real rules engine.
type fakeMove struct {
	name         string
	score        int
	equity, win  float64
	bingo        bool
	leave        []playengine.Tile
}

func (m fakeMove) Score() int                  { return m.score }
func (m fakeMove) Equity() float64              { return m.equity }
func (m fakeMove) Win() float64                 { return m.win }
func (m fakeMove) IsBingo() bool                { return m.bingo }
func (m fakeMove) Leave() []playengine.Tile     { return m.leave }
func (m fakeMove) String() string               { return m.name }
func (m fakeMove) Equals(o playengine.Move) bool {
	other, ok := o.(fakeMove)
	return ok && other.name == m.name
}
func (m fakeMove) WithEquityAndWin(equity, win float64) playengine.Move {
	m.equity, m.win = equity, win
	return m
}

func TestNewSimmedMoveIDsAreUniqueAndMonotonic(t *testing.T) {
	a := NewSimmedMove(fakeMove{name: "8D CAT"})
	b := NewSimmedMove(fakeMove{name: "8D DOG"})
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Less(t, a.ID(), b.ID())
	assert.True(t, a.IncludeInSimulation())
}

func TestCalculateEquityFallsBackToStaticBeforeAnyLevel(t *testing.T) {
	sm := NewSimmedMove(fakeMove{name: "PASS", equity: 1.25})
	assert.Equal(t, 1.25, sm.CalculateEquity())
}

func TestCalculateEquitySignConvention(t *testing.T) {
	sm := NewSimmedMove(fakeMove{name: "8D CAT", equity: 0})

	var msg SimmedMoveMessage
	msg.Levels.SetNumberLevels(1)
	msg.Levels[0].SetNumberScores(2)
	msg.Levels[0].Statistics[0].Score.Incorporate(30) // the rolling-out side
	msg.Levels[0].Statistics[1].Score.Incorporate(12) // the opponent
	msg.Residual = 2.5

	sm.incorporate(msg)

	// first slot added, every other slot subtracted, plus residual.
	assert.InDelta(t, 30-12+2.5, sm.CalculateEquity(), 1e-9)
}

func TestCalculateWinPercentageFallsBackToStatic(t *testing.T) {
	sm := NewSimmedMove(fakeMove{name: "8D CAT", win: 0.37})
	assert.InDelta(t, 0.37, sm.CalculateWinPercentage(), 1e-9)

	sm.incorporate(SimmedMoveMessage{Wins: 1})
	sm.incorporate(SimmedMoveMessage{Wins: 0})
	assert.InDelta(t, 50.0, sm.CalculateWinPercentage(), 1e-9)
}

func TestIncorporateLevelsIsLastWriteWins(t *testing.T) {
	sm := NewSimmedMove(fakeMove{name: "8D CAT"})

	var first SimmedMoveMessage
	first.Levels.SetNumberLevels(1)
	first.Levels[0].SetNumberScores(1)
	first.Levels[0].Statistics[0].Score.Incorporate(10)
	sm.incorporate(first)

	var second SimmedMoveMessage
	second.Levels.SetNumberLevels(2)
	second.Levels[0].SetNumberScores(1)
	second.Levels[0].Statistics[0].Score.Incorporate(99)
	sm.incorporate(second)

	levels := sm.Levels()
	assert.Len(t, levels, 2)
	assert.InDelta(t, 99, levels[0].Statistics[0].Score.Average(), 1e-9)
}

func TestIncorporateResidualGameSpreadWinsAreCommutativeSums(t *testing.T) {
	sm := NewSimmedMove(fakeMove{name: "8D CAT"})
	sm.incorporate(SimmedMoveMessage{Residual: 1, GameSpread: 10, Wins: 1})
	sm.incorporate(SimmedMoveMessage{Residual: 2, GameSpread: -4, Wins: 0})

	residual := sm.Residual()
	assert.Equal(t, 2, residual.Count())
	assert.InDelta(t, 1.5, residual.Average(), 1e-9)
	gameSpread := sm.GameSpread()
	assert.InDelta(t, 3, gameSpread.Average(), 1e-9)
	wins := sm.Wins()
	assert.InDelta(t, 0.5, wins.Average(), 1e-9)
}

func TestClearResetsAccumulatorsButKeepsIdentity(t *testing.T) {
	sm := NewSimmedMove(fakeMove{name: "8D CAT"})
	id := sm.ID()
	sm.incorporate(SimmedMoveMessage{Wins: 1})
	sm.Clear()

	assert.Equal(t, id, sm.ID())
	assert.Equal(t, "8D CAT", sm.Move().String())
	wins2 := sm.Wins()
	assert.False(t, wins2.HasValues())
	assert.Equal(t, 0, sm.NumLevels())
}
