package montecarlo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnolan/simrollout/playengine/refgame"
)

// playUntilGameOver repeatedly commits each player's static best move (which
// always plays the whole rack) until the bag can no longer refill someone's
// rack, ending the game through the real API rather than reaching into
// refgame's internals.
func playUntilGameOver(t *testing.T, g *refgame.Game) {
	t.Helper()
	for i := 0; i < 10000 && !g.GameOver(); i++ {
		mv := g.StaticBestMove()
		g.SetCandidate(mv)
		g.CommitCandidate(true)
	}
	require.True(t, g.GameOver(), "game did not end after draining the bag")
}

func TestRolloutMoveFillsExactlyLevelsPlusOneLevels(t *testing.T) {
	g := refgame.NewGame(2, 7)
	s := NewSimulator(refgame.BogowinTable{})
	s.SetPosition(g)
	s.originalGame = g

	sm := s.simmedMoves[0]
	tr := newTraceWriter(nil, LogFormatTrace)

	// plies=3, numPlayers=2: effectivePlies=4, decimal=0, levels=2.
	msg := s.rolloutMove(sm, 2, 0, 2, g.CurrentPlayer().ID(), tr)
	assert.Len(t, msg.Levels, 3) // levels+1
}

func TestRolloutMoveTerminalWinLossTie(t *testing.T) {
	g := refgame.NewGame(2, 7)
	playUntilGameOver(t, g)

	s := NewSimulator(refgame.BogowinTable{})
	s.originalGame = g

	startID := g.CurrentPlayer().ID()
	passMove := NewSimmedMove(g.PassMove())
	tr := newTraceWriter(nil, LogFormatTrace)

	// Cloning an already-finished game means rolloutMove's very first
	// GameOver check fires immediately, so the message comes straight from
	// the terminal branch rather than the bogowin heuristic.
	msg := s.rolloutMove(passMove, 1, 0, 2, startID, tr)
	assert.False(t, msg.Bogowin, "a game cloned after it ended must report a terminal result")
	assert.Contains(t, []float64{0, 0.5, 1}, msg.Wins)
}
