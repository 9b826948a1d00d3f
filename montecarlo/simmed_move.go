package montecarlo

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cnolan/simrollout/playengine"
)

// simmedMoveIDCounter is the process-wide monotonic allocator for SimmedMove
// ids. It initializes lazily at zero and is never reset: ids stay unique for
// the lifetime of the process even across many Simulator instances, so a
// stray SimmedMoveMessage can never be folded into the wrong accumulator.
var simmedMoveIDCounter atomic.Uint64

func nextSimmedMoveID() uint64 {
	return simmedMoveIDCounter.Add(1)
}

// SimmedMove pairs one candidate move with the statistics accumulated for
// it across iterations. Its id is assigned once at construction and never
// changes, so results fold back correctly even if the move list is
// reordered or pruned between simulate calls.
type SimmedMove struct {
	mu sync.RWMutex

	id                  uint64
	move                playengine.Move
	includeInSimulation bool

	levels     LevelList
	residual   AveragedValue
	gameSpread AveragedValue
	wins       AveragedValue
}

// NewSimmedMove wraps move with a fresh, unique id and marks it included.
func NewSimmedMove(move playengine.Move) *SimmedMove {
	return &SimmedMove{
		id:                  nextSimmedMoveID(),
		move:                move,
		includeInSimulation: true,
	}
}

func (sm *SimmedMove) ID() uint64 {
	return sm.id
}

func (sm *SimmedMove) Move() playengine.Move {
	return sm.move
}

func (sm *SimmedMove) IncludeInSimulation() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.includeInSimulation
}

func (sm *SimmedMove) SetIncludeInSimulation(b bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.includeInSimulation = b
}

// CalculateEquity reconstructs the move's equity from the accumulated
// per-level statistics. If no level has been recorded yet it falls back to
// the move's own pre-computed static equity.
//
// Within each level, the first player slot is the rolling-out side and its
// score is added; every other slot in that level is an opponent and its
// score is subtracted. This is positional, not identity-based: it is only
// correct when the grid is rectangular (see spec's open question on a
// partial final level whose first slot isn't the start player).
func (sm *SimmedMove) CalculateEquity() float64 {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if len(sm.levels) == 0 {
		return sm.move.Equity()
	}

	equity := 0.0
	for _, level := range sm.levels {
		for i, ps := range level.Statistics {
			if i == 0 {
				equity += ps.Score.Average()
			} else {
				equity -= ps.Score.Average()
			}
		}
	}
	equity += sm.residual.Average()
	return equity
}

// CalculateWinPercentage returns the averaged win rate as a percentage once
// any iteration has completed; otherwise it falls back to the move's own
// static win estimate.
func (sm *SimmedMove) CalculateWinPercentage() float64 {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if sm.wins.HasValues() {
		return sm.wins.Average() * 100
	}
	return sm.move.Win()
}

// Clear zeros every accumulator on this SimmedMove, including the level
// grid, but keeps its id, move, and include flag.
func (sm *SimmedMove) Clear() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.levels = nil
	sm.residual.Clear()
	sm.gameSpread.Clear()
	sm.wins.Clear()
}

// NumLevels returns the number of levels recorded for this move so far.
func (sm *SimmedMove) NumLevels() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.levels)
}

// NumPlayersAtLevel returns the number of player slots recorded at level i
// (0-indexed), or 0 if i is out of range.
func (sm *SimmedMove) NumPlayersAtLevel(i int) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if i < 0 || i >= len(sm.levels) {
		return 0
	}
	return len(sm.levels[i].Statistics)
}

// Levels returns a copy of the level grid snapshot.
func (sm *SimmedMove) Levels() LevelList {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make(LevelList, len(sm.levels))
	copy(out, sm.levels)
	return out
}

func (sm *SimmedMove) Residual() AveragedValue {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.residual
}

func (sm *SimmedMove) GameSpread() AveragedValue {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.gameSpread
}

func (sm *SimmedMove) Wins() AveragedValue {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.wins
}

// incorporate folds one iteration's message into this accumulator. levels is
// last-writer-wins, matching the spec's concurrency contract: only the most
// recently folded iteration's level snapshot is observable between simulate
// calls, while residual/gameSpread/wins are commutative sums.
func (sm *SimmedMove) incorporate(msg SimmedMoveMessage) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.levels = msg.Levels
	sm.residual.Incorporate(msg.Residual)
	sm.gameSpread.Incorporate(float64(msg.GameSpread))
	sm.wins.Incorporate(msg.Wins)
}

func (sm *SimmedMove) String() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return fmt.Sprintf("<SimmedMove %v id=%d included=%v residual=%v spread=%v wins=%v>",
		sm.move, sm.id, sm.includeInSimulation, sm.residual, sm.gameSpread, sm.wins)
}

// SimmedMoveMessage is the output of a single rollout iteration for a
// single candidate move. It carries the candidate's id rather than a
// pointer so that results still fold back correctly even if the
// Simulator's move list has been reordered or pruned mid-flight.
type SimmedMoveMessage struct {
	ID         uint64
	Levels     LevelList
	Residual   float64
	GameSpread int
	Wins       float64
	// Bogowin is false iff the rollout reached game-over; when true, Wins
	// came from the strategy table's heuristic estimator rather than a
	// terminal spread.
	Bogowin bool
}
