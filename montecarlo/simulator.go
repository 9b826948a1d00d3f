// Package montecarlo implements a Monte Carlo playout simulator for
// turn-based tile games: given a set of candidate moves and a rules engine
// satisfying package playengine's contracts, it estimates each candidate's
// equity and win probability by repeatedly randomizing hidden state and
// rolling the game forward a bounded number of plies.
package montecarlo

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cnolan/simrollout/playengine"
	"github.com/cnolan/simrollout/stats"
)

// Simulator owns one original game, the set of moves being considered for
// it, and every statistic accumulated for those moves across calls to
// Simulate. It is safe for concurrent use by multiple callers, though only
// one Simulate call should be in flight at a time (see spec's concurrency
// section: the original game's current position is a shared resource that
// only the simulate loop itself may mutate).
type Simulator struct {
	mu sync.RWMutex

	originalGame playengine.GameClone
	strategy     playengine.StrategyTable
	dispatch     playengine.AbortDispatch

	simmedMoves     []*SimmedMove
	consideredMoves []playengine.Move

	partialOppoRack []playengine.Tile
	ignoreOppos     bool

	iterations atomic.Uint64

	threads int

	trace   *traceWriter
	logFile *os.File

	stoppingCondition StoppingCondition
	stopCheckInterval uint64
}

// NewSimulator returns a Simulator with no position set yet. strategy
// supplies the heuristic win-probability estimator consulted whenever a
// rollout does not reach a terminal position.
func NewSimulator(strategy playengine.StrategyTable) *Simulator {
	return &Simulator{
		strategy:          strategy,
		threads:           1,
		trace:             newTraceWriter(nil, LogFormatTrace),
		stopCheckInterval: 100,
	}
}

// SetDispatch installs the cooperative cancellation source polled once
// between iterations of Simulate.
func (s *Simulator) SetDispatch(d playengine.AbortDispatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch = d
}

// SetIgnoreOppos configures whether opponents pass on every turn during a
// rollout instead of playing their static best move. Useful for isolating
// the value of a candidate move from opponents' replies.
func (s *Simulator) SetIgnoreOppos(b bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ignoreOppos = b
}

// SetPartialOppoRack fixes a known partial rack that every opponent's
// randomized rack is built around. This does not implement opponent-rack
// inference: the remainder of each rack is still drawn uniformly from the
// unseen tiles.
func (s *Simulator) SetPartialOppoRack(tiles []playengine.Tile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partialOppoRack = append([]playengine.Tile{}, tiles...)
}

// SetThreads bounds how many candidate moves are rolled out concurrently
// within a single iteration. Values less than 1 are treated as 1. Per-ply
// trace logging is only meaningful with threads == 1; at higher thread
// counts the rollout driver is given a disabled log sink to avoid racing on
// the shared indentation state, and only the iteration and playahead
// frames are still written.
func (s *Simulator) SetThreads(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	s.threads = n
}

// SetStoppingCondition configures an early-exit check, consulted every
// stopCheckInterval iterations of Simulate, that stops once the leading
// move's win rate is separated from every other included move's by more
// than the confidence interval's worth of standard errors.
func (s *Simulator) SetStoppingCondition(sc StoppingCondition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stoppingCondition = sc
}

// SetAutostopCheckInterval changes how often (in iterations) the stopping
// condition, if any, is evaluated. Values less than 1 are treated as 1.
func (s *Simulator) SetAutostopCheckInterval(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	s.stopCheckInterval = n
}

// SetPosition installs a new game to simulate from, seeding the simmed move
// list from the position's own move generator and resetting every
// accumulator. If a prior simulation had already accumulated results, its
// log frame is closed first.
func (s *Simulator) SetPosition(p playengine.GameClone) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.iterations.Load() > 0 {
		s.trace.closeHeader()
	}

	s.originalGame = p
	s.consideredMoves = nil
	s.simmedMoves = nil
	for _, m := range p.Moves() {
		s.simmedMoves = append(s.simmedMoves, NewSimmedMove(m))
	}
	s.resetNumbersLocked()
}

// ResetNumbers zeroes every SimmedMove's accumulators and the iteration
// count, keeping the current move list and considered-move set.
func (s *Simulator) ResetNumbers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetNumbersLocked()
}

// Clear is an alias for ResetNumbers.
func (s *Simulator) Clear() {
	s.ResetNumbers()
}

func (s *Simulator) resetNumbersLocked() {
	for _, sm := range s.simmedMoves {
		sm.Clear()
	}
	s.iterations.Store(0)
}

// SetIncludedMoves replaces the set of moves participating in the next
// Simulate call. Moves already tracked by an existing SimmedMove keep their
// accumulated statistics; moves seen for the first time get a fresh
// SimmedMove. Any move not in this list is excluded, but its SimmedMove (and
// whatever it has already accumulated) is kept, not deleted.
func (s *Simulator) SetIncludedMoves(moves []playengine.Move) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sm := range s.simmedMoves {
		sm.SetIncludeInSimulation(false)
	}
	for _, mv := range moves {
		found := false
		for _, sm := range s.simmedMoves {
			if sm.Move().Equals(mv) {
				sm.SetIncludeInSimulation(true)
				found = true
				break
			}
		}
		if !found {
			s.simmedMoves = append(s.simmedMoves, NewSimmedMove(mv))
		}
	}
}

// AddConsideredMove marks m as one this Simulator must keep in the included
// set: MakeSureConsideredMovesAreIncluded re-includes it whenever PruneTo
// has dropped it.
func (s *Simulator) AddConsideredMove(m playengine.Move) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consideredMoves = append(s.consideredMoves, m)
}

// IsConsideredMove reports whether m was previously passed to
// AddConsideredMove.
func (s *Simulator) IsConsideredMove(m playengine.Move) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.consideredMoves {
		if c.Equals(m) {
			return true
		}
	}
	return false
}

// MakeSureConsideredMovesAreIncluded recomputes the included-move set as the
// current win-sorted superset plus any considered move missing from it, and
// installs it via SetIncludedMoves.
func (s *Simulator) MakeSureConsideredMovesAreIncluded() {
	superset := s.Moves(true, true)

	s.mu.RLock()
	considered := append([]playengine.Move{}, s.consideredMoves...)
	s.mu.RUnlock()

	for _, c := range considered {
		found := false
		for _, m := range superset {
			if m.Equals(c) {
				found = true
				break
			}
		}
		if !found {
			superset = append(superset, c)
		}
	}
	s.SetIncludedMoves(superset)
}

// ReorderConsideredMovesFirst returns a copy of moves with every considered
// move moved to the front, in the order AddConsideredMove saw them, followed
// by the rest of moves in their original relative order.
func (s *Simulator) ReorderConsideredMovesFirst(moves []playengine.Move) []playengine.Move {
	s.mu.RLock()
	considered := append([]playengine.Move{}, s.consideredMoves...)
	s.mu.RUnlock()

	if len(considered) == 0 {
		return append([]playengine.Move{}, moves...)
	}

	out := make([]playengine.Move, 0, len(moves))
	for _, c := range considered {
		for _, m := range moves {
			if m.Equals(c) {
				out = append(out, m)
			}
		}
	}
outer:
	for _, m := range moves {
		for _, c := range considered {
			if m.Equals(c) {
				continue outer
			}
		}
		out = append(out, m)
	}
	return out
}

// PruneTo shrinks the included-move set to at most maxN moves, keeping only
// those within equityThreshold of the best remaining equity. It does not
// itself protect considered moves, which can be pruned like any other: call
// MakeSureConsideredMovesAreIncluded afterward to restore any that were
// pruned.
func (s *Simulator) PruneTo(equityThreshold float64, maxN int) {
	ranked := s.Moves(true, false)
	if len(ranked) == 0 {
		return
	}
	best := ranked[0].Equity()
	floor := best - equityThreshold

	var keep []playengine.Move
	for i, m := range ranked {
		if i >= maxN {
			break
		}
		if m.Equity() < floor {
			break
		}
		keep = append(keep, m)
	}
	s.SetIncludedMoves(keep)
}

// Moves returns a snapshot of the move list. When prune is true, only
// included moves are returned. If any simulation results exist, each
// returned move carries its SimmedMove's reconstructed equity and averaged
// win rate instead of its static values. The result is sorted by win rate
// descending if byWin is true (and results exist), otherwise by equity
// descending.
func (s *Simulator) Moves(prune, byWin bool) []playengine.Move {
	s.mu.RLock()
	hasResults := s.iterations.Load() > 0
	out := make([]playengine.Move, 0, len(s.simmedMoves))
	for _, sm := range s.simmedMoves {
		if prune && !sm.IncludeInSimulation() {
			continue
		}
		mv := sm.Move()
		if hasResults {
			wins := sm.Wins()
			mv = mv.WithEquityAndWin(sm.CalculateEquity(), wins.Average())
		}
		out = append(out, mv)
	}
	s.mu.RUnlock()

	if byWin && hasResults {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Win() > out[j].Win() })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Equity() > out[j].Equity() })
	}
	return out
}

// HasSimulationResults reports whether at least one iteration has completed
// since the last SetPosition or ResetNumbers.
func (s *Simulator) HasSimulationResults() bool {
	return s.iterations.Load() > 0
}

// Iterations returns the number of completed iterations.
func (s *Simulator) Iterations() int {
	return int(s.iterations.Load())
}

// NumLevels returns the number of levels recorded on the first tracked
// move, or 0 if no move has ever been simulated.
func (s *Simulator) NumLevels() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.simmedMoves) == 0 {
		return 0
	}
	return s.simmedMoves[0].NumLevels()
}

// NumPlayersAtLevel returns the number of player slots recorded at level i
// (0-indexed) on the first tracked move.
func (s *Simulator) NumPlayersAtLevel(i int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.simmedMoves) == 0 {
		return 0
	}
	return s.simmedMoves[0].NumPlayersAtLevel(i)
}

// SimmedMoveForMove finds the SimmedMove tracking m. If none matches, it
// returns the last tracked SimmedMove (or nil if none exist at all),
// matching the fallback behavior of the system this was derived from.
func (s *Simulator) SimmedMoveForMove(m playengine.Move) *SimmedMove {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sm := range s.simmedMoves {
		if sm.Move().Equals(m) {
			return sm
		}
	}
	if len(s.simmedMoves) == 0 {
		return nil
	}
	return s.simmedMoves[len(s.simmedMoves)-1]
}

// SetLogStream redirects the trace log to w in the given format, closing any
// previously opened logfile. A nil w disables logging.
func (s *Simulator) SetLogStream(w io.Writer, format LogFormat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLogfileLocked()
	s.trace = newTraceWriter(w, format)
}

// SetLogfile opens path as the trace log destination in LogFormatTrace,
// closing any previously opened logfile or stream first. An empty path just
// disables logging. If path can't be opened, logging is disabled and the
// error is returned for the caller's own diagnostics; Simulate itself still
// runs, just without a trace.
func (s *Simulator) SetLogfile(path string, appendToFile bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLogfileLocked()

	if path == "" {
		return nil
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendToFile {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("opening simulation logfile %s: %w", path, err)
	}
	s.logFile = f
	s.trace = newTraceWriter(f, LogFormatTrace)
	return nil
}

// CloseLogfile closes any open logfile and disables logging.
func (s *Simulator) CloseLogfile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLogfileLocked()
}

func (s *Simulator) closeLogfileLocked() {
	if s.trace != nil {
		s.trace.closeHeader()
	}
	if s.logFile != nil {
		s.logFile.Close()
		s.logFile = nil
	}
	s.trace = newTraceWriter(nil, LogFormatTrace)
}

// SimulateOnce runs a single iteration: it randomizes hidden state once,
// then rolls out every included move the same bounded number of plies and
// folds each result back into its SimmedMove.
func (s *Simulator) SimulateOnce(ctx context.Context, plies int) error {
	logger := zerolog.Ctx(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.originalGame == nil {
		return fmt.Errorf("montecarlo: no position set")
	}

	if err := s.randomizeOppoRacks(); err != nil {
		return fmt.Errorf("randomizing opponent racks: %w", err)
	}
	s.randomizeDrawingOrder()

	startPlayerID := s.originalGame.CurrentPlayer().ID()
	numPlayers := len(s.originalGame.Players())
	if numPlayers == 0 {
		return fmt.Errorf("montecarlo: position reports zero players")
	}

	effectivePlies := plies + 1
	decimal := effectivePlies % numPlayers
	levels := (effectivePlies - decimal) / numPlayers

	index := s.iterations.Add(1)
	s.trace.openIteration(index)

	included := make([]*SimmedMove, 0, len(s.simmedMoves))
	for _, sm := range s.simmedMoves {
		if sm.IncludeInSimulation() {
			included = append(included, sm)
		}
	}

	messages := make([]SimmedMoveMessage, len(included))
	if s.threads <= 1 || len(included) <= 1 {
		for i, sm := range included {
			s.trace.openPlayahead(sm.Move())
			messages[i] = s.rolloutMove(sm, levels, decimal, numPlayers, startPlayerID, s.trace)
			s.trace.closePlayahead(messages[i].Bogowin, messages[i].Wins)
		}
	} else {
		disabled := newTraceWriter(nil, s.trace.format)
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(s.threads)
		for i, sm := range included {
			i, sm := i, sm
			g.Go(func() error {
				messages[i] = s.rolloutMove(sm, levels, decimal, numPlayers, startPlayerID, disabled)
				return nil
			})
		}
		g.Wait() //nolint:errcheck // rolloutMove never returns an error
		for i, sm := range included {
			s.trace.openPlayahead(sm.Move())
			s.trace.closePlayahead(messages[i].Bogowin, messages[i].Wins)
		}
	}

	for i, sm := range included {
		sm.incorporate(messages[i])
	}

	s.trace.closeIteration()
	logger.Debug().Int("iteration", int(index)).Int("moves", len(included)).Msg("completed simulation iteration")
	return nil
}

// Simulate runs up to iterations calls to SimulateOnce at the given ply
// depth, checking the abort dispatch (if any) once between iterations and
// stopping early if a stopping condition has converged. It returns the first
// error SimulateOnce reports, if any.
func (s *Simulator) Simulate(ctx context.Context, plies, iterations int) error {
	logger := zerolog.Ctx(ctx)

	for i := 0; i < iterations; i++ {
		s.mu.RLock()
		dispatch := s.dispatch
		s.mu.RUnlock()
		if dispatch != nil && dispatch.ShouldAbort() {
			logger.Debug().Msg("abort requested; stopping simulation early")
			break
		}

		if err := s.SimulateOnce(ctx, plies); err != nil {
			return err
		}

		s.mu.RLock()
		sc := s.stoppingCondition
		interval := s.stopCheckInterval
		s.mu.RUnlock()
		if sc != StopNone && s.Iterations()%int(interval) == 0 {
			var included []*SimmedMove
			for _, sm := range s.sortedSimmedMoves(true) {
				if sm.IncludeInSimulation() {
					included = append(included, sm)
				}
			}
			if sc.shouldStop(included) {
				logger.Debug().Int("iteration", s.Iterations()).Msg("stopping condition reached")
				break
			}
		}
	}
	return nil
}

func (s *Simulator) sortedSimmedMoves(byWin bool) []*SimmedMove {
	s.mu.RLock()
	out := append([]*SimmedMove{}, s.simmedMoves...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if byWin {
			wi, wj := out[i].CalculateWinPercentage(), out[j].CalculateWinPercentage()
			if wi != wj {
				return wi > wj
			}
		}
		return out[i].CalculateEquity() > out[j].CalculateEquity()
	})
	return out
}

// EquityStats renders a one-line-per-move table of score, win percentage
// (with a 99% confidence margin) and equity, sorted by win rate.
func (s *Simulator) EquityStats() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-30s%-8s%-20s%-10s\n", "Move", "Score", "Win%", "Equity")
	for _, sm := range s.sortedSimmedMoves(true) {
		wins := sm.Wins()
		margin := 100 * stats.Z99 * wins.StandardError()
		fmt.Fprintf(&b, "%-30s%-8d%-20s%-10.3f\n",
			sm.Move().String(), sm.Move().Score(),
			fmt.Sprintf("%.2f±%.2f", sm.CalculateWinPercentage(), margin),
			sm.CalculateEquity())
	}
	fmt.Fprintf(&b, "iterations: %d (99%% confidence)\n", s.Iterations())
	return b.String()
}

// ScoreDetails renders the full per-level, per-player-slot score and bingo
// statistics for every tracked move, in the teacher's tabular style.
func (s *Simulator) ScoreDetails() string {
	var b strings.Builder
	s.mu.RLock()
	moves := append([]*SimmedMove{}, s.simmedMoves...)
	s.mu.RUnlock()

	for _, sm := range moves {
		fmt.Fprintf(&b, "%s\n", sm.Move().String())
		levels := sm.Levels()
		for li, level := range levels {
			for pi, ps := range level.Statistics {
				fmt.Fprintf(&b, "  level %d slot %d: score=%s bingo%%=%.1f\n",
					li, pi, ps.Score.String(), ps.Bingos.Average()*100)
			}
		}
	}
	return b.String()
}

// ShortDetails renders EquityStats truncated to the top n moves by win rate.
func (s *Simulator) ShortDetails(n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-30s%-8s%-20s%-10s\n", "Move", "Score", "Win%", "Equity")
	sorted := s.sortedSimmedMoves(true)
	if n > len(sorted) {
		n = len(sorted)
	}
	for _, sm := range sorted[:n] {
		wins := sm.Wins()
		margin := 100 * stats.Z99 * wins.StandardError()
		fmt.Fprintf(&b, "%-30s%-8d%-20s%-10.3f\n",
			sm.Move().String(), sm.Move().Score(),
			fmt.Sprintf("%.2f±%.2f", sm.CalculateWinPercentage(), margin),
			sm.CalculateEquity())
	}
	return b.String()
}
