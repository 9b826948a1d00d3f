package montecarlo

import (
	"math"

	"github.com/cnolan/simrollout/playengine"
)

// rolloutMove runs one iteration's lookahead for a single candidate move:
// it advances a scratch clone of the original game a bounded number of
// plies, choosing a move per ply, recording per-ply statistics, and
// computing the residual leave correction and the terminal or heuristic win
// estimate. See spec.md §4.5 for the full derivation of levels/decimal.
// tr carries the log sink to write ply-level trace into. The caller passes a
// disabled writer when rolling out candidate moves concurrently, since
// traceWriter's indentation state is not safe for concurrent use.
func (s *Simulator) rolloutMove(sm *SimmedMove, levels, decimal, numPlayers, startPlayerID int, tr *traceWriter) SimmedMoveMessage {
	game := s.originalGame.Clone()

	message := SimmedMoveMessage{ID: sm.id}
	// Seed this iteration's level grid from what's already been
	// accumulated, so incorporating this single sample and writing the
	// whole grid back (Simulator.incorporateMessage) behaves as an
	// in-place running accumulation, matching every other AveragedValue.
	message.Levels = sm.Levels()
	message.Levels.SetNumberLevels(levels + 1)

	residual := 0.0
	totalLevels := levels + 1

	for levelNumber := 1; levelNumber <= totalLevels; levelNumber++ {
		if game.GameOver() {
			break
		}

		slotsThisLevel := numPlayers
		if levelNumber == levels+1 {
			slotsThisLevel = decimal
		}
		if slotsThisLevel == 0 {
			continue
		}

		level := &message.Levels[levelNumber-1]
		level.SetNumberScores(slotsThisLevel)

		for playerSlot := 1; playerSlot <= slotsThisLevel; playerSlot++ {
			if game.GameOver() {
				break
			}

			playerID := game.CurrentPlayer().ID()

			var mv playengine.Move
			switch {
			case levelNumber == 1 && playerID == startPlayerID:
				mv = sm.Move()
			case s.ignoreOppos && playerID != startPlayerID:
				mv = game.PassMove()
			default:
				mv = game.StaticBestMove()
			}

			tr.openPly((levelNumber-1)*numPlayers+playerSlot-1, game.CurrentPlayer().Rack(), mv)

			// Record the statistic locally rather than mutating mv's score,
			// since mv may be the candidate move itself, which must never
			// be mutated (committing will re-add deadwood on its own).
			effectiveScore := mv.Score()
			if game.DoesMoveEndGame(mv) {
				effectiveScore += game.Deadwood()
			}

			slot := &level.Statistics[playerSlot-1]
			slot.Score.Incorporate(float64(effectiveScore))
			bingo := 0.0
			if mv.IsBingo() {
				bingo = 1
			}
			slot.Bingos.Incorporate(bingo)

			isFinalTurnForPlayer := false
			switch levelNumber {
			case levels:
				isFinalTurnForPlayer = playerSlot > decimal
			case levels + 1:
				isFinalTurnForPlayer = playerSlot <= decimal
			}
			isVeryFinalPly := (decimal == 0 && levelNumber == levels && playerSlot == numPlayers) ||
				(levelNumber == levels+1 && playerSlot == decimal)

			if isFinalTurnForPlayer && !(s.ignoreOppos && playerID != startPlayerID) {
				addend := game.CalculatePlayerConsideration(mv)
				tr.playerConsideration(addend)
				if isVeryFinalPly {
					shared := game.CalculateSharedConsideration(mv)
					addend += shared
					tr.sharedConsideration(shared)
				}
				if playerID == startPlayerID {
					residual += addend
				} else {
					residual -= addend
				}
			}

			game.SetCandidate(mv)
			game.CommitCandidate(!isVeryFinalPly)
			tr.closePly()
		}
	}

	message.Residual = residual
	spread := game.Spread(startPlayerID)
	message.GameSpread = spread

	if game.GameOver() {
		message.Bogowin = false
		switch {
		case spread > 0:
			message.Wins = 1
		case spread == 0:
			message.Wins = 0.5
		default:
			message.Wins = 0
		}
		return message
	}

	message.Bogowin = true
	resourceUnits := game.Bag().Size() + game.RackCapacity()
	if game.CurrentPlayer().ID() == startPlayerID {
		message.Wins = s.strategy.Bogowin(int(math.Floor(float64(spread)+residual)), resourceUnits, 0)
	} else {
		message.Wins = 1 - s.strategy.Bogowin(int(math.Floor(float64(-spread)-residual)), resourceUnits, 0)
	}
	return message
}
