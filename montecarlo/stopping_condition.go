package montecarlo

import "github.com/cnolan/simrollout/stats"

// StoppingCondition selects the confidence level used to decide a
// simulation has converged enough to stop early, checked periodically
// between iterations.
type StoppingCondition int

const (
	StopNone StoppingCondition = iota
	Stop95
	Stop98
	Stop99
)

func (sc StoppingCondition) z() float64 {
	switch sc {
	case Stop95:
		return stats.Z95
	case Stop98:
		return stats.Z98
	case Stop99:
		return stats.Z99
	}
	return 0
}

// shouldStop reports whether every move behind the win-rate leader is
// separated from it by more than z standard errors, in which case more
// iterations cannot plausibly change which move wins. moves must already be
// sorted by descending win rate.
func (sc StoppingCondition) shouldStop(moves []*SimmedMove) bool {
	if sc == StopNone || len(moves) < 2 {
		return false
	}
	z := sc.z()
	lead := moves[0].Wins()
	if !lead.HasValues() {
		return false
	}
	lowerBound := lead.Average() - z*lead.StandardError()
	for _, m := range moves[1:] {
		w := m.Wins()
		if !w.HasValues() {
			return false
		}
		upperBound := w.Average() + z*w.StandardError()
		if upperBound >= lowerBound {
			return false
		}
	}
	return true
}
