package montecarlo

// StatisticType selects one of the accumulators a PositionStatistics holds.
type StatisticType int

const (
	StatisticScore StatisticType = iota
	StatisticBingos
)

// PositionStatistics accumulates the per-ply statistics for one player's
// turn within one level of a rollout: the score of the move played, and
// whether it was a bingo (all tiles played in one turn). Both accumulators
// share the same incorporation count after every recorded ply.
type PositionStatistics struct {
	Score  AveragedValue
	Bingos AveragedValue
}

// GetStatistic returns the accumulator for the given StatisticType.
func (p PositionStatistics) GetStatistic(t StatisticType) AveragedValue {
	switch t {
	case StatisticScore:
		return p.Score
	case StatisticBingos:
		return p.Bingos
	}
	return AveragedValue{}
}

// Level is one layer of the rollout lookahead: up to one ply per player,
// ordered by turn order starting from the rolling-out player.
type Level struct {
	Statistics []PositionStatistics
}

// SetNumberScores extends (never truncates) the level's player-slot list to
// length n with freshly zeroed PositionStatistics.
func (l *Level) SetNumberScores(n int) {
	for len(l.Statistics) < n {
		l.Statistics = append(l.Statistics, PositionStatistics{})
	}
}

// LevelList is an ordered sequence of Level, one per ply-layer of the
// rollout lookahead, plus the (possibly partial) final layer.
type LevelList []Level

// SetNumberLevels extends (never truncates) the list to length n with fresh
// empty Levels.
func (ll *LevelList) SetNumberLevels(n int) {
	for len(*ll) < n {
		*ll = append(*ll, Level{})
	}
}
