package montecarlo

import "testing"

func TestLevelSetNumberScoresExtendsNeverTruncates(t *testing.T) {
	var l Level
	l.SetNumberScores(3)
	if len(l.Statistics) != 3 {
		t.Fatalf("got %d statistics slots, want 3", len(l.Statistics))
	}
	l.Statistics[0].Score.Incorporate(10)

	l.SetNumberScores(2)
	if len(l.Statistics) != 3 {
		t.Fatalf("SetNumberScores truncated: got %d, want 3", len(l.Statistics))
	}
	if l.Statistics[0].Score.Average() != 10 {
		t.Fatalf("SetNumberScores clobbered existing data")
	}

	l.SetNumberScores(5)
	if len(l.Statistics) != 5 {
		t.Fatalf("got %d statistics slots, want 5", len(l.Statistics))
	}
}

func TestLevelListSetNumberLevelsExtendsNeverTruncates(t *testing.T) {
	var ll LevelList
	ll.SetNumberLevels(2)
	if len(ll) != 2 {
		t.Fatalf("got %d levels, want 2", len(ll))
	}
	ll[0].SetNumberScores(2)
	ll[0].Statistics[1].Bingos.Incorporate(1)

	ll.SetNumberLevels(1)
	if len(ll) != 2 {
		t.Fatalf("SetNumberLevels truncated: got %d, want 2", len(ll))
	}
	if ll[0].Statistics[1].Bingos.Average() != 1 {
		t.Fatalf("SetNumberLevels clobbered existing data")
	}
}

func TestGetStatistic(t *testing.T) {
	var ps PositionStatistics
	ps.Score.Incorporate(42)
	ps.Bingos.Incorporate(1)

	scoreStat := ps.GetStatistic(StatisticScore)
	if scoreStat.Average() != 42 {
		t.Fatalf("GetStatistic(StatisticScore) returned the wrong accumulator")
	}
	bingosStat := ps.GetStatistic(StatisticBingos)
	if bingosStat.Average() != 1 {
		t.Fatalf("GetStatistic(StatisticBingos) returned the wrong accumulator")
	}
}
