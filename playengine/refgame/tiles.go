package refgame

import "github.com/cnolan/simrollout/playengine"

// Tile identities 0-25 are the letters A-Z; BlankTile stands in for a wild
// tile worth zero points.
const BlankTile playengine.Tile = 26

// DefaultTileValues is a small fixed per-tile point table, deliberately
// modeled after standard English Scrabble tile values rather than derived
// from any real distribution data.
var DefaultTileValues = map[playengine.Tile]int{
	0: 1, 1: 3, 2: 3, 3: 2, 4: 1, 5: 4, 6: 2, 7: 4, 8: 1, 9: 8,
	10: 5, 11: 1, 12: 3, 13: 1, 14: 1, 15: 3, 16: 10, 17: 1, 18: 1, 19: 1,
	20: 1, 21: 4, 22: 4, 23: 8, 24: 4, 25: 10,
	26: 0,
}

// defaultTileCounts is the classic 100-tile English Scrabble distribution,
// used by NewStandardPool to build a deterministic full tile pool.
var defaultTileCounts = map[playengine.Tile]int{
	0: 9, 1: 2, 2: 2, 3: 4, 4: 12, 5: 2, 6: 3, 7: 2, 8: 9, 9: 1,
	10: 1, 11: 4, 12: 2, 13: 6, 14: 8, 15: 2, 16: 1, 17: 6, 18: 4, 19: 6,
	20: 4, 21: 2, 22: 2, 23: 1, 24: 2, 25: 1,
	26: 2,
}

// NewStandardPool returns the full 100-tile pool in a fixed, deterministic
// order (tile identity ascending, repeated by count). Callers that want
// unpredictable deals should shuffle it themselves.
func NewStandardPool() []playengine.Tile {
	var pool []playengine.Tile
	for t := playengine.Tile(0); t <= BlankTile; t++ {
		for i := 0; i < defaultTileCounts[t]; i++ {
			pool = append(pool, t)
		}
	}
	return pool
}
