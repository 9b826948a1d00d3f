// Package refgame is a compact, deliberately non-exhaustive tile game used
// to exercise package montecarlo's simulator in tests and the demo command.
// It plays rack tiles for their summed point value with no board and no
// adjacency rules; see DESIGN.md for why a full crossword engine is out of
// scope here.
package refgame

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/cnolan/simrollout/playengine"
)

type playerState struct {
	id    int
	rack  []playengine.Tile
	score int
}

// Game is the reference implementation of playengine.GameClone.
type Game struct {
	players      []*playerState
	currentIdx   int
	fullPool     []playengine.Tile
	bag          []playengine.Tile
	values       map[playengine.Tile]int
	rackCapacity int
	candidate    Move
	over         bool
}

// NewGame deals rackCapacity tiles to each of numPlayers players from a
// fresh standard pool, in pool order (deterministic; callers that want a
// shuffled opening deal should call EnsureProperBag after reassigning racks
// with random tiles of their own choosing).
func NewGame(numPlayers, rackCapacity int) *Game {
	g := &Game{
		fullPool:     NewStandardPool(),
		values:       DefaultTileValues,
		rackCapacity: rackCapacity,
	}
	pool := append([]playengine.Tile{}, g.fullPool...)
	for i := 0; i < numPlayers; i++ {
		p := &playerState{id: i}
		n := rackCapacity
		if n > len(pool) {
			n = len(pool)
		}
		p.rack = append(p.rack, pool[:n]...)
		pool = pool[n:]
		g.players = append(g.players, p)
	}
	g.bag = pool
	return g
}

// Clone returns an independent scratch copy sharing only the immutable
// fullPool and value table.
func (g *Game) Clone() playengine.GameClone {
	cp := &Game{
		fullPool:     g.fullPool,
		values:       g.values,
		rackCapacity: g.rackCapacity,
		currentIdx:   g.currentIdx,
		over:         g.over,
		bag:          append([]playengine.Tile{}, g.bag...),
	}
	for _, p := range g.players {
		cp.players = append(cp.players, &playerState{
			id:    p.id,
			rack:  append([]playengine.Tile{}, p.rack...),
			score: p.score,
		})
	}
	return cp
}

type playerView struct {
	id   int
	rack playengine.SimpleRack
}

func (v playerView) ID() int             { return v.id }
func (v playerView) Rack() playengine.Rack { return v.rack }

func (g *Game) findPlayer(id int) *playerState {
	for _, p := range g.players {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (g *Game) CurrentPlayer() playengine.PlayerInfo {
	p := g.players[g.currentIdx]
	return playerView{id: p.id, rack: playengine.SimpleRack(p.rack)}
}

func (g *Game) Players() []playengine.PlayerInfo {
	out := make([]playengine.PlayerInfo, len(g.players))
	for i, p := range g.players {
		out[i] = playerView{id: p.id, rack: playengine.SimpleRack(p.rack)}
	}
	return out
}

func (g *Game) RackFor(playerID int) playengine.Rack {
	p := g.findPlayer(playerID)
	if p == nil {
		return playengine.SimpleRack(nil)
	}
	return playengine.SimpleRack(p.rack)
}

func (g *Game) RackCapacity() int { return g.rackCapacity }

type bagView struct {
	g *Game
}

func (b bagView) Size() int          { return len(b.g.bag) }
func (b bagView) Peek() []playengine.Tile { return append([]playengine.Tile{}, b.g.bag...) }

func (b bagView) SomeShuffledTiles() []playengine.Tile {
	out := append([]playengine.Tile{}, b.g.bag...)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (g *Game) Bag() playengine.BagView { return bagView{g: g} }

// UnseenBag returns the tiles hidden from the current player: the bag plus
// every other player's rack. This is the pool randomizeOppoRacks redeals
// opponent racks from.
func (g *Game) UnseenBag() []playengine.Tile {
	out := append([]playengine.Tile{}, g.bag...)
	cur := g.players[g.currentIdx].id
	for _, p := range g.players {
		if p.id == cur {
			continue
		}
		out = append(out, p.rack...)
	}
	return out
}

// Moves proposes candidate plays from the current rack: playing the top k
// highest-value tiles for k from 1 to the rack's size, plus a pass. This is
// not an exhaustive legal-move generator; it exists only to give the
// simulator a handful of distinguishable candidates to compare.
func (g *Game) Moves() []playengine.Move {
	p := g.players[g.currentIdx]
	sorted := append([]playengine.Tile{}, p.rack...)
	sort.Slice(sorted, func(i, j int) bool { return g.values[sorted[i]] > g.values[sorted[j]] })

	var moves []playengine.Move
	for k := 1; k <= len(sorted); k++ {
		moves = append(moves, g.buildMove(p, sorted[:k]))
	}
	moves = append(moves, g.passMoveFor(p))
	return moves
}

func (g *Game) buildMove(p *playerState, played []playengine.Tile) Move {
	score := 0
	for _, t := range played {
		score += g.values[t]
	}
	bingo := len(played) == g.rackCapacity && len(played) == len(p.rack)
	if bingo {
		score += BingoBonus
	}
	leave := leaveAfterPlaying(p.rack, played)
	leaveValue := 0
	for _, t := range leave {
		leaveValue += g.values[t]
	}
	return Move{
		tiles:  append([]playengine.Tile{}, played...),
		leave:  leave,
		score:  score,
		bingo:  bingo,
		equity: float64(score) + 0.1*float64(leaveValue),
		win:    0.5,
	}
}

func (g *Game) passMoveFor(p *playerState) Move {
	return Move{
		leave:  append([]playengine.Tile{}, p.rack...),
		pass:   true,
		equity: 0,
		win:    0.5,
	}
}

func leaveAfterPlaying(rack, played []playengine.Tile) []playengine.Tile {
	remaining := make(map[playengine.Tile]int, len(played))
	for _, t := range played {
		remaining[t]++
	}
	var leave []playengine.Tile
	for _, t := range rack {
		if remaining[t] > 0 {
			remaining[t]--
			continue
		}
		leave = append(leave, t)
	}
	return leave
}

// StaticBestMove always plays the entire current rack: since every tile is
// worth zero or more points and a full-rack play also earns the bingo
// bonus, playing everything dominates every shorter play under this
// package's scoring rule.
func (g *Game) StaticBestMove() playengine.Move {
	p := g.players[g.currentIdx]
	return g.buildMove(p, p.rack)
}

func (g *Game) PassMove() playengine.Move {
	p := g.players[g.currentIdx]
	return g.passMoveFor(p)
}

// DoesMoveEndGame reports whether mv would leave the current player with an
// empty rack while the bag is also empty, the only way this game ends.
func (g *Game) DoesMoveEndGame(mv playengine.Move) bool {
	return len(mv.Leave()) == 0 && len(g.bag) == 0
}

// Deadwood is the sum of every other player's current rack value: the bonus
// credited to the current player for ending the game per DoesMoveEndGame.
func (g *Game) Deadwood() int {
	cur := g.players[g.currentIdx].id
	total := 0
	for _, p := range g.players {
		if p.id == cur {
			continue
		}
		for _, t := range p.rack {
			total += g.values[t]
		}
	}
	return total
}

// Spread is the given player's score minus the best-scoring opponent's
// score, generalizing the two-player zero-sum spread to n players.
func (g *Game) Spread(playerID int) int {
	own := 0
	best := 0
	haveOther := false
	for _, p := range g.players {
		if p.id == playerID {
			own = p.score
		}
	}
	for _, p := range g.players {
		if p.id == playerID {
			continue
		}
		if !haveOther || p.score > best {
			best = p.score
			haveOther = true
		}
	}
	if !haveOther {
		return own
	}
	return own - best
}

func (g *Game) GameOver() bool { return g.over }

// CalculatePlayerConsideration is a small leave-valuation residual: the
// value of the tiles being kept, scaled up as the bag runs low (a scarce
// bag makes a good leave more valuable because there's less game left to
// recover from a bad one).
func (g *Game) CalculatePlayerConsideration(mv playengine.Move) float64 {
	scarcity := 1.0 + 1.0/float64(len(g.bag)+1)
	total := 0.0
	for _, t := range mv.Leave() {
		total += float64(g.values[t])
	}
	return 0.1 * total * scarcity
}

// CalculateSharedConsideration adds a small symmetric adjustment on the very
// last ply of a rollout, reflecting that a near-empty bag is worth less to
// either side regardless of whose leave it is.
func (g *Game) CalculateSharedConsideration(mv playengine.Move) float64 {
	return float64(len(g.bag)) * 0.05
}

func (g *Game) SetCandidate(mv playengine.Move) {
	m, ok := mv.(Move)
	if !ok {
		panic(fmt.Sprintf("refgame: SetCandidate given a foreign move type %T", mv))
	}
	g.candidate = m
}

// CommitCandidate plays the move set by SetCandidate: adds its score,
// installs its leave as the new rack, and (unless maintainBoard is false)
// refills the rack from the bag before advancing to the next player.
func (g *Game) CommitCandidate(maintainBoard bool) {
	p := g.players[g.currentIdx]
	mv := g.candidate
	endsGame := g.DoesMoveEndGame(mv)

	p.score += mv.Score()
	p.rack = mv.Leave()

	if maintainBoard && !endsGame {
		for len(p.rack) < g.rackCapacity && len(g.bag) > 0 {
			p.rack = append(p.rack, g.bag[0])
			g.bag = g.bag[1:]
		}
	}
	if endsGame {
		g.over = true
	}

	g.currentIdx = (g.currentIdx + 1) % len(g.players)
}

func (g *Game) SetPlayerRack(playerID int, rack playengine.Rack, adjustBag bool) error {
	p := g.findPlayer(playerID)
	if p == nil {
		return fmt.Errorf("refgame: no player with id %d", playerID)
	}
	p.rack = append([]playengine.Tile{}, rack.Tiles()...)
	return nil
}

func (g *Game) SetDrawingOrder(tiles []playengine.Tile) {
	g.bag = append([]playengine.Tile{}, tiles...)
}

// EnsureProperBag recomputes the bag from scratch as fullPool minus every
// player's current rack, in fullPool order. Called before and after
// reassigning racks during randomization so the bag never drifts out of
// sync with what's actually been dealt.
func (g *Game) EnsureProperBag() {
	remaining := make(map[playengine.Tile]int, len(g.fullPool))
	for _, t := range g.fullPool {
		remaining[t]++
	}
	for _, p := range g.players {
		for _, t := range p.rack {
			remaining[t]--
		}
	}
	var bag []playengine.Tile
	for _, t := range g.fullPool {
		if remaining[t] > 0 {
			bag = append(bag, t)
			remaining[t]--
		}
	}
	g.bag = bag
}
