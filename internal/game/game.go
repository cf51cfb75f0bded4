// Package game implements the cave crawl itself: one wumpus, a handful of
// pits, one bar of gold, and a player feeling for breezes and stenches in the
// dark. Grab the gold and walk back to the start cell to win.
package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Status and percept lines shown to the player. The wording is part of the
// game's surface and is asserted by tests.
const (
	msgStart      = "Find the gold and return to start!"
	msgGoldFound  = "You found the gold! Return to start."
	msgPit        = "You fell into a pit! Game Over."
	msgWumpus     = "The Wumpus got you! Game Over."
	msgWin        = "You won! You got the gold and returned safely."
	msgFindGold   = "Find the gold!"
	msgReturnHome = "Return to start with the gold!"
	perceptBreeze = "You feel a breeze"
	perceptStench = "You smell a stench"
)

// Event identifies something a move produced. Events drive the journal
// lines and the UI cues.
type Event int

const (
	EventMove Event = iota
	EventGold
	EventPit
	EventWumpus
	EventWin
	EventBreeze
	EventStench
)

var eventNames = [...]string{
	EventMove:   "move",
	EventGold:   "gold",
	EventPit:    "pit",
	EventWumpus: "wumpus",
	EventWin:    "win",
	EventBreeze: "breeze",
	EventStench: "stench",
}

func (e Event) String() string {
	if e < EventMove || e > EventStench {
		return fmt.Sprintf("event(%d)", int(e))
	}
	return eventNames[e]
}

// Stats tracks the numbers shown on the side panel. PitsNearby and
// WumpusNearby are 0/1 indicators refreshed after each move, not counts.
type Stats struct {
	Moves        int `json:"moves"`
	CellsVisited int `json:"cells_visited"`
	PitsNearby   int `json:"pits_nearby"`
	WumpusNearby int `json:"wumpus_nearby"`
}

// MoveResult reports what one step produced. A blocked or post-game step
// moves nothing and produces no events.
type MoveResult struct {
	Moved  bool
	Events []Event
}

// Game is a single play-through of the cave.
type Game struct {
	layout  Layout
	params  Params
	fixed   bool
	seed    int64
	rng     *rand.Rand
	board   Board
	pos     Position
	visited [][]bool
	hasGold bool
	over    bool
	won     bool
	message string
	stats   Stats
}

// NewGame rolls a random cave from params. A zero seed draws one from the
// clock; the effective seed is retained for history records.
func NewGame(params Params) (*Game, error) {
	p := params.withDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{params: p, seed: seed, rng: rand.New(rand.NewSource(seed))}
	g.layout = Generate(p, g.rng)
	g.reset()
	return g, nil
}

// NewGameFromLayout starts a game on a fixed cave. Restart replays the same
// cave instead of rolling a new one.
func NewGameFromLayout(layout Layout) (*Game, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	g := &Game{layout: layout.Clone(), fixed: true}
	g.reset()
	return g, nil
}

func (g *Game) reset() {
	g.board = g.layout.board()
	g.pos = g.layout.Start
	g.visited = make([][]bool, g.layout.Rows)
	for r := range g.visited {
		g.visited[r] = make([]bool, g.layout.Cols)
	}
	g.visited[g.pos.Row][g.pos.Col] = true
	g.hasGold = false
	g.over = false
	g.won = false
	g.message = msgStart
	g.stats = Stats{CellsVisited: 1}
}

// Restart begins a fresh play-through. Random games roll a new cave; fixed
// layouts replay the same one. Allowed at any time, even mid-run.
func (g *Game) Restart() {
	if !g.fixed {
		g.layout = Generate(g.params, g.rng)
	}
	g.reset()
}

// Move steps the player one cell. Steps off the board are ignored without
// counting a move.
func (g *Game) Move(dir Direction) MoveResult {
	if g.over {
		return MoveResult{}
	}
	dr, dc := dir.Delta()
	next := Position{Row: g.pos.Row + dr, Col: g.pos.Col + dc}
	if !g.board.InBounds(next) {
		return MoveResult{}
	}
	g.stats.Moves++
	g.pos = next
	if !g.visited[next.Row][next.Col] {
		g.visited[next.Row][next.Col] = true
		g.stats.CellsVisited++
	}
	events := append([]Event{EventMove}, g.checkEvents()...)
	return MoveResult{Moved: true, Events: events}
}

// checkEvents runs the post-move checks in a fixed order: gold pickup, pit,
// wumpus, win, then percept messaging when the game is still on.
func (g *Game) checkEvents() []Event {
	var events []Event
	cell := g.board.At(g.pos)

	if cell.Gold {
		g.board.set(g.pos, func(c *Cell) { c.Gold = false })
		g.hasGold = true
		g.message = msgGoldFound
		events = append(events, EventGold)
	}
	if cell.Pit {
		g.over = true
		g.message = msgPit
		events = append(events, EventPit)
	}
	if cell.Wumpus {
		g.over = true
		g.message = msgWumpus
		events = append(events, EventWumpus)
	}
	if g.hasGold && g.pos == g.layout.Start {
		g.over = true
		g.won = true
		g.message = msgWin
		events = append(events, EventWin)
	}

	if !g.over {
		g.stats.PitsNearby = 0
		g.stats.WumpusNearby = 0
		var percepts []string
		if cell.Breeze {
			percepts = append(percepts, perceptBreeze)
			g.stats.PitsNearby++
			events = append(events, EventBreeze)
		}
		if cell.Stench {
			percepts = append(percepts, perceptStench)
			g.stats.WumpusNearby++
			events = append(events, EventStench)
		}
		switch {
		case len(percepts) > 0:
			g.message = strings.Join(percepts, " & ")
		case !g.hasGold:
			g.message = msgFindGold
		default:
			g.message = msgReturnHome
		}
	}
	return events
}

// Position returns the player's current cell.
func (g *Game) Position() Position { return g.pos }

// Start returns the entry cell the player must return to with the gold.
func (g *Game) Start() Position { return g.layout.Start }

// Rows returns the board height.
func (g *Game) Rows() int { return g.layout.Rows }

// Cols returns the board width.
func (g *Game) Cols() int { return g.layout.Cols }

// HasGold reports whether the gold has been picked up.
func (g *Game) HasGold() bool { return g.hasGold }

// Over reports whether the play-through has ended.
func (g *Game) Over() bool { return g.over }

// Won reports whether the play-through ended in a win.
func (g *Game) Won() bool { return g.won }

// Message returns the current status line.
func (g *Game) Message() string { return g.message }

// Stats returns the side-panel counters.
func (g *Game) Stats() Stats { return g.stats }

// Seed returns the seed the cave was rolled from, zero for fixed layouts.
func (g *Game) Seed() int64 { return g.seed }

// Fixed reports whether the game replays a fixed layout on restart.
func (g *Game) Fixed() bool { return g.fixed }

// Params returns the generation parameters, zero for fixed layouts.
func (g *Game) Params() Params { return g.params }

// Layout returns a copy of the cave plan. Callers use it for saves; the fog
// of war only applies to observations.
func (g *Game) Layout() Layout { return g.layout.Clone() }

// Visited reports whether the player has entered the cell.
func (g *Game) Visited(p Position) bool {
	if !g.board.InBounds(p) {
		return false
	}
	return g.visited[p.Row][p.Col]
}

// CellAt returns the cell contents and whether p is on the board.
func (g *Game) CellAt(p Position) (Cell, bool) {
	if !g.board.InBounds(p) {
		return Cell{}, false
	}
	return g.board.At(p), true
}

// Hints returns the advice list shown beside the board.
func Hints() []string {
	return []string{
		"Breezes indicate nearby pits",
		"Stenches indicate the Wumpus",
		"Avoid the Wumpus and pits",
		"Find the gold and return home",
		"Use arrow keys to move",
	}
}
