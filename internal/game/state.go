package game

import "fmt"

// State captures the mutable half of a game for persistence. Together with
// the Layout it reconstructs a play-through exactly.
type State struct {
	Position Position   `json:"position"`
	Visited  []Position `json:"visited"`
	HasGold  bool       `json:"has_gold"`
	Over     bool       `json:"over"`
	Won      bool       `json:"won"`
	Message  string     `json:"message"`
	Stats    Stats      `json:"stats"`
}

// State snapshots the game for a save slot.
func (g *Game) State() State {
	st := State{
		Position: g.pos,
		HasGold:  g.hasGold,
		Over:     g.over,
		Won:      g.won,
		Message:  g.message,
		Stats:    g.stats,
	}
	for r := 0; r < g.layout.Rows; r++ {
		for c := 0; c < g.layout.Cols; c++ {
			if g.visited[r][c] {
				st.Visited = append(st.Visited, Position{Row: r, Col: c})
			}
		}
	}
	return st
}

// Restore rebuilds a game from a saved layout and state. Restored games are
// fixed: a restart replays the same cave.
func Restore(layout Layout, st State) (*Game, error) {
	g, err := NewGameFromLayout(layout)
	if err != nil {
		return nil, err
	}
	if !g.board.InBounds(st.Position) {
		return nil, fmt.Errorf("game: saved position %v is outside the %dx%d board", st.Position, layout.Rows, layout.Cols)
	}
	for r := range g.visited {
		for c := range g.visited[r] {
			g.visited[r][c] = false
		}
	}
	seen := false
	for _, p := range st.Visited {
		if !g.board.InBounds(p) {
			return nil, fmt.Errorf("game: saved visit %v is outside the %dx%d board", p, layout.Rows, layout.Cols)
		}
		g.visited[p.Row][p.Col] = true
		if p == g.layout.Start {
			seen = true
		}
	}
	if !seen {
		g.visited[g.layout.Start.Row][g.layout.Start.Col] = true
	}
	if !g.visited[st.Position.Row][st.Position.Col] {
		g.visited[st.Position.Row][st.Position.Col] = true
	}
	g.pos = st.Position
	g.hasGold = st.HasGold
	if st.HasGold {
		g.board.set(g.layout.Gold, func(c *Cell) { c.Gold = false })
	}
	g.over = st.Over
	g.won = st.Won
	g.message = st.Message
	if g.message == "" {
		g.message = msgStart
	}
	g.stats = st.Stats
	return g, nil
}
