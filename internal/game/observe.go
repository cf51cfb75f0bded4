package game

import "strings"

// VisibleCell is one explored square and the percepts felt there.
type VisibleCell struct {
	Row    int  `json:"row"`
	Col    int  `json:"col"`
	Breeze bool `json:"breeze"`
	Stench bool `json:"stench"`
}

// Observation is the fog-of-war view handed to external players. Hazard
// positions the player has not walked into are never included; Breeze and
// Stench report the occupied cell so a player is not blind on the start
// square before the first move.
type Observation struct {
	Rows       int           `json:"rows"`
	Cols       int           `json:"cols"`
	TotalCells int           `json:"total_cells"`
	Position   Position      `json:"position"`
	Start      Position      `json:"start"`
	HasGold    bool          `json:"has_gold"`
	GameOver   bool          `json:"game_over"`
	Won        bool          `json:"won"`
	Breeze     bool          `json:"breeze"`
	Stench     bool          `json:"stench"`
	Message    string        `json:"message"`
	Stats      Stats         `json:"stats"`
	Visible    []VisibleCell `json:"visible"`
	Map        []string      `json:"map"`
}

// Observe snapshots the player's view of the game.
func (g *Game) Observe() Observation {
	here := g.board.At(g.pos)
	obs := Observation{
		Rows:       g.layout.Rows,
		Cols:       g.layout.Cols,
		TotalCells: g.layout.Rows * g.layout.Cols,
		Position:   g.pos,
		Start:      g.layout.Start,
		HasGold:    g.hasGold,
		GameOver:   g.over,
		Won:        g.won,
		Breeze:     here.Breeze,
		Stench:     here.Stench,
		Message:    g.message,
		Stats:      g.stats,
	}
	for r := 0; r < g.layout.Rows; r++ {
		for c := 0; c < g.layout.Cols; c++ {
			if !g.visited[r][c] {
				continue
			}
			cell := g.board.cells[r][c]
			obs.Visible = append(obs.Visible, VisibleCell{
				Row:    r,
				Col:    c,
				Breeze: cell.Breeze,
				Stench: cell.Stench,
			})
		}
	}
	obs.Map = g.renderMap()
	return obs
}

// renderMap draws the explored board one character per cell: '@' player,
// '?' unexplored, '&' breeze and stench, 'b' breeze, 's' stench, '.' clear.
func (g *Game) renderMap() []string {
	rows := make([]string, g.layout.Rows)
	var sb strings.Builder
	for r := 0; r < g.layout.Rows; r++ {
		sb.Reset()
		for c := 0; c < g.layout.Cols; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte(g.mapChar(Position{Row: r, Col: c}))
		}
		rows[r] = sb.String()
	}
	return rows
}

func (g *Game) mapChar(p Position) byte {
	if p == g.pos {
		return '@'
	}
	if !g.visited[p.Row][p.Col] {
		return '?'
	}
	cell := g.board.At(p)
	switch {
	case cell.Breeze && cell.Stench:
		return '&'
	case cell.Breeze:
		return 'b'
	case cell.Stench:
		return 's'
	default:
		return '.'
	}
}
