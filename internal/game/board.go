package game

import (
	"fmt"
	"strings"
)

// Position identifies a board square. Row 0 is the top row; the player enters
// the cave at the bottom-left corner.
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Direction is one of the four orthogonal moves.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{
	Up:    "up",
	Down:  "down",
	Left:  "left",
	Right: "right",
}

func (d Direction) String() string {
	if d < Up || d > Right {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection maps a case-insensitive direction name to a Direction.
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "up", "north":
		return Up, nil
	case "down", "south":
		return Down, nil
	case "left", "west":
		return Left, nil
	case "right", "east":
		return Right, nil
	default:
		return Up, fmt.Errorf("game: unknown direction %q", name)
	}
}

// Delta returns the row and column offset of one step.
func (d Direction) Delta() (dr, dc int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	default:
		return 0, 1
	}
}

// Directions lists all four moves in a stable order.
func Directions() []Direction {
	return []Direction{Up, Down, Left, Right}
}

// Cell holds the contents of one board square. Breeze and Stench are stamped
// onto neighbors when pits and the wumpus are placed.
type Cell struct {
	Wumpus bool
	Pit    bool
	Gold   bool
	Breeze bool
	Stench bool
}

// Board is a rows x cols grid of cells.
type Board struct {
	rows  int
	cols  int
	cells [][]Cell
}

func newBoard(rows, cols int) Board {
	cells := make([][]Cell, rows)
	for r := range cells {
		cells[r] = make([]Cell, cols)
	}
	return Board{rows: rows, cols: cols, cells: cells}
}

// Rows returns the board height.
func (b Board) Rows() int { return b.rows }

// Cols returns the board width.
func (b Board) Cols() int { return b.cols }

// InBounds reports whether the position sits on the board.
func (b Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.rows && p.Col >= 0 && p.Col < b.cols
}

// At returns the cell at p. Out-of-bounds positions return an empty cell.
func (b Board) At(p Position) Cell {
	if !b.InBounds(p) {
		return Cell{}
	}
	return b.cells[p.Row][p.Col]
}

func (b *Board) set(p Position, mutate func(*Cell)) {
	if !b.InBounds(p) {
		return
	}
	mutate(&b.cells[p.Row][p.Col])
}

// neighbors returns the in-bounds orthogonal neighbors of p, right, down,
// left, up, the order percept stamping walks them.
func (b Board) neighbors(p Position) []Position {
	deltas := [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	out := make([]Position, 0, 4)
	for _, d := range deltas {
		n := Position{Row: p.Row + d[0], Col: p.Col + d[1]}
		if b.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}
