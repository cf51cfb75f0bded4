package game

import (
	"fmt"
	"math/rand"
)

// Params bound random cave generation.
type Params struct {
	Rows    int   `json:"rows" yaml:"rows"`
	Cols    int   `json:"cols" yaml:"cols"`
	MinPits int   `json:"min_pits" yaml:"min_pits"`
	MaxPits int   `json:"max_pits" yaml:"max_pits"`
	Seed    int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultParams is the classic cave: 4x4 with one to three pits.
func DefaultParams() Params {
	return Params{Rows: 4, Cols: 4, MinPits: 1, MaxPits: 3}
}

func (p Params) withDefaults() Params {
	def := DefaultParams()
	if p.Rows == 0 {
		p.Rows = def.Rows
	}
	if p.Cols == 0 {
		p.Cols = def.Cols
	}
	if p.MinPits == 0 && p.MaxPits == 0 {
		p.MinPits = def.MinPits
		p.MaxPits = def.MaxPits
	}
	return p
}

// Validate ensures generation cannot wedge: the board keeps enough free cells
// for the start, the wumpus, the pits, and the gold.
func (p Params) Validate() error {
	if p.Rows < 2 || p.Cols < 2 {
		return fmt.Errorf("game: board must be at least 2x2, got %dx%d", p.Rows, p.Cols)
	}
	if p.MinPits < 0 {
		return fmt.Errorf("game: min pits must be >= 0, got %d", p.MinPits)
	}
	if p.MaxPits < p.MinPits {
		return fmt.Errorf("game: max pits %d below min pits %d", p.MaxPits, p.MinPits)
	}
	if limit := p.Rows*p.Cols - 3; p.MaxPits > limit {
		return fmt.Errorf("game: max pits %d leaves no room on a %dx%d board", p.MaxPits, p.Rows, p.Cols)
	}
	return nil
}

// Layout pins down one cave: dimensions plus where the wumpus, the pits, and
// the gold sit. A layout is pure data; Board stamping derives the percepts.
type Layout struct {
	Rows   int        `json:"rows" yaml:"rows"`
	Cols   int        `json:"cols" yaml:"cols"`
	Start  Position   `json:"start" yaml:"start"`
	Wumpus Position   `json:"wumpus" yaml:"wumpus"`
	Gold   Position   `json:"gold" yaml:"gold"`
	Pits   []Position `json:"pits,omitempty" yaml:"pits,omitempty"`
}

// Clone returns a deep copy of the layout.
func (l Layout) Clone() Layout {
	clone := l
	if len(l.Pits) > 0 {
		clone.Pits = make([]Position, len(l.Pits))
		copy(clone.Pits, l.Pits)
	}
	return clone
}

// Validate ensures the layout describes a playable cave.
func (l Layout) Validate() error {
	if l.Rows < 2 || l.Cols < 2 {
		return fmt.Errorf("game: board must be at least 2x2, got %dx%d", l.Rows, l.Cols)
	}
	inBounds := func(p Position) bool {
		return p.Row >= 0 && p.Row < l.Rows && p.Col >= 0 && p.Col < l.Cols
	}
	if !inBounds(l.Start) {
		return fmt.Errorf("game: start %v is outside the %dx%d board", l.Start, l.Rows, l.Cols)
	}
	if !inBounds(l.Wumpus) {
		return fmt.Errorf("game: wumpus %v is outside the %dx%d board", l.Wumpus, l.Rows, l.Cols)
	}
	if l.Wumpus == l.Start {
		return fmt.Errorf("game: wumpus cannot sit on the start cell")
	}
	seen := make(map[Position]struct{}, len(l.Pits))
	for i, pit := range l.Pits {
		if !inBounds(pit) {
			return fmt.Errorf("game: pit[%d] %v is outside the %dx%d board", i, pit, l.Rows, l.Cols)
		}
		if pit == l.Start {
			return fmt.Errorf("game: pit[%d] cannot sit on the start cell", i)
		}
		if pit == l.Wumpus {
			return fmt.Errorf("game: pit[%d] cannot share the wumpus cell %v", i, pit)
		}
		if _, dup := seen[pit]; dup {
			return fmt.Errorf("game: duplicate pit at %v", pit)
		}
		seen[pit] = struct{}{}
	}
	if !inBounds(l.Gold) {
		return fmt.Errorf("game: gold %v is outside the %dx%d board", l.Gold, l.Rows, l.Cols)
	}
	if l.Gold == l.Start {
		return fmt.Errorf("game: gold cannot sit on the start cell")
	}
	if l.Gold == l.Wumpus {
		return fmt.Errorf("game: gold cannot share the wumpus cell")
	}
	if _, inPit := seen[l.Gold]; inPit {
		return fmt.Errorf("game: gold cannot sit in a pit")
	}
	return nil
}

// board stamps the layout onto a fresh grid, deriving breezes and stenches.
func (l Layout) board() Board {
	b := newBoard(l.Rows, l.Cols)
	b.set(l.Wumpus, func(c *Cell) { c.Wumpus = true })
	for _, n := range b.neighbors(l.Wumpus) {
		b.set(n, func(c *Cell) { c.Stench = true })
	}
	for _, pit := range l.Pits {
		b.set(pit, func(c *Cell) { c.Pit = true })
		for _, n := range b.neighbors(pit) {
			b.set(n, func(c *Cell) { c.Breeze = true })
		}
	}
	b.set(l.Gold, func(c *Cell) { c.Gold = true })
	return b
}

// Generate rolls a random cave in a fixed order: wumpus first (anywhere but
// the start), then the pits (clear of start and wumpus, rolls landing on an
// existing pit are spent, not retried), gold last in the top-right corner
// unless a hazard took it.
func Generate(p Params, rng *rand.Rand) Layout {
	start := Position{Row: p.Rows - 1, Col: 0}
	layout := Layout{Rows: p.Rows, Cols: p.Cols, Start: start}

	for {
		cand := Position{Row: rng.Intn(p.Rows), Col: rng.Intn(p.Cols)}
		if cand != start {
			layout.Wumpus = cand
			break
		}
	}

	pitCount := p.MinPits
	if p.MaxPits > p.MinPits {
		pitCount += rng.Intn(p.MaxPits - p.MinPits + 1)
	}
	placed := make(map[Position]struct{}, pitCount)
	for i := 0; i < pitCount; i++ {
		for {
			cand := Position{Row: rng.Intn(p.Rows), Col: rng.Intn(p.Cols)}
			if cand == start || cand == layout.Wumpus {
				continue
			}
			if _, dup := placed[cand]; !dup {
				placed[cand] = struct{}{}
				layout.Pits = append(layout.Pits, cand)
			}
			break
		}
	}

	gold := Position{Row: 0, Col: p.Cols - 1}
	if !layout.goldSafe(gold) {
		for {
			cand := Position{Row: rng.Intn(p.Rows), Col: rng.Intn(p.Cols)}
			if layout.goldSafe(cand) {
				gold = cand
				break
			}
		}
	}
	layout.Gold = gold
	return layout
}

func (l Layout) goldSafe(p Position) bool {
	if p == l.Start || p == l.Wumpus {
		return false
	}
	for _, pit := range l.Pits {
		if p == pit {
			return false
		}
	}
	return true
}
