// Package scenario loads fixed cave layouts from YAML so the same hunt can be
// replayed, shared, or served to remote players by id.
package scenario

import (
	"fmt"
	"strings"

	"github.com/kingrea/wumpusworld/internal/game"
)

// Definition describes one fixed cave. The start is always the bottom-left
// corner; rows and columns default to the classic 4x4 board.
type Definition struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Rows        int             `json:"rows,omitempty" yaml:"rows,omitempty"`
	Cols        int             `json:"cols,omitempty" yaml:"cols,omitempty"`
	Wumpus      game.Position   `json:"wumpus" yaml:"wumpus"`
	Gold        game.Position   `json:"gold" yaml:"gold"`
	Pits        []game.Position `json:"pits,omitempty" yaml:"pits,omitempty"`
}

// Clone returns a deep copy of the definition.
func (def Definition) Clone() Definition {
	clone := def
	if len(def.Pits) > 0 {
		clone.Pits = make([]game.Position, len(def.Pits))
		copy(clone.Pits, def.Pits)
	}
	return clone
}

// Normalized clones the definition, applies defaults, and validates the
// result.
func (def Definition) Normalized() (Definition, error) {
	clone := def.Clone()
	clone.ID = strings.TrimSpace(clone.ID)
	clone.Name = strings.TrimSpace(clone.Name)
	if clone.Name == "" {
		clone.Name = clone.ID
	}
	if clone.Rows == 0 && clone.Cols == 0 {
		clone.Rows = 4
		clone.Cols = 4
	}
	if err := clone.Validate(); err != nil {
		return Definition{}, err
	}
	return clone, nil
}

// Validate ensures the definition describes a playable cave.
func (def Definition) Validate() error {
	if def.ID == "" {
		return fmt.Errorf("scenario: id is required")
	}
	if err := def.Layout().Validate(); err != nil {
		return fmt.Errorf("scenario %s: %w", def.ID, err)
	}
	return nil
}

// Layout converts the definition into a cave plan the engine can stamp.
func (def Definition) Layout() game.Layout {
	layout := game.Layout{
		Rows:   def.Rows,
		Cols:   def.Cols,
		Start:  game.Position{Row: def.Rows - 1, Col: 0},
		Wumpus: def.Wumpus,
		Gold:   def.Gold,
	}
	if len(def.Pits) > 0 {
		layout.Pits = make([]game.Position, len(def.Pits))
		copy(layout.Pits, def.Pits)
	}
	return layout
}

// Builtin returns the cave shipped with the game: the classic 4x4 board
// with the wumpus upstairs and the gold in the far corner.
func Builtin() Definition {
	return Definition{
		ID:          "classic",
		Name:        "Classic cave",
		Description: "The classic 4x4 hunt: two pits, gold in the far corner.",
		Rows:        4,
		Cols:        4,
		Wumpus:      game.Position{Row: 0, Col: 2},
		Gold:        game.Position{Row: 0, Col: 3},
		Pits: []game.Position{
			{Row: 2, Col: 2},
			{Row: 0, Col: 0},
		},
	}
}

// BuiltinYAML is the classic cave as written to the scenarios directory on
// first run, ready to copy for new layouts.
const BuiltinYAML = `# A cave layout. The player always starts in the bottom-left corner;
# row 0 is the top row. Copy this file to design your own hunt.
id: classic
name: Classic cave
description: "The classic 4x4 hunt: two pits, gold in the far corner."
rows: 4
cols: 4
wumpus: {row: 0, col: 2}
gold: {row: 0, col: 3}
pits:
  - {row: 2, col: 2}
  - {row: 0, col: 0}
`
