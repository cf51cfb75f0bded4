// Package save manages game save slots. Each slot is one JSON file under the
// saves directory, written atomically so a crash mid-save never corrupts an
// existing slot.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"github.com/kingrea/wumpusworld/internal/game"
)

const snapshotVersion = 1

// ErrSlotNotFound indicates the requested slot has no save file.
var ErrSlotNotFound = errors.New("save: slot not found")

// Snapshot is the serialized form of a paused game.
type Snapshot struct {
	Version  int         `json:"version"`
	Slot     string      `json:"slot"`
	SavedAt  time.Time   `json:"saved_at"`
	Scenario string      `json:"scenario,omitempty"`
	Seed     int64       `json:"seed,omitempty"`
	Layout   game.Layout `json:"layout"`
	State    game.State  `json:"state"`
}

// Game reconstructs the playable game held by the snapshot.
func (s Snapshot) Game() (*game.Game, error) {
	return game.Restore(s.Layout, s.State)
}

// Info summarizes a slot for listings.
type Info struct {
	Slot     string    `json:"slot"`
	SavedAt  time.Time `json:"saved_at"`
	Scenario string    `json:"scenario,omitempty"`
	Moves    int       `json:"moves"`
	HasGold  bool      `json:"has_gold"`
}

// Store manages slot IO rooted at the saves directory.
type Store struct {
	dir string
	now func() time.Time
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for save timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = clock
	}
}

// NewStore builds a store over the given directory.
func NewStore(dir string, opts ...StoreOption) *Store {
	store := &Store{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Path returns the file backing a slot.
func (s *Store) Path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}

// Write persists a snapshot into the named slot, replacing any previous save.
func (s *Store) Write(slot string, snap Snapshot) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	if err := snap.Layout.Validate(); err != nil {
		return fmt.Errorf("save: slot %s: %w", slot, err)
	}
	snap.Version = snapshotVersion
	snap.Slot = slot
	snap.SavedAt = s.now().UTC()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("save: ensure saves dir: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("save: encode slot %s: %w", slot, err)
	}
	data = append(data, '\n')

	pending, err := renameio.NewPendingFile(s.Path(slot))
	if err != nil {
		return fmt.Errorf("save: create pending file for %s: %w", slot, err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()
	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("save: write slot %s: %w", slot, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("save: replace slot %s: %w", slot, err)
	}
	return nil
}

// Load reads the named slot back.
func (s *Store) Load(slot string) (Snapshot, error) {
	if err := validateSlot(slot); err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(s.Path(slot))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, fmt.Errorf("save: slot %s: %w", slot, ErrSlotNotFound)
		}
		return Snapshot{}, fmt.Errorf("save: read slot %s: %w", slot, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("save: parse slot %s: %w", slot, err)
	}
	if snap.Version != snapshotVersion {
		return Snapshot{}, fmt.Errorf("save: slot %s: unsupported version %d", slot, snap.Version)
	}
	if err := snap.Layout.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("save: slot %s: %w", slot, err)
	}
	return snap, nil
}

// Delete removes the named slot.
func (s *Store) Delete(slot string) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	if err := os.Remove(s.Path(slot)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("save: slot %s: %w", slot, ErrSlotNotFound)
		}
		return fmt.Errorf("save: delete slot %s: %w", slot, err)
	}
	return nil
}

// List summarizes every readable slot, newest save first. Unreadable files
// are skipped so one corrupt slot never hides the rest.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("save: read saves dir: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		slot := strings.TrimSuffix(entry.Name(), ".json")
		snap, err := s.Load(slot)
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Slot:     snap.Slot,
			SavedAt:  snap.SavedAt,
			Scenario: snap.Scenario,
			Moves:    snap.State.Stats.Moves,
			HasGold:  snap.State.HasGold,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].SavedAt.Equal(infos[j].SavedAt) {
			return infos[i].SavedAt.After(infos[j].SavedAt)
		}
		return infos[i].Slot < infos[j].Slot
	})
	return infos, nil
}

// validateSlot keeps slot names shell and filesystem safe.
func validateSlot(slot string) error {
	if slot == "" {
		return fmt.Errorf("save: slot name required")
	}
	if len(slot) > 32 {
		return fmt.Errorf("save: slot name %q too long", slot)
	}
	for _, r := range slot {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return fmt.Errorf("save: slot name %q may only use lowercase letters, digits, dash, and underscore", slot)
		}
	}
	return nil
}
