package save

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/wumpusworld/internal/game"
)

func testLayout() game.Layout {
	return game.Layout{
		Rows:   4,
		Cols:   4,
		Start:  game.Position{Row: 3, Col: 0},
		Wumpus: game.Position{Row: 0, Col: 0},
		Gold:   game.Position{Row: 0, Col: 3},
		Pits:   []game.Position{{Row: 2, Col: 2}},
	}
}

func newTestStore(t *testing.T, clock func() time.Time) *Store {
	t.Helper()
	opts := []StoreOption{}
	if clock != nil {
		opts = append(opts, WithClock(clock))
	}
	return NewStore(filepath.Join(t.TempDir(), "saves"), opts...)
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	saved := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, func() time.Time { return saved })

	g, err := game.NewGameFromLayout(testLayout())
	if err != nil {
		t.Fatal(err)
	}
	g.Move(game.Up)
	g.Move(game.Right)

	err = s.Write("slot-1", Snapshot{
		Scenario: "classic",
		Seed:     7,
		Layout:   g.Layout(),
		State:    g.State(),
	})
	if err != nil {
		t.Fatalf("write slot: %v", err)
	}

	snap, err := s.Load("slot-1")
	if err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if snap.Version != 1 || snap.Slot != "slot-1" {
		t.Fatalf("envelope not filled in: %+v", snap)
	}
	if !snap.SavedAt.Equal(saved) {
		t.Fatalf("saved_at = %v, want %v", snap.SavedAt, saved)
	}
	if snap.Scenario != "classic" || snap.Seed != 7 {
		t.Fatalf("cave fields lost: %+v", snap)
	}

	resumed, err := snap.Game()
	if err != nil {
		t.Fatalf("resume game: %v", err)
	}
	if resumed.Position() != g.Position() {
		t.Fatalf("position = %v, want %v", resumed.Position(), g.Position())
	}
	if resumed.Stats() != g.Stats() {
		t.Fatalf("stats = %+v, want %+v", resumed.Stats(), g.Stats())
	}
	if resumed.Message() != g.Message() {
		t.Fatalf("message = %q, want %q", resumed.Message(), g.Message())
	}
}

func TestWriteReplacesExistingSlot(t *testing.T) {
	s := newTestStore(t, nil)
	g, err := game.NewGameFromLayout(testLayout())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write("run", Snapshot{Layout: g.Layout(), State: g.State()}); err != nil {
		t.Fatal(err)
	}
	g.Move(game.Up)
	if err := s.Write("run", Snapshot{Layout: g.Layout(), State: g.State()}); err != nil {
		t.Fatal(err)
	}

	snap, err := s.Load("run")
	if err != nil {
		t.Fatal(err)
	}
	if snap.State.Stats.Moves != 1 {
		t.Fatalf("expected the newer save to win, got %d moves", snap.State.Stats.Moves)
	}
}

func TestLoadMissingSlot(t *testing.T) {
	s := newTestStore(t, nil)
	if _, err := s.Load("nope"); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestDeleteSlot(t *testing.T) {
	s := newTestStore(t, nil)
	g, err := game.NewGameFromLayout(testLayout())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write("gone", Snapshot{Layout: g.Layout(), State: g.State()}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("delete slot: %v", err)
	}
	if _, err := s.Load("gone"); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("slot still loads after delete: %v", err)
	}
	if err := s.Delete("gone"); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("second delete should report a missing slot, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s := newTestStore(t, func() time.Time {
		now = now.Add(time.Minute)
		return now
	})
	g, err := game.NewGameFromLayout(testLayout())
	if err != nil {
		t.Fatal(err)
	}
	for _, slot := range []string{"first", "second", "third"} {
		if err := s.Write(slot, Snapshot{Layout: g.Layout(), State: g.State()}); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(s.dir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, "README.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}

	infos, err := s.List()
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(infos))
	}
	order := []string{infos[0].Slot, infos[1].Slot, infos[2].Slot}
	want := []string{"third", "second", "first"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected newest first %v, got %v", want, order)
		}
	}
}

func TestListOnMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "never-created"))
	infos, err := s.List()
	if err != nil || infos != nil {
		t.Fatalf("expected empty list for missing dir, got %v (%v)", infos, err)
	}
}

func TestSlotNameValidation(t *testing.T) {
	s := newTestStore(t, nil)
	g, err := game.NewGameFromLayout(testLayout())
	if err != nil {
		t.Fatal(err)
	}
	snap := Snapshot{Layout: g.Layout(), State: g.State()}
	for _, bad := range []string{"", "Bad Name", "UPPER", "../escape", "dots.are.out", strings.Repeat("x", 33)} {
		if err := s.Write(bad, snap); err == nil {
			t.Fatalf("slot name %q should be rejected", bad)
		}
	}
	if err := s.Write("save-1_ok", snap); err != nil {
		t.Fatalf("valid slot name rejected: %v", err)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	s := newTestStore(t, nil)
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		t.Fatal(err)
	}
	payload := `{"version": 99, "slot": "future", "layout": {"rows": 4, "cols": 4}}`
	if err := os.WriteFile(s.Path("future"), []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load("future")
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Fatalf("expected version error, got %v", err)
	}
}
