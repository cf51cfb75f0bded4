package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kingrea/wumpusworld/internal/game"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecentGames(t *testing.T) {
	s := newTestStore(t)
	records := []Record{
		{GameID: "g-1", Scenario: "classic", Seed: 7, Rows: 4, Cols: 4, Outcome: OutcomeWon, Moves: 12, Cells: 7, GotGold: true, Duration: 90 * time.Second},
		{GameID: "g-2", Rows: 4, Cols: 4, Outcome: OutcomePit, Moves: 3, Cells: 3},
		{GameID: "g-3", Rows: 5, Cols: 5, Outcome: OutcomeAbandoned, Moves: 1, Cells: 2},
	}
	for _, rec := range records {
		if err := s.RecordGame(rec); err != nil {
			t.Fatalf("record game: %v", err)
		}
	}

	recent, err := s.RecentGames(2)
	if err != nil {
		t.Fatalf("recent games: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].GameID != "g-3" || recent[1].GameID != "g-2" {
		t.Fatalf("expected newest first, got %s then %s", recent[0].GameID, recent[1].GameID)
	}

	all, err := s.RecentGames(10)
	if err != nil {
		t.Fatal(err)
	}
	won := all[2]
	if won.Scenario != "classic" || won.Seed != 7 {
		t.Fatalf("cave fields lost: %+v", won)
	}
	if !won.GotGold || won.Outcome != OutcomeWon {
		t.Fatalf("outcome fields lost: %+v", won)
	}
	if won.Duration != 90*time.Second {
		t.Fatalf("duration lost: %v", won.Duration)
	}
	if won.PlayedAt.IsZero() {
		t.Fatalf("played_at not populated")
	}
}

func TestTotals(t *testing.T) {
	s := newTestStore(t)
	for _, rec := range []Record{
		{GameID: "a", Rows: 4, Cols: 4, Outcome: OutcomeWon, Moves: 12, Cells: 7},
		{GameID: "b", Rows: 4, Cols: 4, Outcome: OutcomeWon, Moves: 9, Cells: 6},
		{GameID: "c", Rows: 4, Cols: 4, Outcome: OutcomeWumpus, Moves: 4, Cells: 4},
		{GameID: "d", Rows: 4, Cols: 4, Outcome: OutcomePit, Moves: 2, Cells: 2},
		{GameID: "e", Rows: 4, Cols: 4, Outcome: OutcomeAbandoned, Moves: 0, Cells: 1},
	} {
		if err := s.RecordGame(rec); err != nil {
			t.Fatal(err)
		}
	}

	totals, err := s.Totals()
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Games != 5 || totals.Wins != 2 || totals.Deaths != 2 || totals.Abandoned != 1 {
		t.Fatalf("wrong aggregates: %+v", totals)
	}
	if totals.BestMoves != 9 {
		t.Fatalf("expected best run of 9 moves, got %d", totals.BestMoves)
	}
}

func TestTotalsOnEmptyHistory(t *testing.T) {
	s := newTestStore(t)
	totals, err := s.Totals()
	if err != nil {
		t.Fatalf("totals on empty db: %v", err)
	}
	if totals.Games != 0 || totals.Wins != 0 || totals.BestMoves != 0 {
		t.Fatalf("expected zeroed totals, got %+v", totals)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordGame(Record{GameID: "keep", Rows: 4, Cols: 4, Outcome: OutcomeWon, Moves: 10, Cells: 5}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	recent, err := reopened.RecentGames(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].GameID != "keep" {
		t.Fatalf("history lost across reopen: %+v", recent)
	}
}

func TestOutcomeFromEvents(t *testing.T) {
	if got := OutcomeFromEvents([]game.Event{game.EventMove, game.EventGold, game.EventWin}); got != OutcomeWon {
		t.Fatalf("expected won, got %s", got)
	}
	if got := OutcomeFromEvents([]game.Event{game.EventMove, game.EventPit}); got != OutcomePit {
		t.Fatalf("expected pit, got %s", got)
	}
	if got := OutcomeFromEvents([]game.Event{game.EventMove, game.EventWumpus}); got != OutcomeWumpus {
		t.Fatalf("expected wumpus, got %s", got)
	}
	if got := OutcomeFromEvents([]game.Event{game.EventMove, game.EventBreeze}); got != OutcomeAbandoned {
		t.Fatalf("expected abandoned, got %s", got)
	}
}
