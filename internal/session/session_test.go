package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kingrea/wumpusworld/internal/game"
	"github.com/kingrea/wumpusworld/internal/store"
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

// winningPath crosses the middle row to the gold and walks it back home,
// clear of the pit at (2,2) and the wumpus at (0,0).
func winningPath() []game.Direction {
	return []game.Direction{
		game.Up, game.Up, game.Right, game.Right, game.Right, game.Up,
		game.Down, game.Left, game.Left, game.Left, game.Down, game.Down,
	}
}

func steppingClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func testHistory(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("new history store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func startFixed(t *testing.T, m *Manager, scenario string) Info {
	t.Helper()
	layout := testLayout()
	info, err := m.Start(StartRequest{Layout: &layout, Scenario: scenario})
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	return info
}

func TestStartAndGet(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m := NewManager(WithClock(steppingClock(base)))
	info := startFixed(t, m, "classic")

	if info.ID == "" {
		t.Fatalf("expected a game id")
	}
	if info.Rows != 4 || info.Cols != 4 {
		t.Fatalf("wrong board size: %dx%d", info.Rows, info.Cols)
	}
	if info.Scenario != "classic" {
		t.Fatalf("scenario lost: %q", info.Scenario)
	}
	if info.Moves != 0 || info.GameOver {
		t.Fatalf("new game not fresh: %+v", info)
	}
	if info.Message != "Find the gold and return to start!" {
		t.Fatalf("wrong opening message: %q", info.Message)
	}

	got, err := m.Get(info.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if got.ID != info.ID || got.CreatedAt != info.CreatedAt {
		t.Fatalf("get returned a different game: %+v", got)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 active game, got %d", m.Len())
	}
}

func TestStartRandomKeepsSeed(t *testing.T) {
	m := NewManager()
	info, err := m.Start(StartRequest{Params: game.Params{Seed: 5}})
	if err != nil {
		t.Fatal(err)
	}
	if info.Seed != 5 {
		t.Fatalf("seed lost: %d", info.Seed)
	}
	if info.Rows != 4 || info.Cols != 4 {
		t.Fatalf("defaults not applied: %dx%d", info.Rows, info.Cols)
	}
}

func TestMoveUpdatesGame(t *testing.T) {
	m := NewManager()
	info := startFixed(t, m, "")

	res, obs, err := m.Move(info.ID, game.Up)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !res.Moved {
		t.Fatalf("expected the step to land")
	}
	if obs.Position != (game.Position{Row: 2, Col: 0}) {
		t.Fatalf("wrong position after move: %v", obs.Position)
	}

	got, err := m.Get(info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Moves != 1 {
		t.Fatalf("move count not tracked: %d", got.Moves)
	}
}

func TestUnknownGameID(t *testing.T) {
	m := NewManager()
	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := m.Move("missing", game.Up); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from move, got %v", err)
	}
	if _, err := m.Restart("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from restart, got %v", err)
	}
	if _, err := m.End("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from end, got %v", err)
	}
}

func TestActiveGameLimit(t *testing.T) {
	m := NewManager(WithLimit(2))
	startFixed(t, m, "")
	second := startFixed(t, m, "")

	layout := testLayout()
	if _, err := m.Start(StartRequest{Layout: &layout}); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}

	if _, err := m.End(second.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Start(StartRequest{Layout: &layout}); err != nil {
		t.Fatalf("slot should free up after end: %v", err)
	}
}

func TestWinIsRecordedOnce(t *testing.T) {
	history := testHistory(t)
	m := NewManager(WithHistory(history), WithClock(steppingClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))))
	info := startFixed(t, m, "classic")

	for _, dir := range winningPath() {
		if _, _, err := m.Move(info.ID, dir); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.Get(info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.GameOver || !got.Won {
		t.Fatalf("expected a finished win, got %+v", got)
	}

	recent, err := history.RecentGames(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(recent))
	}
	rec := recent[0]
	if rec.Outcome != store.OutcomeWon || rec.Moves != 12 || !rec.GotGold {
		t.Fatalf("wrong history row: %+v", rec)
	}
	if rec.Scenario != "classic" {
		t.Fatalf("scenario not recorded: %+v", rec)
	}

	if _, err := m.End(info.ID); err != nil {
		t.Fatal(err)
	}
	recent, err = history.RecentGames(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("ending a finished game must not double-record, got %d rows", len(recent))
	}
}

func TestAbandonedRunRecordedOnEnd(t *testing.T) {
	history := testHistory(t)
	m := NewManager(WithHistory(history))
	info := startFixed(t, m, "")

	if _, _, err := m.Move(info.ID, game.Up); err != nil {
		t.Fatal(err)
	}
	if _, err := m.End(info.ID); err != nil {
		t.Fatal(err)
	}

	recent, err := history.RecentGames(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].Outcome != store.OutcomeAbandoned {
		t.Fatalf("expected one abandoned row, got %+v", recent)
	}

	untouched := startFixed(t, m, "")
	if _, err := m.End(untouched.ID); err != nil {
		t.Fatal(err)
	}
	recent, err = history.RecentGames(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("a game with no moves should not be recorded, got %d rows", len(recent))
	}
}

func TestRestartRecordsInterruptedRun(t *testing.T) {
	history := testHistory(t)
	m := NewManager(WithHistory(history))
	info := startFixed(t, m, "classic")

	if _, _, err := m.Move(info.ID, game.Up); err != nil {
		t.Fatal(err)
	}
	obs, err := m.Restart(info.ID)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if obs.Stats.Moves != 0 {
		t.Fatalf("restart did not reset the run: %+v", obs.Stats)
	}

	recent, err := history.RecentGames(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].Outcome != store.OutcomeAbandoned {
		t.Fatalf("expected the interrupted run on record, got %+v", recent)
	}

	for _, dir := range winningPath() {
		if _, _, err := m.Move(info.ID, dir); err != nil {
			t.Fatal(err)
		}
	}
	recent, err = history.RecentGames(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].Outcome != store.OutcomeWon {
		t.Fatalf("expected the fresh play-through to record a win, got %+v", recent)
	}
}

func TestDeathRecorded(t *testing.T) {
	history := testHistory(t)
	m := NewManager(WithHistory(history))
	info := startFixed(t, m, "")

	for _, dir := range []game.Direction{game.Up, game.Up, game.Up} {
		if _, _, err := m.Move(info.ID, dir); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.Get(info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.GameOver || got.Won {
		t.Fatalf("expected a lost game, got %+v", got)
	}
	if got.Message != "The Wumpus got you! Game Over." {
		t.Fatalf("wrong death message: %q", got.Message)
	}

	res, _, err := m.Move(info.ID, game.Down)
	if err != nil {
		t.Fatal(err)
	}
	if res.Moved {
		t.Fatalf("finished games must ignore moves")
	}

	recent, err := history.RecentGames(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].Outcome != store.OutcomeWumpus {
		t.Fatalf("expected one wumpus row, got %+v", recent)
	}
}

func TestListNewestFirst(t *testing.T) {
	m := NewManager(WithClock(steppingClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))))
	first := startFixed(t, m, "")
	second := startFixed(t, m, "")
	third := startFixed(t, m, "")

	infos := m.List()
	if len(infos) != 3 {
		t.Fatalf("expected 3 games, got %d", len(infos))
	}
	want := []string{third.ID, second.ID, first.ID}
	for i, id := range want {
		if infos[i].ID != id {
			t.Fatalf("wrong order at %d: got %s, want %s", i, infos[i].ID, id)
		}
	}
}
