// Package store persists finished games to a local SQLite database. The
// history command and the TUI read it back for past runs and win rates.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kingrea/wumpusworld/internal/game"
)

// Outcome labels how a game ended.
type Outcome string

const (
	OutcomeWon       Outcome = "won"
	OutcomePit       Outcome = "pit"
	OutcomeWumpus    Outcome = "wumpus"
	OutcomeAbandoned Outcome = "abandoned"
)

// OutcomeFromEvents classifies a finished game by the cues of its final
// move. Games cut short before a terminal cue count as abandoned.
func OutcomeFromEvents(events []game.Event) Outcome {
	for _, ev := range events {
		switch ev {
		case game.EventWin:
			return OutcomeWon
		case game.EventPit:
			return OutcomePit
		case game.EventWumpus:
			return OutcomeWumpus
		}
	}
	return OutcomeAbandoned
}

// Record is one finished game.
type Record struct {
	ID       int64
	GameID   string
	Scenario string
	Seed     int64
	Rows     int
	Cols     int
	Outcome  Outcome
	Moves    int
	Cells    int
	GotGold  bool
	Duration time.Duration
	PlayedAt time.Time
}

// Totals aggregates the whole history.
type Totals struct {
	Games     int
	Wins      int
	Deaths    int
	Abandoned int
	// BestMoves is the shortest winning run, 0 when nothing has been won.
	BestMoves int
}

// Store wraps the SQLite history database.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// New initializes the history database at the given path.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) initialize() error {
	gamesTable := `
	CREATE TABLE IF NOT EXISTS games (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		scenario TEXT NOT NULL DEFAULT '',
		seed INTEGER NOT NULL DEFAULT 0,
		rows INTEGER NOT NULL,
		cols INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		moves INTEGER NOT NULL,
		cells INTEGER NOT NULL,
		got_gold INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		played_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_games_outcome ON games(outcome);
	CREATE INDEX IF NOT EXISTS idx_games_played_at ON games(played_at);
	`

	for _, table := range []string{gamesTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("store: create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.dbPath
}

// RecordGame appends one finished game to the history.
func (s *Store) RecordGame(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO games (game_id, scenario, seed, rows, cols, outcome, moves, cells, got_gold, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.GameID, rec.Scenario, rec.Seed, rec.Rows, rec.Cols,
		string(rec.Outcome), rec.Moves, rec.Cells, rec.GotGold,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("store: record game: %w", err)
	}
	return nil
}

// RecentGames returns the newest entries first.
func (s *Store) RecentGames(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, scenario, seed, rows, cols, outcome, moves, cells, got_gold, duration_ms, played_at
		 FROM games ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query history: %w", err)
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		var rec Record
		var outcome string
		var durationMS int64
		if err := rows.Scan(&rec.ID, &rec.GameID, &rec.Scenario, &rec.Seed,
			&rec.Rows, &rec.Cols, &outcome, &rec.Moves, &rec.Cells,
			&rec.GotGold, &durationMS, &rec.PlayedAt); err != nil {
			continue
		}
		rec.Outcome = Outcome(outcome)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, rec)
	}

	return results, nil
}

// Totals aggregates every recorded game.
func (s *Store) Totals() (Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t Totals
	row := s.db.QueryRow(`
		SELECT COUNT(*),
		       SUM(CASE WHEN outcome = 'won' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome IN ('pit', 'wumpus') THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'abandoned' THEN 1 ELSE 0 END)
		FROM games`)
	var wins, deaths, abandoned sql.NullInt64
	if err := row.Scan(&t.Games, &wins, &deaths, &abandoned); err != nil {
		return Totals{}, fmt.Errorf("store: query totals: %w", err)
	}
	t.Wins = int(wins.Int64)
	t.Deaths = int(deaths.Int64)
	t.Abandoned = int(abandoned.Int64)

	var best sql.NullInt64
	if err := s.db.QueryRow(`SELECT MIN(moves) FROM games WHERE outcome = 'won'`).Scan(&best); err != nil {
		return Totals{}, fmt.Errorf("store: query best run: %w", err)
	}
	if best.Valid {
		t.BestMoves = int(best.Int64)
	}

	return t, nil
}
