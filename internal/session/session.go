// Package session tracks concurrent games for remote players. The HTTP
// bridge and the MCP server both drive play through a Manager, which owns
// the games, enforces the active-game limit, and records finished runs
// into the history store.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingrea/wumpusworld/internal/game"
	"github.com/kingrea/wumpusworld/internal/store"
)

// DefaultLimit caps concurrently active games.
const DefaultLimit = 32

var (
	// ErrNotFound indicates the game id is unknown or already ended.
	ErrNotFound = errors.New("session: game not found")
	// ErrLimitReached indicates no new game can start until one ends.
	ErrLimitReached = errors.New("session: active game limit reached")
)

// Info describes the public metadata for a tracked game.
type Info struct {
	ID        string    `json:"id"`
	Scenario  string    `json:"scenario,omitempty"`
	Seed      int64     `json:"seed"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Moves     int       `json:"moves"`
	GameOver  bool      `json:"game_over"`
	Won       bool      `json:"won"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type gameRecord struct {
	id         string
	scenario   string
	game       *game.Game
	createdAt  time.Time
	updatedAt  time.Time
	startedAt  time.Time
	lastEvents []game.Event
	recorded   bool
}

// StartRequest describes the cave for a new game. A fixed layout wins over
// random generation parameters.
type StartRequest struct {
	Params   game.Params
	Layout   *game.Layout
	Scenario string
}

// Manager owns the active games.
type Manager struct {
	mu      sync.Mutex
	games   map[string]*gameRecord
	limit   int
	history *store.Store
	logger  *zap.Logger
	clock   func() time.Time
}

// Option customizes the manager instance.
type Option func(*Manager)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithHistory wires the history store. Finished runs are recorded once per
// play-through; a nil store disables recording.
func WithHistory(history *store.Store) Option {
	return func(m *Manager) {
		m.history = history
	}
}

// WithLogger attaches the application logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLimit overrides the active-game cap.
func WithLimit(limit int) Option {
	return func(m *Manager) {
		if limit > 0 {
			m.limit = limit
		}
	}
}

// NewManager builds an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		games:  make(map[string]*gameRecord),
		limit:  DefaultLimit,
		logger: zap.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start creates a game and returns its metadata.
func (m *Manager) Start(req StartRequest) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.games) >= m.limit {
		return Info{}, fmt.Errorf("%w (%d active)", ErrLimitReached, len(m.games))
	}

	var (
		g   *game.Game
		err error
	)
	if req.Layout != nil {
		g, err = game.NewGameFromLayout(*req.Layout)
	} else {
		g, err = game.NewGame(req.Params)
	}
	if err != nil {
		return Info{}, err
	}

	now := m.clock()
	rec := &gameRecord{
		id:        uuid.NewString(),
		scenario:  req.Scenario,
		game:      g,
		createdAt: now,
		updatedAt: now,
		startedAt: now,
	}
	m.games[rec.id] = rec

	m.logger.Info("game started",
		zap.String("game_id", rec.id),
		zap.String("scenario", rec.scenario),
		zap.Int64("seed", g.Seed()),
		zap.Int("rows", g.Rows()),
		zap.Int("cols", g.Cols()))
	return m.info(rec), nil
}

// Get returns the metadata for one game.
func (m *Manager) Get(id string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return Info{}, fmt.Errorf("session: game %s: %w", id, ErrNotFound)
	}
	return m.info(rec), nil
}

// Observe returns the player view of one game.
func (m *Manager) Observe(id string) (game.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return game.Observation{}, fmt.Errorf("session: game %s: %w", id, ErrNotFound)
	}
	return rec.game.Observe(), nil
}

// List returns every active game, newest first.
func (m *Manager) List() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]Info, 0, len(m.games))
	for _, rec := range m.games {
		infos = append(infos, m.info(rec))
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// Move steps a game and returns the move outcome plus the refreshed view.
// Once a game ends its terminal outcome lands in the history store.
func (m *Manager) Move(id string, dir game.Direction) (game.MoveResult, game.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return game.MoveResult{}, game.Observation{}, fmt.Errorf("session: game %s: %w", id, ErrNotFound)
	}

	res := rec.game.Move(dir)
	if len(res.Events) > 0 {
		rec.lastEvents = res.Events
	}
	rec.updatedAt = m.clock()
	if rec.game.Over() {
		m.record(rec, store.OutcomeFromEvents(rec.lastEvents))
	}
	return res, rec.game.Observe(), nil
}

// Restart rerolls or replays the cave. An unfinished run with moves on the
// clock is recorded as abandoned before the new play-through begins.
func (m *Manager) Restart(id string) (game.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return game.Observation{}, fmt.Errorf("session: game %s: %w", id, ErrNotFound)
	}

	if !rec.game.Over() && rec.game.Stats().Moves > 0 {
		m.record(rec, store.OutcomeAbandoned)
	}
	rec.game.Restart()
	now := m.clock()
	rec.recorded = false
	rec.lastEvents = nil
	rec.startedAt = now
	rec.updatedAt = now

	m.logger.Info("game restarted",
		zap.String("game_id", rec.id),
		zap.Int64("seed", rec.game.Seed()))
	return rec.game.Observe(), nil
}

// End removes a game. Runs cut short are recorded as abandoned.
func (m *Manager) End(id string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return Info{}, fmt.Errorf("session: game %s: %w", id, ErrNotFound)
	}
	delete(m.games, id)

	switch {
	case rec.game.Over():
		m.record(rec, store.OutcomeFromEvents(rec.lastEvents))
	case rec.game.Stats().Moves > 0:
		m.record(rec, store.OutcomeAbandoned)
	}

	m.logger.Info("game ended",
		zap.String("game_id", rec.id),
		zap.Bool("won", rec.game.Won()),
		zap.Int("moves", rec.game.Stats().Moves))
	return m.info(rec), nil
}

// Len reports the number of active games.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.games)
}

func (m *Manager) info(rec *gameRecord) Info {
	stats := rec.game.Stats()
	return Info{
		ID:        rec.id,
		Scenario:  rec.scenario,
		Seed:      rec.game.Seed(),
		Rows:      rec.game.Rows(),
		Cols:      rec.game.Cols(),
		Moves:     stats.Moves,
		GameOver:  rec.game.Over(),
		Won:       rec.game.Won(),
		Message:   rec.game.Message(),
		CreatedAt: rec.createdAt,
		UpdatedAt: rec.updatedAt,
	}
}

// record writes one history row per play-through. Callers hold m.mu.
func (m *Manager) record(rec *gameRecord, outcome store.Outcome) {
	if m.history == nil || rec.recorded {
		return
	}
	stats := rec.game.Stats()
	err := m.history.RecordGame(store.Record{
		GameID:   rec.id,
		Scenario: rec.scenario,
		Seed:     rec.game.Seed(),
		Rows:     rec.game.Rows(),
		Cols:     rec.game.Cols(),
		Outcome:  outcome,
		Moves:    stats.Moves,
		Cells:    stats.CellsVisited,
		GotGold:  rec.game.HasGold(),
		Duration: m.clock().Sub(rec.startedAt),
	})
	if err != nil {
		m.logger.Warn("record game", zap.String("game_id", rec.id), zap.Error(err))
		return
	}
	rec.recorded = true
}
