// Package bridge exposes the game over local HTTP so external tools can
// play without touching the terminal UI. Every game lives in the session
// manager; the bridge only translates requests.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/wumpusworld/internal/game"
	"github.com/kingrea/wumpusworld/internal/scenario"
	"github.com/kingrea/wumpusworld/internal/session"
)

// ProtocolVersion names the wire format served under /v1.
const ProtocolVersion = "v1"

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

var errServerDisabled = errors.New("bridge: server disabled")

// Server wraps the HTTP listener and handlers backing the bridge.
type Server struct {
	settings  Settings
	sessions  *session.Manager
	scenarios []scenario.DefinitionFile
	logger    *zap.Logger
	clock     func() time.Time

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithScenarios makes fixed caves available to new games.
func WithScenarios(files []scenario.DefinitionFile) Option {
	return func(s *Server) {
		s.scenarios = files
	}
}

// WithLogger attaches the application logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares a bridge server over the given session manager.
func NewServer(settings Settings, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		sessions: sessions,
		logger:   zap.NewNop(),
		clock:    func() time.Time { return time.Now().UTC() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("bridge: server is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("bridge: session manager is required")
	}
	if !s.settings.Enabled {
		return errServerDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("bridge: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bridge: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/hints", s.handleHints)
	mux.HandleFunc("/v1/scenarios", s.handleScenarios)
	mux.HandleFunc("/v1/games", s.handleGames)
	mux.HandleFunc("/v1/games/", s.handleGame)
	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("bridge serve", zap.Error(err))
		}
	}()
	s.logger.Info("bridge listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL (scheme + host:port) for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return int64(time.Since(s.startTime).Seconds())
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	ActiveGames   int    `json:"active_games"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type createGameRequest struct {
	Scenario string `json:"scenario,omitempty"`
	Rows     int    `json:"rows,omitempty"`
	Cols     int    `json:"cols,omitempty"`
	MinPits  int    `json:"min_pits,omitempty"`
	MaxPits  int    `json:"max_pits,omitempty"`
	Seed     int64  `json:"seed,omitempty"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

type gameResponse struct {
	Game        session.Info     `json:"game"`
	Observation game.Observation `json:"observation"`
}

type moveResponse struct {
	Moved       bool             `json:"moved"`
	Events      []string         `json:"events"`
	Game        session.Info     `json:"game"`
	Observation game.Observation `json:"observation"`
}

type scenarioSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodHead))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	resp := healthResponse{
		Status:        string(s.Status()),
		Version:       ProtocolVersion,
		ActiveGames:   s.sessions.Len(),
		UptimeSeconds: s.uptimeSeconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"hints": game.Hints()})
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	summaries := make([]scenarioSummary, 0, len(s.scenarios))
	for _, file := range s.scenarios {
		def := file.Definition
		summaries = append(summaries, scenarioSummary{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Rows:        def.Rows,
			Cols:        def.Cols,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]scenarioSummary{"scenarios": summaries})
}

// handleGames covers the collection: POST starts a game, GET lists them.
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateGame(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string][]session.Info{"games": s.sessions.List()})
	default:
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodPost))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	var req createGameRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}
	}

	start := session.StartRequest{
		Params: game.Params{
			Rows:    req.Rows,
			Cols:    req.Cols,
			MinPits: req.MinPits,
			MaxPits: req.MaxPits,
			Seed:    req.Seed,
		},
	}
	if id := strings.TrimSpace(req.Scenario); id != "" {
		def, found := scenario.Lookup(s.scenarios, id)
		if !found {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown scenario %q", id)})
			return
		}
		layout := def.Layout()
		start.Layout = &layout
		start.Scenario = def.ID
	}

	info, err := s.sessions.Start(start)
	if err != nil {
		if errors.Is(err, session.ErrLimitReached) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	obs, err := s.sessions.Observe(info.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, gameResponse{Game: info, Observation: obs})
}

// handleGame covers one game: GET observes, DELETE ends, and the moves and
// restart actions hang off the id.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games/"), "/")
	parts := strings.Split(rest, "/")
	if rest == "" || len(parts) > 2 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	id := parts[0]

	if len(parts) == 2 {
		switch parts[1] {
		case "moves":
			s.handleMove(w, r, id)
		case "restart":
			s.handleRestart(w, r, id)
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		info, err := s.sessions.Get(id)
		if err != nil {
			s.writeSessionError(w, err)
			return
		}
		obs, err := s.sessions.Observe(id)
		if err != nil {
			s.writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, gameResponse{Game: info, Observation: obs})
	case http.MethodDelete:
		info, err := s.sessions.End(id)
		if err != nil {
			s.writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]session.Info{"game": info})
	default:
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodDelete))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	dir, err := game.ParseDirection(req.Direction)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, obs, err := s.sessions.Move(id, dir)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	info, err := s.sessions.Get(id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moveResponse{
		Moved:       res.Moved,
		Events:      eventNames(res.Events),
		Game:        info,
		Observation: obs,
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	obs, err := s.sessions.Restart(id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	info, err := s.sessions.Get(id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{Game: info, Observation: obs})
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return nil, true
	}
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload exceeds limit"})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unable to read body"})
		return nil, false
	}
	return body, true
}

func eventNames(events []game.Event) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.String())
	}
	return names
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
