package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/kingrea/wumpusworld/internal/game"
	"github.com/kingrea/wumpusworld/internal/scenario"
	"github.com/kingrea/wumpusworld/internal/session"
)

// gamePayload is the standard tool result for a running game.
type gamePayload struct {
	Game        session.Info     `json:"game"`
	Observation game.Observation `json:"observation"`
}

// movePayload reports the outcome of a single move.
type movePayload struct {
	Moved       bool             `json:"moved"`
	Events      []string         `json:"events"`
	Game        session.Info     `json:"game"`
	Observation game.Observation `json:"observation"`
}

// endPayload confirms a finished session.
type endPayload struct {
	Ended bool         `json:"ended"`
	Game  session.Info `json:"game"`
}

type scenarioPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
}

func (s *Server) registerTools() {
	s.registerTool("wumpus_new_game",
		"Start a new Wumpus World game. The cave is hidden; you see only visited cells. "+
			"Optional arguments: scenario (fixed cave id), rows, cols, min_pits, max_pits, seed. "+
			"Returns the game id and the first observation.",
		s.handleNewGame)
	s.registerTool("wumpus_observe",
		"Look around in a running game. Requires game_id. "+
			"Returns position, percepts (breeze, stench), stats, and the map of visited cells.",
		s.handleObserve)
	s.registerTool("wumpus_move",
		"Move the explorer one cell. Requires game_id and direction (up, down, left, or right). "+
			"Moves into walls are ignored. Returns the events and the new observation.",
		s.handleMove)
	s.registerTool("wumpus_restart",
		"Restart a game on the same cave layout. Requires game_id. Progress and stats reset.",
		s.handleRestart)
	s.registerTool("wumpus_end_game",
		"End a game and free its session. Requires game_id.",
		s.handleEndGame)
	s.registerTool("wumpus_list_scenarios",
		"List the fixed cave layouts available to wumpus_new_game.",
		s.handleListScenarios)
	s.registerTool("wumpus_hints",
		"Explain the rules of the game: percepts, hazards, and the win condition.",
		s.handleHints)
}

func (s *Server) handleNewGame(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	req := session.StartRequest{Params: game.DefaultParams()}
	if rows := intArg(args, "rows"); rows > 0 {
		req.Params.Rows = rows
	}
	if cols := intArg(args, "cols"); cols > 0 {
		req.Params.Cols = cols
	}
	if minPits := intArg(args, "min_pits"); minPits > 0 {
		req.Params.MinPits = minPits
	}
	if maxPits := intArg(args, "max_pits"); maxPits > 0 {
		req.Params.MaxPits = maxPits
	}
	if seed := int64Arg(args, "seed"); seed != 0 {
		req.Params.Seed = seed
	}
	if id := stringArg(args, "scenario"); id != "" {
		def, ok := scenario.Lookup(s.scenarios, id)
		if !ok {
			return errorResult("unknown scenario %q; call wumpus_list_scenarios for the available ids", id), nil
		}
		layout := def.Layout()
		req.Layout = &layout
		req.Scenario = def.ID
	}

	info, err := s.sessions.Start(req)
	if err != nil {
		return errorResult("start game: %v", err), nil
	}
	obs, err := s.sessions.Observe(info.ID)
	if err != nil {
		return errorResult("observe game: %v", err), nil
	}
	s.logger.Info("mcp game started", zap.String("game_id", info.ID), zap.String("scenario", info.Scenario))
	return jsonResult(gamePayload{Game: info, Observation: obs})
}

func (s *Server) handleObserve(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	id := stringArg(args, "game_id")
	if id == "" {
		return errorResult("game_id is required"), nil
	}
	info, err := s.sessions.Get(id)
	if err != nil {
		return errorResult("%v", err), nil
	}
	obs, err := s.sessions.Observe(id)
	if err != nil {
		return errorResult("%v", err), nil
	}
	return jsonResult(gamePayload{Game: info, Observation: obs})
}

func (s *Server) handleMove(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	id := stringArg(args, "game_id")
	if id == "" {
		return errorResult("game_id is required"), nil
	}
	dir, err := game.ParseDirection(stringArg(args, "direction"))
	if err != nil {
		return errorResult("direction must be up, down, left, or right"), nil
	}
	result, obs, err := s.sessions.Move(id, dir)
	if err != nil {
		return errorResult("%v", err), nil
	}
	info, err := s.sessions.Get(id)
	if err != nil {
		return errorResult("%v", err), nil
	}
	return jsonResult(movePayload{
		Moved:       result.Moved,
		Events:      eventNames(result.Events),
		Game:        info,
		Observation: obs,
	})
}

func (s *Server) handleRestart(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	id := stringArg(args, "game_id")
	if id == "" {
		return errorResult("game_id is required"), nil
	}
	obs, err := s.sessions.Restart(id)
	if err != nil {
		return errorResult("%v", err), nil
	}
	info, err := s.sessions.Get(id)
	if err != nil {
		return errorResult("%v", err), nil
	}
	return jsonResult(gamePayload{Game: info, Observation: obs})
}

func (s *Server) handleEndGame(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	id := stringArg(args, "game_id")
	if id == "" {
		return errorResult("game_id is required"), nil
	}
	info, err := s.sessions.End(id)
	if err != nil {
		return errorResult("%v", err), nil
	}
	s.logger.Info("mcp game ended", zap.String("game_id", id))
	return jsonResult(endPayload{Ended: true, Game: info})
}

func (s *Server) handleListScenarios(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	list := make([]scenarioPayload, 0, len(s.scenarios))
	for _, file := range s.scenarios {
		def := file.Definition
		list = append(list, scenarioPayload{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Rows:        def.Rows,
			Cols:        def.Cols,
		})
	}
	return jsonResult(map[string]interface{}{"scenarios": list})
}

func (s *Server) handleHints(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{"hints": game.Hints()})
}

// jsonResult marshals the payload into a text content block.
func jsonResult(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: string(data)},
		},
	}, nil
}

func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: fmt.Sprintf(format, args...)},
		},
	}
}

func stringArg(args map[string]interface{}, key string) string {
	value, _ := args[key].(string)
	return strings.TrimSpace(value)
}

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, key string) int {
	value, _ := args[key].(float64)
	return int(value)
}

func int64Arg(args map[string]interface{}, key string) int64 {
	value, _ := args[key].(float64)
	return int64(value)
}

func eventNames(events []game.Event) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.String())
	}
	return names
}
