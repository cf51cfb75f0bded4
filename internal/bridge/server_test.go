package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/kingrea/wumpusworld/internal/config"
	"github.com/kingrea/wumpusworld/internal/game"
	"github.com/kingrea/wumpusworld/internal/scenario"
	"github.com/kingrea/wumpusworld/internal/session"
)

func testSettings() Settings {
	return Settings{
		Enabled:      true,
		Host:         "127.0.0.1",
		Port:         0,
		MaxBodyBytes: 4096,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}
}

func testScenarioFiles(t *testing.T) []scenario.DefinitionFile {
	t.Helper()
	def, err := scenario.Definition{
		ID:     "test-cave",
		Rows:   4,
		Cols:   4,
		Wumpus: game.Position{Row: 0, Col: 0},
		Gold:   game.Position{Row: 0, Col: 3},
		Pits:   []game.Position{{Row: 2, Col: 2}},
	}.Normalized()
	if err != nil {
		t.Fatalf("test scenario invalid: %v", err)
	}
	return []scenario.DefinitionFile{{Definition: def}}
}

func startTestServer(t *testing.T, settings Settings) (*Server, string) {
	t.Helper()
	srv := NewServer(settings, session.NewManager(), WithScenarios(testScenarioFiles(t)))
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv, srv.BaseURL()
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestSettingsFromConfigHonorsEnv(t *testing.T) {
	t.Setenv("WUMPUS_BRIDGE_PORT", "9001")
	t.Setenv("WUMPUS_BRIDGE_HOST", "0.0.0.0")
	t.Setenv("WUMPUS_BRIDGE_ENABLED", "false")
	cfg := &config.Config{}
	settings := SettingsFromConfig(cfg)
	if settings.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", settings.Port)
	}
	if settings.Host != "0.0.0.0" {
		t.Fatalf("expected host override, got %s", settings.Host)
	}
	if settings.Enabled {
		t.Fatalf("expected enabled=false from env override")
	}
}

func TestSettingsFromConfigParsesAddr(t *testing.T) {
	cfg := &config.Config{}
	cfg.File.Bridge.Addr = "0.0.0.0:9100"
	settings := SettingsFromConfig(cfg)
	if settings.Host != "0.0.0.0" || settings.Port != 9100 {
		t.Fatalf("addr not parsed: %s:%d", settings.Host, settings.Port)
	}

	cfg.File.Bridge.Addr = "not-an-addr"
	settings = SettingsFromConfig(cfg)
	if settings.Host != DefaultHost || settings.Port != DefaultPort {
		t.Fatalf("bad addr should fall back to defaults, got %s:%d", settings.Host, settings.Port)
	}
}

func TestServerServesGameLifecycle(t *testing.T) {
	t.Parallel()
	_, base := startTestServer(t, testSettings())

	resp := postJSON(t, base+"/v1/games", map[string]string{"scenario": "test-cave"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created gameResponse
	decodeInto(t, resp, &created)
	if created.Game.ID == "" {
		t.Fatalf("missing game id: %+v", created)
	}
	if created.Game.Scenario != "test-cave" {
		t.Fatalf("scenario lost: %+v", created.Game)
	}
	if created.Observation.Position != (game.Position{Row: 3, Col: 0}) {
		t.Fatalf("player not at the start: %v", created.Observation.Position)
	}

	gameURL := base + "/v1/games/" + created.Game.ID
	resp = postJSON(t, gameURL+"/moves", map[string]string{"direction": "up"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for move, got %d", resp.StatusCode)
	}
	var moved moveResponse
	decodeInto(t, resp, &moved)
	if !moved.Moved {
		t.Fatalf("expected the step to land: %+v", moved)
	}
	if len(moved.Events) == 0 || moved.Events[0] != "move" {
		t.Fatalf("missing move event: %v", moved.Events)
	}
	if moved.Game.Moves != 1 {
		t.Fatalf("move not counted: %+v", moved.Game)
	}
	if moved.Observation.Position != (game.Position{Row: 2, Col: 0}) {
		t.Fatalf("wrong position: %v", moved.Observation.Position)
	}

	resp, err := http.Get(gameURL)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for get, got %d", resp.StatusCode)
	}
	var fetched gameResponse
	decodeInto(t, resp, &fetched)
	if fetched.Game.ID != created.Game.ID {
		t.Fatalf("get returned a different game: %+v", fetched.Game)
	}

	resp = postJSON(t, gameURL+"/restart", struct{}{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for restart, got %d", resp.StatusCode)
	}
	var restarted gameResponse
	decodeInto(t, resp, &restarted)
	if restarted.Game.Moves != 0 {
		t.Fatalf("restart did not reset moves: %+v", restarted.Game)
	}

	req, err := http.NewRequest(http.MethodDelete, gameURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete game: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for delete, got %d", resp.StatusCode)
	}

	resp, err = http.Get(gameURL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestServerRejectsUnknownScenario(t *testing.T) {
	t.Parallel()
	_, base := startTestServer(t, testSettings())
	resp := postJSON(t, base+"/v1/games", map[string]string{"scenario": "atlantis"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestServerRejectsBadDirection(t *testing.T) {
	t.Parallel()
	_, base := startTestServer(t, testSettings())
	resp := postJSON(t, base+"/v1/games", map[string]string{"scenario": "test-cave"})
	var created gameResponse
	decodeInto(t, resp, &created)

	resp = postJSON(t, base+"/v1/games/"+created.Game.ID+"/moves", map[string]string{"direction": "sideways"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestServerUnknownGame(t *testing.T) {
	t.Parallel()
	_, base := startTestServer(t, testSettings())
	resp, err := http.Get(base + "/v1/games/does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestServerEnforcesPayloadLimit(t *testing.T) {
	t.Parallel()
	settings := testSettings()
	settings.MaxBodyBytes = 64
	_, base := startTestServer(t, settings)

	resp := postJSON(t, base+"/v1/games", map[string]string{
		"scenario": strings.Repeat("x", 512),
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}

func TestHealthHintsAndScenarios(t *testing.T) {
	t.Parallel()
	_, base := startTestServer(t, testSettings())

	resp, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", resp.StatusCode)
	}
	var health healthResponse
	decodeInto(t, resp, &health)
	if health.Status != string(StatusReady) || health.Version != ProtocolVersion {
		t.Fatalf("wrong health payload: %+v", health)
	}

	resp, err = http.Get(base + "/v1/hints")
	if err != nil {
		t.Fatal(err)
	}
	var hints map[string][]string
	decodeInto(t, resp, &hints)
	if len(hints["hints"]) != 5 {
		t.Fatalf("expected 5 hints, got %v", hints)
	}

	resp, err = http.Get(base + "/v1/scenarios")
	if err != nil {
		t.Fatal(err)
	}
	var scenarios map[string][]scenarioSummary
	decodeInto(t, resp, &scenarios)
	list := scenarios["scenarios"]
	if len(list) != 1 || list[0].ID != "test-cave" {
		t.Fatalf("wrong scenario list: %v", list)
	}
}

func TestServerDisabled(t *testing.T) {
	settings := testSettings()
	settings.Enabled = false
	srv := NewServer(settings, session.NewManager())
	err := srv.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestStartShutdownNoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := NewServer(testSettings(), session.NewManager())
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
