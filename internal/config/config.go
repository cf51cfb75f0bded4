// internal/config/config.go
//
// This package handles configuration and the wumpus home directory.
// Every machine that runs the game gets a home tree (default ~/.wumpus)
// holding the config file, logs, scenario files, save slots, and the
// history database.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/wumpusworld/internal/game"
	"github.com/kingrea/wumpusworld/internal/scenario"
)

const (
	// HomeEnv overrides the home directory location.
	HomeEnv = "WUMPUS_HOME"

	homeDirName = ".wumpus"
)

const defaultConfigYAML = `# wumpus configuration
version: 1

# Cave generation defaults. A scenario id switches play to a fixed cave
# from the scenarios directory; seed pins the random roll (0 uses the clock).
game:
  rows: 4
  cols: 4
  min_pits: 1
  max_pits: 3
  # seed: 12345
  # scenario: classic

# Local HTTP bridge for remote players ('wumpus serve').
bridge:
  addr: 127.0.0.1:8953

log:
  level: info
`

// GameConfig carries the cave generation defaults.
type GameConfig struct {
	Rows     int    `yaml:"rows"`
	Cols     int    `yaml:"cols"`
	MinPits  int    `yaml:"min_pits"`
	MaxPits  int    `yaml:"max_pits"`
	Seed     int64  `yaml:"seed,omitempty"`
	Scenario string `yaml:"scenario,omitempty"`
}

// BridgeConfig carries the HTTP bridge defaults. Environment variables named
// in the bridge package override these at serve time.
type BridgeConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig selects the application log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// FileConfig models config.yaml.
type FileConfig struct {
	Version int          `yaml:"version"`
	Game    GameConfig   `yaml:"game"`
	Bridge  BridgeConfig `yaml:"bridge"`
	Log     LogConfig    `yaml:"log"`
}

// Config holds the runtime configuration for the game.
type Config struct {
	// Home is the resolved home directory (flag > WUMPUS_HOME > ~/.wumpus).
	Home string

	File FileConfig
}

// ResolveHome picks the home directory: an explicit flag value wins, then the
// WUMPUS_HOME environment variable, then ~/.wumpus.
func ResolveHome(flagValue string) (string, error) {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return filepath.Clean(trimmed), nil
	}
	if env := strings.TrimSpace(os.Getenv(HomeEnv)); env != "" {
		return filepath.Clean(env), nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user home: %w", err)
	}
	return filepath.Join(userHome, homeDirName), nil
}

// InitHome creates the home directory structure and seeds the default config
// and the builtin scenario on first run.
//
// Structure created:
//
//	<home>/
//	├── config.yaml
//	├── logs/        <- application log and the player journal
//	├── scenarios/   <- fixed cave layouts (classic.yaml seeded)
//	└── saves/       <- save slots
func InitHome(home string) error {
	dirs := []string{
		filepath.Join(home, "logs"),
		filepath.Join(home, "scenarios"),
		filepath.Join(home, "saves"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	if err := ensureFile(filepath.Join(home, "config.yaml"), defaultConfigYAML); err != nil {
		return err
	}
	return ensureFile(filepath.Join(home, "scenarios", "classic.yaml"), scenario.BuiltinYAML)
}

// NewConfig loads config.yaml from the home directory. A missing file yields
// the defaults.
func NewConfig(home string) (*Config, error) {
	cfg := &Config{Home: home, File: defaultFileConfig()}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location of config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Home, "config.yaml")
}

// LogsDir returns the directory holding the application log and the journal.
func (c *Config) LogsDir() string {
	return filepath.Join(c.Home, "logs")
}

// LogFilePath returns the application log location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.LogsDir(), "wumpus.log")
}

// JournalPath returns the player journal location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "journal.log")
}

// ScenariosDir returns the directory scanned for cave definitions.
func (c *Config) ScenariosDir() string {
	return filepath.Join(c.Home, "scenarios")
}

// SavesDir returns the directory holding save slots.
func (c *Config) SavesDir() string {
	return filepath.Join(c.Home, "saves")
}

// HistoryPath returns the SQLite history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Home, "history.db")
}

// Params converts the configured game defaults into engine parameters.
func (c *Config) Params() game.Params {
	return game.Params{
		Rows:    c.File.Game.Rows,
		Cols:    c.File.Game.Cols,
		MinPits: c.File.Game.MinPits,
		MaxPits: c.File.Game.MaxPits,
		Seed:    c.File.Game.Seed,
	}
}

// DefaultScenario returns the configured scenario id, empty for random caves.
func (c *Config) DefaultScenario() string {
	return c.File.Game.Scenario
}

// SetDefaultScenario updates the scenario id played by default and persists
// the value back to config.yaml. An empty id switches back to random caves.
func (c *Config) SetDefaultScenario(id string) error {
	c.File.Game.Scenario = strings.TrimSpace(id)
	return c.Save()
}

// Save writes the configuration back to config.yaml.
func (c *Config) Save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.File.applyDefaults()
	c.File.normalize()
	if err := c.File.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.Home, 0o755); err != nil {
		return fmt.Errorf("config: ensure home dir: %w", err)
	}
	data, err := yaml.Marshal(c.File)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	return nil
}

func (c *Config) load() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}

	c.File = parsed
	return nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		Game:    GameConfig{Rows: 4, Cols: 4, MinPits: 1, MaxPits: 3},
		Bridge:  BridgeConfig{Addr: "127.0.0.1:8953"},
		Log:     LogConfig{Level: "info"},
	}
}

func (fc *FileConfig) applyDefaults() {
	def := defaultFileConfig()
	if fc.Version == 0 {
		fc.Version = def.Version
	}
	if fc.Game.Rows == 0 {
		fc.Game.Rows = def.Game.Rows
	}
	if fc.Game.Cols == 0 {
		fc.Game.Cols = def.Game.Cols
	}
	if fc.Game.MinPits == 0 && fc.Game.MaxPits == 0 {
		fc.Game.MinPits = def.Game.MinPits
		fc.Game.MaxPits = def.Game.MaxPits
	}
	if strings.TrimSpace(fc.Bridge.Addr) == "" {
		fc.Bridge.Addr = def.Bridge.Addr
	}
	if strings.TrimSpace(fc.Log.Level) == "" {
		fc.Log.Level = def.Log.Level
	}
}

func (fc *FileConfig) normalize() {
	fc.Game.Scenario = strings.TrimSpace(fc.Game.Scenario)
	fc.Bridge.Addr = strings.TrimSpace(fc.Bridge.Addr)
	fc.Log.Level = strings.ToLower(strings.TrimSpace(fc.Log.Level))
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	params := game.Params{
		Rows:    fc.Game.Rows,
		Cols:    fc.Game.Cols,
		MinPits: fc.Game.MinPits,
		MaxPits: fc.Game.MaxPits,
	}
	if err := params.Validate(); err != nil {
		return err
	}
	switch fc.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", fc.Log.Level)
	}
	return nil
}

func ensureFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
