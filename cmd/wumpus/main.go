// cmd/wumpus/main.go
//
// This is the entry point for the Wumpus World CLI.
// Running `wumpus` with no arguments opens the TUI; subcommands expose the
// same cave to HTTP clients (serve), MCP assistants (mcp), and the shell
// (scenarios, history).

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kingrea/wumpusworld/internal/bridge"
	"github.com/kingrea/wumpusworld/internal/config"
	"github.com/kingrea/wumpusworld/internal/logging"
	"github.com/kingrea/wumpusworld/internal/mcp"
	"github.com/kingrea/wumpusworld/internal/scenario"
	"github.com/kingrea/wumpusworld/internal/session"
	"github.com/kingrea/wumpusworld/internal/store"
	"github.com/kingrea/wumpusworld/internal/tui"
)

// version is stamped by the build; "dev" for local builds.
var version = "dev"

var (
	// Global flags
	homeFlag string
	verbose  bool

	// Serve flags
	serveAddr string

	// History flags
	historyCount int

	// Shared state built in PersistentPreRunE
	appConfig *config.Config
	logger    = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wumpus",
	Short: "Wumpus World - hunt for gold in a dark cave",
	Long: `Wumpus World is a grid cave-crawler played blind.

Somewhere in the cave lies a heap of gold, guarded by the Wumpus and a
scatter of bottomless pits. You only learn about hazards from the breezes
and stenches in neighboring cells. Grab the gold and make it back to the
entrance alive.

Run without arguments to play in the terminal. The same games can be
served over HTTP (wumpus serve) or handed to an MCP assistant (wumpus mcp).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal and keeps its own journal; version
		// needs nothing at all.
		switch cmd.Name() {
		case "wumpus", "play", "version":
			return nil
		}

		home, err := config.ResolveHome(homeFlag)
		if err != nil {
			return err
		}
		if err := config.InitHome(home); err != nil {
			return fmt.Errorf("initialize %s: %w", home, err)
		}
		cfg, err := config.NewConfig(home)
		if err != nil {
			return err
		}
		appConfig = cfg

		level := cfg.File.Log.Level
		if verbose {
			level = "debug"
		}
		if cmd.Name() == "serve" {
			logger, err = logging.NewConsole(level)
		} else {
			logger, err = logging.New(cfg.LogFilePath(), level)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: open the cave in the terminal
		return runPlay(cmd, args)
	},
}

// playCmd opens the TUI explicitly
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Wumpus World in the terminal",
	RunE:  runPlay,
}

// serveCmd runs the HTTP bridge so external programs can play
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve games over HTTP",
	Long: `Starts the bridge server. Clients create games, observe the fog-of-war
view, and move through the cave with plain JSON requests:

  POST /v1/games            start a game
  GET  /v1/games/{id}       observe
  POST /v1/games/{id}/moves move (direction: up, down, left, right)

Hazard positions are never exposed; clients see only visited cells.`,
	RunE: runServe,
}

// mcpCmd serves the game tools over stdio for MCP clients
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the game as MCP tools on stdio",
	Long: `Speaks the Model Context Protocol on stdin/stdout so an MCP-capable
assistant can explore the cave with the wumpus_* tools. Logs go to the
log file under the wumpus home, keeping stdout clean for the protocol.`,
	RunE: runMCP,
}

// scenariosCmd manages fixed cave layouts
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Manage fixed cave layouts",
}

var scenariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the caves available to play",
	RunE:  runScenariosList,
}

var scenariosValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check cave files for layout mistakes",
	Long: `Validates scenario YAML files: board bounds, hazard overlaps, and the
reserved start corner. With no argument it checks the scenarios directory
under the wumpus home.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScenariosValidate,
}

var scenariosUseCmd = &cobra.Command{
	Use:   "use [id]",
	Short: "Set the default cave for new games",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenariosUse,
}

// historyCmd prints past expedition results
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past expeditions and lifetime totals",
	RunE:  runHistory,
}

// initCmd prepares the wumpus home directory
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the wumpus home directory",
	Long: `Creates the home directory (default ~/.wumpus, override with --home or
WUMPUS_HOME) with a starter config.yaml and the built-in classic cave.
Safe to run again; existing files are left alone.`,
	RunE: runInit,
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wumpus version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wumpus %s\n", version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "Wumpus home directory (default ~/.wumpus, or WUMPUS_HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address override (host:port)")
	historyCmd.Flags().IntVarP(&historyCount, "limit", "n", 20, "Number of recent games to show")

	scenariosCmd.AddCommand(scenariosListCmd)
	scenariosCmd.AddCommand(scenariosValidateCmd)
	scenariosCmd.AddCommand(scenariosUseCmd)

	// Add commands to root
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runPlay opens the TUI. It resolves the home itself because the shared
// PreRun skips TUI commands.
func runPlay(cmd *cobra.Command, args []string) error {
	home, err := config.ResolveHome(homeFlag)
	if err != nil {
		return err
	}
	if err := config.InitHome(home); err != nil {
		return fmt.Errorf("initialize %s: %w", home, err)
	}

	app, err := tui.NewApp(home)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// runServe starts the HTTP bridge and blocks until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	history, err := store.New(appConfig.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer func() { _ = history.Close() }()

	files, err := scenario.LoadDefinitionDir(appConfig.ScenariosDir())
	if err != nil {
		logger.Warn("scenario directory unreadable", zap.Error(err))
	}
	files = scenario.WithBuiltin(files)

	sessions := session.NewManager(
		session.WithHistory(history),
		session.WithLogger(logger),
	)

	settings := bridge.SettingsFromConfig(appConfig)
	if serveAddr != "" {
		host, portStr, err := net.SplitHostPort(serveAddr)
		if err != nil {
			return fmt.Errorf("invalid --addr %q: %w", serveAddr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid --addr port %q: %w", portStr, err)
		}
		if host != "" {
			settings.Host = host
		}
		settings.Port = port
	}

	srv := bridge.NewServer(settings, sessions,
		bridge.WithScenarios(files),
		bridge.WithLogger(logger),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(ctx); err != nil {
			return err
		}
		fmt.Printf("Bridge listening on %s\n", srv.BaseURL())
		fmt.Println("Press Ctrl+C to shutdown")
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		return nil
	})
	return g.Wait()
}

// runMCP serves the game tools on stdio.
func runMCP(cmd *cobra.Command, args []string) error {
	opts := []session.Option{session.WithLogger(logger)}
	history, err := store.New(appConfig.HistoryPath())
	if err != nil {
		logger.Warn("history store unavailable", zap.Error(err))
	} else {
		defer func() { _ = history.Close() }()
		opts = append(opts, session.WithHistory(history))
	}
	sessions := session.NewManager(opts...)

	files, err := scenario.LoadDefinitionDir(appConfig.ScenariosDir())
	if err != nil {
		logger.Warn("scenario directory unreadable", zap.Error(err))
	}
	files = scenario.WithBuiltin(files)

	srv := mcp.NewServer(version, sessions,
		mcp.WithScenarios(files),
		mcp.WithLogger(logger),
	)
	return srv.ServeStdio()
}

// runScenariosList prints the caves on the shelf.
func runScenariosList(cmd *cobra.Command, args []string) error {
	files, err := scenario.LoadDefinitionDir(appConfig.ScenariosDir())
	if err != nil {
		return err
	}
	files = scenario.WithBuiltin(files)
	defaultID := appConfig.DefaultScenario()

	fmt.Printf("Caves in %s:\n", appConfig.ScenariosDir())
	for _, file := range files {
		def := file.Definition
		marker := " "
		if def.ID == defaultID {
			marker = "*"
		}
		origin := file.Path
		if origin == "" {
			origin = "built-in"
		}
		fmt.Printf("%s %-16s %dx%d · %d pit(s) · %s\n", marker, def.ID, def.Rows, def.Cols, len(def.Pits), origin)
	}
	if defaultID == "" {
		fmt.Println("\nNo default cave set; new games use random layouts.")
	}
	return nil
}

// runScenariosValidate checks cave files one by one so a broken file does
// not hide the rest.
func runScenariosValidate(cmd *cobra.Command, args []string) error {
	target := appConfig.ScenariosDir()
	if len(args) > 0 {
		target = args[0]
	}
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(target)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
				paths = append(paths, filepath.Join(target, name))
			}
		}
	} else {
		paths = []string{target}
	}
	if len(paths) == 0 {
		fmt.Println("No cave files found.")
		return nil
	}

	bad := 0
	for _, path := range paths {
		file, err := scenario.LoadDefinitionFile(path)
		if err != nil {
			bad++
			fmt.Printf("✗ %s: %v\n", path, err)
			continue
		}
		fmt.Printf("✓ %s (%s)\n", file.Definition.ID, path)
	}
	if bad > 0 {
		return fmt.Errorf("%d invalid cave file(s)", bad)
	}
	return nil
}

// runScenariosUse sets the default cave in config.yaml.
func runScenariosUse(cmd *cobra.Command, args []string) error {
	files, err := scenario.LoadDefinitionDir(appConfig.ScenariosDir())
	if err != nil {
		return err
	}
	files = scenario.WithBuiltin(files)

	def, ok := scenario.Lookup(files, args[0])
	if !ok {
		return fmt.Errorf("unknown scenario %q; run 'wumpus scenarios list'", args[0])
	}
	if err := appConfig.SetDefaultScenario(def.ID); err != nil {
		return err
	}
	fmt.Printf("Default cave set to %s\n", def.ID)
	return nil
}

// runHistory prints lifetime totals and the most recent games.
func runHistory(cmd *cobra.Command, args []string) error {
	history, err := store.New(appConfig.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer func() { _ = history.Close() }()

	totals, err := history.Totals()
	if err != nil {
		return err
	}
	fmt.Printf("Games %d · Wins %d · Deaths %d · Abandoned %d\n",
		totals.Games, totals.Wins, totals.Deaths, totals.Abandoned)
	if totals.BestMoves > 0 {
		fmt.Printf("Best win: %d move(s)\n", totals.BestMoves)
	}
	if totals.Games == 0 {
		fmt.Println("\nNo expeditions yet. Run 'wumpus' to play.")
		return nil
	}

	records, err := history.RecentGames(historyCount)
	if err != nil {
		return err
	}
	fmt.Println()
	for _, rec := range records {
		cave := rec.Scenario
		if cave == "" {
			cave = fmt.Sprintf("random %dx%d", rec.Rows, rec.Cols)
		}
		fmt.Printf("%-10s %4d move(s)  %-18s %s\n",
			strings.ToUpper(string(rec.Outcome)), rec.Moves, cave,
			rec.PlayedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// runInit reports the home layout; the shared PreRun already created it.
func runInit(cmd *cobra.Command, args []string) error {
	fmt.Printf("Wumpus home ready at %s\n", appConfig.Home)
	fmt.Printf("  config:    %s\n", appConfig.ConfigPath())
	fmt.Printf("  scenarios: %s\n", appConfig.ScenariosDir())
	fmt.Printf("  saves:     %s\n", appConfig.SavesDir())
	fmt.Printf("  journal:   %s\n", appConfig.JournalPath())
	fmt.Printf("  history:   %s\n", appConfig.HistoryPath())
	return nil
}
