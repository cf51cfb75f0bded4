// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for Wumpus World.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/kingrea/wumpusworld/internal/config"
	"github.com/kingrea/wumpusworld/internal/game"
	"github.com/kingrea/wumpusworld/internal/journal"
	"github.com/kingrea/wumpusworld/internal/save"
	"github.com/kingrea/wumpusworld/internal/scenario"
	"github.com/kingrea/wumpusworld/internal/store"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMainMenu       appState = iota // Entry menu with "Enter the Cave", etc.
	stateScenarioSelect                 // Fixed cave picker before descending
	statePlaying                        // An expedition in progress
	stateHistory                        // Past expeditions from the history store
)

const (
	quickSlot        = "quicksave"
	historyLimit     = 12
	journalTailLines = 6
	playControls     = "Arrows → move    r → restart    s → save    Esc → menu"
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithScenarioFiles replaces the caves loaded from the scenarios directory.
func WithScenarioFiles(files []scenario.DefinitionFile) AppOption {
	return func(a *App) {
		a.scenarios = files
	}
}

// WithHistory overrides the expedition history store.
func WithHistory(history *store.Store) AppOption {
	return func(a *App) {
		a.history = history
	}
}

type historyRefreshMsg struct {
	records []store.Record
	totals  store.Totals
	err     error
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state   appState
	config  *config.Config
	game    *game.Game
	journal *journal.Journal
	history *store.Store
	saves   *save.Store

	scenarios      []scenario.DefinitionFile
	activeScenario string
	gameID         string
	startedAt      time.Time
	recorded       bool

	// UI components
	mainMenu     list.Model // The main menu list
	scenarioMenu list.Model // The cave picker list
	statusMsg    string     // Status message to display

	// Window size (we get this from bubbletea)
	width  int
	height int

	// History screen data
	historyRecords []store.Record
	historyTotals  store.Totals
	historyErr     string
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

type scenarioOption struct {
	id   string
	name string
	desc string
}

func (o scenarioOption) Title() string       { return o.name }
func (o scenarioOption) Description() string { return o.desc }
func (o scenarioOption) FilterValue() string { return o.id }

func (o scenarioOption) ID() string { return o.id }

// NewApp creates a new App instance rooted at the given home directory.
func NewApp(home string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(home)
	if err != nil {
		return nil, err
	}

	var jl *journal.Journal
	if j, jerr := journal.New(cfg.JournalPath()); jerr == nil {
		jl = j
		jl.Info("Session opened")
	}

	app := &App{
		state:   stateMainMenu,
		config:  cfg,
		journal: jl,
		saves:   save.NewStore(cfg.SavesDir()),
	}

	if history, herr := store.New(cfg.HistoryPath()); herr == nil {
		app.history = history
	} else {
		app.historyErr = herr.Error()
	}

	if files, lerr := scenario.LoadDefinitionDir(cfg.ScenariosDir()); lerr == nil {
		app.scenarios = files
	} else {
		app.logWarn("Scenario directory unreadable: %v", lerr)
	}

	mainMenu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "⬡ WUMPUS WORLD"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)
	scenarioMenu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	scenarioMenu.Title = "Select Cave"
	scenarioMenu.SetShowStatusBar(false)
	scenarioMenu.SetFilteringEnabled(false)
	app.mainMenu = mainMenu
	app.scenarioMenu = scenarioMenu

	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.scenarios = scenario.WithBuiltin(app.scenarios)
	app.refreshScenarioMenu()
	app.refreshMainMenu()
	return app, nil
}

// Close releases the history store.
func (a *App) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}

// buildMainMenu creates the main menu items based on the current run state
func (a *App) buildMainMenu() []list.Item {
	items := []list.Item{}

	// Show "Continue" if an unfinished expedition is in memory
	if a.game != nil && !a.game.Over() {
		items = append(items, menuItem{
			title: fmt.Sprintf("Continue Expedition (%d moves)", a.game.Stats().Moves),
			desc:  "Return to the cave where you left off",
		})
	}

	if infos := a.saveInfos(); len(infos) > 0 {
		latest := infos[0]
		items = append(items, menuItem{
			title: fmt.Sprintf("Resume Save (%s)", latest.Slot),
			desc:  fmt.Sprintf("%d move(s), saved %s ago", latest.Moves, humanizeDuration(time.Since(latest.SavedAt))),
		})
	}

	items = append(items,
		menuItem{title: "Enter the Cave", desc: "Random cave from your settings"},
		menuItem{title: "Choose a Cave", desc: "Pick a fixed scenario layout"},
		menuItem{title: "Expedition History", desc: "Wins, deaths, and best runs"},
		menuItem{title: "Exit", desc: "Leave the caves behind"},
	)

	return items
}

func (a *App) refreshMainMenu() {
	a.mainMenu.SetItems(a.buildMainMenu())
}

func (a *App) refreshScenarioMenu() {
	options := a.buildScenarioOptions()
	items := make([]list.Item, len(options))
	for i := range options {
		items[i] = options[i]
	}
	a.scenarioMenu.SetItems(items)
	if len(items) == 0 {
		return
	}
	idx := a.scenarioOptionIndex(a.config.DefaultScenario())
	if idx < 0 {
		idx = 0
	}
	a.scenarioMenu.Select(idx)
}

func (a *App) buildScenarioOptions() []scenarioOption {
	opts := make([]scenarioOption, 0, len(a.scenarios))
	for _, file := range a.scenarios {
		def := file.Definition
		option := scenarioOption{
			id:   def.ID,
			name: def.Name,
			desc: fmt.Sprintf("%dx%d · %d pit(s)", def.Rows, def.Cols, len(def.Pits)),
		}
		if option.name == "" {
			option.name = def.ID
		}
		if desc := strings.TrimSpace(def.Description); desc != "" {
			option.desc = fmt.Sprintf("%s · %s", option.desc, desc)
		}
		opts = append(opts, option)
	}
	return opts
}

func (a *App) scenarioOptionIndex(id string) int {
	target := strings.ToLower(strings.TrimSpace(id))
	if target == "" {
		return -1
	}
	for idx, file := range a.scenarios {
		if strings.ToLower(file.Definition.ID) == target {
			return idx
		}
	}
	return -1
}

func (a *App) saveInfos() []save.Info {
	if a.saves == nil {
		return nil
	}
	infos, err := a.saves.List()
	if err != nil {
		return nil
	}
	return infos
}

func (a *App) logInfo(format string, args ...any) {
	if a.journal == nil {
		return
	}
	a.journal.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.journal == nil {
		return
	}
	a.journal.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.journal == nil {
		return
	}
	a.journal.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.fetchHistory()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		a.scenarioMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		return a, nil

	case historyRefreshMsg:
		if msg.err != nil {
			a.historyErr = msg.err.Error()
		} else {
			a.historyErr = ""
			a.historyRecords = msg.records
			a.historyTotals = msg.totals
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateMainMenu {
				return a, tea.Quit
			}
			if a.state == stateHistory {
				return a.returnToMainMenu()
			}
		case "esc":
			if a.state != stateMainMenu {
				return a.returnToMainMenu()
			}
		case "up", "down", "left", "right":
			if a.state == statePlaying {
				if dir, err := game.ParseDirection(key); err == nil {
					return a.movePlayer(dir)
				}
			}
		case "r":
			switch a.state {
			case statePlaying:
				return a.restartGame()
			case stateHistory, stateMainMenu:
				a.statusMsg = "Refreshing history..."
				return a, a.fetchHistory()
			}
		case "s":
			if a.state == statePlaying {
				return a.saveGame()
			}
		case "enter":
			switch a.state {
			case stateMainMenu:
				return a.handleMainMenuSelection()
			case stateScenarioSelect:
				return a.confirmScenarioSelection()
			}
		}

	}

	var cmds []tea.Cmd
	switch a.state {
	case stateMainMenu:
		var menuCmd tea.Cmd
		a.mainMenu, menuCmd = a.mainMenu.Update(msg)
		if menuCmd != nil {
			cmds = append(cmds, menuCmd)
		}
	case stateScenarioSelect:
		var menuCmd tea.Cmd
		a.scenarioMenu, menuCmd = a.scenarioMenu.Update(msg)
		if menuCmd != nil {
			cmds = append(cmds, menuCmd)
		}
	}

	return a, tea.Batch(cmds...)
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}

	switch {
	case strings.HasPrefix(item.title, "Continue Expedition"):
		a.state = statePlaying
		a.statusMsg = playControls
		return a, nil

	case strings.HasPrefix(item.title, "Resume Save"):
		a.logInfo("Menu · Resume Save selected")
		return a.resumeSavedGame()

	case item.title == "Enter the Cave":
		a.logInfo("Menu · Enter the Cave selected")
		return a.startRandomGame()

	case item.title == "Choose a Cave":
		a.logInfo("Menu · Choose a Cave selected")
		return a.beginScenarioSelection()

	case item.title == "Expedition History":
		a.state = stateHistory
		return a, a.fetchHistory()

	case item.title == "Exit":
		a.logInfo("Menu · Exit selected")
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) beginScenarioSelection() (tea.Model, tea.Cmd) {
	a.refreshScenarioMenu()
	a.state = stateScenarioSelect
	if a.width > 0 && a.height > 0 {
		a.scenarioMenu.SetSize(max(0, a.width-6), max(0, a.height-10))
	}
	a.statusMsg = "Select a cave to explore"
	return a, nil
}

func (a *App) confirmScenarioSelection() (tea.Model, tea.Cmd) {
	item, ok := a.scenarioMenu.SelectedItem().(scenarioOption)
	if !ok {
		a.statusMsg = "Cave selection unavailable"
		return a, nil
	}
	def, ok := scenario.Lookup(a.scenarios, item.ID())
	if !ok {
		a.statusMsg = fmt.Sprintf("Cave %q is gone from the shelf", item.ID())
		return a, nil
	}
	if err := a.config.SetDefaultScenario(def.ID); err != nil {
		a.logWarn("Could not remember cave choice: %v", err)
	}
	a.logInfo("Cave · %s selected", def.ID)
	return a.startScenarioGame(def)
}

func (a *App) startRandomGame() (tea.Model, tea.Cmd) {
	g, err := game.NewGame(a.config.Params())
	if err != nil {
		a.statusMsg = fmt.Sprintf("Could not dig a cave: %v", err)
		a.logError("Cave generation failed: %v", err)
		return a, nil
	}
	a.beginGame(g, "")
	a.logInfo("Cave entered · %dx%d · seed %d", g.Rows(), g.Cols(), g.Seed())
	return a, nil
}

func (a *App) startScenarioGame(def scenario.Definition) (tea.Model, tea.Cmd) {
	g, err := game.NewGameFromLayout(def.Layout())
	if err != nil {
		a.statusMsg = fmt.Sprintf("Cave %q will not open: %v", def.ID, err)
		a.logError("Scenario %s failed to start: %v", def.ID, err)
		return a, nil
	}
	a.beginGame(g, def.ID)
	a.logInfo("Cave entered · scenario %s", def.ID)
	return a, nil
}

func (a *App) beginGame(g *game.Game, scenarioID string) {
	a.game = g
	a.activeScenario = scenarioID
	a.gameID = uuid.NewString()
	a.startedAt = time.Now()
	a.recorded = false
	a.state = statePlaying
	a.statusMsg = playControls
}

func (a *App) movePlayer(dir game.Direction) (tea.Model, tea.Cmd) {
	if a.game == nil || a.game.Over() {
		return a, nil
	}
	result := a.game.Move(dir)
	a.journalEvents(result.Events)
	if a.game.Over() {
		outcome := store.OutcomeFromEvents(result.Events)
		a.recordOutcome(outcome)
		return a, a.fetchHistory()
	}
	return a, nil
}

func (a *App) journalEvents(events []game.Event) {
	pos := a.game.Position()
	stats := a.game.Stats()
	for _, ev := range events {
		switch ev {
		case game.EventGold:
			a.logInfo("Gold claimed after %d move(s)", stats.Moves)
		case game.EventWin:
			a.logInfo("Expedition won in %d move(s)", stats.Moves)
		case game.EventPit:
			a.logError("Fell into a pit at row %d, col %d", pos.Row, pos.Col)
		case game.EventWumpus:
			a.logError("Eaten by the Wumpus at row %d, col %d", pos.Row, pos.Col)
		case game.EventBreeze:
			a.logWarn("Breeze felt at row %d, col %d", pos.Row, pos.Col)
		case game.EventStench:
			a.logWarn("Stench smelled at row %d, col %d", pos.Row, pos.Col)
		}
	}
}

func (a *App) recordOutcome(outcome store.Outcome) {
	if a.history == nil || a.recorded || a.game == nil {
		return
	}
	stats := a.game.Stats()
	rec := store.Record{
		GameID:   a.gameID,
		Scenario: a.activeScenario,
		Seed:     a.game.Seed(),
		Rows:     a.game.Rows(),
		Cols:     a.game.Cols(),
		Outcome:  outcome,
		Moves:    stats.Moves,
		Cells:    stats.CellsVisited,
		GotGold:  a.game.HasGold(),
		Duration: time.Since(a.startedAt),
	}
	if err := a.history.RecordGame(rec); err != nil {
		a.logWarn("History not recorded: %v", err)
		return
	}
	a.recorded = true
}

func (a *App) restartGame() (tea.Model, tea.Cmd) {
	if a.game == nil {
		return a, nil
	}
	if !a.game.Over() && a.game.Stats().Moves > 0 {
		a.recordOutcome(store.OutcomeAbandoned)
	}
	a.game.Restart()
	a.gameID = uuid.NewString()
	a.startedAt = time.Now()
	a.recorded = false
	a.statusMsg = playControls
	a.logInfo("Cave restarted")
	return a, a.fetchHistory()
}

func (a *App) saveGame() (tea.Model, tea.Cmd) {
	if a.game == nil || a.saves == nil {
		return a, nil
	}
	if a.game.Over() {
		a.statusMsg = "Nothing left to save. Press r to play again."
		return a, nil
	}
	snap := save.Snapshot{
		Scenario: a.activeScenario,
		Seed:     a.game.Seed(),
		Layout:   a.game.Layout(),
		State:    a.game.State(),
	}
	if err := a.saves.Write(quickSlot, snap); err != nil {
		a.statusMsg = fmt.Sprintf("Save failed: %v", err)
		a.logError("Save failed: %v", err)
		return a, nil
	}
	a.statusMsg = fmt.Sprintf("Expedition saved to slot %s", quickSlot)
	a.logInfo("Expedition saved to slot %s", quickSlot)
	return a, nil
}

func (a *App) resumeSavedGame() (tea.Model, tea.Cmd) {
	infos := a.saveInfos()
	if len(infos) == 0 {
		a.statusMsg = "No saved expeditions"
		return a, nil
	}
	snap, err := a.saves.Load(infos[0].Slot)
	if err != nil {
		a.statusMsg = fmt.Sprintf("Resume failed: %v", err)
		a.logError("Resume from slot %s failed: %v", infos[0].Slot, err)
		return a, nil
	}
	g, err := snap.Game()
	if err != nil {
		a.statusMsg = fmt.Sprintf("Saved cave will not open: %v", err)
		a.logError("Saved cave will not open: %v", err)
		return a, nil
	}
	a.beginGame(g, snap.Scenario)
	a.logInfo("Expedition resumed from slot %s (%d moves in)", snap.Slot, g.Stats().Moves)
	return a, nil
}

// returnToMainMenu transitions back to the main menu
func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	a.state = stateMainMenu
	a.statusMsg = ""
	a.refreshMainMenu()
	a.refreshScenarioMenu()
	return a, a.fetchHistory()
}

func (a *App) fetchHistory() tea.Cmd {
	history := a.history
	if history == nil {
		return nil
	}
	return func() tea.Msg {
		records, err := history.RecentGames(historyLimit)
		if err != nil {
			return historyRefreshMsg{err: err}
		}
		totals, err := history.Totals()
		if err != nil {
			return historyRefreshMsg{err: err}
		}
		return historyRefreshMsg{records: records, totals: totals}
	}
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
	}
	if leftWidth < 20 {
		leftWidth = width
		rightWidth = 0
	}
	if a.state == stateMainMenu {
		a.mainMenu.SetSize(max(20, leftWidth-4), max(10, a.height-10))
	}
	var content string
	switch a.state {
	case stateMainMenu:
		content = a.mainMenu.View()
	case stateScenarioSelect:
		content = a.renderScenarioSelection()
	case statePlaying:
		content = a.renderGame()
	case stateHistory:
		content = a.renderHistory()
	}
	return a.renderFrame(content, leftWidth, rightWidth)
}

func (a *App) renderFrame(mainContent string, leftWidth, rightWidth int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ WUMPUS WORLD")
	left := lipgloss.JoinVertical(lipgloss.Left,
		a.renderStatusPanel(leftWidth-4),
		"",
		a.renderMainArea(mainContent, leftWidth-4),
	)
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, leftWidth)).
		Render(left)
	var body string
	if rightWidth > 0 {
		right := a.renderSidePanel(rightWidth - 4)
		rightBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(max(20, rightWidth)).
			Render(right)
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = leftBox
	}
	sections := []string{header, body}
	if journalPanel := a.renderJournalPanel(); journalPanel != "" {
		sections = append(sections, journalPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderStatusPanel(width int) string {
	var lines []string
	if a.game != nil {
		caveLine := fmt.Sprintf("Cave: %dx%d · seed %d", a.game.Rows(), a.game.Cols(), a.game.Seed())
		if a.activeScenario != "" {
			caveLine = fmt.Sprintf("Cave: %s · %dx%d", a.activeScenario, a.game.Rows(), a.game.Cols())
		}
		lines = append(lines, caveLine)
		gold := "not yet"
		if a.game.HasGold() {
			gold = "in your pack"
		}
		lines = append(lines, fmt.Sprintf("Gold: %s", gold))
	} else {
		lines = append(lines, "No expedition underway")
	}
	if a.historyTotals.Games > 0 {
		lines = append(lines, fmt.Sprintf(
			"Record: %d game(s) · %d won · %d lost",
			a.historyTotals.Games,
			a.historyTotals.Wins,
			a.historyTotals.Deaths,
		))
	}
	if a.historyErr != "" {
		lines = append(lines, fmt.Sprintf("⚠ %s", a.historyErr))
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderMainArea(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		content = "Ready to explore."
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(content)
}

func (a *App) renderScenarioSelection() string {
	view := a.scenarioMenu.View()
	if strings.TrimSpace(view) == "" {
		view = "No caves on the shelf"
	}
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		MarginTop(1).
		Render("Enter → descend    Esc → back")
	return lipgloss.JoinVertical(lipgloss.Left, view, hint)
}

func (a *App) renderGame() string {
	g := a.game
	if g == nil {
		return "No expedition underway."
	}
	board := a.renderBoard(g)
	message := a.renderMessage(g)
	controls := playControls
	if g.Over() {
		controls = "r → play again    Esc → menu"
	}
	controlLine := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		MarginTop(1).
		Render(controls)
	return lipgloss.JoinVertical(lipgloss.Left, board, "", message, controlLine)
}

func (a *App) renderMessage(g *game.Game) string {
	style := lipgloss.NewStyle().Bold(true)
	switch {
	case g.Won():
		style = style.Foreground(lipgloss.Color("#5B8DEF"))
	case g.Over():
		style = style.Foreground(lipgloss.Color("#FF6B6B"))
	default:
		style = style.Foreground(lipgloss.Color("#AAAAAA"))
	}
	return style.Render(g.Message())
}

func (a *App) renderBoard(g *game.Game) string {
	rows := make([]string, 0, g.Rows())
	for r := 0; r < g.Rows(); r++ {
		cells := make([]string, 0, g.Cols())
		for c := 0; c < g.Cols(); c++ {
			cells = append(cells, a.renderCell(g, game.Position{Row: r, Col: c}))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderCell(g *game.Game, p game.Position) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Width(3).
		Align(lipgloss.Center)
	glyph := "?"
	color := "#444444"
	switch {
	case p == g.Position():
		glyph = "@"
		color = "#5B8DEF"
		if g.HasGold() {
			color = "#FFD700"
		}
		style = style.Bold(true).BorderForeground(lipgloss.Color(color))
	case g.Visited(p):
		cell, _ := g.CellAt(p)
		switch {
		case cell.Breeze && cell.Stench:
			glyph = "&"
			color = "#BC6BFF"
		case cell.Breeze:
			glyph = "b"
			color = "#5B8DEF"
		case cell.Stench:
			glyph = "s"
			color = "#FF6B6B"
		case p == g.Start():
			glyph = "⌂"
			color = "#AAAAAA"
		default:
			glyph = "."
			color = "#888888"
		}
	}
	return style.Foreground(lipgloss.Color(color)).Render(glyph)
}

func (a *App) renderHistory() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Expedition History")
	totals := a.historyTotals
	summary := fmt.Sprintf(
		"Games %d · Wins %d · Deaths %d · Abandoned %d",
		totals.Games, totals.Wins, totals.Deaths, totals.Abandoned,
	)
	if totals.BestMoves > 0 {
		summary += fmt.Sprintf(" · Best win %d move(s)", totals.BestMoves)
	}
	lines := []string{title, summary, ""}
	if a.historyErr != "" {
		lines = append(lines, fmt.Sprintf("⚠ %s", a.historyErr))
	}
	if len(a.historyRecords) == 0 {
		lines = append(lines, "No expeditions recorded yet.")
	}
	for _, rec := range a.historyRecords {
		lines = append(lines, a.renderHistoryRow(rec))
	}
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		MarginTop(1).
		Render("r → refresh    Esc → menu")
	lines = append(lines, hint)
	return strings.Join(lines, "\n")
}

func (a *App) renderHistoryRow(rec store.Record) string {
	color := "#888888"
	switch rec.Outcome {
	case store.OutcomeWon:
		color = "#5B8DEF"
	case store.OutcomePit, store.OutcomeWumpus:
		color = "#FF6B6B"
	}
	outcome := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(color)).
		Render(fmt.Sprintf("%-9s", strings.ToUpper(string(rec.Outcome))))
	cave := rec.Scenario
	if cave == "" {
		cave = fmt.Sprintf("random %dx%d", rec.Rows, rec.Cols)
	}
	age := ""
	if !rec.PlayedAt.IsZero() {
		age = fmt.Sprintf(" · %s ago", humanizeDuration(time.Since(rec.PlayedAt)))
	}
	return fmt.Sprintf("%s %3d move(s) · %s%s", outcome, rec.Moves, cave, age)
}

func (a *App) renderSidePanel(width int) string {
	if a.state == statePlaying && a.game != nil {
		return a.renderNotesPanel(width)
	}
	return a.renderRecordPanel(width)
}

func (a *App) renderNotesPanel(width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Explorer's Notes")
	var lines []string
	for _, hint := range game.Hints() {
		lines = append(lines, fmt.Sprintf("• %s", hint))
	}
	stats := a.game.Stats()
	senses := "nothing"
	if cell, ok := a.game.CellAt(a.game.Position()); ok {
		switch {
		case cell.Breeze && cell.Stench:
			senses = "breeze & stench"
		case cell.Breeze:
			senses = "breeze"
		case cell.Stench:
			senses = "stench"
		}
	}
	statLines := []string{
		"",
		fmt.Sprintf("Moves: %d", stats.Moves),
		fmt.Sprintf("Explored: %d/%d cells", stats.CellsVisited, a.game.Rows()*a.game.Cols()),
		fmt.Sprintf("Senses: %s", senses),
	}
	body := strings.Join(append(lines, statLines...), "\n")
	return lipgloss.NewStyle().Width(max(20, width)).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, body),
	)
}

func (a *App) renderRecordPanel(width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Recent Expeditions")
	if len(a.historyRecords) == 0 {
		note := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Render("No expeditions yet. Enter the cave to start one.")
		return lipgloss.JoinVertical(lipgloss.Left, title, note)
	}
	var rows []string
	limit := len(a.historyRecords)
	if limit > 5 {
		limit = 5
	}
	for _, rec := range a.historyRecords[:limit] {
		rows = append(rows, a.renderHistoryRow(rec))
	}
	body := strings.Join(rows, "\n")
	return lipgloss.NewStyle().Width(max(20, width)).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, body),
	)
}

func (a *App) renderJournalPanel() string {
	if a.journal == nil {
		return ""
	}
	lines, total := a.journal.Tail(journalTailLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.journal.Path())
	if fileName == "." || fileName == "" {
		fileName = "journal"
	}
	label := fmt.Sprintf("JOURNAL · %s", fileName)
	if total > len(lines) {
		label = fmt.Sprintf("JOURNAL · %s (last %d of %d)", fileName, len(lines), total)
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(label)
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
	return box
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
