package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"cratedig/internal/models"
	"cratedig/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LibraryView ViewState = iota
	SyncView
	StatsView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.LibraryEngine
	width        int
	height       int
	albumList    list.Model
	albums       []models.Album
	stats        models.LibraryStats
	progressChan chan tasks.ProgressUpdate
	resultChan   chan syncCompleteMsg
	progress     tasks.ProgressUpdate
	syncResult   *tasks.SyncResult
	err          error
	help         help.Model
	keys         keyMap
}

// albumItem wraps [models.Album] to implement list.Item.
type albumItem struct {
	album models.Album
}

func (i albumItem) FilterValue() string { return i.album.Name }
func (i albumItem) Title() string       { return i.album.Name }
func (i albumItem) Description() string {
	desc := i.album.Artists
	switch {
	case i.album.Rating != nil:
		desc = fmt.Sprintf("%s • %.1f/10", desc, *i.album.Rating)
	case i.album.Rated:
		desc = fmt.Sprintf("%s • unrated", desc)
	}
	return desc
}

type libraryLoadedMsg struct {
	result *tasks.LibraryResult
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

type syncCompleteMsg struct {
	result *tasks.SyncResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.LibraryEngine) *Model {
	return &Model{
		ctx:    ctx,
		view:   LibraryView,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by loading the album library.
func (m *Model) Init() tea.Cmd {
	return m.loadLibrary()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.albumList.Width() == 0 {
			m.albumList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case StatsView:
			return m.handleStatsKeys(msg)
		case SyncView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}

	case libraryLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.setLibrary(msg.result.Albums, msg.result.Stats)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.syncResult = msg.result
		m.err = msg.err
		if msg.result != nil {
			m.setLibrary(msg.result.Albums, msg.result.Stats)
		}
		m.view = StatsView
		m.progressChan = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != StatsView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LibraryView:
		return m.renderLibrary()
	case SyncView:
		return m.renderSync()
	case StatsView:
		return m.renderStats()
	default:
		return ""
	}
}

func (m *Model) setLibrary(albums []models.Album, stats models.LibraryStats) {
	m.albums = albums
	m.stats = stats

	items := make([]list.Item, len(albums))
	for i, album := range albums {
		items[i] = albumItem{album: album}
	}
	m.albumList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.albumList.Title = "Album Library"
	m.albumList.SetSize(m.width-4, m.height-8)
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "s":
		m.view = SyncView
		return m, m.startSync()
	case "t":
		m.view = StatsView
		return m, nil
	}

	var cmd tea.Cmd
	m.albumList, cmd = m.albumList.Update(msg)
	return m, cmd
}

func (m *Model) handleStatsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = LibraryView
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != LibraryView {
		return m, nil
	}
	var cmd tea.Cmd
	m.albumList, cmd = m.albumList.Update(msg)
	return m, cmd
}

func (m *Model) loadLibrary() tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.GetLibrary(m.ctx, nil)
		return libraryLoadedMsg{result: result, err: err}
	}
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan

	resultChan := make(chan syncCompleteMsg, 1)
	go func() {
		result, err := m.engine.SyncLibrary(m.ctx, progressChan)
		resultChan <- syncCompleteMsg{result: result, err: err}
		close(progressChan)
	}()
	m.resultChan = resultChan

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return nil
		}

		update, ok := <-m.progressChan
		if !ok {
			return <-m.resultChan
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderLibrary() string {
	helpKeys := []key.Binding{m.keys.sync, m.keys.stats, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.albumList.View(), helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Library")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchLibrary:
		phase = "Fetching saved albums from Spotify..."
	case tasks.StoreLibrary:
		phase = "Storing albums..."
	case tasks.ResolveRatings:
		phase = fmt.Sprintf("Resolving ratings (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.dim.Render(m.progress.Message))
}

func (m *Model) renderStats() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v\n\nPress esc to go back, q to quit", m.err))
	}

	title := styles.ok.Render("Library Statistics")
	info := fmt.Sprintf(
		"\nAlbums: %d\nRated: %d\nUnrated: %d",
		len(m.albums), m.stats.Rated, m.stats.Unrated,
	)
	if m.stats.Rated > 0 {
		info += fmt.Sprintf("\nHighest: %.1f\nLowest: %.1f\nMean: %.1f", m.stats.Highest, m.stats.Lowest, m.stats.Mean)
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
