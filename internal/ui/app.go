package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/nishant0581/metacount/internal/counter"
	"github.com/nishant0581/metacount/internal/market"
	"github.com/nishant0581/metacount/internal/prefs"
	"github.com/nishant0581/metacount/internal/pubsub"
)

// View represents the current active view.
type View int

const (
	ViewCounters View = iota
	ViewMarket
)

// String returns the name stored in preferences.
func (v View) String() string {
	if v == ViewMarket {
		return "market"
	}
	return "counters"
}

// ParseView maps a stored view name back to a View. Unknown names select
// the counters view.
func ParseView(name string) View {
	if strings.EqualFold(strings.TrimSpace(name), "market") {
		return ViewMarket
	}
	return ViewCounters
}

// Counters is the part of the state manager the UI drives.
type Counters interface {
	AddCounter() string
	RemoveCounter(id string)
	Increment(id string)
	Decrement(id string)
	Reset(id string)
	SetStep(id string, step int)
	SetMin(id string, limit *int)
	SetMax(id string, limit *int)
	SetName(id, name string)
	SetNotes(id, notes string)
	StartAutoIncrement(id string)
	PauseAutoIncrement(id string)
	StopAutoIncrement(id string)
	Undo(id string)
	ListCounters() []counter.Counter
	Subscribe(ctx context.Context) <-chan pubsub.Event[[]counter.Counter]
}

// Options configures the UI.
type Options struct {
	Context     context.Context
	Counters    Counters
	Market      *market.Store // nil disables the market view
	VsCurrency  string
	RefreshTick time.Duration
	ThemeName   string
	PrefsPath   string
	InitialView string
	Selected    string
	Logger      *zerolog.Logger

	// RefreshMarket fetches fresh market data into Market. Nil makes the
	// refresh key re-read the store only.
	RefreshMarket func(ctx context.Context)
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	svc         Counters
	market      *market.Store
	refresh     func(ctx context.Context)
	vsCurrency  string
	prefsPath   string
	refreshTick time.Duration
	log         zerolog.Logger
	keys        keyMap
	now         func() time.Time

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Counter state
	counters        []counter.Counter
	selectedRow     int
	events          <-chan pubsub.Event[[]counter.Counter]
	historyViewport viewport.Model
	editor          editorState

	// Market state
	marketSnap market.Snapshot

	// Transient status line
	statusMsg string
	statusAt  time.Time
}

// New creates a new Bubble Tea model. It subscribes to opts.Counters for
// the lifetime of opts.Context.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	refreshTick := opts.RefreshTick
	if refreshTick <= 0 {
		refreshTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	vs := opts.VsCurrency
	if vs == "" {
		vs = market.DefaultVsCurrency
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	m := Model{
		ctx:         ctx,
		svc:         opts.Counters,
		market:      opts.Market,
		refresh:     opts.RefreshMarket,
		vsCurrency:  vs,
		prefsPath:   opts.PrefsPath,
		refreshTick: refreshTick,
		log:         log,
		keys:        DefaultKeyMap(),
		now:         time.Now,
		theme:       GetTheme(themeName),
		currentView: ParseView(opts.InitialView),
	}
	m.initHistoryViewport()
	if m.market == nil {
		m.currentView = ViewCounters
	}
	if m.svc != nil {
		m.events = m.svc.Subscribe(ctx)
		m.counters = m.svc.ListCounters()
	}
	m.selectByID(opts.Selected)
	m.updateHistoryViewport()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		pubsub.ListenCmd(m.ctx, m.events),
		tickCmd(m.refreshTick),
	}
	if m.market != nil {
		cmds = append(cmds, fetchMarketCmd(m.market))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateHistoryViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case marketMsg:
		m.marketSnap = market.Snapshot(msg)
		return m, nil

	case pubsub.Event[[]counter.Counter]:
		if msg.Type == pubsub.ClosedEvent {
			m.log.Debug().Msg("counter manager closed; quitting ui")
			m.events = nil
			return m, tea.Quit
		}
		m.setCounters(msg.Payload)
		return m, pubsub.ListenCmd(m.ctx, m.events)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.editor.active {
		return m.renderEditor()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.savePrefs()
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.editor.active {
		return m.handleEditorKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.updateHistoryViewport()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ViewCounters), key.Matches(msg, m.keys.Escape):
		m.currentView = ViewCounters
		return m, nil

	case key.Matches(msg, m.keys.ViewMarket):
		if m.market == nil {
			m.setStatus("market data is disabled")
			return m, nil
		}
		m.currentView = ViewMarket
		return m, fetchMarketCmd(m.market)
	}

	switch m.currentView {
	case ViewMarket:
		if key.Matches(msg, m.keys.Refresh) {
			if m.refresh == nil {
				return m, fetchMarketCmd(m.market)
			}
			m.setStatus("refreshing market data")
			return m, refreshMarketCmd(m.ctx, m.refresh, m.market)
		}
		return m, nil
	default:
		return m.handleCountersKey(msg)
	}
}

// handleCountersKey processes keyboard input for the counters view.
func (m Model) handleCountersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.svc == nil {
		return m, nil
	}

	if key.Matches(msg, m.keys.Add) {
		id := m.svc.AddCounter()
		m.refreshCounters()
		m.selectByID(id)
		m.updateHistoryViewport()
		return m, nil
	}

	c, ok := m.selectedCounter()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
			m.updateHistoryViewport()
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < len(m.counters)-1 {
			m.selectedRow++
			m.updateHistoryViewport()
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
		m.updateHistoryViewport()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = len(m.counters) - 1
		m.updateHistoryViewport()
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		cmd := m.openEditor(c, fieldName)
		return m, cmd

	case key.Matches(msg, m.keys.Increment):
		if !c.CanIncrement() {
			m.setStatus(c.Name + " is at its maximum")
		}
		m.svc.Increment(c.ID)
	case key.Matches(msg, m.keys.Decrement):
		if !c.CanDecrement() {
			m.setStatus(c.Name + " is at its minimum")
		}
		m.svc.Decrement(c.ID)
	case key.Matches(msg, m.keys.Reset):
		m.svc.Reset(c.ID)
	case key.Matches(msg, m.keys.Undo):
		m.svc.Undo(c.ID)
	case key.Matches(msg, m.keys.Remove):
		m.svc.RemoveCounter(c.ID)
	case key.Matches(msg, m.keys.Start):
		m.svc.StartAutoIncrement(c.ID)
	case key.Matches(msg, m.keys.Pause):
		m.svc.PauseAutoIncrement(c.ID)
	case key.Matches(msg, m.keys.Stop):
		m.svc.StopAutoIncrement(c.ID)
	default:
		return m, nil
	}

	m.refreshCounters()
	return m, nil
}

// refreshCounters pulls the committed collection right after a mutation so
// the screen does not wait for the published event.
func (m *Model) refreshCounters() {
	if m.svc == nil {
		return
	}
	m.setCounters(m.svc.ListCounters())
}

func (m Model) counterByID(id string) (counter.Counter, bool) {
	if i := counter.Find(m.counters, id); i >= 0 {
		return m.counters[i], true
	}
	return counter.Counter{}, false
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusAt = m.now()
}

// savePrefs persists theme, view and selection. Failures are logged only.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, View: m.currentView.String()}
	if c, ok := m.selectedCounter(); ok {
		p.Selected = c.ID
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn().Err(err).Str("path", m.prefsPath).Msg("save preferences failed")
	}
}

// handleTick refreshes the market snapshot and expires the status line.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.statusMsg != "" && m.now().Sub(m.statusAt) >= StatusMessageTTL {
		m.statusMsg = ""
	}

	cmds := []tea.Cmd{tickCmd(m.refreshTick)}
	if m.market != nil {
		cmds = append(cmds, fetchMarketCmd(m.market))
	}
	return m, tea.Batch(cmds...)
}

// renderMain renders header, command bar and the active view.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	switch m.currentView {
	case ViewMarket:
		b.WriteString(m.renderMarket())
	default:
		b.WriteString(m.renderCounters())
	}

	return b.String()
}

// Messages

type tickMsg time.Time

type marketMsg market.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchMarketCmd(store *market.Store) tea.Cmd {
	return func() tea.Msg {
		return marketMsg(store.Snapshot())
	}
}

// refreshMarketCmd runs a fetch round and then reports the updated store.
func refreshMarketCmd(ctx context.Context, refresh func(context.Context), store *market.Store) tea.Cmd {
	return func() tea.Msg {
		refresh(ctx)
		return marketMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return errors.Errorf("run ui: %w", err)
	}
	return nil
}
