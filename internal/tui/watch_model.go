package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/treellis/worldmatrix/internal/engine"
	"github.com/treellis/worldmatrix/internal/models"
)

// ViewState identifies which screen the watch dashboard is showing.
type ViewState int

const (
	// ViewStateLoading indicates the first snapshot has not arrived yet.
	ViewStateLoading ViewState = iota
	// ViewStateDashboard indicates city data is on screen.
	ViewStateDashboard
	// ViewStateQuitting indicates the program is shutting down.
	ViewStateQuitting
	// ViewStateError indicates a snapshot failed.
	ViewStateError
)

// Key strings matched against tea.KeyMsg.String().
const (
	keyQuit    = "q"
	keyCtrlC   = "ctrl+c"
	keyCompare = "c"
)

// minWatchInterval is the shortest allowed refresh period.
const minWatchInterval = 2 * time.Second

// SnapshotFunc fetches the current reports for the watched cities.
type SnapshotFunc func(ctx context.Context) ([]engine.CityReport, error)

// tickMsg fires when the refresh interval elapses.
type tickMsg time.Time

// snapshotMsg carries the result of a snapshot fetch.
type snapshotMsg struct {
	reports []engine.CityReport
	err     error
}

// WatchModel is the Bubble Tea model for continuous surveillance mode.
// It fetches a fresh snapshot every interval and renders either stacked
// city panels or the comparison table.
type WatchModel struct {
	ctx      context.Context
	fetch    SnapshotFunc
	units    models.UnitSystem
	interval time.Duration
	compare  bool

	state   ViewState
	reports []engine.CityReport
	cycle   int
	updated time.Time

	table   table.Model
	loading *LoadingState

	width  int
	height int

	clock func() time.Time
	err   error
}

// NewWatchModel creates a watch model. Intervals below two seconds are
// raised to the minimum so a misconfigured refresh cannot hammer the
// upstream feeds.
func NewWatchModel(
	ctx context.Context,
	fetch SnapshotFunc,
	units models.UnitSystem,
	interval time.Duration,
	compare bool,
) *WatchModel {
	if interval < minWatchInterval {
		interval = minWatchInterval
	}
	return &WatchModel{
		ctx:      ctx,
		fetch:    fetch,
		units:    units,
		interval: interval,
		compare:  compare,
		state:    ViewStateLoading,
		loading:  NewLoadingState(),
		width:    defaultWidth,
		height:   defaultHeight,
		clock:    time.Now,
	}
}

// SetClockForTest overrides the wall clock used for header timestamps.
func (m *WatchModel) SetClockForTest(clock func() time.Time) {
	m.clock = clock
}

// Err returns the error that terminated the dashboard, if any.
func (m *WatchModel) Err() error {
	return m.err
}

// Init starts the spinner and triggers the first snapshot.
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), m.fetchSnapshot())
}

// fetchSnapshot runs the fetch off the update loop and reports back.
func (m *WatchModel) fetchSnapshot() tea.Cmd {
	ctx := m.ctx
	fetch := m.fetch
	return func() tea.Msg {
		reports, err := fetch(ctx)
		return snapshotMsg{reports: reports, err: err}
	}
}

// scheduleTick arms the next refresh.
func (m *WatchModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		return m.handleSnapshot(msg)

	case tickMsg:
		return m, m.fetchSnapshot()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.state == ViewStateLoading {
		return m, m.loading.Update(msg)
	}
	return m, nil
}

func (m *WatchModel) handleSnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.state = ViewStateError
		return m, tea.Quit
	}

	// The first snapshot completes cycle 0; later ones advance the count.
	if m.state == ViewStateDashboard {
		m.cycle++
	}
	m.state = ViewStateDashboard
	m.reports = msg.reports
	m.updated = m.clock().UTC()
	m.rebuildTable()

	return m, m.scheduleTick()
}

func (m *WatchModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit

	case keyCompare:
		m.compare = !m.compare
		return m, nil

	default:
		if m.compare && m.state == ViewStateDashboard {
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// rebuildTable reconstructs the comparison table from the current reports.
func (m *WatchModel) rebuildTable() {
	columns := []table.Column{
		{Title: "City", Width: 12},
		{Title: "Time", Width: 14},
		{Title: "Temp", Width: 8},
		{Title: "Condition", Width: 16},
		{Title: "Humidity", Width: 8},
		{Title: "Wind", Width: 10},
		{Title: "Source", Width: 6},
	}

	rows := make([]table.Row, len(m.reports))
	for i, report := range m.reports {
		rows[i] = table.Row{
			report.Profile.DisplayName,
			engine.ClockText(report.Time.TimeText),
			engine.FormatTemperature(report.Weather.Temperature, m.units),
			report.Weather.Condition,
			fmt.Sprintf("%d%%", report.Weather.Humidity),
			engine.FormatWind(report.Weather.WindSpeed, m.units),
			engine.SourceIcon(report.Time.Provenance),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)

	m.table = t
}
