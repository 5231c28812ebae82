package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treellis/worldmatrix/internal/engine"
	"github.com/treellis/worldmatrix/internal/models"
)

type stubSnapshot struct {
	mu      sync.Mutex
	calls   int
	reports []engine.CityReport
	err     error
}

func (s *stubSnapshot) fetch(_ context.Context) ([]engine.CityReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.reports, nil
}

func (s *stubSnapshot) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newWatchFixture(t *testing.T, stub *stubSnapshot, compare bool) *WatchModel {
	t.Helper()

	m := NewWatchModel(context.Background(), stub.fetch, models.UnitsMetric, 5*time.Second, compare)
	m.SetClockForTest(func() time.Time {
		return time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC)
	})
	return m
}

func TestNewWatchModelClampsInterval(t *testing.T) {
	stub := &stubSnapshot{}

	m := NewWatchModel(context.Background(), stub.fetch, models.UnitsMetric, 500*time.Millisecond, false)
	assert.Equal(t, minWatchInterval, m.interval)

	m = NewWatchModel(context.Background(), stub.fetch, models.UnitsMetric, 10*time.Second, false)
	assert.Equal(t, 10*time.Second, m.interval)
}

func TestWatchModelInitFetchesFirstSnapshot(t *testing.T) {
	stub := &stubSnapshot{reports: []engine.CityReport{panelReport(t, "london")}}
	m := newWatchFixture(t, stub, false)

	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, ViewStateLoading, m.state)
}

func TestWatchModelSnapshotAdvancesCycle(t *testing.T) {
	stub := &stubSnapshot{reports: []engine.CityReport{panelReport(t, "london")}}
	m := newWatchFixture(t, stub, false)

	// First snapshot completes cycle 0.
	_, cmd := m.Update(snapshotMsg{reports: stub.reports})
	require.NotNil(t, cmd, "a refresh tick must be scheduled")
	assert.Equal(t, ViewStateDashboard, m.state)
	assert.Equal(t, 0, m.cycle)
	assert.Len(t, m.reports, 1)

	// Later snapshots advance the counter.
	_, _ = m.Update(snapshotMsg{reports: stub.reports})
	assert.Equal(t, 1, m.cycle)
	_, _ = m.Update(snapshotMsg{reports: stub.reports})
	assert.Equal(t, 2, m.cycle)
}

func TestWatchModelTickTriggersFetch(t *testing.T) {
	stub := &stubSnapshot{reports: []engine.CityReport{panelReport(t, "london")}}
	m := newWatchFixture(t, stub, false)

	_, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, snapshotMsg{}, msg)
	assert.Equal(t, 1, stub.callCount())

	snap := msg.(snapshotMsg)
	require.NoError(t, snap.err)
	assert.Len(t, snap.reports, 1)
}

func TestWatchModelQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{name: "q", key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}},
		{name: "ctrl+c", key: tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubSnapshot{reports: []engine.CityReport{panelReport(t, "london")}}
			m := newWatchFixture(t, stub, false)
			_, _ = m.Update(snapshotMsg{reports: stub.reports})

			_, cmd := m.Update(tc.key)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Equal(t, ViewStateQuitting, m.state)
			assert.Empty(t, m.View())
		})
	}
}

func TestWatchModelSnapshotErrorQuits(t *testing.T) {
	stub := &stubSnapshot{err: errors.New("upstream unreachable")}
	m := newWatchFixture(t, stub, false)

	_, cmd := m.Update(snapshotMsg{err: stub.err})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, ViewStateError, m.state)
	require.Error(t, m.Err())
	assert.Contains(t, m.View(), "upstream unreachable")
}

func TestWatchModelViewHeaderAndFooter(t *testing.T) {
	stub := &stubSnapshot{reports: []engine.CityReport{panelReport(t, "london")}}
	m := newWatchFixture(t, stub, false)
	_, _ = m.Update(snapshotMsg{reports: stub.reports})

	out := m.View()

	assert.Contains(t, out, "Temporal-Atmospheric Surveillance - Cycle 0")
	assert.Contains(t, out, "Refresh: 5s | 09:30:00 UTC")
	assert.Contains(t, out, "Next update in 5s | Ctrl+C to terminate")
	assert.Contains(t, out, "London")
}

func TestWatchModelCompareShowsTable(t *testing.T) {
	stub := &stubSnapshot{reports: []engine.CityReport{
		panelReport(t, "london"),
		panelReport(t, "tokyo"),
	}}
	m := newWatchFixture(t, stub, true)
	_, _ = m.Update(snapshotMsg{reports: stub.reports})

	out := m.View()

	assert.Contains(t, out, "City")
	assert.Contains(t, out, "Condition")
	assert.Contains(t, out, "📡")
	// Panels are not drawn in compare mode.
	assert.NotContains(t, out, "╔")
}

func TestWatchModelCompareToggle(t *testing.T) {
	stub := &stubSnapshot{reports: []engine.CityReport{panelReport(t, "london")}}
	m := newWatchFixture(t, stub, false)
	_, _ = m.Update(snapshotMsg{reports: stub.reports})
	assert.Contains(t, m.View(), "╔")

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.NotContains(t, m.View(), "╔")

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Contains(t, m.View(), "╔")
}

func TestWatchModelWindowResize(t *testing.T) {
	stub := &stubSnapshot{reports: []engine.CityReport{panelReport(t, "london")}}
	m := newWatchFixture(t, stub, false)

	_, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
}
