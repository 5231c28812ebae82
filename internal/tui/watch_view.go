package tui

import (
	"fmt"
	"strings"
)

// watchRuleWidth is the width of the horizontal rules framing the body.
const watchRuleWidth = 60

// watchClockLayout renders the header timestamp; the zone suffix is literal
// because the stamp is always normalized to UTC first.
const watchClockLayout = "15:04:05 UTC"

// View renders the current view (Bubble Tea interface).
func (m *WatchModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return fmt.Sprintf("Error: %v\n", m.err)
	case ViewStateLoading:
		return m.renderHeader() + m.loading.View()
	case ViewStateDashboard:
		return m.renderDashboard()
	default:
		return ""
	}
}

// renderHeader renders the cycle banner, the refresh line and the top rule.
func (m *WatchModel) renderHeader() string {
	stamp := m.updated
	if stamp.IsZero() {
		stamp = m.clock().UTC()
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Temporal-Atmospheric Surveillance - Cycle %d", m.cycle)))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("Refresh: %ds | %s",
		int(m.interval.Seconds()), stamp.Format(watchClockLayout))))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(strings.Repeat("─", watchRuleWidth)))
	b.WriteString("\n\n")
	return b.String()
}

// renderDashboard renders the header, the body and the footer.
func (m *WatchModel) renderDashboard() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())

	if m.compare {
		b.WriteString(m.table.View())
	} else {
		b.WriteString(RenderCityPanels(m.reports, m.units))
	}
	b.WriteString("\n")

	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(strings.Repeat("─", watchRuleWidth)))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("Next update in %ds | Ctrl+C to terminate",
		int(m.interval.Seconds()))))
	b.WriteString("\n")
	return b.String()
}
