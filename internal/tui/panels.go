package tui

import (
	"fmt"
	"strings"

	"github.com/treellis/worldmatrix/internal/engine"
	"github.com/treellis/worldmatrix/internal/models"
)

// Panel layout constants. The box is 42 cells wide in total: 40 inner
// cells plus the double-line border.
const (
	panelInnerWidth = 40
	panelTextWidth  = panelInnerWidth - 2
	panelRuleWidth  = 28

	// panelGutter aligns detail rows under the Time/Weather values.
	panelGutter = "         "
)

// SourceBadge renders a provenance icon with its label, e.g. "⚡ cache".
func SourceBadge(p models.Provenance) string {
	return fmt.Sprintf("%s %s", engine.SourceIcon(p), string(p))
}

// RenderCityPanel renders one boxed city card: display name, local time,
// current conditions and the provenance of the temporal reading.
func RenderCityPanel(report engine.CityReport, units models.UnitSystem) string {
	weather := fmt.Sprintf("%s | %s",
		engine.FormatTemperature(report.Weather.Temperature, units),
		report.Weather.Condition,
	)
	humidity := fmt.Sprintf("%d%%", report.Weather.Humidity)

	rows := []string{
		HeaderStyle.Render(report.Profile.DisplayName),
		SubtleStyle.Render(strings.Repeat("═", panelTextWidth)),
		LabelStyle.Render("Time:    ") + ValueStyle.Render(engine.ClockText(report.Time.TimeText)),
		LabelStyle.Render("Weather: ") + ValueStyle.Render(weather),
		panelGutter + LabelStyle.Render("Humidity: ") + ValueStyle.Render(humidity),
		panelGutter + LabelStyle.Render("Wind: ") + ValueStyle.Render(engine.FormatWind(report.Weather.WindSpeed, units)),
		panelGutter + SubtleStyle.Render(strings.Repeat("-", panelRuleWidth)),
		LabelStyle.Render("Zone:    ") + ValueStyle.Render(report.Profile.Timezone),
		LabelStyle.Render("Source:  ") + ValueStyle.Render(SourceBadge(report.Time.Provenance)),
	}

	return PanelStyle.Width(panelInnerWidth).Render(strings.Join(rows, "\n"))
}

// RenderCityPanels renders one panel per report with a blank line between
// panels, preserving report order.
func RenderCityPanels(reports []engine.CityReport, units models.UnitSystem) string {
	if len(reports) == 0 {
		return ""
	}
	panels := make([]string, len(reports))
	for i, report := range reports {
		panels[i] = RenderCityPanel(report, units)
	}
	return strings.Join(panels, "\n\n")
}
