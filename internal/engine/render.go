package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/treellis/worldmatrix/internal/models"
)

// rawSystemName identifies the producer in the raw feed envelope; downstream
// consumers key on it and it must stay stable across releases.
const rawSystemName = "temporal-atmospheric-matrix"

// rawTimestampLayout renders the envelope stamp as UTC with microseconds.
const rawTimestampLayout = "2006-01-02T15:04:05.000000Z"

// generatedAtLayout stamps human-readable output headers.
const generatedAtLayout = "2006-01-02 15:04:05 UTC"

// tabwriterPadding is the minimum padding between comparison table columns.
const tabwriterPadding = 2

// conditionColumnWidth caps the condition column in the comparison table.
const conditionColumnWidth = 16

// truncateMinLen is the minimum truncation length below which no ellipsis is
// added.
const truncateMinLen = 3

// SourceIcon returns the glyph marking which tier produced a record.
func SourceIcon(p models.Provenance) string {
	switch p {
	case models.ProvenanceCache:
		return "⚡" // high voltage
	case models.ProvenanceAPI:
		return "\U0001f4e1" // satellite antenna
	case models.ProvenanceFallback:
		return "\U0001f504" // anticlockwise arrows
	default:
		return "?"
	}
}

// FormatTemperature renders a temperature with its unit suffix.
func FormatTemperature(v float64, units models.UnitSystem) string {
	return fmt.Sprintf("%.1f%s", v, units.TemperatureSuffix())
}

// FormatWind renders a wind speed with its unit suffix.
func FormatWind(v float64, units models.UnitSystem) string {
	return fmt.Sprintf("%.1f %s", v, units.WindSuffix())
}

// ClockText strips the date from a canonical time text, keeping the clock
// and zone ("2026-01-15 09:30:00 GMT" becomes "09:30:00 GMT").
func ClockText(timeText string) string {
	parts := strings.Fields(timeText)
	if len(parts) < 2 {
		return timeText
	}
	out := parts[1]
	if len(parts) > 2 {
		out += " " + parts[2]
	}
	return out
}

// clockTextShortZone is ClockText with the zone abbreviated to three
// characters, keeping the comparison table's time column narrow.
func clockTextShortZone(timeText string) string {
	parts := strings.Fields(timeText)
	if len(parts) < 2 {
		return timeText
	}
	out := parts[1]
	if len(parts) > 2 {
		zone := parts[2]
		if len(zone) > 3 {
			zone = zone[:3]
		}
		out += " " + zone
	}
	return out
}

// truncate shortens a value to fit a column.
func truncate(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	if maxLen <= truncateMinLen {
		return value[:maxLen]
	}
	return value[:maxLen-3] + "..."
}

// RenderComparison writes the comparative matrix: a generation stamp followed
// by one table row per city.
func RenderComparison(w io.Writer, reports []CityReport, units models.UnitSystem) error {
	if _, err := fmt.Fprintf(w, "\nTemporal-Atmospheric Comparison Matrix\n"); err != nil {
		return fmt.Errorf("writing title: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Generated: %s\n", time.Now().UTC().Format(generatedAtLayout)); err != nil {
		return fmt.Errorf("writing stamp: %w", err)
	}
	return RenderComparisonTable(w, reports, units)
}

// RenderComparisonTable writes the City/Time/Temp/Condition/Humidity/Wind/
// Source table.
func RenderComparisonTable(w io.Writer, reports []CityReport, units models.UnitSystem) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	if _, err := fmt.Fprintf(tw, "City\tTime\tTemp\tCondition\tHumidity\tWind\tSource\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "----\t----\t----\t---------\t--------\t----\t------\n"); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	for _, report := range reports {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%.1f°\t%s\t%d%%\t%.1f%s\t%s\n",
			report.Profile.DisplayName,
			clockTextShortZone(report.Time.TimeText),
			report.Weather.Temperature,
			truncate(report.Weather.Condition, conditionColumnWidth),
			report.Weather.Humidity,
			report.Weather.WindSpeed, units.WindSuffix(),
			SourceIcon(report.Time.Provenance),
		); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	return tw.Flush()
}

// RawTimeFeed is the time block of one city's raw feed entry.
type RawTimeFeed struct {
	Value     string            `json:"value"`
	Source    models.Provenance `json:"source"`
	Timestamp int64             `json:"timestamp"`
}

// RawWeatherFeed is the weather block of one city's raw feed entry.
type RawWeatherFeed struct {
	Temperature float64           `json:"temperature"`
	Condition   string            `json:"condition"`
	Humidity    int               `json:"humidity"`
	WindSpeed   float64           `json:"wind_speed"`
	Source      models.Provenance `json:"source"`
	Timestamp   int64             `json:"timestamp"`
}

// RawCityFeed is one city's entry in the raw feed.
type RawCityFeed struct {
	DisplayName string         `json:"display_name"`
	Time        RawTimeFeed    `json:"time"`
	Weather     RawWeatherFeed `json:"weather"`
	Coordinates [2]float64     `json:"coordinates"`
	Timezone    string         `json:"timezone"`
}

// RawFeed is the machine-readable envelope around a snapshot.
type RawFeed struct {
	Timestamp string                 `json:"timestamp"`
	System    string                 `json:"system"`
	Data      map[string]RawCityFeed `json:"data"`
}

// RenderRawJSON writes the snapshot as one compact JSON envelope line.
func RenderRawJSON(w io.Writer, reports []CityReport) error {
	feed := RawFeed{
		Timestamp: time.Now().UTC().Format(rawTimestampLayout),
		System:    rawSystemName,
		Data:      make(map[string]RawCityFeed, len(reports)),
	}

	for _, report := range reports {
		feed.Data[report.Profile.ID] = RawCityFeed{
			DisplayName: report.Profile.DisplayName,
			Time: RawTimeFeed{
				Value:     report.Time.TimeText,
				Source:    report.Time.Provenance,
				Timestamp: report.Time.CapturedAt,
			},
			Weather: RawWeatherFeed{
				Temperature: report.Weather.Temperature,
				Condition:   report.Weather.Condition,
				Humidity:    report.Weather.Humidity,
				WindSpeed:   report.Weather.WindSpeed,
				Source:      report.Weather.Provenance,
				Timestamp:   report.Weather.CapturedAt,
			},
			Coordinates: [2]float64{report.Profile.Latitude, report.Profile.Longitude},
			Timezone:    report.Profile.Timezone,
		}
	}

	data, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("marshaling raw feed: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("writing raw feed: %w", err)
	}
	return nil
}
