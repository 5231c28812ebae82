package atmospheric

import (
	"math"
	"time"

	"github.com/treellis/worldmatrix/internal/models"
)

// baseTemperatures holds the reference temperature in celsius for each
// built-in city; cities without an entry use defaultBaseTemperature.
var baseTemperatures = map[string]float64{
	"london":  10,
	"tokyo":   16,
	"newyork": 12,
}

const defaultBaseTemperature = 15.0

// Synthesize produces plausible weather for a city without any I/O. It is a
// pure function of its arguments, so the terminal fallback tier stays
// reproducible: the same city, month, hour, and units always yield the same
// observation.
//
// Temperature layers a seasonal sine and a diurnal sine over the city's
// base. The condition walks a fixed 4-step cycle keyed by month and hour.
// Humidity and wind are small month-derived variations.
func Synthesize(cityID string, month time.Month, hour int, units models.UnitSystem) Observation {
	base, ok := baseTemperatures[cityID]
	if !ok {
		base = defaultBaseTemperature
	}

	seasonal := 8 * math.Sin((float64(month)-1)*math.Pi/6)
	diurnal := 3 * math.Sin((float64(hour)-12)*math.Pi/12)
	tempC := round1(base + seasonal + diurnal)

	temperature := tempC
	wind := 3.5 + float64(int(month)%3)
	if units == models.UnitsImperial {
		temperature = round1(tempC*9/5 + 32)
		wind = round1(wind * 0.621371)
	} else {
		wind = round1(wind)
	}

	return Observation{
		Temperature: temperature,
		Condition:   condition(month, hour),
		Humidity:    65 + (int(month)*2)%20,
		WindSpeed:   wind,
	}
}

// condition selects from the fixed cycle; the precipitation slot's label
// follows the season band (snow in the winter months, rain otherwise).
func condition(month time.Month, hour int) string {
	switch (int(month) + hour) % 4 {
	case 0:
		return "Clear"
	case 1:
		return "Partly Cloudy"
	case 2:
		return "Cloudy"
	default:
		if month == time.December || month == time.January || month == time.February {
			return "Light Snow"
		}
		return "Light Rain"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
