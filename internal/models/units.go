package models

// UnitSystem selects the measurement units for temperature and wind speed.
// The values double as the remote weather API's units parameter.
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

// Valid reports whether u is a supported unit system.
func (u UnitSystem) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// TemperatureSuffix returns the display suffix for temperatures in u.
func (u UnitSystem) TemperatureSuffix() string {
	if u == UnitsImperial {
		return "°F"
	}
	return "°C"
}

// WindSuffix returns the display suffix for wind speeds in u.
func (u UnitSystem) WindSuffix() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "m/s"
}
