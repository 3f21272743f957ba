// Package weathercode translates Open-Meteo condition codes into short
// human-readable labels.
package weathercode

import "fmt"

// Label maps an Open-Meteo weathercode to a display label. The mapping is
// total: codes outside the published table fall back to a label that embeds
// the numeric code. See https://open-meteo.com/en/docs for the vocabulary.
func Label(code int) string {
	switch code {
	case 0:
		return "clear sky"
	case 1, 2:
		return "sunny"
	case 3:
		return "cloudy"
	case 45, 48:
		return "fog"
	case 51, 53, 55, 56, 57:
		return "drizzle"
	case 61, 63, 65, 66, 67:
		return "rain"
	case 71, 73, 75, 77:
		return "snow"
	case 80, 81, 82:
		return "rain showers"
	case 95, 96, 99:
		return "thunderstorm"
	default:
		return fmt.Sprintf("weather code %d", code)
	}
}
