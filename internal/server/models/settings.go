package models

import "time"

// LocationMode selects how a weather coordinate is resolved for an account.
type LocationMode int

const (
	// ModeDeviceLocation resolves weather from a device-supplied coordinate fix.
	ModeDeviceLocation LocationMode = iota
	// ModeNamedCity resolves weather by geocoding the stored city name.
	ModeNamedCity
)

func (m LocationMode) String() string {
	if m == ModeNamedCity {
		return "city"
	}
	return "device"
}

// DeviceEnabled converts the mode to the legacy boolean column value
// (location_enabled = true means device location).
func (m LocationMode) DeviceEnabled() bool {
	return m == ModeDeviceLocation
}

// ModeFromDeviceEnabled converts the legacy boolean column value back to a
// LocationMode.
func ModeFromDeviceEnabled(enabled bool) LocationMode {
	if enabled {
		return ModeDeviceLocation
	}
	return ModeNamedCity
}

// Settings is the per-account location preference record. Exactly one row
// exists per account once the user has entered the app; it is created lazily
// with device mode, an empty city and no coordinate.
type Settings struct {
	UserID    string
	Mode      LocationMode
	City      string
	Lat       *float64
	Lon       *float64
	UpdatedAt time.Time
}
