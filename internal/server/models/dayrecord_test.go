package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-03-10", true},
		{"2024-12-31", true},
		{"2024-3-10", false},
		{"2024-03-10T00:00:00Z", false},
		{"2024-13-01", false},
		{"yesterday", false},
		{"", false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ValidDate(tc.in), "input %q", tc.in)
	}
}

func TestLocationMode_LegacyBooleanRoundTrip(t *testing.T) {
	assert.True(t, ModeDeviceLocation.DeviceEnabled())
	assert.False(t, ModeNamedCity.DeviceEnabled())
	assert.Equal(t, ModeDeviceLocation, ModeFromDeviceEnabled(true))
	assert.Equal(t, ModeNamedCity, ModeFromDeviceEnabled(false))
}
