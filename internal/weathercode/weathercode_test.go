package weathercode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel_KnownCodes(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "clear sky"},
		{1, "sunny"},
		{2, "sunny"},
		{3, "cloudy"},
		{45, "fog"},
		{48, "fog"},
		{53, "drizzle"},
		{57, "drizzle"},
		{61, "rain"},
		{67, "rain"},
		{71, "snow"},
		{77, "snow"},
		{80, "rain showers"},
		{82, "rain showers"},
		{95, "thunderstorm"},
		{99, "thunderstorm"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Label(tc.code), "code %d", tc.code)
	}
}

func TestLabel_UnmappedCodeEmbedsNumber(t *testing.T) {
	assert.Equal(t, "weather code 13", Label(13))
	assert.Equal(t, "weather code -1", Label(-1))
}

func TestLabel_Deterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, Label(3), Label(3))
	}
}
