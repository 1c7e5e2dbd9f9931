package readings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMiles(t *testing.T) {
	aquaticPark := Coordinates{Lat: 37.8083, Lon: -122.4265}
	alcatraz := Coordinates{Lat: 37.8267, Lon: -122.4230}

	assert.InDelta(t, 1.29, HaversineMiles(aquaticPark, alcatraz), 0.02)
	assert.Zero(t, HaversineMiles(aquaticPark, aquaticPark))
}

func TestWithinMiles(t *testing.T) {
	aquaticPark := Coordinates{Lat: 37.8083, Lon: -122.4265}
	alcatraz := Coordinates{Lat: 37.8267, Lon: -122.4230}

	assert.True(t, WithinMiles(aquaticPark, alcatraz, 1.5))
	assert.False(t, WithinMiles(aquaticPark, alcatraz, 1.0))
}
