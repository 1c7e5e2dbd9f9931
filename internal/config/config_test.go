package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSiteFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const validSite = `
name: Aquatic Park Cove
location:
  lat: 37.8083
  lon: -122.4265
overflow_radius_mi: 3.5
stations:
  tide: "9414290"
  current: "SFB1201"
  weather: "KSFO"
  buoy: "46026"
dams:
  - id: "11446500"
    name: "American River (Nimbus Dam)"
  - id: "11425500"
    name: "Sacramento River (Verona)"
tide_preference:
  slack: 90
`

func TestLoadSite(t *testing.T) {
	site, err := LoadSite(writeSiteFile(t, validSite))
	require.NoError(t, err)

	assert.Equal(t, "Aquatic Park Cove", site.Name)
	assert.InDelta(t, 37.8083, site.Location.Lat, 1e-9)
	assert.InDelta(t, -122.4265, site.Location.Lon, 1e-9)
	assert.InDelta(t, 3.5, site.OverflowRadiusMi, 1e-9)
	assert.Equal(t, "9414290", site.Stations.Tide)
	assert.Equal(t, "46026", site.Stations.Buoy)
	require.Len(t, site.Dams, 2)
	assert.Equal(t, "11446500", site.Dams[0].ID)

	// Unset preference fields keep their defaults.
	assert.Equal(t, 90, site.TidePreference.Slack)
	assert.Equal(t, 85, site.TidePreference.Flood)
	assert.Equal(t, 85, site.TidePreference.Ebb)
}

func TestLoadSiteDefaultRadius(t *testing.T) {
	minimal := `
name: Aquatic Park Cove
stations:
  tide: "9414290"
  weather: "KSFO"
dams:
  - id: "11446500"
    name: "American River (Nimbus Dam)"
`
	site, err := LoadSite(writeSiteFile(t, minimal))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, site.OverflowRadiusMi, 1e-9)
}

func TestLoadSiteRejectsMissingTideStation(t *testing.T) {
	broken := `
name: Aquatic Park Cove
stations:
  weather: "KSFO"
dams:
  - id: "11446500"
    name: "American River (Nimbus Dam)"
`
	_, err := LoadSite(writeSiteFile(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid site config")
}

func TestLoadSiteRejectsEmptyDams(t *testing.T) {
	broken := `
name: Aquatic Park Cove
stations:
  tide: "9414290"
  weather: "KSFO"
dams: []
`
	_, err := LoadSite(writeSiteFile(t, broken))
	require.Error(t, err)
}

func TestLoadSiteMissingFile(t *testing.T) {
	_, err := LoadSite(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read site config")
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("LOOKUP_TIMEOUT", "3s")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_MAX_CONNS", "4")
	t.Setenv("SITE_CONFIG", writeSiteFile(t, validSite))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 3*time.Second, cfg.LookupTimeout)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.DatabaseMaxConns)
	assert.Equal(t, "Aquatic Park Cove", cfg.Site.Name)
}

func TestLoadRejectsBadInterval(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "often")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_INTERVAL")
}
