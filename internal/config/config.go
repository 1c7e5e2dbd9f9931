package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/swim-conditions/internal/dams"
	"github.com/i474232898/swim-conditions/internal/readings"
	"github.com/i474232898/swim-conditions/internal/scoring"
)

var validate = validator.New()

// SiteStations holds the upstream station identifiers for the site.
type SiteStations struct {
	Tide    string `yaml:"tide" validate:"required"`
	Current string `yaml:"current"`
	Weather string `yaml:"weather" validate:"required"`
	Buoy    string `yaml:"buoy"`
}

// SiteConfig describes the fixed swim site: where it is, which stations cover
// it, and which dam releases feed its watershed. Loaded from a YAML file so a
// deployment can be pointed at a different site without a rebuild.
type SiteConfig struct {
	Name     string               `yaml:"name" validate:"required"`
	Location readings.Coordinates `yaml:"location"`

	// OverflowRadiusMi bounds which sewage overflows count as nearby.
	OverflowRadiusMi float64 `yaml:"overflow_radius_mi" validate:"min=0"`

	Stations SiteStations `yaml:"stations" validate:"required"`

	Dams []dams.Station `yaml:"dams" validate:"min=1,dive"`

	TidePreference scoring.TidePreference `yaml:"tide_preference"`
}

// AppConfig is the process-level configuration read from the environment.
type AppConfig struct {
	OpenWeatherAPIKey   string
	BeachWatchBaseURL   string
	OverflowFeedBaseURL string

	// RefreshInterval controls how often a full gather-and-score cycle runs.
	RefreshInterval time.Duration

	// LookupTimeout bounds each individual source lookup within a cycle.
	LookupTimeout time.Duration

	// DatabaseURL selects the Postgres snapshot store; empty keeps snapshots
	// in memory only.
	DatabaseURL      string
	DatabaseMaxConns int

	SiteFile string
	Site     SiteConfig

	Port     string
	LogLevel string
}

// Load reads configuration from the environment with sensible defaults, then
// loads and validates the site file.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.BeachWatchBaseURL = os.Getenv("BEACH_WATCH_BASE_URL")
	cfg.OverflowFeedBaseURL = os.Getenv("OVERFLOW_FEED_BASE_URL")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DatabaseMaxConns = getenvInt("DATABASE_MAX_CONNS", 10)

	interval, err := getenvDuration("REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = interval

	timeout, err := getenvDuration("LOOKUP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.LookupTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.SiteFile = getenvDefault("SITE_CONFIG", "site.yaml")

	site, err := LoadSite(cfg.SiteFile)
	if err != nil {
		return nil, err
	}
	cfg.Site = *site

	return cfg, nil
}

// LoadSite parses and validates a site file.
func LoadSite(path string) (*SiteConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}

	site := &SiteConfig{
		OverflowRadiusMi: 5.0,
		TidePreference:   scoring.DefaultTidePreference(),
	}
	if err := yaml.Unmarshal(raw, site); err != nil {
		return nil, fmt.Errorf("parse site config: %w", err)
	}
	if err := validate.Struct(site); err != nil {
		return nil, fmt.Errorf("invalid site config: %w", err)
	}
	return site, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	raw := getenvDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
