package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/swim-conditions/internal/readings"
)

// Column offsets in the NDBC realtime2 standard meteorological table.
const (
	ndbcColYear   = 0
	ndbcColMinute = 4
	ndbcColWVHT   = 8
	ndbcColDPD    = 9
	ndbcColMWD    = 11

	ndbcMissing = "MM"
)

// NDBCProvider reads observed wave heights from an NDBC station's realtime2
// text feed. Rows are newest first; the first row with a wave height wins.
type NDBCProvider struct {
	name    string
	baseURL string
	station string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNDBCProvider(client *http.Client, station string) *NDBCProvider {
	return &NDBCProvider{
		name:    "ndbc-" + station,
		baseURL: "https://www.ndbc.noaa.gov/data/realtime2",
		station: station,
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("ndbc"),
	}
}

func (p *NDBCProvider) Name() string { return p.name }

func (p *NDBCProvider) Fetch(ctx context.Context) (readings.WaveReading, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s/%s.txt", p.baseURL, p.station), nil)
	})
	if err != nil {
		return readings.WaveReading{}, err
	}

	body, err := readBody(resp)
	if err != nil {
		return readings.WaveReading{}, err
	}
	return parseRealtime2(string(body), p.name)
}

func parseRealtime2(body, source string) (readings.WaveReading, error) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) <= ndbcColMWD {
			continue
		}
		if fields[ndbcColWVHT] == ndbcMissing {
			continue
		}

		heightM, err := strconv.ParseFloat(fields[ndbcColWVHT], 64)
		if err != nil {
			continue
		}
		at, err := parseNdbcTimestamp(fields)
		if err != nil {
			continue
		}

		reading := readings.WaveReading{
			Timestamp: at,
			Source:    source,
			HeightFt:  heightM * feetPerMeter,
		}
		if sec, err := strconv.ParseFloat(fields[ndbcColDPD], 64); err == nil {
			reading.SwellPeriodSec = &sec
		}
		if deg, err := strconv.ParseFloat(fields[ndbcColMWD], 64); err == nil {
			reading.SwellDirectionDeg = &deg
		}
		return reading, nil
	}
	return readings.WaveReading{}, readings.ErrNoData
}

func parseNdbcTimestamp(fields []string) (time.Time, error) {
	var parts [5]int
	for i := ndbcColYear; i <= ndbcColMinute; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp field %q: %w", fields[i], err)
		}
		parts[i] = n
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, time.UTC), nil
}
