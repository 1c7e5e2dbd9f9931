package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/swim-conditions/internal/readings"
)

const realtime2Sample = `#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP  DEWP  VIS PTDY  TIDE
#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa  degC  degC  degC  nmi hPa    ft
2026 03 14 09 40 310  5.0  6.0    MM    MM    MM  MM 1015.2  12.1  11.8   9.9   MM   MM    MM
2026 03 14 09 10 305  4.8  5.9   1.2    12   8.1 290 1015.4  12.0  11.8   9.8   MM   MM    MM
2026 03 14 08 40 300  4.5  5.5   1.1    11   8.0 285 1015.6  11.9  11.7   9.8   MM   MM    MM
`

func TestParseRealtime2SkipsMissingRows(t *testing.T) {
	reading, err := parseRealtime2(realtime2Sample, "ndbc-46026")
	require.NoError(t, err)

	// The newest row has no wave height, so the 09:10 row is used.
	assert.Equal(t, time.Date(2026, time.March, 14, 9, 10, 0, 0, time.UTC), reading.Timestamp)
	assert.InDelta(t, 1.2*feetPerMeter, reading.HeightFt, 1e-9)
	require.NotNil(t, reading.SwellPeriodSec)
	assert.InDelta(t, 12.0, *reading.SwellPeriodSec, 1e-9)
	require.NotNil(t, reading.SwellDirectionDeg)
	assert.InDelta(t, 290.0, *reading.SwellDirectionDeg, 1e-9)
}

func TestParseRealtime2AllMissing(t *testing.T) {
	body := `#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD
2026 03 14 09 40 310  5.0  6.0    MM    MM    MM  MM
`
	_, err := parseRealtime2(body, "ndbc-46026")
	assert.ErrorIs(t, err, readings.ErrNoData)
}

func TestNDBCProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/46026.txt", r.URL.Path)
		w.Write([]byte(realtime2Sample))
	}))
	defer srv.Close()

	p := NewNDBCProvider(srv.Client(), "46026")
	p.baseURL = srv.URL

	reading, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ndbc-46026", reading.Source)
	assert.InDelta(t, 1.2*feetPerMeter, reading.HeightFt, 1e-9)
}
