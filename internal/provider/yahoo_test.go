package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickerdash/internal/domain"
)

const chartBody = `{
  "chart": {
    "result": [{
      "timestamp": [1672704000, 1672790400, 1672876800, 1672963200],
      "indicators": {
        "quote": [{
          "open":   [130.28, 126.89, null, 126.01],
          "high":   [130.90, 128.66, null, 127.77],
          "low":    [124.17, 125.08, null, 124.76],
          "close":  [125.07, 126.36, null, 125.02],
          "volume": [112117500, 89113600, null, 80962700]
        }]
      }
    }],
    "error": null
  }
}`

func notFoundBody(symbol string) string {
	return fmt.Sprintf(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted: %s"}}}`, symbol)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYahooFetch(t *testing.T) {
	var gotPath string
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, chartBody)
	}))
	defer srv.Close()

	client := NewYahooClient(WithBaseURL(srv.URL))
	series, err := client.Fetch(context.Background(), "AAPL", domain.IntervalDaily, day(2023, 1, 3), day(2023, 1, 6))
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Contains(t, gotQuery, "interval=1d")

	// Null bar dropped; the provider-reported trading days survive untouched.
	require.Equal(t, 3, series.Len())
	assert.True(t, series.Sorted())
	assert.Equal(t, day(2023, 1, 3), series[0].Timestamp)
	assert.InDelta(t, 125.07, series[0].Close, 1e-9)
	assert.Equal(t, int64(112117500), series[0].Volume)
}

func TestYahooFetchExchangeLocalSessions(t *testing.T) {
	// ASX daily bars are stamped at the Sydney open: the 2023-01-04 session
	// is 2023-01-03T23:00:00Z and the 2023-01-05 session 2023-01-04T23:00:00Z.
	// gmtoffset places each bar on its local calendar date, so a query for
	// Jan 4 keeps the first and drops the second.
	body := `{
	  "chart": {
	    "result": [{
	      "meta": {"gmtoffset": 39600, "exchangeTimezoneName": "Australia/Sydney"},
	      "timestamp": [1672786800, 1672873200],
	      "indicators": {
	        "quote": [{
	          "open":   [45.10, 45.60],
	          "high":   [45.80, 46.00],
	          "low":    [44.90, 45.20],
	          "close":  [45.55, 45.90],
	          "volume": [4200000, 3900000]
	        }]
	      }
	    }],
	    "error": null
	  }
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	client := NewYahooClient(WithBaseURL(srv.URL))
	series, err := client.Fetch(context.Background(), "BHP.AX", domain.IntervalDaily, day(2023, 1, 4), day(2023, 1, 4))
	require.NoError(t, err)

	require.Equal(t, 1, series.Len())
	assert.Equal(t, day(2023, 1, 4), series[0].Timestamp)
	assert.InDelta(t, 45.55, series[0].Close, 1e-9)
}

func TestYahooFetchSymbolAlias(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, chartBody)
	}))
	defer srv.Close()

	client := NewYahooClient(WithBaseURL(srv.URL), WithSymbolMap(SymbolMap{"SP500": "^GSPC"}))
	_, err := client.Fetch(context.Background(), "SP500", domain.IntervalDaily, day(2023, 1, 3), day(2023, 1, 6))
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/%5EGSPC", gotPath)
}

func TestYahooFetchUnknownTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, notFoundBody("NOPE"))
	}))
	defer srv.Close()

	client := NewYahooClient(WithBaseURL(srv.URL))
	_, err := client.Fetch(context.Background(), "NOPE", domain.IntervalDaily, day(2023, 1, 3), day(2023, 1, 6))
	assert.ErrorIs(t, err, domain.ErrUnknownTicker)
}

func TestYahooFetchEmptyRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`)
	}))
	defer srv.Close()

	client := NewYahooClient(WithBaseURL(srv.URL))
	_, err := client.Fetch(context.Background(), "AAPL", domain.IntervalDaily, day(2023, 1, 7), day(2023, 1, 8))
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestYahooFetchServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewYahooClient(WithBaseURL(srv.URL))
	_, err := client.Fetch(context.Background(), "AAPL", domain.IntervalDaily, day(2023, 1, 3), day(2023, 1, 6))
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestYahooFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Internal","description":"boom"}}}`)
	}))
	defer srv.Close()

	client := NewYahooClient(WithBaseURL(srv.URL))
	_, err := client.Fetch(context.Background(), "AAPL", domain.IntervalDaily, day(2023, 1, 3), day(2023, 1, 6))
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestMockCountsCalls(t *testing.T) {
	m := &Mock{Err: errors.New("boom")}
	_, err := m.Fetch(context.Background(), "AAPL", domain.IntervalDaily, day(2023, 1, 3), day(2023, 1, 6))
	assert.Error(t, err)
	assert.Equal(t, 1, m.FetchCalls)
}

func TestSyntheticSeriesWeekdaysOnly(t *testing.T) {
	// 2023-01-02 is a Monday; two full weeks give ten weekday bars.
	series := SyntheticSeries(100, domain.IntervalDaily, day(2023, 1, 2), day(2023, 1, 13))
	assert.Equal(t, 10, series.Len())
	assert.True(t, series.Sorted())
	for _, c := range series {
		wd := c.Timestamp.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
}

func TestSyntheticSeriesHonorsInterval(t *testing.T) {
	// January 2023 has Mondays on the 2nd, 9th, 16th, 23rd and 30th.
	weekly := SyntheticSeries(100, domain.IntervalWeekly, day(2023, 1, 1), day(2023, 1, 31))
	assert.Equal(t, 5, weekly.Len())
	for _, c := range weekly {
		assert.Equal(t, time.Monday, c.Timestamp.Weekday())
	}

	monthly := SyntheticSeries(100, domain.IntervalMonthly, day(2023, 1, 2), day(2023, 4, 30))
	assert.Equal(t, 4, monthly.Len())
	assert.Equal(t, day(2023, 4, 2), monthly[3].Timestamp)
}

func TestMockHonorsInterval(t *testing.T) {
	m := &Mock{}
	series, err := m.Fetch(context.Background(), "AAPL", domain.IntervalWeekly, day(2023, 1, 1), day(2023, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, 5, series.Len())
	for _, c := range series {
		assert.Equal(t, time.Monday, c.Timestamp.Weekday())
	}
}
