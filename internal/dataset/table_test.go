package dataset

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickerdash/internal/analysis"
	"tickerdash/internal/domain"
)

func testSeries(n int) domain.Series {
	series := make(domain.Series, n)
	t := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range series {
		p := 100 + float64(i)
		series[i] = domain.Candle{
			Timestamp: t.AddDate(0, 0, i),
			Open:      p - 0.5,
			High:      p + 1,
			Low:       p - 1,
			Close:     p,
			Volume:    int64(1000 + i),
		}
	}
	return series
}

func TestBuildRowCountMatchesSeries(t *testing.T) {
	series := testSeries(21)
	table, err := Build("AAPL", series, analysis.Windows{Short: 3, Long: 5, Vol: 4})
	require.NoError(t, err)

	// One row per provider trading day, no gaps introduced or removed.
	require.Equal(t, series.Len(), table.Len())
	for i, row := range table.Rows {
		assert.Equal(t, series[i].Timestamp.Format(domain.DateFormat), row.Date)
		assert.Equal(t, series[i].Close, row.Close)
	}
}

func TestBuildDerivedColumnWarmup(t *testing.T) {
	table, err := Build("AAPL", testSeries(10), analysis.Windows{Short: 3, Long: 5, Vol: 4})
	require.NoError(t, err)

	assert.Nil(t, table.Rows[0].DailyReturn)
	assert.NotNil(t, table.Rows[1].DailyReturn)

	assert.Nil(t, table.Rows[1].SMAShort)
	require.NotNil(t, table.Rows[2].SMAShort)
	assert.InDelta(t, 101.0, *table.Rows[2].SMAShort, 1e-9)

	assert.Nil(t, table.Rows[3].SMALong)
	require.NotNil(t, table.Rows[4].SMALong)
	assert.InDelta(t, 102.0, *table.Rows[4].SMALong, 1e-9)

	assert.Nil(t, table.Rows[2].RollingVol)
	assert.NotNil(t, table.Rows[3].RollingVol)
}

func TestBuildRejectsEmptySeries(t *testing.T) {
	_, err := Build("AAPL", domain.Series{}, analysis.DefaultWindows())
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestBuildRejectsBadWindows(t *testing.T) {
	_, err := Build("AAPL", testSeries(5), analysis.Windows{Short: 0, Long: 5, Vol: 4})
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	table, err := Build("AAPL", testSeries(5), analysis.Windows{Short: 2, Long: 3, Vol: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 6) // header + 5 rows
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "2023-01-02", records[1][0])
	assert.Equal(t, "100", records[1][4])
	assert.Equal(t, "", records[1][6], "warmup daily_return cell is empty")
	assert.NotEqual(t, "", records[2][6])
}

func TestTableReturnsRoundTrip(t *testing.T) {
	table, err := Build("AAPL", testSeries(4), analysis.Windows{Short: 2, Long: 2, Vol: 2})
	require.NoError(t, err)

	returns := table.Returns()
	require.Len(t, returns, 4)
	summary := analysis.Summarize(returns)
	assert.Equal(t, 4, summary.Rows)
	assert.Greater(t, summary.MeanDailyReturn, 0.0)
}
