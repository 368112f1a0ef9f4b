// Package dataset turns a fetched price series into the tabular structure
// the dashboard renders and exports. One row per provider-returned trading
// session, never more, never fewer.
package dataset

import (
	"fmt"
	"math"

	"tickerdash/internal/analysis"
	"tickerdash/internal/domain"
)

// Row is a single trading session with its derived columns. Derived values
// are nil until their rolling window has filled.
type Row struct {
	Date        string   `json:"date"`
	Open        float64  `json:"open"`
	High        float64  `json:"high"`
	Low         float64  `json:"low"`
	Close       float64  `json:"close"`
	Volume      int64    `json:"volume"`
	DailyReturn *float64 `json:"daily_return"`
	SMAShort    *float64 `json:"sma_short"`
	SMALong     *float64 `json:"sma_long"`
	RollingVol  *float64 `json:"rolling_volatility"`
}

type Table struct {
	Ticker  string           `json:"ticker"`
	Windows analysis.Windows `json:"-"`
	Rows    []Row            `json:"rows"`
}

// Build normalizes a series into a table with derived columns attached.
func Build(ticker string, series domain.Series, windows analysis.Windows) (*Table, error) {
	if err := windows.Validate(); err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series", domain.ErrNoData)
	}

	closes := series.Closes()
	returns := analysis.DailyReturns(closes)
	smaShort := analysis.SMA(closes, windows.Short)
	smaLong := analysis.SMA(closes, windows.Long)
	rollingVol := analysis.RollingStd(closes, windows.Vol)

	rows := make([]Row, len(series))
	for i, c := range series {
		rows[i] = Row{
			Date:        c.Timestamp.Format(domain.DateFormat),
			Open:        c.Open,
			High:        c.High,
			Low:         c.Low,
			Close:       c.Close,
			Volume:      c.Volume,
			DailyReturn: optional(returns[i]),
			SMAShort:    optional(smaShort[i]),
			SMALong:     optional(smaLong[i]),
			RollingVol:  optional(rollingVol[i]),
		}
	}

	return &Table{Ticker: ticker, Windows: windows, Rows: rows}, nil
}

func (t *Table) Len() int { return len(t.Rows) }

// Returns re-extracts the daily-return column for summary statistics,
// with NaN in warmup positions.
func (t *Table) Returns() []float64 {
	returns := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		if r.DailyReturn == nil {
			returns[i] = math.NaN()
			continue
		}
		returns[i] = *r.DailyReturn
	}
	return returns
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
