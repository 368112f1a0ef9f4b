package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{
	"date", "open", "high", "low", "close", "volume",
	"daily_return", "sma_short", "sma_long", "rolling_volatility",
}

// WriteCSV encodes the full table. Derived columns that have not warmed up
// yet are written as empty cells.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range t.Rows {
		record := []string{
			r.Date,
			formatFloat(r.Open),
			formatFloat(r.High),
			formatFloat(r.Low),
			formatFloat(r.Close),
			strconv.FormatInt(r.Volume, 10),
			formatOptional(r.DailyReturn),
			formatOptional(r.SMAShort),
			formatOptional(r.SMALong),
			formatOptional(r.RollingVol),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
