package analysis

import "math"

// tradingDaysPerYear is the conventional annualization factor for daily data.
const tradingDaysPerYear = 252

// Summary holds the headline statistics shown above the charts.
type Summary struct {
	Rows                 int     `json:"rows"`
	MeanDailyReturn      float64 `json:"mean_daily_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
}

// Summarize computes the headline stats from a daily-returns column,
// ignoring NaN warmup values. With fewer than two usable returns the
// statistics are zero.
func Summarize(returns []float64) Summary {
	usable := make([]float64, 0, len(returns))
	for _, r := range returns {
		if !math.IsNaN(r) {
			usable = append(usable, r)
		}
	}

	s := Summary{Rows: len(returns)}
	if len(usable) == 0 {
		return s
	}

	mean := 0.0
	for _, r := range usable {
		mean += r
	}
	s.MeanDailyReturn = mean / float64(len(usable))

	if len(usable) >= 2 {
		s.AnnualizedVolatility = sampleStd(usable) * math.Sqrt(tradingDaysPerYear)
	}
	return s
}
