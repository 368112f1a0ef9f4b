// Package analysis computes the derived columns shown on the dashboard:
// daily simple returns, short/long simple moving averages and a rolling
// close-price volatility. All functions return one value per input row;
// positions without enough history hold NaN.
package analysis

import (
	"errors"
	"math"
)

// Windows holds the rolling-window sizes for the derived columns.
type Windows struct {
	Short int
	Long  int
	Vol   int
}

// DefaultWindows mirrors the dashboard defaults.
func DefaultWindows() Windows {
	return Windows{Short: 10, Long: 50, Vol: 20}
}

func (w Windows) Validate() error {
	if w.Short < 2 || w.Long < 2 || w.Vol < 2 {
		return errors.New("analysis windows must be at least 2")
	}
	return nil
}

// DailyReturns computes simple percentage returns between consecutive closes.
// The first element is NaN, as is any element whose previous close is zero
// (a degenerate provider bar must not produce an infinite return).
func DailyReturns(closes []float64) []float64 {
	returns := make([]float64, len(closes))
	if len(closes) == 0 {
		return returns
	}
	returns[0] = math.NaN()
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			returns[i] = math.NaN()
			continue
		}
		returns[i] = (closes[i] - closes[i-1]) / closes[i-1]
	}
	return returns
}

// SMA computes the simple moving average of values over the given window.
// Elements before the window is full are NaN.
func SMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}

// RollingStd computes the rolling sample standard deviation of values over
// the given window. Elements before the window is full are NaN.
func RollingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sampleStd(values[i-window+1 : i+1])
	}
	return out
}

// sampleStd is the n-1 denominator standard deviation.
func sampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
