package domain

import "time"

type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Series is the price history of a single ticker, ordered by timestamp
// ascending. The service never inserts or drops trading days; the row set is
// exactly what the provider returned.
type Series []Candle

func (s Series) Len() int { return len(s) }

func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, c := range s {
		closes[i] = c.Close
	}
	return closes
}

func (s Series) Dates() []time.Time {
	dates := make([]time.Time, len(s))
	for i, c := range s {
		dates[i] = c.Timestamp
	}
	return dates
}

// Sorted reports whether the series is in ascending timestamp order.
func (s Series) Sorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Timestamp.Before(s[i-1].Timestamp) {
			return false
		}
	}
	return true
}
