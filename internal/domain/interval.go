package domain

import "errors"

var ErrInvalidInterval = errors.New("invalid interval")

// Interval is the sampling resolution of a fetched series. The dashboard
// defaults to daily bars; weekly and monthly are offered for long ranges.
type Interval string

const (
	IntervalDaily   Interval = "d1"
	IntervalWeekly  Interval = "w1"
	IntervalMonthly Interval = "M1"
)

func (i Interval) String() string {
	return string(i)
}

func ParseInterval(s string) (Interval, error) {
	if s == "" {
		return IntervalDaily, nil
	}
	switch Interval(s) {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		return Interval(s), nil
	}
	return "", ErrInvalidInterval
}
