package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateFormat is the wire format for calendar dates on the query surface.
const DateFormat = "2006-01-02"

// tickers are short provider codes: letters and digits plus the separators
// used by index (^GSPC), class (BRK-B), exchange suffix (AIR.PA) and
// futures (ES=F) symbols.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-^=]{0,11}$`)

// Query identifies one fetch-and-render cycle: a ticker and a closed calendar
// date range, both ends at UTC midnight.
type Query struct {
	Ticker   string
	Interval Interval
	Start    time.Time
	End      time.Time
}

// NormalizeTicker trims and uppercases a user-supplied symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Validate checks the query invariants. A query that fails validation must
// never reach the provider.
func (q Query) Validate() error {
	if q.Ticker == "" {
		return fmt.Errorf("%w: ticker is empty", ErrInvalidQuery)
	}
	if !tickerPattern.MatchString(q.Ticker) {
		return fmt.Errorf("%w: malformed ticker %q", ErrInvalidQuery, q.Ticker)
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidQuery)
	}
	if q.Start.After(q.End) {
		return fmt.Errorf("%w: start date %s is after end date %s",
			ErrInvalidQuery, q.Start.Format(DateFormat), q.End.Format(DateFormat))
	}
	return nil
}

// ParseQuery builds a validated Query from raw string inputs.
func ParseQuery(ticker, interval, start, end string) (Query, error) {
	q := Query{Ticker: NormalizeTicker(ticker)}

	var err error
	q.Interval, err = ParseInterval(interval)
	if err != nil {
		return Query{}, fmt.Errorf("%w: interval %q", ErrInvalidQuery, interval)
	}

	if start != "" {
		q.Start, err = time.ParseInLocation(DateFormat, start, time.UTC)
		if err != nil {
			return Query{}, fmt.Errorf("%w: malformed start date %q", ErrInvalidQuery, start)
		}
	}
	if end != "" {
		q.End, err = time.ParseInLocation(DateFormat, end, time.UTC)
		if err != nil {
			return Query{}, fmt.Errorf("%w: malformed end date %q", ErrInvalidQuery, end)
		}
	}

	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}
