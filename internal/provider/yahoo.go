package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"tickerdash/internal/domain"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

var yahooIntervals = map[domain.Interval]string{
	domain.IntervalDaily:   "1d",
	domain.IntervalWeekly:  "1wk",
	domain.IntervalMonthly: "1mo",
}

// YahooClient fetches series from the Yahoo Finance chart API.
type YahooClient struct {
	client  *http.Client
	baseURL string
	aliases SymbolMap
}

// YahooOption customizes the client.
type YahooOption func(*YahooClient)

// WithBaseURL points the client at a different endpoint. Tests use this with
// an httptest server.
func WithBaseURL(baseURL string) YahooOption {
	return func(c *YahooClient) { c.baseURL = baseURL }
}

// WithProxy routes requests through an HTTP proxy.
func WithProxy(proxyURL string) YahooOption {
	return func(c *YahooClient) {
		if u, err := url.Parse(proxyURL); err == nil && proxyURL != "" {
			c.client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
		}
	}
}

// WithSymbolMap installs a friendly-name alias map.
func WithSymbolMap(m SymbolMap) YahooOption {
	return func(c *YahooClient) { c.aliases = m }
}

func NewYahooClient(opts ...YahooOption) *YahooClient {
	c := &YahooClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultYahooBaseURL,
		aliases: SymbolMap{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *YahooClient) Name() string { return "yahoo" }

// yahooChart is the response structure of the chart API. Quote arrays carry
// nulls for sessions without data, so they are decoded loosely.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Gmtoffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	if n, ok := v.(float64); ok {
		return n
	}
	return 0
}

// Fetch retrieves the series for the closed range [start, end]. Yahoo stamps
// daily bars at exchange-local market open (23:00 UTC of the prior day for
// exchanges ahead of UTC), so the requested window is padded a day on each
// side and the exact range is enforced on the exchange-local calendar date
// taken from the response meta gmtoffset.
func (c *YahooClient) Fetch(ctx context.Context, ticker string, interval domain.Interval, start, end time.Time) (domain.Series, error) {
	symbol := c.aliases.Resolve(ticker)

	params := url.Values{}
	params.Set("interval", yahooIntervals[interval])
	params.Set("period1", fmt.Sprintf("%d", start.AddDate(0, 0, -1).Unix()))
	params.Set("period2", fmt.Sprintf("%d", end.AddDate(0, 0, 2).Unix()))
	params.Set("includePrePost", "false")

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrProviderUnavailable, err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrProviderUnavailable, err)
	}

	if apiErr := chart.Chart.Error; apiErr != nil {
		if resp.StatusCode == http.StatusNotFound || apiErr.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTicker, ticker)
		}
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrProviderUnavailable, apiErr.Code, apiErr.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("%w: %s %s..%s", domain.ErrNoData,
			ticker, start.Format(domain.DateFormat), end.Format(domain.DateFormat))
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoData, ticker)
	}
	quote := result.Indicators.Quote[0]

	offset := time.Duration(result.Meta.Gmtoffset) * time.Second
	series := make(domain.Series, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		cl := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			// null bar (holiday etc.)
			continue
		}

		// the bar belongs to the session's exchange-local calendar date
		local := time.Unix(ts, 0).UTC().Add(offset)
		session := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		if session.Before(start) || session.After(end) {
			continue
		}

		series = append(series, domain.Candle{
			Timestamp: session,
			Open:      o,
			High:      h,
			Low:       l,
			Close:     cl,
			Volume:    int64(toFloat(quote.Volume[i])),
		})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s %s..%s", domain.ErrNoData,
			ticker, start.Format(domain.DateFormat), end.Format(domain.DateFormat))
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Timestamp.Before(series[j].Timestamp) })

	slog.DebugContext(ctx, "fetched series", "provider", c.Name(), "ticker", ticker, "symbol", symbol, "rows", len(series))
	return series, nil
}
