package domain

import "errors"

// Standard application-level errors. Adapters wrap underlying infrastructure
// errors with these so callers can branch without knowing the provider.
var (
	ErrInvalidQuery        = errors.New("invalid query parameters")
	ErrUnknownTicker       = errors.New("unknown ticker")
	ErrNoData              = errors.New("no data for requested range")
	ErrProviderUnavailable = errors.New("market data provider unavailable")
)
