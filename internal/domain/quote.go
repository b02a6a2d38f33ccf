package domain

import (
	"context"
	"time"
)

// VenueQuote is one venue's latest quote for a symbol: mid price plus the
// current per-period funding rate. Quotes are produced once per scan cycle
// and discarded at the end of it; they are never mutated after creation.
//
// Funding rates from both venues are assumed to be quoted for the same
// funding period. Period normalization across venues is a precondition on
// the provider, not something the core reconciles.
type VenueQuote struct {
	Symbol      string
	Price       float64
	FundingRate float64
	Timestamp   time.Time
}

// PricePoint is a single (timestamp, price) observation from a historical
// candle series. Timestamps are Unix milliseconds as returned by the venues.
type PricePoint struct {
	Timestamp int64
	Price     float64
}

// QuoteProvider is the per-venue data contract consumed by the live scan
// loop. A provider that cannot serve a cycle returns an error; the loop
// treats that as "no data from this venue this cycle" and carries on.
type QuoteProvider interface {
	// Name returns the venue identifier, e.g. "hyperliquid".
	Name() string

	// FetchQuotes returns the latest quote for each of the given symbols.
	// Symbols the venue does not list are simply absent from the map.
	FetchQuotes(ctx context.Context, symbols []string) (map[string]VenueQuote, error)

	// FetchOrderBook returns the current order book for a symbol. Called on
	// demand when order-book-aware sizing is requested.
	FetchOrderBook(ctx context.Context, symbol string) (OrderBookSnapshot, error)
}

// CandleProvider serves historical close-price series for the backtester.
type CandleProvider interface {
	Name() string

	// FetchCandles returns close prices for the symbol over [start, end],
	// ordered by timestamp ascending.
	FetchCandles(ctx context.Context, symbol, interval string, start, end time.Time) ([]PricePoint, error)
}
