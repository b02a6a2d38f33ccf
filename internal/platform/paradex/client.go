// Package paradex is a read-only REST client for the Paradex public
// market-data API. Markets are addressed as "{BASE}-USD-PERP"; callers use
// base symbols and the client maps between the two.
package paradex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/perpx/arbot/internal/domain"
)

// VenueName identifies this venue in logs and provider wiring.
const VenueName = "paradex"

// Client is the REST client for the Paradex v1 API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given API root, e.g.
// "https://api.prod.paradex.trade/v1".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the venue identifier.
func (c *Client) Name() string { return VenueName }

// Market maps a base symbol to the Paradex perpetual market name.
func Market(symbol string) string {
	return symbol + "-USD-PERP"
}

// FetchQuotes returns the mid price (falling back to mark price when either
// side of the top of book is empty) and current funding rate per requested
// symbol from the full market summary.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) (map[string]domain.VenueQuote, error) {
	body, err := c.get(ctx, "/markets/summary?market=ALL")
	if err != nil {
		return nil, fmt.Errorf("paradex: fetch quotes: %w", err)
	}
	var resp summaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("paradex: decode summary: %w", err)
	}

	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[s] = true
	}

	now := time.Now().UTC()
	quotes := make(map[string]domain.VenueQuote, len(symbols))
	for _, m := range resp.Results {
		base, _, ok := strings.Cut(m.Symbol, "-")
		if !ok || !wanted[base] {
			continue
		}
		bid, ask := parseFloat(m.Bid), parseFloat(m.Ask)
		price := parseFloat(m.MarkPrice)
		if bid > 0 && ask > 0 {
			price = (bid + ask) / 2
		}
		if price <= 0 {
			continue
		}
		funding := m.CurrentFundingRate
		if funding == "" {
			funding = m.FundingRate
		}
		quotes[base] = domain.VenueQuote{
			Symbol:      base,
			Price:       price,
			FundingRate: parseFloat(funding),
			Timestamp:   now,
		}
	}
	return quotes, nil
}

// FetchOrderBook returns the order book for a symbol.
func (c *Client) FetchOrderBook(ctx context.Context, symbol string) (domain.OrderBookSnapshot, error) {
	path := "/orderbook/" + url.PathEscape(Market(symbol)) + "?depth=20"
	body, err := c.get(ctx, path)
	if err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("paradex: fetch book %s: %w", symbol, err)
	}
	var resp orderbookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("paradex: decode book %s: %w", symbol, err)
	}
	snap := domain.OrderBookSnapshot{
		Symbol:    symbol,
		Bids:      toLevels(resp.Bids),
		Asks:      toLevels(resp.Asks),
		Timestamp: time.UnixMilli(resp.LastUpdatedAt).UTC(),
	}
	if len(snap.Bids) == 0 && len(snap.Asks) == 0 {
		return domain.OrderBookSnapshot{}, fmt.Errorf("paradex: empty book %s: %w", symbol, domain.ErrDataUnavailable)
	}
	return snap, nil
}

// FetchCandles returns close prices from the klines endpoint. The interval
// uses the shared candle notation ("15m", "1h"); Paradex resolutions are
// minutes, so the value is converted.
func (c *Client) FetchCandles(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.PricePoint, error) {
	resolution, err := resolutionMinutes(interval)
	if err != nil {
		return nil, fmt.Errorf("paradex: %w", err)
	}

	params := url.Values{}
	params.Set("symbol", Market(symbol))
	params.Set("resolution", strconv.Itoa(resolution))
	params.Set("start_at", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("end_at", strconv.FormatInt(end.UnixMilli(), 10))

	body, err := c.get(ctx, "/markets/klines?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("paradex: fetch klines %s: %w", symbol, err)
	}
	var resp klinesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("paradex: decode klines %s: %w", symbol, err)
	}

	points := make([]domain.PricePoint, 0, len(resp.Results))
	for _, row := range resp.Results {
		// Row layout: [open_time, open, high, low, close, volume].
		if len(row) < 5 {
			continue
		}
		ts, err := row[0].Int64()
		if err != nil {
			continue
		}
		closePx, err := row[4].Float64()
		if err != nil {
			continue
		}
		points = append(points, domain.PricePoint{Timestamp: ts, Price: closePx})
	}
	return points, nil
}

func resolutionMinutes(interval string) (int, error) {
	d, err := time.ParseDuration(interval)
	if err != nil {
		return 0, fmt.Errorf("parse interval %q: %w", interval, err)
	}
	mins := int(d.Minutes())
	if mins <= 0 {
		return 0, fmt.Errorf("interval %q below one minute", interval)
	}
	return mins, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet))
	}
	return io.ReadAll(resp.Body)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func toLevels(rows [][2]string) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.PriceLevel{
			Price: parseFloat(row[0]),
			Size:  parseFloat(row[1]),
		})
	}
	return out
}
