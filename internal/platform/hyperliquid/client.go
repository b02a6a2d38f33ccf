// Package hyperliquid is a read-only REST/WebSocket client for the
// Hyperliquid public market-data API. Only the unauthenticated /info
// endpoints the scanner and backtester need are implemented.
package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/perpx/arbot/internal/domain"
)

// VenueName identifies this venue in logs and provider wiring.
const VenueName = "hyperliquid"

// Client is the REST client for the Hyperliquid /info API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given API root, e.g.
// "https://api.hyperliquid.xyz".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the venue identifier.
func (c *Client) Name() string { return VenueName }

// FetchQuotes returns mid price and funding rate for each requested symbol
// via metaAndAssetCtxs. Hyperliquid quotes funding per hour; the provider
// contract requires both venues to agree on the funding period.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) (map[string]domain.VenueQuote, error) {
	body, err := c.post(ctx, map[string]any{"type": "metaAndAssetCtxs"})
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: fetch quotes: %w", err)
	}

	// The response is a two-element array: [meta, assetCtxs], index-aligned.
	var pair []json.RawMessage
	if err := json.Unmarshal(body, &pair); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode meta pair: %w", err)
	}
	if len(pair) < 2 {
		return nil, fmt.Errorf("hyperliquid: meta pair has %d elements", len(pair))
	}
	var m meta
	if err := json.Unmarshal(pair[0], &m); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode universe: %w", err)
	}
	var ctxs []assetCtx
	if err := json.Unmarshal(pair[1], &ctxs); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode asset ctxs: %w", err)
	}

	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[s] = true
	}

	now := time.Now().UTC()
	quotes := make(map[string]domain.VenueQuote, len(symbols))
	for i, entry := range m.Universe {
		if i >= len(ctxs) || !wanted[entry.Name] {
			continue
		}
		price := parseFloat(ctxs[i].MidPx)
		if price <= 0 {
			continue
		}
		quotes[entry.Name] = domain.VenueQuote{
			Symbol:      entry.Name,
			Price:       price,
			FundingRate: parseFloat(ctxs[i].Funding),
			Timestamp:   now,
		}
	}
	return quotes, nil
}

// FetchOrderBook returns the L2 book for a symbol.
func (c *Client) FetchOrderBook(ctx context.Context, symbol string) (domain.OrderBookSnapshot, error) {
	body, err := c.post(ctx, map[string]any{"type": "l2Book", "coin": symbol})
	if err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("hyperliquid: fetch book %s: %w", symbol, err)
	}

	var resp l2BookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("hyperliquid: decode book %s: %w", symbol, err)
	}
	snap := domain.OrderBookSnapshot{
		Symbol:    symbol,
		Timestamp: time.UnixMilli(resp.Time).UTC(),
	}
	if len(resp.Levels) > 0 {
		snap.Bids = toLevels(resp.Levels[0])
	}
	if len(resp.Levels) > 1 {
		snap.Asks = toLevels(resp.Levels[1])
	}
	if len(snap.Bids) == 0 && len(snap.Asks) == 0 {
		return domain.OrderBookSnapshot{}, fmt.Errorf("hyperliquid: empty book %s: %w", symbol, domain.ErrDataUnavailable)
	}
	return snap, nil
}

// FetchCandles returns close prices from candleSnapshot over [start, end].
func (c *Client) FetchCandles(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.PricePoint, error) {
	body, err := c.post(ctx, map[string]any{
		"type": "candleSnapshot",
		"req": candleSnapshotReq{
			Coin:      symbol,
			Interval:  interval,
			StartTime: start.UnixMilli(),
			EndTime:   end.UnixMilli(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: fetch candles %s: %w", symbol, err)
	}

	var candles []candle
	if err := json.Unmarshal(body, &candles); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode candles %s: %w", symbol, err)
	}
	points := make([]domain.PricePoint, 0, len(candles))
	for _, cd := range candles {
		points = append(points, domain.PricePoint{
			Timestamp: cd.OpenTime,
			Price:     parseFloat(cd.Close),
		})
	}
	return points, nil
}

func (c *Client) post(ctx context.Context, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/info", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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

func toLevels(levels []bookLevel) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, domain.PriceLevel{
			Price: parseFloat(lvl.Px),
			Size:  parseFloat(lvl.Sz),
		})
	}
	return out
}
