package hyperliquid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// infoServer routes /info requests by the "type" field.
func infoServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/info", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		body, ok := responses[req.Type]
		if !ok {
			http.Error(w, "unknown type", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestFetchQuotes(t *testing.T) {
	srv := infoServer(t, map[string]string{
		"metaAndAssetCtxs": `[
			{"universe":[{"name":"HYPE"},{"name":"PAXG"},{"name":"JUNK"}]},
			[
				{"midPx":"44.5","funding":"0.0000125","markPx":"44.51"},
				{"midPx":"2601.0","funding":"-0.0000042","markPx":"2600.8"},
				{"midPx":"0","funding":"0","markPx":"0"}
			]
		]`,
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	quotes, err := c.FetchQuotes(context.Background(), []string{"HYPE", "PAXG", "MISSING"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	hype := quotes["HYPE"]
	assert.InDelta(t, 44.5, hype.Price, 1e-9)
	assert.InDelta(t, 0.0000125, hype.FundingRate, 1e-12)
	assert.Equal(t, "HYPE", hype.Symbol)

	paxg := quotes["PAXG"]
	assert.InDelta(t, 2601.0, paxg.Price, 1e-9)
	assert.InDelta(t, -0.0000042, paxg.FundingRate, 1e-12)

	_, ok := quotes["MISSING"]
	assert.False(t, ok, "symbols absent from the universe are simply omitted")
}

func TestFetchOrderBook(t *testing.T) {
	srv := infoServer(t, map[string]string{
		"l2Book": `{
			"coin":"HYPE",
			"time":1724800000000,
			"levels":[
				[{"px":"44.49","sz":"120.5","n":3},{"px":"44.48","sz":"80","n":1}],
				[{"px":"44.51","sz":"95","n":2}]
			]
		}`,
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	book, err := c.FetchOrderBook(context.Background(), "HYPE")
	require.NoError(t, err)

	require.Len(t, book.Bids, 2)
	require.Len(t, book.Asks, 1)
	assert.InDelta(t, 44.49, book.Bids[0].Price, 1e-9)
	assert.InDelta(t, 120.5, book.Bids[0].Size, 1e-9)
	assert.InDelta(t, 44.51, book.Asks[0].Price, 1e-9)
	assert.Equal(t, time.UnixMilli(1724800000000).UTC(), book.Timestamp)
}

func TestFetchCandles(t *testing.T) {
	srv := infoServer(t, map[string]string{
		"candleSnapshot": `[
			{"t":1724800000000,"c":"44.10"},
			{"t":1724800060000,"c":"44.25"}
		]`,
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	points, err := c.FetchCandles(context.Background(), "HYPE", "1m",
		time.UnixMilli(1724800000000), time.UnixMilli(1724800120000))
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, int64(1724800000000), points[0].Timestamp)
	assert.InDelta(t, 44.10, points[0].Price, 1e-9)
	assert.InDelta(t, 44.25, points[1].Price, 1e-9)
}

func TestFetchQuotes_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchQuotes(context.Background(), []string{"HYPE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
