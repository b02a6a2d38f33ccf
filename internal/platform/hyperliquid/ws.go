package hyperliquid

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/perpx/arbot/internal/domain"
)

// midStaleAfter bounds how long a streamed mid is trusted before the scan
// loop falls back to the REST quote.
const midStaleAfter = 2 * time.Second

// MidFeed subscribes to the allMids WebSocket channel and keeps the latest
// mid price per symbol. The scan loop overlays fresh streamed mids on top of
// the REST quotes to cut quote latency; funding rates still come from REST.
// The feed reconnects with backoff on disconnect.
type MidFeed struct {
	wsURL  string
	logger *slog.Logger

	mu   sync.RWMutex
	mids map[string]midEntry
}

type midEntry struct {
	price float64
	at    time.Time
}

// subscribeMsg is the allMids subscription request.
type subscribeMsg struct {
	Method       string `json:"method"`
	Subscription struct {
		Type string `json:"type"`
	} `json:"subscription"`
}

// allMidsMsg is a pushed allMids update.
type allMidsMsg struct {
	Channel string `json:"channel"`
	Data    struct {
		Mids map[string]string `json:"mids"`
	} `json:"data"`
}

// NewMidFeed creates a MidFeed for the given WebSocket URL, e.g.
// "wss://api.hyperliquid.xyz/ws".
func NewMidFeed(wsURL string, logger *slog.Logger) *MidFeed {
	return &MidFeed{
		wsURL:  wsURL,
		logger: logger.With(slog.String("component", "hyperliquid_mid_feed")),
		mids:   make(map[string]midEntry),
	}
}

// Run connects, subscribes to allMids, and consumes updates until ctx is
// cancelled. Disconnects are retried after a short pause; the feed degrades
// to "no fresh mids" in between, which the loop tolerates.
func (f *MidFeed) Run(ctx context.Context) error {
	for {
		if err := f.runConnection(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Warn("mid feed disconnected, reconnecting", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (f *MidFeed) runConnection(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, f.wsURL, nil)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close()

	var sub subscribeMsg
	sub.Method = "subscribe"
	sub.Subscription.Type = "allMids"
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}
	f.logger.Info("subscribed to allMids")

	// Unblock ReadMessage when the context ends.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return domain.ErrWSDisconnect
		}
		var msg allMidsMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.Channel != "allMids" {
			continue
		}
		now := time.Now().UTC()
		f.mu.Lock()
		for sym, raw := range msg.Data.Mids {
			if px := parseFloat(raw); px > 0 {
				f.mids[sym] = midEntry{price: px, at: now}
			}
		}
		f.mu.Unlock()
	}
}

// Mid returns the latest streamed mid for a symbol if it is fresh enough to
// trust over the REST quote.
func (f *MidFeed) Mid(symbol string) (float64, bool) {
	f.mu.RLock()
	entry, ok := f.mids[symbol]
	f.mu.RUnlock()
	if !ok || time.Since(entry.at) > midStaleAfter {
		return 0, false
	}
	return entry.price, true
}
