package handler

import (
	"log/slog"
	"net/http"

	"github.com/perpx/arbot/internal/domain"
)

// TradesHandler serves the persisted closed-trade history.
type TradesHandler struct {
	store  domain.TradeHistoryStore
	logger *slog.Logger
}

// NewTradesHandler creates a TradesHandler backed by the given store. The
// store may be nil when Postgres is not configured; the endpoint then reports
// the history as unavailable.
func NewTradesHandler(store domain.TradeHistoryStore, logger *slog.Logger) *TradesHandler {
	return &TradesHandler{
		store:  store,
		logger: logger.With(slog.String("handler", "trades")),
	}
}

// ListRecent responds with the most recently closed trades.
// GET /api/trades?limit=N
func (h *TradesHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "trade history store not configured")
		return
	}

	limit := queryInt(r, "limit", 50, 500)
	trades, err := h.store.ListRecentTrades(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list recent trades failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trades": trades,
		"count":  len(trades),
	})
}
