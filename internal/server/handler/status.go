package handler

import (
	"log/slog"
	"net/http"

	"github.com/perpx/arbot/internal/domain"
)

// SnapshotSource exposes the most recent scan-cycle snapshot. The app layer
// implements it with an in-memory holder updated once per cycle.
type SnapshotSource interface {
	Latest() (domain.CycleSnapshot, bool)
}

// StatusHandler serves the live view of the scanner: the latest opportunity
// table, open positions, and the trade log tail.
type StatusHandler struct {
	snapshots SnapshotSource
	logger    *slog.Logger
}

// NewStatusHandler creates a StatusHandler reading from the given source.
func NewStatusHandler(snapshots SnapshotSource, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		snapshots: snapshots,
		logger:    logger.With(slog.String("handler", "status")),
	}
}

// GetStatus responds with the full latest cycle snapshot.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshots.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no scan cycle completed yet")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ListOpportunities responds with the ordered opportunity table from the
// latest cycle.
// GET /api/opportunities
func (h *StatusHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshots.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no scan cycle completed yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"at":            snap.At,
		"opportunities": snap.Opportunities,
	})
}

// ListPositions responds with the open position map from the latest cycle.
// GET /api/positions
func (h *StatusHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshots.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no scan cycle completed yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"at":        snap.At,
		"positions": snap.Positions,
	})
}

// GetLog responds with the most recent trade log entries.
// GET /api/log?limit=N
func (h *StatusHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshots.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no scan cycle completed yet")
		return
	}
	limit := queryInt(r, "limit", len(snap.LogTail), len(snap.LogTail))
	tail := snap.LogTail
	if limit < len(tail) {
		tail = tail[len(tail)-limit:]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"at":  snap.At,
		"log": tail,
	})
}
