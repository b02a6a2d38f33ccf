package app

import (
	"sync"

	"github.com/perpx/arbot/internal/domain"
)

// SnapshotHolder keeps the latest cycle snapshot in memory for the HTTP
// handlers. The scan loop writes it once per tick; readers get a value copy.
type SnapshotHolder struct {
	mu   sync.RWMutex
	snap domain.CycleSnapshot
	set  bool
}

// NewSnapshotHolder creates an empty holder.
func NewSnapshotHolder() *SnapshotHolder {
	return &SnapshotHolder{}
}

// Store replaces the held snapshot.
func (h *SnapshotHolder) Store(snap domain.CycleSnapshot) {
	h.mu.Lock()
	h.snap = snap
	h.set = true
	h.mu.Unlock()
}

// Latest returns the held snapshot and whether one has been stored yet.
func (h *SnapshotHolder) Latest() (domain.CycleSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap, h.set
}
