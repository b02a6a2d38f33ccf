package domain

import "time"

// DefaultTradeLogSize is the default ring capacity for the trade log.
const DefaultTradeLogSize = 50

// TradeLogEntry is one observational log line. Entries carry no control
// semantics; they exist for the snapshot tail and notifications.
type TradeLogEntry struct {
	Timestamp time.Time
	Message   string
}

// TradeLog is a bounded append-only log: once full, appending evicts the
// oldest entry. It is owned by the strategy engine and only touched from the
// single-threaded decision phase, so it carries no lock.
type TradeLog struct {
	entries []TradeLogEntry
	limit   int
}

// NewTradeLog creates a TradeLog bounded to limit entries. A non-positive
// limit falls back to DefaultTradeLogSize.
func NewTradeLog(limit int) *TradeLog {
	if limit <= 0 {
		limit = DefaultTradeLogSize
	}
	return &TradeLog{limit: limit}
}

// Append records a message at the given timestamp, evicting the oldest entry
// when the ring is full.
func (l *TradeLog) Append(ts time.Time, message string) {
	l.entries = append(l.entries, TradeLogEntry{Timestamp: ts, Message: message})
	if len(l.entries) > l.limit {
		l.entries = l.entries[1:]
	}
}

// Tail returns up to n most recent entries, oldest first. n <= 0 returns all
// retained entries. The returned slice is a copy.
func (l *TradeLog) Tail(n int) []TradeLogEntry {
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]TradeLogEntry, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}

// Len returns the number of retained entries.
func (l *TradeLog) Len() int { return len(l.entries) }
