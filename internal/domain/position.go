package domain

import "time"

// StrategyKind selects the entry/exit rule applied to a symbol.
type StrategyKind string

const (
	StrategyConvergence StrategyKind = "CONVERGENCE"
	StrategyFunding     StrategyKind = "FUNDING"
)

// Valid reports whether k is a known strategy kind.
func (k StrategyKind) Valid() bool {
	return k == StrategyConvergence || k == StrategyFunding
}

// Direction describes which venue is shorted and which is longed.
type Direction string

const (
	DirectionAShortBLong Direction = "A_short_B_long"
	DirectionALongBShort Direction = "A_long_B_short"
)

// Opposite returns the mirror direction.
func (d Direction) Opposite() Direction {
	if d == DirectionAShortBLong {
		return DirectionALongBShort
	}
	return DirectionAShortBLong
}

// PositionStatus tracks whether a position is open or closed.
type PositionStatus string

const (
	PositionStatusOpen   PositionStatus = "OPEN"
	PositionStatusClosed PositionStatus = "CLOSED"
)

// Position is one open paper position on a symbol. At most one Position
// exists per symbol at any time; the strategy engine enforces that, not
// storage. EntryValue holds the entry spread percentage for convergence
// positions and the entry funding income for funding positions.
type Position struct {
	ID           string
	Symbol       string
	StrategyKind StrategyKind
	Direction    Direction
	EntryValue   float64
	Status       PositionStatus
	OpenedAt     time.Time
}

// ClosedTrade is the record of a position that has been closed, persisted to
// the trade history store and dispatched to notification channels.
type ClosedTrade struct {
	PositionID   string
	Symbol       string
	StrategyKind StrategyKind
	Direction    Direction
	EntryValue   float64
	ExitValue    float64
	Reason       string
	OpenedAt     time.Time
	ClosedAt     time.Time
}
