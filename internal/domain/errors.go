package domain

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrDataUnavailable       = errors.New("venue data unavailable")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for requested notional")
	ErrInvalidConfiguration  = errors.New("invalid configuration")
	ErrWSDisconnect          = errors.New("websocket disconnected")
)
