package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeLogEvictsOldest(t *testing.T) {
	log := NewTradeLog(3)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		log.Append(base.Add(time.Duration(i)*time.Second), fmt.Sprintf("entry %d", i))
	}

	require.Equal(t, 3, log.Len())
	tail := log.Tail(0)
	require.Len(t, tail, 3)
	assert.Equal(t, "entry 2", tail[0].Message)
	assert.Equal(t, "entry 4", tail[2].Message)
}

func TestTradeLogTail(t *testing.T) {
	log := NewTradeLog(10)
	base := time.Now().UTC()
	for i := 0; i < 4; i++ {
		log.Append(base, fmt.Sprintf("entry %d", i))
	}

	tail := log.Tail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, "entry 2", tail[0].Message)
	assert.Equal(t, "entry 3", tail[1].Message)

	// Oversized and non-positive requests return everything retained.
	assert.Len(t, log.Tail(100), 4)
	assert.Len(t, log.Tail(-1), 4)
}

func TestTradeLogDefaultLimit(t *testing.T) {
	log := NewTradeLog(0)
	for i := 0; i < DefaultTradeLogSize+10; i++ {
		log.Append(time.Now(), "x")
	}
	assert.Equal(t, DefaultTradeLogSize, log.Len())
}
