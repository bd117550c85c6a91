package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextBackoff_DoublesAndCaps(t *testing.T) {
	delays := []time.Duration{initialBackoff}
	for i := 0; i < 6; i++ {
		delays = append(delays, nextBackoff(delays[len(delays)-1]))
	}

	assert.Equal(t, []time.Duration{
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		maxBackoff,
		maxBackoff,
	}, delays)
}

func TestNextBackoff_StaysAtCap(t *testing.T) {
	assert.Equal(t, maxBackoff, nextBackoff(maxBackoff))
	assert.Equal(t, maxBackoff, nextBackoff(maxBackoff-time.Millisecond))
}
