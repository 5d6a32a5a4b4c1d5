package archio_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xy2iii/dominos/archio"
)

func TestManualClock_AdvanceAccumulates(t *testing.T) {
	c := archio.NewManualClock()
	assert.Equal(t, uint64(0), c.Ticks())

	assert.Equal(t, uint64(5), c.Advance(5))
	assert.Equal(t, uint64(5), c.Ticks())

	assert.Equal(t, uint64(12), c.Advance(7))
	assert.Equal(t, uint64(12), c.Ticks())
}

func TestRealClock_TicksAdvanceOverTime(t *testing.T) {
	c := archio.NewRealClock()
	start := c.Ticks()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, c.Ticks(), start)
}
