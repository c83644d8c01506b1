package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelaySubtractsSlowestReply(t *testing.T) {
	assert := assert.New(t)

	// d == max(min, interval - slowest) while something replied.
	for _, tc := range []struct {
		slowest time.Duration
		want    time.Duration
	}{
		{10 * ms, 990 * ms},
		{250 * ms, 750 * ms},
		{700 * ms, 300 * ms},
		{749 * ms, 251 * ms},
		{751 * ms, 250 * ms}, // would be 249ms, clamped to the minimum
		{999 * ms, 250 * ms},
	} {
		got := Delay(Stats{Replies: 1, Slowest: tc.slowest}, time.Second, 250*ms)
		assert.Equal(tc.want, got, "slowest %v", tc.slowest)
	}
}

func TestDelayDegenerateRounds(t *testing.T) {
	assert := assert.New(t)

	// Nothing answered: fall back to the minimum, not the full interval.
	assert.Equal(250*ms, Delay(Stats{}, time.Second, 250*ms))

	// The slowest reply exceeded the interval.
	assert.Equal(250*ms, Delay(Stats{Replies: 3, Slowest: 1500 * ms}, time.Second, 250*ms))
	assert.Equal(250*ms, Delay(Stats{Replies: 1, Slowest: time.Second}, time.Second, 250*ms))
}

func TestDelayTruncatesToWholeMillisecond(t *testing.T) {
	got := Delay(Stats{Replies: 1, Slowest: 10*ms + 400*time.Microsecond}, time.Second, 250*ms)
	assert.Equal(t, 989*ms, got)
}

func TestDelayDefaults(t *testing.T) {
	assert := assert.New(t)

	// Zero/negative knobs fall back to the shipped defaults rather than
	// producing a busy loop.
	assert.Equal(DefaultMinDelay, Delay(Stats{}, 0, 0))
	assert.Equal(990*ms, Delay(Stats{Replies: 1, Slowest: 10 * ms}, 0, 0))
	assert.Equal(DefaultMinDelay, Delay(Stats{Replies: 1, Slowest: 2 * time.Second}, 0, -1))
}
