package board

import "time"

// Pacing defaults, overridable through configuration.
const (
	DefaultInterval = time.Second
	DefaultMinDelay = 250 * time.Millisecond
)

// Delay computes the pause before the next round. The target cadence is
// one round per interval, and a round's duration is dominated by its
// slowest reply, so that reply's time is deducted. Rounds where nothing
// answered, or where the slowest reply already ate the whole interval,
// fall back to min instead of a zero or negative sleep: slow hosts may
// stretch the cadence, but the loop must never spin.
func Delay(stats Stats, interval, min time.Duration) time.Duration {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if min <= 0 {
		min = DefaultMinDelay
	}

	if stats.Replies == 0 {
		return min
	}

	d := (interval - stats.Slowest).Truncate(time.Millisecond)
	if d < min {
		return min
	}
	return d
}
