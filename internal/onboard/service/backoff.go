package service

import "time"

// backoffSteps are the per-attempt multipliers of the backoff unit. The
// table length is also the retry-attempt ceiling.
var backoffSteps = []int{2, 4, 8, 16, 32}

// BackoffTable maps an attempt number to the delay required before the
// next attempt. The unit is configurable because deployments differ on
// how aggressive automated retries should be.
type BackoffTable struct {
	delays []time.Duration
}

// NewBackoffTable builds the standard 2/4/8/16/32 table in the given unit.
// A non-positive unit defaults to one second.
func NewBackoffTable(unit time.Duration) BackoffTable {
	if unit <= 0 {
		unit = time.Second
	}

	delays := make([]time.Duration, len(backoffSteps))
	for i, step := range backoffSteps {
		delays[i] = time.Duration(step) * unit
	}
	return BackoffTable{delays: delays}
}

// MaxAttempts is the retry ceiling: one entry per allowed attempt.
func (t BackoffTable) MaxAttempts() int { return len(t.delays) }

// DelayFor returns the required wait after the given attempt count.
// Counts beyond the table clamp to the last entry.
func (t BackoffTable) DelayFor(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount >= len(t.delays) {
		retryCount = len(t.delays) - 1
	}
	return t.delays[retryCount]
}

// Floor is the shortest delay in the table, used as the sweep query's
// coarse cutoff before per-record delays are applied.
func (t BackoffTable) Floor() time.Duration { return t.delays[0] }
