package service

import "time"

// safetyMargin pads every wait so we never resume on the exact reset edge
const safetyMargin = time.Second

// governor translates remote quota signals into wait or no wait decisions
// it is advisory and local: it is re-evaluated from each response's own
// headers and tolerates imprecision when another consumer shares the quota
type governor struct {
	now   func() time.Time
	sleep func(time.Duration)
}

func newGovernor() *governor {
	return &governor{now: time.Now, sleep: time.Sleep}
}

// AwaitBudget blocks until resetAt plus the safety margin when remaining
// is nearly exhausted, otherwise returns immediately
func (g *governor) AwaitBudget(remaining int, resetAt time.Time) {
	if remaining > 1 {
		return
	}
	if resetAt.IsZero() {
		return
	}
	wait := resetAt.Sub(g.now()) + safetyMargin
	if wait <= 0 {
		return
	}
	g.sleep(wait)
}

// AwaitRetry always blocks for the server named duration plus the margin
// used when the API explicitly signals throttling with a retry-after hint
func (g *governor) AwaitRetry(retryAfterSeconds int) {
	g.sleep(time.Duration(retryAfterSeconds)*time.Second + safetyMargin)
}
