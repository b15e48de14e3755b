package cache

import "time"

type decision int

const (
	// No response yet, start the first refresh and wait for it
	decisionPopulate decision = iota
	// No response yet, but a refresh is already in flight: wait for it
	decisionAwaitPopulate
	// No response yet, and the refresh in flight is hung: start a new one and wait for it
	decisionRestartPopulate
	decisionServeFresh
	decisionServeStaleAndRefresh
	decisionServeStaleWhileRefreshing
	decisionServeStaleAndRestartRefresh
)

func (d decision) String() string {
	switch d {
	case decisionPopulate:
		return "populate"
	case decisionAwaitPopulate:
		return "await_populate"
	case decisionRestartPopulate:
		return "restart_populate"
	case decisionServeFresh:
		return "fresh"
	case decisionServeStaleAndRefresh:
		return "stale_refresh"
	case decisionServeStaleWhileRefreshing:
		return "stale_refreshing"
	case decisionServeStaleAndRestartRefresh:
		return "stale_refresh_timed_out"
	}
	return "unknown"
}

func (d decision) startsRefresh() bool {
	switch d {
	case decisionPopulate, decisionRestartPopulate, decisionServeStaleAndRefresh, decisionServeStaleAndRestartRefresh:
		return true
	}
	return false
}

func (d decision) supersedesRefresh() bool {
	return d == decisionRestartPopulate || d == decisionServeStaleAndRestartRefresh
}

func (d decision) waitsForRefresh() bool {
	return d == decisionPopulate || d == decisionAwaitPopulate || d == decisionRestartPopulate
}

// The timestamps the decision is based on. A zero time means unset.
type recordState struct {
	populated   bool
	lastSuccess time.Time
	lastAttempt time.Time
}

func (s recordState) refreshing() bool {
	return !s.lastAttempt.IsZero()
}

// expired and timedOut are strict: a response exactly cacheValidity old is still fresh,
// and a refresh exactly refreshTimeout old is still trusted.
func (s recordState) expired(policy Policy, now time.Time) bool {
	return s.lastSuccess.Before(now.Add(-policy.cacheValidity))
}

func (s recordState) timedOut(policy Policy, now time.Time) bool {
	return s.lastAttempt.Before(now.Add(-policy.refreshTimeout))
}

func decide(state recordState, policy Policy, now time.Time) decision {
	if !state.populated {
		if !state.refreshing() {
			return decisionPopulate
		}
		if state.timedOut(policy, now) {
			return decisionRestartPopulate
		}
		return decisionAwaitPopulate
	}

	if !state.expired(policy, now) {
		return decisionServeFresh
	}

	if !state.refreshing() {
		return decisionServeStaleAndRefresh
	}

	if state.timedOut(policy, now) {
		return decisionServeStaleAndRestartRefresh
	}

	return decisionServeStaleWhileRefreshing
}
