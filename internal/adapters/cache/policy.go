package cache

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPolicy = errors.New("invalid cache policy")

// Used when the configuration does not say otherwise
const (
	DefaultRefreshTimeout = 10 * time.Second
	DefaultCacheValidity  = 5 * time.Minute
)

// Refresh policy of a refresh-ahead record. Immutable once created.
type Policy struct {
	refreshTimeout time.Duration
	cacheValidity  time.Duration
}

// How long a refresh may be in flight before it is considered hung and superseded
func (p Policy) RefreshTimeout() time.Duration {
	return p.refreshTimeout
}

// How long a successful response is served without triggering a refresh
func (p Policy) CacheValidity() time.Duration {
	return p.cacheValidity
}

func (p Policy) String() string {
	return fmt.Sprintf("Policy{refreshTimeout: %s, cacheValidity: %s}", p.refreshTimeout, p.cacheValidity)
}

func NewPolicy(refreshTimeout, cacheValidity time.Duration) (Policy, error) {
	if refreshTimeout <= 0 {
		return Policy{}, fmt.Errorf("%w: refresh timeout must be positive, got %s", ErrInvalidPolicy, refreshTimeout)
	}
	if cacheValidity <= 0 {
		return Policy{}, fmt.Errorf("%w: cache validity must be positive, got %s", ErrInvalidPolicy, cacheValidity)
	}

	return Policy{
		refreshTimeout: refreshTimeout,
		cacheValidity:  cacheValidity,
	}, nil
}

