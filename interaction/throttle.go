package interaction

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// DefaultUpdateInterval limits detection to 10 updates per second.
const DefaultUpdateInterval = 100 * time.Millisecond

// ErrInvalidInterval is returned for a negative throttle interval.
var ErrInvalidInterval = errors.New("throttle interval must not be negative")

// Throttle lets one update through per interval, independent of how often it is asked. It is a
// token bucket of size one refilled once per interval, read against an injectable clock.
type Throttle struct {
	clock    clock.Clock
	interval time.Duration
	limiter  *rate.Limiter
}

// NewThrottle returns a throttle whose first Allow succeeds. A zero interval never throttles.
func NewThrottle(interval time.Duration, clk clock.Clock) (*Throttle, error) {
	if interval < 0 {
		return nil, errors.Wrapf(ErrInvalidInterval, "got %v", interval)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Throttle{clock: clk, interval: interval, limiter: newLimiter(interval)}, nil
}

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval == 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Allow reports whether an update may run now, consuming the slot if so.
func (t *Throttle) Allow() bool {
	return t.limiter.AllowN(t.clock.Now(), 1)
}

// Interval returns the configured interval.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// SetInterval changes the interval. The next Allow succeeds.
func (t *Throttle) SetInterval(interval time.Duration) error {
	if interval < 0 {
		return errors.Wrapf(ErrInvalidInterval, "got %v", interval)
	}
	t.interval = interval
	t.limiter = newLimiter(interval)
	return nil
}

// Reset makes the next Allow succeed.
func (t *Throttle) Reset() {
	t.limiter = newLimiter(t.interval)
}
