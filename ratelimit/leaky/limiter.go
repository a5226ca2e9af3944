package leaky

import (
	"time"

	"middleware-gateway/internal/delaytimer"
	"middleware-gateway/internal/fairsem"
)

// Limiter is a leaky bucket: a fair permit pool of capacity N, refilled
// by a scheduled "release" task every period/N while the bucket has been
// touched recently, and idled by a scheduled "expire" task once the
// bucket has sat full for a whole period.
type Limiter struct {
	pool   *fairsem.Sem
	n      int
	period time.Duration
	freq   time.Duration

	timer *delaytimer.Timer
	clock delaytimer.Clock

	releaseToken *delaytimer.Token
	expireToken  *delaytimer.Token
}

// Option configures a Limiter at construction.
type Option func(*Limiter)

// WithTimer overrides the delay-scheduled task queue backing the
// limiter. Defaults to delaytimer.Default(), the process-wide singleton.
func WithTimer(t *delaytimer.Timer) Option {
	return func(l *Limiter) { l.timer = t }
}

// WithClock overrides the wall clock used to compute scheduling
// deadlines. Defaults to delaytimer.RealClock.
func WithClock(c delaytimer.Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// NewLimiter constructs a leaky bucket allowing at most n acquisitions
// per rolling period. It runs the release step once synchronously (which
// arms the first refill) before returning.
func NewLimiter(n int, period time.Duration, opts ...Option) *Limiter {
	if n <= 0 {
		n = 1
	}
	if period <= 0 {
		period = time.Second
	}

	l := &Limiter{
		pool:         fairsem.New(n),
		n:            n,
		period:       period,
		freq:         period / time.Duration(n),
		timer:        delaytimer.Default(),
		clock:        delaytimer.RealClock,
		releaseToken: delaytimer.NewToken(),
		expireToken:  delaytimer.NewToken(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.freq <= 0 {
		l.freq = time.Millisecond
	}

	l.release()
	return l
}

// Acquire blocks until a permit is available.
func (l *Limiter) Acquire() { l.pool.Acquire() }

// TryAcquire acquires a permit only if one is immediately available.
func (l *Limiter) TryAcquire() bool { return l.pool.TryAcquire() }

// TryAcquireTimeout blocks at most timeout for a permit.
func (l *Limiter) TryAcquireTimeout(timeout time.Duration) bool {
	return l.pool.TryAcquireTimeout(timeout)
}

// Available reports the current number of unclaimed permits.
func (l *Limiter) Available() int { return l.pool.Available() }

// release is scheduled every freq while the bucket is active. It always
// re-arms itself first, then either grants a permit (bucket not yet
// full) or arms the expire task (bucket full — go idle after one more
// period of inactivity).
func (l *Limiter) release() {
	now := l.clock.Now()
	l.timer.Schedule(now.Add(l.freq), l.releaseToken, l.release)

	if l.pool.Available() < l.n {
		l.timer.Unschedule(l.expireToken)
		l.pool.Release()
		return
	}
	l.timer.Unschedule(l.expireToken)
	l.timer.Schedule(now.Add(l.period), l.expireToken, l.expire)
}

// expire fires when the bucket has sat full for a whole period: it stops
// the refill treadmill so an inactive key costs nothing. The weak keyed
// factory (package weakfactory) is responsible for letting the Limiter
// itself be reclaimed once no handler still holds it; a fresh Limiter
// constructed afterward starts full, which is behaviorally identical to
// an idle one.
func (l *Limiter) expire() {
	l.timer.Unschedule(l.releaseToken)
}
