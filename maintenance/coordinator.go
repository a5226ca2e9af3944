package maintenance

import (
	"sync"
	"time"

	"middleware-gateway/internal/weakfactory"
)

// state is the per-identity {gate, drain} pair. gate-close and admission
// registration share one mutex so a request can never observe the gate
// as open and register itself as in-flight after the operator has
// already treated the identity as fully drained — the two operations
// are ordered by lock acquisition, not by two independently-observed
// booleans.
type state struct {
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
	// openAgain is closed exactly once, when the gate currently closed
	// reopens. Waiters read it, then loop to recheck closed (a second
	// close can race in immediately after a reopen).
	openAgain chan struct{}
	count     int
}

func newState() *state {
	s := &state{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// waitOpenIndefinite blocks until the gate is open and registers the
// caller as in-flight in the same critical section. Used by the throttle
// admission path, which never gives up.
func (s *state) waitOpenIndefinite() {
	for {
		s.mu.Lock()
		if !s.closed {
			s.count++
			s.mu.Unlock()
			return
		}
		ch := s.openAgain
		s.mu.Unlock()
		<-ch
	}
}

// waitOpen blocks until the gate is open and registers the caller as
// in-flight in the same critical section, or returns false if timeout
// elapses first. timeout == 0 tries exactly once, without waiting — the
// caller asked for explicit non-blocking semantics.
func (s *state) waitOpen(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for {
		s.mu.Lock()
		if !s.closed {
			s.count++
			s.mu.Unlock()
			return true
		}
		ch := s.openAgain
		s.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		timer := time.NewTimer(remaining)
		select {
		case <-ch:
			timer.Stop()
		case <-timer.C:
			return false
		}
	}
}

// closeGate blocks new admissions and returns the func that reopens the
// gate (wakes every waiter blocked in waitOpen).
func (s *state) closeGate() (reopen func()) {
	s.mu.Lock()
	s.closed = true
	ch := make(chan struct{})
	s.openAgain = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.closed = false
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *state) leave() {
	s.mu.Lock()
	s.count--
	if s.count == 0 {
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}

func (s *state) awaitDrained() {
	s.mu.Lock()
	for s.count > 0 {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

// Coordinator holds the maintenance state for every identity of type K
// seen so far. Different identities are fully independent: an operator
// draining :A never blocks a request keyed :B.
type Coordinator[K comparable] struct {
	states *weakfactory.Table[K, state]
}

// New constructs a Coordinator.
func New[K comparable]() *Coordinator[K] {
	return &Coordinator[K]{
		states: weakfactory.New[K, state](func(K) *state { return newState() }),
	}
}

// AdmitThrottle waits indefinitely for ident's gate to open, then enters
// the drain barrier. The returned leave func must be called exactly once
// on every exit path of the caller's request.
func (c *Coordinator[K]) AdmitThrottle(ident K) (leave func()) {
	st := c.states.Get(ident)
	st.waitOpenIndefinite()
	return st.leave
}

// AdmitLimit waits up to maxWait for ident's gate to open (maxWait == 0
// tries once, without waiting). If the gate doesn't open in time, ok is
// false and the caller must use its deny_handler; otherwise leave must
// be called exactly once.
func (c *Coordinator[K]) AdmitLimit(ident K, maxWait time.Duration) (leave func(), ok bool) {
	st := c.states.Get(ident)
	if !st.waitOpen(maxWait) {
		return nil, false
	}
	return st.leave, true
}

// WithMaintenance closes ident's gate, waits for every request admitted
// before the close to leave, runs fn with an empty in-flight set for
// ident, then reopens the gate on every exit path (including a panic
// inside fn).
func (c *Coordinator[K]) WithMaintenance(ident K, fn func()) {
	st := c.states.Get(ident)
	reopen := st.closeGate()
	defer reopen()

	st.awaitDrained()
	fn()
}
