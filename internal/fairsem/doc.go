// Package fairsem implements a bounded, FIFO-fair counting semaphore:
// acquire, try-acquire, try-acquire-with-timeout and release.
//
// FIFO fairness (no barging) is why this isn't a buffered channel: a
// waiter that arrives while others are already queued must not be able
// to steal a permit released while it waits, so permits are handed
// directly to the head of an explicit waiter queue.
package fairsem
