// Package delaytimer implements a process-wide delay-scheduled task
// queue: a single background worker that runs tasks once their deadline
// is reached, in deadline order, with cancellation by a stable per-task
// identity token rather than by handle.
//
// The leaky-bucket limiter (package ratelimit/leaky) is the primary
// consumer: it needs to cancel "the expire task" or "the release task"
// without threading a handle through the scheduling call sites.
package delaytimer
