// Package weakfactory implements a weak keyed factory: a lookup table
// K -> V that materializes V on first access and reclaims the slot once
// no external holder keeps V reachable.
//
// This uses Go's native weak.Pointer plus a runtime.AddCleanup callback
// keyed by the entry's key, rather than manual reference counting — the
// value stays alive exactly as long as some request's handler closure
// still references it, and the runtime tells us when that stops being
// true.
package weakfactory
