// Package maintenance implements a maintenance barrier: a
// per-identity admission gate plus a drain barrier that lets an operator
// atomically block new admissions for an identity and wait for every
// in-flight request against that identity to finish.
//
// Per-identity state is created lazily and reclaimed when no request
// closure references it anymore, via internal/weakfactory.
package maintenance
