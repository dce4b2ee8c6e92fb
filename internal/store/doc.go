// Package store persists OAuth credential records in a relational
// database via GORM.
//
// One record exists per user id, enforced by a unique index and upsert
// semantics. Saving propagates persistence faults; every other
// operation is best-effort and degrades to a neutral result plus a log
// entry, with an explicit Outcome tag so callers can still tell "not
// found" apart from "store faulted".
package store
