// Package queue persists video jobs in SQLite and provides the conditional
// update primitives the stage workers coordinate through. The store is the
// only shared mutable state between worker processes; every status change
// flows through it.
package queue
