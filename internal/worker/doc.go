// Package worker implements the per-stage poll loop that turns the job
// ledger into work.
//
// Each worker process runs one Worker for one pipeline stage. A Worker polls
// the ledger for jobs awaiting its stage, checks their dependencies, claims
// them through the ledger's conditional update, and dispatches stage runs up
// to a configured in-flight bound. Dispatched work continues through graceful
// shutdown: the loop stops claiming but never cancels a stage mid-run.
//
// Workers on different hosts coordinate only through the ledger. The local
// in-flight tracker is an advisory belief, reconciled against the ledger's
// authoritative status on every poll.
package worker
