// Package api exposes the job queue over HTTP so jobs can be submitted,
// inspected, and triggered without shell access to the host running the
// workers.
package api
