// Package resgroup provides a way to guarantee that resources acquired during a unit of work are
// released when that work ends, no matter how it ends. Resources are registered with a Group as
// they are acquired and the Group releases all of them, most recent first, when it is drained.
//
// Release failures are silently discarded. Cleanup is a best-effort path and must never change
// the outcome of the work it follows.
//
// Scope is the usual entry point and runs a function with a Group that is released on every
// exit path. The Group type has further documentation about ordering and ownership.
package resgroup
