// Package bridge connects a host-visible compute context object to its
// native state: one Engine per context, kept alive between calls behind an
// opaque handle that the host object stores.
//
// Every entrypoint resolves a call scope from the host object, forwards to
// the engine with a fresh sink, relays log entries to the host as they
// arrive, stages the output batch, and reports the engine's result code
// through the host's OnResult callback before returning.
//
// Two failure channels exist. Engine outcomes, including failures, are
// always reported through OnResult and never abort a call. Bridge failures
// (*errors.AllocationError and *errors.IllegalStateError) are returned as Go
// errors, abort the call immediately and bypass OnResult.
//
// Calls for the same host object must be serialized by the caller. Distinct
// objects may be used concurrently.
package bridge
