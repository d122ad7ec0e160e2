// Package entities defines the core domain types shared by the bridge, the
// engine and the host: lambdas, batches, log entries, result codes and the
// opaque handle a host object holds to reach its native state.
package entities
