// Package hostfuncs provides the registry of host functions that lambdas
// import from the host. Handlers are plain Go functions over raw request
// bytes and have no WASM runtime dependency; the engine package binds them to
// a wazero host module.
//
// A handler failure is not reported back to the guest as data. The binding
// layer traps the guest instead, so that the engine can abort the running
// lambda and surface the failure to its caller.
package hostfuncs
