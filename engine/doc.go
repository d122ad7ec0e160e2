// Package engine is the WebAssembly compute engine behind a compute context.
//
// A lambda is a WebAssembly core module. It imports two host functions from
// the "lcm" module, each taking a single i64 that packs a guest pointer in
// the upper 32 bits and a length in the lower 32 bits:
//
//	lcm.log(i64)   log a UTF-8 message
//	lcm.emit(i64)  emit the output batch (at most once per call)
//
// and exports:
//
//	memory
//	allocate(size i32) i32          reserve size bytes for the input batch
//	process(ptr i32, len i32) i32   process the batch, 0 means success
//	_initialize()                   optional, run once after instantiation
//
// Every lambda runs in its own module instance named "lambda-<id>" inside a
// single wazero runtime owned by the Engine. Compiled code is shared across
// engines through a process-wide compilation cache.
//
// Engine is not safe for concurrent use. Callers serialize access to one
// instance, which the bridge and compute packages do.
package engine
