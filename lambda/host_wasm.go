//go:build wasip1

package lambda

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"
)

// MaxTotalAllocations caps the input buffers handed to the engine at once.
const MaxTotalAllocations = 64 * 1024 * 1024

//go:wasmimport lcm log
func lcmLog(packed uint64)

//go:wasmimport lcm emit
func lcmEmit(packed uint64)

// pinned keeps input buffers reachable until process has consumed them.
var pinned = struct {
	sync.Mutex
	bufs  map[uint32][]byte
	total int
}{
	bufs: make(map[uint32][]byte),
}

// allocate reserves size bytes for the engine to write an input batch into.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	pinned.Lock()
	defer pinned.Unlock()

	if pinned.total+int(size) > MaxTotalAllocations {
		panic(fmt.Sprintf("lambda: allocation limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			size, pinned.total, MaxTotalAllocations))
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0]))) //nolint:gosec // G103: WASM linear memory address
	pinned.bufs[ptr] = buf
	pinned.total += int(size)
	return ptr
}

// release unpins the buffer at ptr and returns it.
func release(ptr uint32) []byte {
	pinned.Lock()
	defer pinned.Unlock()

	buf, ok := pinned.bufs[ptr]
	if !ok {
		return nil
	}
	delete(pinned.bufs, ptr)
	pinned.total -= len(buf)
	return buf
}

//go:wasmexport process
func process(ptr, length uint32) int32 {
	var input []byte
	if length > 0 {
		buf := release(ptr)
		if buf == nil || uint32(len(buf)) < length {
			Logf("lambda: input at %d was not allocated by this module", ptr)
			return statusFailed
		}
		input = buf[:length]
	}
	return processBatch(context.Background(), input)
}

func hostLog(msg []byte) {
	lcmLog(packBytes(msg))
	runtime.KeepAlive(msg)
}

func hostEmit(out []byte) {
	lcmEmit(packBytes(out))
	runtime.KeepAlive(out)
}

// packBytes packs the address and length of b into ptr<<32 | len.
func packBytes(b []byte) uint64 {
	if len(b) == 0 {
		return 0
	}
	ptr := uint32(uintptr(unsafe.Pointer(&b[0]))) //nolint:gosec // G103: WASM linear memory address
	return uint64(ptr)<<32 | uint64(len(b))
}
