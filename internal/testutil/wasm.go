package testutil

import (
	"fmt"
)

// ValType is a WebAssembly value type.
type ValType byte

// Value types used by the lambda ABI.
const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
)

// Instruction opcodes used by the fixtures.
const (
	opUnreachable   = 0x00
	opEnd           = 0x0b
	opCall          = 0x10
	opDrop          = 0x1a
	opLocalGet      = 0x20
	opI32Const      = 0x41
	opI64Const      = 0x42
	opI64Or         = 0x84
	opI64Shl        = 0x86
	opI64ExtendI32U = 0xad
)

// Section ids, in the order they must appear.
const (
	secType     = 1
	secImport   = 2
	secFunction = 3
	secMemory   = 5
	secExport   = 7
	secCode     = 10
	secData     = 11
)

const (
	externFunc   = 0x00
	externMemory = 0x02
)

type funcType struct {
	params  []ValType
	results []ValType
}

type wasmImport struct {
	module  string
	name    string
	typeIdx uint32
}

type wasmFunc struct {
	export  string
	body    []byte
	typeIdx uint32
}

type wasmData struct {
	bytes  []byte
	offset int32
}

// WasmBuilder assembles a minimal WebAssembly core module. Imports must be
// declared before any function is defined so that function indices are
// stable.
type WasmBuilder struct {
	memoryExport string
	types        []funcType
	imports      []wasmImport
	funcs        []wasmFunc
	data         []wasmData
	memoryPages  uint32
}

// NewWasmBuilder creates an empty module builder.
func NewWasmBuilder() *WasmBuilder {
	return &WasmBuilder{}
}

// ImportFunc declares an imported function and returns its function index.
func (b *WasmBuilder) ImportFunc(module, name string, params, results []ValType) uint32 {
	if len(b.funcs) > 0 {
		panic("testutil: imports must be declared before functions")
	}
	b.imports = append(b.imports, wasmImport{
		module:  module,
		name:    name,
		typeIdx: b.typeIndex(params, results),
	})
	return uint32(len(b.imports) - 1)
}

// Func defines a function with no locals and returns its function index.
// The terminating end opcode is appended. An empty export name keeps the
// function internal.
func (b *WasmBuilder) Func(export string, params, results []ValType, code ...[]byte) uint32 {
	var body []byte
	body = append(body, 0x00) // no local declarations
	for _, c := range code {
		body = append(body, c...)
	}
	body = append(body, opEnd)

	b.funcs = append(b.funcs, wasmFunc{
		export:  export,
		typeIdx: b.typeIndex(params, results),
		body:    body,
	})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// Memory defines linear memory of the given size in 64KiB pages, exported
// under name when name is not empty.
func (b *WasmBuilder) Memory(pages uint32, name string) *WasmBuilder {
	b.memoryPages = pages
	b.memoryExport = name
	return b
}

// Data places bytes in memory at offset when the module is instantiated.
func (b *WasmBuilder) Data(offset int32, bytes []byte) *WasmBuilder {
	b.data = append(b.data, wasmData{offset: offset, bytes: bytes})
	return b
}

func (b *WasmBuilder) typeIndex(params, results []ValType) uint32 {
	for i, t := range b.types {
		if equalTypes(t.params, params) && equalTypes(t.results, results) {
			return uint32(i)
		}
	}
	b.types = append(b.types, funcType{params: params, results: results})
	return uint32(len(b.types) - 1)
}

// Bytes encodes the module in the binary format.
func (b *WasmBuilder) Bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	if len(b.types) > 0 {
		var items [][]byte
		for _, t := range b.types {
			entry := []byte{0x60}
			entry = append(entry, encodeValTypes(t.params)...)
			entry = append(entry, encodeValTypes(t.results)...)
			items = append(items, entry)
		}
		out = append(out, section(secType, vec(items))...)
	}

	if len(b.imports) > 0 {
		var items [][]byte
		for _, imp := range b.imports {
			entry := encodeName(imp.module)
			entry = append(entry, encodeName(imp.name)...)
			entry = append(entry, externFunc)
			entry = append(entry, ULEB128(uint64(imp.typeIdx))...)
			items = append(items, entry)
		}
		out = append(out, section(secImport, vec(items))...)
	}

	if len(b.funcs) > 0 {
		var items [][]byte
		for _, f := range b.funcs {
			items = append(items, ULEB128(uint64(f.typeIdx)))
		}
		out = append(out, section(secFunction, vec(items))...)
	}

	if b.memoryPages > 0 {
		limits := append([]byte{0x00}, ULEB128(uint64(b.memoryPages))...)
		out = append(out, section(secMemory, vec([][]byte{limits}))...)
	}

	var exports [][]byte
	if b.memoryPages > 0 && b.memoryExport != "" {
		entry := encodeName(b.memoryExport)
		entry = append(entry, externMemory, 0x00)
		exports = append(exports, entry)
	}
	for i, f := range b.funcs {
		if f.export == "" {
			continue
		}
		entry := encodeName(f.export)
		entry = append(entry, externFunc)
		entry = append(entry, ULEB128(uint64(len(b.imports)+i))...)
		exports = append(exports, entry)
	}
	if len(exports) > 0 {
		out = append(out, section(secExport, vec(exports))...)
	}

	if len(b.funcs) > 0 {
		var items [][]byte
		for _, f := range b.funcs {
			entry := ULEB128(uint64(len(f.body)))
			entry = append(entry, f.body...)
			items = append(items, entry)
		}
		out = append(out, section(secCode, vec(items))...)
	}

	if len(b.data) > 0 {
		if b.memoryPages == 0 {
			panic("testutil: data segments require memory")
		}
		var items [][]byte
		for _, d := range b.data {
			entry := []byte{0x00} // active, memory 0
			entry = append(entry, I32Const(d.offset)...)
			entry = append(entry, opEnd)
			entry = append(entry, ULEB128(uint64(len(d.bytes)))...)
			entry = append(entry, d.bytes...)
			items = append(items, entry)
		}
		out = append(out, section(secData, vec(items))...)
	}

	return out
}

// LocalGet pushes the local (or parameter) at index i.
func LocalGet(i uint32) []byte {
	return append([]byte{opLocalGet}, ULEB128(uint64(i))...)
}

// I32Const pushes an i32 constant.
func I32Const(v int32) []byte {
	return append([]byte{opI32Const}, SLEB128(int64(v))...)
}

// I64Const pushes an i64 constant.
func I64Const(v int64) []byte {
	return append([]byte{opI64Const}, SLEB128(v)...)
}

// Call calls the function at index fn.
func Call(fn uint32) []byte {
	return append([]byte{opCall}, ULEB128(uint64(fn))...)
}

// Drop discards the top of the stack.
func Drop() []byte { return []byte{opDrop} }

// Unreachable traps unconditionally.
func Unreachable() []byte { return []byte{opUnreachable} }

// PackedConst pushes the i64 ptr<<32|len constant used by the host ABI.
func PackedConst(ptr, length uint32) []byte {
	return I64Const(int64(uint64(ptr)<<32 | uint64(length)))
}

// PackLocals pushes ptr<<32|len built from two i32 locals.
func PackLocals(ptrLocal, lenLocal uint32) []byte {
	var code []byte
	code = append(code, LocalGet(ptrLocal)...)
	code = append(code, opI64ExtendI32U)
	code = append(code, I64Const(32)...)
	code = append(code, opI64Shl)
	code = append(code, LocalGet(lenLocal)...)
	code = append(code, opI64ExtendI32U)
	code = append(code, opI64Or)
	return code
}

// ULEB128 encodes v as an unsigned LEB128 number.
func ULEB128(v uint64) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		out = append(out, c)
		if v == 0 {
			return out
		}
	}
}

// SLEB128 encodes v as a signed LEB128 number.
func SLEB128(v int64) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0)
		if !done {
			c |= 0x80
		}
		out = append(out, c)
		if done {
			return out
		}
	}
}

func section(id byte, content []byte) []byte {
	out := []byte{id}
	out = append(out, ULEB128(uint64(len(content)))...)
	return append(out, content...)
}

func vec(items [][]byte) []byte {
	out := ULEB128(uint64(len(items)))
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

func encodeName(s string) []byte {
	return append(ULEB128(uint64(len(s))), s...)
}

func encodeValTypes(types []ValType) []byte {
	out := ULEB128(uint64(len(types)))
	for _, t := range types {
		out = append(out, byte(t))
	}
	return out
}

func equalTypes(a, b []ValType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String describes the module layout, for test failure messages.
func (b *WasmBuilder) String() string {
	return fmt.Sprintf("wasm module: %d types, %d imports, %d funcs, %d pages",
		len(b.types), len(b.imports), len(b.funcs), b.memoryPages)
}
