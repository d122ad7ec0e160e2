package testutil

// Host functions exposed to lambdas. Kept here so fixtures do not depend on
// the engine package.
const (
	HostModule = "lcm"
	hostLog    = "log"
	hostEmit   = "emit"
)

// scratchOffset is where allocate hands out input buffers. Fixture data
// segments live below it.
const scratchOffset = 1024

// lambdaModule is a fixture module with the lcm imports already declared.
type lambdaModule struct {
	*WasmBuilder
	log  uint32
	emit uint32
}

func newLambdaModule() *lambdaModule {
	b := NewWasmBuilder()
	m := &lambdaModule{WasmBuilder: b}
	m.log = b.ImportFunc(HostModule, hostLog, []ValType{I64}, nil)
	m.emit = b.ImportFunc(HostModule, hostEmit, []ValType{I64}, nil)
	b.Memory(2, "memory")
	return m
}

// allocate always returns the scratch area. Fixtures never hold more than
// one input at a time.
func (m *lambdaModule) allocate() {
	m.Func("allocate", []ValType{I32}, []ValType{I32}, I32Const(scratchOffset))
}

func (m *lambdaModule) process(code ...[]byte) {
	m.Func("process", []ValType{I32, I32}, []ValType{I32}, code...)
}

// logCalls places msgs in a data segment and returns one packed log call per
// message.
func (m *lambdaModule) logCalls(msgs ...string) [][]byte {
	var (
		data  []byte
		calls [][]byte
	)
	const base = 16
	for _, msg := range msgs {
		off := uint32(base + len(data))
		data = append(data, msg...)
		calls = append(calls, PackedConst(off, uint32(len(msg))), Call(m.log))
	}
	if len(data) > 0 {
		if base+len(data) > scratchOffset {
			panic("testutil: fixture log messages overlap scratch area")
		}
		m.Data(base, data)
	}
	return calls
}

func (m *lambdaModule) emitInput() [][]byte {
	return [][]byte{PackLocals(0, 1), Call(m.emit)}
}

func join(parts ...[][]byte) [][]byte {
	var out [][]byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// IdentityLambda emits its input unchanged.
func IdentityLambda() []byte {
	m := newLambdaModule()
	m.allocate()
	m.process(join(m.emitInput(), [][]byte{I32Const(0)})...)
	return m.Bytes()
}

// LoggingLambda logs each message in order, then emits its input unchanged.
func LoggingLambda(msgs ...string) []byte {
	m := newLambdaModule()
	logs := m.logCalls(msgs...)
	m.allocate()
	m.process(join(logs, m.emitInput(), [][]byte{I32Const(0)})...)
	return m.Bytes()
}

// SilentLambda succeeds without emitting any output.
func SilentLambda() []byte {
	m := newLambdaModule()
	m.allocate()
	m.process(I32Const(0))
	return m.Bytes()
}

// StatusLambda returns status without emitting output.
func StatusLambda(status int32) []byte {
	m := newLambdaModule()
	m.allocate()
	m.process(I32Const(status))
	return m.Bytes()
}

// EmitThenFailLambda emits its input and then reports failure.
func EmitThenFailLambda() []byte {
	m := newLambdaModule()
	m.allocate()
	m.process(join(m.emitInput(), [][]byte{I32Const(1)})...)
	return m.Bytes()
}

// LogThenFailLambda logs msg and then reports failure.
func LogThenFailLambda(msg string) []byte {
	m := newLambdaModule()
	logs := m.logCalls(msg)
	m.allocate()
	m.process(join(logs, [][]byte{I32Const(1)})...)
	return m.Bytes()
}

// TrapLambda traps inside process.
func TrapLambda() []byte {
	m := newLambdaModule()
	m.allocate()
	m.process(Unreachable())
	return m.Bytes()
}

// LogThenTrapLambda logs msg and then traps.
func LogThenTrapLambda(msg string) []byte {
	m := newLambdaModule()
	logs := m.logCalls(msg)
	m.allocate()
	m.process(join(logs, [][]byte{Unreachable()})...)
	return m.Bytes()
}

// DoubleEmitLambda emits its input twice.
func DoubleEmitLambda() []byte {
	m := newLambdaModule()
	m.allocate()
	m.process(join(m.emitInput(), m.emitInput(), [][]byte{I32Const(0)})...)
	return m.Bytes()
}

// InitLoggingLambda logs msgs from _initialize and otherwise behaves like
// IdentityLambda.
func InitLoggingLambda(msgs ...string) []byte {
	m := newLambdaModule()
	logs := m.logCalls(msgs...)
	m.Func("_initialize", nil, nil, logs...)
	m.allocate()
	m.process(join(m.emitInput(), [][]byte{I32Const(0)})...)
	return m.Bytes()
}

// InitTrapLambda traps in _initialize.
func InitTrapLambda() []byte {
	m := newLambdaModule()
	m.Func("_initialize", nil, nil, Unreachable())
	m.allocate()
	m.process(I32Const(0))
	return m.Bytes()
}

// InitEmitLambda emits a constant from _initialize, which is not allowed.
func InitEmitLambda() []byte {
	m := newLambdaModule()
	m.Data(16, []byte("early"))
	m.Func("_initialize", nil, nil, PackedConst(16, 5), Call(m.emit))
	m.allocate()
	m.process(I32Const(0))
	return m.Bytes()
}

// NoProcessLambda exports memory and allocate but not process.
func NoProcessLambda() []byte {
	m := newLambdaModule()
	m.allocate()
	return m.Bytes()
}

// NoMemoryLambda exports allocate and process but no memory.
func NoMemoryLambda() []byte {
	b := NewWasmBuilder()
	b.Func("allocate", []ValType{I32}, []ValType{I32}, I32Const(0))
	b.Func("process", []ValType{I32, I32}, []ValType{I32}, I32Const(0))
	return b.Bytes()
}

// BadSignatureLambda exports process with the wrong parameter list.
func BadSignatureLambda() []byte {
	m := newLambdaModule()
	m.allocate()
	m.Func("process", []ValType{I32}, []ValType{I32}, I32Const(0))
	return m.Bytes()
}

// UnknownImportLambda imports a host function that does not exist.
func UnknownImportLambda() []byte {
	b := NewWasmBuilder()
	b.ImportFunc(HostModule, "missing", []ValType{I64}, nil)
	b.Memory(1, "memory")
	b.Func("allocate", []ValType{I32}, []ValType{I32}, I32Const(0))
	b.Func("process", []ValType{I32, I32}, []ValType{I32}, I32Const(0))
	return b.Bytes()
}

// InvalidProgram is not a WebAssembly module.
func InvalidProgram() []byte {
	return []byte("return function(batch) return batch end")
}
