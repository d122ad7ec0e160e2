package compute

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reglet-dev/compute-bridge/bridge"
	"github.com/reglet-dev/compute-bridge/domain/entities"
	"github.com/reglet-dev/compute-bridge/domain/errors"
)

// Context is a compute context: an engine instance in which lambdas are
// registered and through which batches are processed. It is safe for
// concurrent use; calls are serialized.
//
// Log subscribers run synchronously on the calling goroutine while the
// context is locked and must not call back into the Context.
type Context struct {
	obj    *hostObject
	logger *slog.Logger
	subs   map[uint64]func(entities.LogEntry)
	mu     sync.Mutex
	subsMu sync.Mutex
	nextID uint64
}

// New constructs a compute context with its own engine.
func New(ctx context.Context, opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Context{
		logger: o.logger,
		subs:   make(map[uint64]func(entities.LogEntry)),
	}
	c.obj = &hostObject{owner: c}

	if err := bridge.Construct(ctx, c.obj, o.bridgeOptions()...); err != nil {
		return nil, err
	}
	return c, nil
}

// Register registers l, replacing any lambda with the same id. A failure
// reported by the engine is returned as a *errors.ComputeError.
func (c *Context) Register(ctx context.Context, l entities.Lambda) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.obj.begin(ctx)
	if err := bridge.RegisterLambda(ctx, c.obj, l.ID, l.Program); err != nil {
		return err
	}
	return c.obj.resultErr()
}

// Process runs b through the lambda named by b.LambdaID. The returned batch
// carries the same ids; its Data is nil when the lambda produced no output.
// A failure reported by the engine is returned as a *errors.ComputeError.
func (c *Context) Process(ctx context.Context, b entities.Batch) (entities.Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.obj.begin(ctx)
	out, err := bridge.ProcessBatch(ctx, c.obj, b.LambdaID, b.BatchID, b.Data)
	if err != nil {
		return entities.Batch{}, err
	}
	if err := c.obj.resultErr(); err != nil {
		return entities.Batch{}, err
	}
	return entities.Batch{LambdaID: b.LambdaID, BatchID: b.BatchID, Data: out}, nil
}

// WhenLogEntry subscribes fn to every log entry written by a lambda of this
// context. The returned function cancels the subscription.
func (c *Context) WhenLogEntry(fn func(entities.LogEntry)) (cancel func()) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	c.nextID++
	id := c.nextID
	c.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subsMu.Lock()
			defer c.subsMu.Unlock()
			delete(c.subs, id)
		})
	}
}

// Close releases the engine and every registered lambda. Closing twice is a
// no-op. Register and Process fail with errors.ErrNotConstructed after
// Close.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	bridge.Destroy(context.Background(), c.obj)
	return nil
}

func (c *Context) publish(entry entities.LogEntry) {
	c.subsMu.Lock()
	subs := make([]func(entities.LogEntry), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range subs {
		fn(entry)
	}
}

// hostObject receives bridge callbacks on behalf of a Context.
type hostObject struct {
	owner   *Context
	ctx     context.Context
	message string
	handle  entities.Handle
	code    entities.Code
	hasCode bool
}

func (h *hostObject) OnResult(code entities.Code, message string) {
	h.code = code
	h.message = message
	h.hasCode = true
}

func (h *hostObject) OnLog(lambdaID, batchID int32, message string) {
	entry := entities.NewLogEntry(lambdaID, batchID, message)
	h.owner.logger.DebugContext(h.ctx, "lambda log", "entry", entry.String())
	h.owner.publish(entry)
}

func (h *hostObject) NativeHandle() entities.Handle {
	return h.handle
}

func (h *hostObject) SetNativeHandle(handle entities.Handle) {
	h.handle = handle
}

// begin prepares h for a call made with ctx.
func (h *hostObject) begin(ctx context.Context) {
	h.ctx = ctx
	h.code = entities.CodeOK
	h.message = ""
	h.hasCode = false
}

func (h *hostObject) resultErr() error {
	if !h.hasCode {
		return &errors.IllegalStateError{Message: "no result reported"}
	}
	if !h.code.IsOK() {
		return errors.NewComputeError(h.code, h.message)
	}
	return nil
}
