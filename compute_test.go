package compute_test

import (
	"bytes"
	"context"
	stdErrors "errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	compute "github.com/reglet-dev/compute-bridge"
	"github.com/reglet-dev/compute-bridge/bridge"
	"github.com/reglet-dev/compute-bridge/domain/entities"
	"github.com/reglet-dev/compute-bridge/domain/errors"
	"github.com/reglet-dev/compute-bridge/domain/ports"
	"github.com/reglet-dev/compute-bridge/engine"
	"github.com/reglet-dev/compute-bridge/internal/testutil"
)

func newContext(t *testing.T, opts ...compute.Option) *compute.Context {
	t.Helper()
	cc, err := compute.New(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })
	return cc
}

func TestContext_RegisterAndProcess(t *testing.T) {
	ctx := context.Background()
	cc := newContext(t)

	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 1, Program: testutil.IdentityLambda()}))

	out, err := cc.Process(ctx, entities.Batch{LambdaID: 1, BatchID: 100, Data: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, entities.Batch{LambdaID: 1, BatchID: 100, Data: []byte{1, 2, 3}}, out)
}

func TestContext_RegisterFailure(t *testing.T) {
	cc := newContext(t)

	err := cc.Register(context.Background(), entities.NewLambda(1, "return batch"))

	var ce *errors.ComputeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, entities.CodeLambdaCompile, ce.Code)
	assert.Equal(t, "lambda program failed to compile", ce.Message)
	assert.False(t, errors.IsFatal(err))
}

func TestContext_ProcessFailures(t *testing.T) {
	ctx := context.Background()
	cc := newContext(t)
	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 1, Program: testutil.TrapLambda()}))
	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 2, Program: testutil.StatusLambda(7)}))

	tests := []struct {
		name     string
		lambdaID int32
		want     entities.Code
	}{
		{name: "unknown", lambdaID: 9, want: entities.CodeLambdaUnknown},
		{name: "trap", lambdaID: 1, want: entities.CodeLambdaRuntime},
		{name: "status", lambdaID: 2, want: entities.CodeLambdaFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := cc.Process(ctx, entities.Batch{LambdaID: tt.lambdaID, BatchID: 1, Data: []byte("x")})
			assert.ErrorIs(t, err, errors.NewComputeError(tt.want, ""))
			assert.Equal(t, entities.Batch{}, out)
		})
	}
}

func TestContext_NoOutput(t *testing.T) {
	ctx := context.Background()
	cc := newContext(t)
	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 1, Program: testutil.SilentLambda()}))

	out, err := cc.Process(ctx, entities.Batch{LambdaID: 1, BatchID: 2, Data: []byte("x")})
	require.NoError(t, err)
	assert.Nil(t, out.Data)
	assert.Equal(t, int32(2), out.BatchID)
}

func TestContext_WhenLogEntry(t *testing.T) {
	ctx := context.Background()
	cc := newContext(t)

	var entries []entities.LogEntry
	cancel := cc.WhenLogEntry(func(e entities.LogEntry) { entries = append(entries, e) })

	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 3, Program: testutil.InitLoggingLambda("init")}))
	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 4, Program: testutil.LoggingLambda("a", "b")}))
	_, err := cc.Process(ctx, entities.Batch{LambdaID: 4, BatchID: 10, Data: []byte("x")})
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, "[3,0] \"init\"", entries[0].String())
	assert.Equal(t, "[4,10] \"a\"", entries[1].String())
	assert.Equal(t, "[4,10] \"b\"", entries[2].String())

	cancel()
	cancel()
	_, err = cc.Process(ctx, entities.Batch{LambdaID: 4, BatchID: 11, Data: []byte("x")})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestContext_PanickingSubscriberPropagates(t *testing.T) {
	ctx := context.Background()
	cc := newContext(t)
	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 1, Program: testutil.LoggingLambda("hi")}))

	cancel := cc.WhenLogEntry(func(entities.LogEntry) { panic("host bug") })
	assert.PanicsWithValue(t, "host bug", func() {
		_, _ = cc.Process(ctx, entities.Batch{LambdaID: 1, BatchID: 1, Data: []byte("x")})
	})
	cancel()

	out, err := cc.Process(ctx, entities.Batch{LambdaID: 1, BatchID: 2, Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), out.Data)
}

func TestContext_LogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()
	cc := newContext(t, compute.WithLogger(logger))

	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 1, Program: testutil.LoggingLambda("visible")}))
	_, err := cc.Process(ctx, entities.Batch{LambdaID: 1, BatchID: 1})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "context_id=")
}

type callMarker struct{}

// ctxRecorder records the call marker carried by the context of each
// "lambda log" record.
type ctxRecorder struct {
	mu   *sync.Mutex
	seen *[]any
}

func (r ctxRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r ctxRecorder) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Message == "lambda log" {
		r.mu.Lock()
		*r.seen = append(*r.seen, ctx.Value(callMarker{}))
		r.mu.Unlock()
	}
	return nil
}

func (r ctxRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r ctxRecorder) WithGroup(string) slog.Handler      { return r }

func TestContext_LogsWithCallerContext(t *testing.T) {
	var seen []any
	rec := ctxRecorder{mu: &sync.Mutex{}, seen: &seen}
	cc := newContext(t, compute.WithLogger(slog.New(rec)))

	ctx := context.WithValue(context.Background(), callMarker{}, "process")
	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 1, Program: testutil.LoggingLambda("hi")}))
	_, err := cc.Process(ctx, entities.Batch{LambdaID: 1, BatchID: 1})
	require.NoError(t, err)

	require.NotEmpty(t, seen)
	for _, v := range seen {
		assert.Equal(t, "process", v)
	}
}

func TestContext_Close(t *testing.T) {
	ctx := context.Background()
	cc, err := compute.New(ctx)
	require.NoError(t, err)
	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 1, Program: testutil.IdentityLambda()}))

	require.NoError(t, cc.Close())
	require.NoError(t, cc.Close())

	err = cc.Register(ctx, entities.Lambda{ID: 1, Program: testutil.IdentityLambda()})
	assert.ErrorIs(t, err, errors.ErrNotConstructed)
	_, err = cc.Process(ctx, entities.Batch{LambdaID: 1})
	assert.ErrorIs(t, err, errors.ErrNotConstructed)
}

func TestContext_FatalErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	limits := bridge.DefaultLimits()
	limits.MaxOutputBytes = 1
	cc := newContext(t, compute.WithLimits(limits))
	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 1, Program: testutil.IdentityLambda()}))

	_, err := cc.Process(ctx, entities.Batch{LambdaID: 1, BatchID: 1, Data: []byte("too big")})

	var ae *errors.AllocationError
	require.ErrorAs(t, err, &ae)
	assert.True(t, errors.IsFatal(err))

	// The context stays usable after a fatal error.
	out, err := cc.Process(ctx, entities.Batch{LambdaID: 1, BatchID: 2, Data: []byte("k")})
	require.NoError(t, err)
	assert.Equal(t, []byte("k"), out.Data)
}

func TestContext_WithEngine(t *testing.T) {
	ctx := context.Background()
	cfg := engine.DefaultConfig()
	cfg.MaxBatchBytes = 2
	cc := newContext(t, compute.WithEngine(engine.WithConfig(cfg)))
	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 1, Program: testutil.IdentityLambda()}))

	_, err := cc.Process(ctx, entities.Batch{LambdaID: 1, Data: []byte("abc")})
	assert.ErrorIs(t, err, errors.NewComputeError(entities.CodeBatchTooLarge, ""))
}

func TestNew_OpenerFailure(t *testing.T) {
	openErr := stdErrors.New("boom")
	_, err := compute.New(context.Background(), compute.WithEngineOpener(func(context.Context) (ports.Engine, error) {
		return nil, openErr
	}))
	require.ErrorIs(t, err, openErr)
	assert.True(t, errors.IsFatal(err))
}

func TestContext_ConcurrentProcess(t *testing.T) {
	ctx := context.Background()
	cc := newContext(t)
	require.NoError(t, cc.Register(ctx, entities.Lambda{ID: 1, Program: testutil.IdentityLambda()}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := []byte{byte(i), byte(i + 1)}
			out, err := cc.Process(ctx, entities.Batch{LambdaID: 1, BatchID: int32(i), Data: data})
			if assert.NoError(t, err) {
				assert.Equal(t, data, out.Data)
			}
		}(i)
	}
	wg.Wait()
}
