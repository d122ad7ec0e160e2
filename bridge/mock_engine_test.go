package bridge

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/reglet-dev/compute-bridge/domain/entities"
	"github.com/reglet-dev/compute-bridge/domain/ports"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Register(ctx context.Context, lambdaID int32, program []byte, sink ports.Sink) (entities.Code, error) {
	args := m.Called(ctx, lambdaID, program, sink)
	return args.Get(0).(entities.Code), args.Error(1)
}

func (m *mockEngine) Process(ctx context.Context, lambdaID, batchID int32, input []byte, sink ports.Sink) (entities.Code, error) {
	args := m.Called(ctx, lambdaID, batchID, input, sink)
	return args.Get(0).(entities.Code), args.Error(1)
}

func (m *mockEngine) ErrStr(code entities.Code) string {
	args := m.Called(code)
	return args.String(0)
}

func (m *mockEngine) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// describeCodes makes ErrStr return the standard descriptions.
func (m *mockEngine) describeCodes() *mockEngine {
	for code := entities.CodeOK; code <= entities.CodeBatchDuplicate; code++ {
		m.On("ErrStr", code).Return(code.Description()).Maybe()
	}
	return m
}

func (m *mockEngine) opener() EngineOpener {
	return func(context.Context) (ports.Engine, error) {
		return m, nil
	}
}

// sinkArg extracts the sink passed to Register or Process.
func sinkArg(args mock.Arguments) ports.Sink {
	return args.Get(len(args) - 1).(ports.Sink)
}
