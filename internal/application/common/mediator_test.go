package common_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

type pingCommand struct{ fail error }

type pingHandler struct{ calls int }

func (h *pingHandler) Handle(_ context.Context, request common.Request) (common.Response, error) {
	h.calls++
	cmd := request.(*pingCommand)
	if cmd.fail != nil {
		return nil, cmd.fail
	}
	return "pong", nil
}

type logEntry struct {
	level    string
	message  string
	metadata map[string]interface{}
}

type captureLogger struct{ entries []logEntry }

func (l *captureLogger) Log(level, message string, metadata map[string]interface{}) {
	l.entries = append(l.entries, logEntry{level, message, metadata})
}

func TestMediator_DispatchesByType(t *testing.T) {
	m := common.NewMediator()
	handler := &pingHandler{}
	require.NoError(t, common.RegisterHandler[*pingCommand](m, handler))

	resp, err := m.Send(context.Background(), &pingCommand{})

	require.NoError(t, err)
	assert.Equal(t, "pong", resp)
	assert.Equal(t, 1, handler.calls)
}

func TestMediator_RegistrationErrors(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingCommand](m, &pingHandler{}))

	assert.Error(t, common.RegisterHandler[*pingCommand](m, &pingHandler{}))
	assert.Error(t, m.Register(nil, &pingHandler{}))

	_, err := m.Send(context.Background(), nil)
	assert.Error(t, err)
	_, err = m.Send(context.Background(), &struct{}{})
	assert.ErrorContains(t, err, "no handler registered")
}

func TestMediator_MiddlewareOrder(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingCommand](m, &pingHandler{}))

	var order []string
	trace := func(name string) common.Middleware {
		return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
			order = append(order, name+":before")
			resp, err := next(ctx, request)
			order = append(order, name+":after")
			return resp, err
		}
	}
	m.Use(trace("outer"))
	m.Use(trace("inner"))

	_, err := m.Send(context.Background(), &pingCommand{})

	require.NoError(t, err)
	assert.Equal(t, []string{"outer:before", "inner:before", "inner:after", "outer:after"}, order)
}

func TestLoggingMiddleware_Levels(t *testing.T) {
	tests := []struct {
		name    string
		fail    error
		level   string
		message string
	}{
		{name: "success", level: common.LevelDebug, message: "request handled"},
		{
			name:    "rejection",
			fail:    shared.NewRejectionError(shared.RejectLocked, "house is locked"),
			level:   common.LevelInfo,
			message: "request rejected",
		},
		{name: "failure", fail: errors.New("disk full"), level: common.LevelError, message: "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &captureLogger{}
			ctx := common.WithLogger(context.Background(), logger)
			m := common.NewMediator()
			require.NoError(t, common.RegisterHandler[*pingCommand](m, &pingHandler{}))
			m.Use(common.LoggingMiddleware)

			_, err := m.Send(ctx, &pingCommand{fail: tt.fail})

			assert.Equal(t, tt.fail, err)
			require.Len(t, logger.entries, 1)
			assert.Equal(t, tt.level, logger.entries[0].level)
			assert.Equal(t, tt.message, logger.entries[0].message)
			assert.Equal(t, "*common_test.pingCommand", logger.entries[0].metadata["request"])
		})
	}
}

func TestLoggerFromContext_FallsBackToNop(t *testing.T) {
	logger := common.LoggerFromContext(context.Background())

	assert.NotPanics(t, func() { logger.Log(common.LevelInfo, "ignored", nil) })
}
