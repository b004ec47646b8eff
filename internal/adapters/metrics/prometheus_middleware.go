package metrics

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// PrometheusMiddleware creates a middleware that records command execution metrics.
// Command names are reduced to the bare type name, so
// "*commands.AssignWorkersCommand" is recorded as "AssignWorkersCommand".
func PrometheusMiddleware(collector *CommandMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		commandName := extractCommandName(request)
		start := time.Now()

		response, err := next(ctx, request)

		collector.RecordCommandExecution(commandName, time.Since(start).Seconds(), outcome(err))
		return response, err
	}
}

func outcome(err error) string {
	var rejection *shared.RejectionError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &rejection):
		return "rejected"
	default:
		return "failure"
	}
}

// extractCommandName extracts a clean command name from the request using reflection
func extractCommandName(request common.Request) string {
	if request == nil {
		return "UnknownCommand"
	}

	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	parts := strings.Split(fullName, ".")
	return parts[len(parts)-1]
}
