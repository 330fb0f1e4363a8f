package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"taskbridge/internal/instrumentation"
	"taskbridge/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with tracing, metrics and
// audit logging. The invocation runs inside its own tool span whose
// context is handed down to the handler, so task store spans nest under
// it. The operation is the task store operation the tool performs
// (create, list, update, delete) and becomes the metrics and audit label.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", instrumentation.OperationList, sc, handler))
func InstrumentedToolHandler(
	toolName string,
	operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// Nothing configured, nothing to record.
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		taskID := TaskIDFromArgs(request.GetArguments())

		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			instrumentation.NewSpanAttributeBuilder().
				WithOperation(operation).
				WithTaskID(taskID).
				Build()...)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithOperation(operation).
			WithTaskID(taskID).
			WithSpanContext(ctx)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		// A handler error and an error-flagged envelope both count as a
		// failed invocation.
		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				invocation.CompleteWithError(err)
			} else {
				invocation.Complete(false, nil)
			}
		} else {
			invocation.CompleteSuccess()
		}

		span.SetAttributes(attribute.String(instrumentation.SpanAttrStatus, status))
		if err != nil {
			instrumentation.SetSpanError(span, err)
		} else if status == instrumentation.StatusSuccess {
			instrumentation.SetSpanSuccess(span)
		}

		if metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, duration)
		}
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}
