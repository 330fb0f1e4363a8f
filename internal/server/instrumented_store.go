package server

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"

	"taskbridge/internal/instrumentation"
	"taskbridge/internal/taskstore"
)

// InstrumentedStore decorates a TaskStore with tracing and request
// metrics. Every call runs inside a client span named after the store
// operation and is counted in the task store request metrics; the wrapped
// store does the actual work.
type InstrumentedStore struct {
	store   TaskStore
	metrics *instrumentation.Metrics
}

var _ TaskStore = (*InstrumentedStore)(nil)

// NewInstrumentedStore wraps store with instrumentation. metrics may be
// nil, in which case only spans are emitted.
func NewInstrumentedStore(store TaskStore, metrics *instrumentation.Metrics) *InstrumentedStore {
	return &InstrumentedStore{store: store, metrics: metrics}
}

func (s *InstrumentedStore) CreateTask(ctx context.Context, fields taskstore.TaskFields) (json.RawMessage, error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.OperationCreate)
	defer span.End()

	start := time.Now()
	raw, err := s.store.CreateTask(ctx, fields)
	s.record(ctx, span, instrumentation.OperationCreate, start, err)
	return raw, err
}

func (s *InstrumentedStore) ListTasks(ctx context.Context, query taskstore.ListQuery) (json.RawMessage, error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.OperationList)
	defer span.End()

	start := time.Now()
	raw, err := s.store.ListTasks(ctx, query)
	s.record(ctx, span, instrumentation.OperationList, start, err)
	return raw, err
}

func (s *InstrumentedStore) UpdateTask(ctx context.Context, taskID string, fields taskstore.TaskFields) (json.RawMessage, error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.OperationUpdate,
		instrumentation.NewSpanAttributeBuilder().WithTaskID(taskID).Build()...)
	defer span.End()

	start := time.Now()
	raw, err := s.store.UpdateTask(ctx, taskID, fields)
	s.record(ctx, span, instrumentation.OperationUpdate, start, err)
	return raw, err
}

func (s *InstrumentedStore) DeleteTask(ctx context.Context, taskID string) (bool, error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.OperationDelete,
		instrumentation.NewSpanAttributeBuilder().WithTaskID(taskID).Build()...)
	defer span.End()

	start := time.Now()
	ok, err := s.store.DeleteTask(ctx, taskID)
	s.record(ctx, span, instrumentation.OperationDelete, start, err)
	return ok, err
}

// record closes out one store call: span status from the error, one
// request counted when metrics are configured. A refused delete is not an
// error here; only transport failures are.
func (s *InstrumentedStore) record(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	if s.metrics != nil {
		s.metrics.RecordStoreRequest(ctx, operation, status, duration)
	}
}
