package server

import (
	"context"
	"encoding/json"
	"sync"

	"taskbridge/internal/instrumentation"
	"taskbridge/internal/taskstore"
)

// TaskStore is the record-store surface the tool dispatcher depends on.
// *taskstore.Client satisfies it; tests substitute fakes.
type TaskStore interface {
	CreateTask(ctx context.Context, fields taskstore.TaskFields) (json.RawMessage, error)
	ListTasks(ctx context.Context, query taskstore.ListQuery) (json.RawMessage, error)
	UpdateTask(ctx context.Context, taskID string, fields taskstore.TaskFields) (json.RawMessage, error)
	DeleteTask(ctx context.Context, taskID string) (bool, error)
}

var _ TaskStore = (*taskstore.Client)(nil)

// ServerContext holds the shared dependencies for the MCP server.
//
// The task store client is injected once at construction and shared by
// every tool invocation for the lifetime of the process. Instrumentation
// hooks are optional; a ServerContext without them simply skips metrics
// and audit logging.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	store       TaskStore
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context with the given task
// store client.
func NewServerContext(ctx context.Context, store TaskStore) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		store:  store,
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Store returns the task store client shared by all tool invocations.
func (sc *ServerContext) Store() TaskStore {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.store
}

// SetStore replaces the task store client. Used by tests to substitute
// a fake store.
func (sc *ServerContext) SetStore(store TaskStore) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.store = store
}

// Metrics returns the metrics recorder, or nil if none is configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder for tool instrumentation.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// AuditLogger returns the audit logger, or nil if none is configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger for tool invocations.
func (sc *ServerContext) SetAuditLogger(auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
