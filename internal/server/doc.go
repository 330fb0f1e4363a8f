// Package server provides the runtime pieces that surround the MCP tool
// handlers: the shared server context, the HTTP transport, health probes,
// and the metrics listener.
//
// # Key Components
//
// ServerContext carries the task store client and the instrumentation
// hooks (metrics, audit logger) shared by every tool handler. It tracks
// shutdown state so health probes can report draining.
//
// InstrumentedStore decorates a TaskStore with tracing spans and request
// metrics for every call to the remote task store.
//
// HTTPServer serves the streamable HTTP transport. It mounts the MCP
// handler at /mcp behind a chi router with request-ID, logging, and
// panic-recovery middleware, alongside the health endpoints.
//
// HealthChecker answers Kubernetes-style probes: /healthz for liveness,
// /readyz for readiness (configured store, not shutting down), and
// /healthz/detailed with per-check results and uptime.
//
// MetricsServer exposes Prometheus metrics on a dedicated port so
// scrapes never compete with MCP traffic.
package server
