package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"taskbridge/internal/instrumentation"
	"taskbridge/internal/logging"
)

const (
	// DefaultHTTPAddr is the default address for the MCP HTTP server.
	DefaultHTTPAddr = ":8080"

	// DefaultHTTPReadHeaderTimeout bounds how long reading request
	// headers may take.
	DefaultHTTPReadHeaderTimeout = 10 * time.Second

	// DefaultHTTPIdleTimeout is the keep-alive idle timeout.
	DefaultHTTPIdleTimeout = 120 * time.Second
)

// HTTPServerConfig holds configuration for the MCP HTTP server.
type HTTPServerConfig struct {
	// Addr is the address to bind to (e.g. ":8080").
	Addr string

	// MCPHandler serves the MCP protocol at /mcp. Required.
	MCPHandler http.Handler

	// HealthChecker mounts /healthz, /readyz and /healthz/detailed when
	// non-nil.
	HealthChecker *HealthChecker

	// Metrics records per-request counters and latencies when non-nil.
	Metrics *instrumentation.Metrics

	// Logger logs request completion. The default slog logger when nil.
	Logger logging.Logger
}

// HTTPServer hosts the MCP streamable HTTP transport together with the
// health endpoints on one chi router.
type HTTPServer struct {
	router     chi.Router
	httpServer *http.Server
	addr       string
	logger     logging.Logger
}

// NewHTTPServer builds the router and returns a server ready to start.
func NewHTTPServer(config HTTPServerConfig) (*HTTPServer, error) {
	if config.MCPHandler == nil {
		return nil, fmt.Errorf("MCP handler is required for HTTP server")
	}
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger, config.Metrics))
	r.Use(middleware.Recoverer)

	if config.HealthChecker != nil {
		config.HealthChecker.RegisterHealthEndpoints(r)
	}

	r.Handle("/mcp", config.MCPHandler)

	return &HTTPServer{
		router: r,
		addr:   config.Addr,
		logger: logger,
	}, nil
}

// Router exposes the root HTTP handler, mainly for tests.
func (s *HTTPServer) Router() http.Handler { return s.router }

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string { return s.addr }

// Start serves until the listener fails or Shutdown is called. It blocks;
// call it in a goroutine for non-blocking operation.
func (s *HTTPServer) Start() error {
	s.httpServer = s.newHTTPServer()

	s.logger.Info("starting HTTP server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// StartWithReadySignal is like Start but closes ready once the listener
// is bound, so callers can sequence startup deterministically.
func (s *HTTPServer) StartWithReadySignal(ready chan<- struct{}) error {
	s.httpServer = s.newHTTPServer()

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	close(ready)
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server, draining in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.logger.Info("shutting down HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *HTTPServer) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: DefaultHTTPReadHeaderTimeout,
		IdleTimeout:       DefaultHTTPIdleTimeout,
		// No WriteTimeout: /mcp holds streaming responses open.
	}
}

// requestLogger logs one line per request and feeds the HTTP request
// metrics. The wrapped response writer captures the status code.
func requestLogger(logger logging.Logger, metrics *instrumentation.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", duration,
				"request_id", middleware.GetReqID(r.Context()),
			)

			if metrics != nil {
				metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, status, duration)
			}
		})
	}
}
