// Package web provides the kharcha JSON API.
//
// The server exposes the dashboard, debts, settlements and analysis of a tracker and
// accepts payments. Connected clients are told over Server-Sent Events when a payment is
// recorded or the config file changes, and /metrics serves the durations of tracker
// operations in the Prometheus format.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/kharchamitra/kharcha/config"
	"github.com/kharchamitra/kharcha/output"
	"github.com/kharchamitra/kharcha/telemetry"
	"github.com/kharchamitra/kharcha/tracker"
)

// shutdownTimeout bounds how long Start waits for in-flight requests once its context is
// cancelled.
const shutdownTimeout = 5 * time.Second

type Server struct {
	Port      int
	Host      string
	Version   string
	CommitSHA string
	ReadOnly  bool

	// ConfigPath is watched for changes while the server runs when set.
	ConfigPath string

	tracker *tracker.Tracker
	logger  *slog.Logger

	mu       sync.RWMutex
	currency string

	// SSE clients for broadcasting events
	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

func New(tr *tracker.Tracker, host string, port int) *Server {
	return NewWithVersion(tr, host, port, "", "")
}

func NewWithVersion(tr *tracker.Tracker, host string, port int, version, commitSHA string) *Server {
	if host == "" {
		host = "127.0.0.1"
	}
	return &Server{
		Port:       port,
		Host:       host,
		Version:    version,
		CommitSHA:  commitSHA,
		tracker:    tr,
		logger:     slog.Default(),
		currency:   output.DefaultCurrency,
		sseClients: make(map[chan string]struct{}),
	}
}

// SetCurrency changes the currency symbol reported to clients.
func (s *Server) SetCurrency(currency string) {
	s.mu.Lock()
	s.currency = currency
	s.mu.Unlock()
}

func (s *Server) getCurrency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("web.start %s:%d", s.Host, s.Port))

	setupTimer := timer.Child("web.setup_router")
	handler, err := s.setupRouter(prometheus.NewRegistry())
	setupTimer.End()
	timer.End()

	if err != nil {
		return fmt.Errorf("failed to setup router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.Host, s.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeClients()
		return srv.Shutdown(shutdownCtx)
	})
	if s.ConfigPath != "" {
		g.Go(func() error {
			return config.Watch(ctx, s.ConfigPath, config.DefaultDebounce, s.applyConfig)
		})
	}

	return g.Wait()
}

// setupRouter builds the handler and registers the server's metrics with reg.
func (s *Server) setupRouter(reg *prometheus.Registry) (http.Handler, error) {
	metrics, err := telemetry.NewPrometheusCollector(reg)
	if err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	api := func(h http.HandlerFunc) http.HandlerFunc {
		return s.instrument(metrics, h)
	}

	mux.HandleFunc("GET /api/summary", api(s.handleGetSummary))
	mux.HandleFunc("GET /api/debts", api(s.handleGetDebts))
	mux.HandleFunc("GET /api/debts/{name}", api(s.handleGetDebt))
	mux.HandleFunc("GET /api/settlements", api(s.handleGetSettlements))
	mux.HandleFunc("POST /api/payments", api(s.requireWritable(s.handlePostPayment)))
	mux.HandleFunc("GET /api/analysis", api(s.handleGetAnalysis))
	mux.HandleFunc("GET /api/info", s.handleGetInfo)
	mux.HandleFunc("GET /api/events", s.handleSSE)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return mux, nil
}

// requireWritable is middleware that rejects write requests in read-only mode.
func (s *Server) requireWritable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.ReadOnly {
			http.Error(w, "Server is in read-only mode", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// instrument feeds the tracker spans of a request into metrics and logs the request.
func (s *Server) instrument(metrics telemetry.Collector, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		ctx := telemetry.WithCollector(r.Context(), metrics)
		next(rec, r.WithContext(ctx))

		s.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// applyConfig takes the display settings of a reloaded config and tells clients to
// refresh.
func (s *Server) applyConfig(cfg config.Config) {
	s.SetCurrency(cfg.Budget.Currency)
	s.broadcast("reload")
}

// handleSSE handles Server-Sent Events connections for real-time updates.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()

	defer s.removeClient(clientChan)

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-clientChan:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

func (s *Server) removeClient(clientChan chan string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	if _, ok := s.sseClients[clientChan]; ok {
		delete(s.sseClients, clientChan)
		close(clientChan)
	}
}

// closeClients ends every open event stream.
func (s *Server) closeClients() {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for clientChan := range s.sseClients {
		delete(s.sseClients, clientChan)
		close(clientChan)
	}
}

// broadcast sends an event to all connected SSE clients.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			// Client buffer full, skip
		}
	}
}
