// Package eventserver runs the local HTTP server that receives event
// batches from the instrumented app under test and appends them to the
// shared event store.
package eventserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devicelab-dev/mobitest-runner/pkg/events"
	"github.com/devicelab-dev/mobitest-runner/pkg/logger"
)

// maxBodyBytes caps a single batch body.
const maxBodyBytes = 4 << 20

// Server receives batched events on POST /event and stores each request as
// one BATCH event carrying the raw body plus transport metadata. It also
// serves /health and /metrics.
type Server struct {
	store    *events.Store
	srv      *http.Server
	listener net.Listener

	// numMu serializes sequence number assignment across handler goroutines.
	numMu sync.Mutex

	registry *prometheus.Registry
	accepted prometheus.Counter
	rejected prometheus.Counter
}

// New creates a server bound to host:port. Port 0 picks a free port.
func New(host string, port int, store *events.Store) *Server {
	s := &Server{
		store:    store,
		registry: prometheus.NewRegistry(),
	}
	s.accepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventserver_batches_accepted_total",
		Help: "Number of event batches accepted and stored.",
	})
	s.rejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventserver_batches_rejected_total",
		Help: "Number of event batch requests rejected.",
	})
	s.registry.MustRegister(s.accepted, s.rejected)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the HTTP handler. Exposed so tests can drive the server
// through httptest without binding a socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/event", s.handleEvent)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "OK")
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

// Start begins listening and serving in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("event server listen: %w", err)
	}
	s.listener = ln

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("event server stopped: %v", err)
		}
	}()
	logger.Info("event server started on %s", ln.Addr())
	return nil
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.srv.Addr
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	logger.Info("event server stopped")
	return err
}

// handleEvent stores one request as a BATCH event. The handler tolerates
// any body content; malformed payloads still land in the store as opaque
// text so the ingestion side can decide what to do with them.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.rejected.Inc()
		logger.Warn("failed to read event batch body: %v", err)
		writeText(w, http.StatusBadRequest, "Bad Request")
		return
	}

	var query *string
	if q := r.URL.RawQuery; q != "" {
		query = &q
	}

	headers := make(map[string][]string, len(r.Header))
	for name, vals := range r.Header {
		headers[name] = append([]string(nil), vals...)
	}

	s.numMu.Lock()
	last, _ := s.store.Last()
	next := last.EventNum + 1
	s.store.AddEvents([]events.Event{{
		EventTime: time.Now().UTC().Format(time.RFC3339Nano),
		EventNum:  next,
		Name:      "BATCH",
		Data: &events.EventData{
			URI:           r.URL.Path,
			RemoteAddress: r.RemoteAddr,
			Headers:       headers,
			Query:         query,
			Body:          string(body),
		},
	}})
	s.numMu.Unlock()
	s.accepted.Inc()
	logger.Info("event batch saved (#%d, %d bytes)", next, len(body))

	writeText(w, http.StatusOK, "OK")
}

// readBody reads the request body, transparently decompressing gzip.
func readBody(r *http.Request) ([]byte, error) {
	var src io.Reader = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		defer gz.Close()
		src = gz
	}
	return io.ReadAll(src)
}

func writeText(w http.ResponseWriter, code int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(text))
}
