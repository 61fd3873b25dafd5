// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dslqueue "github.com/dslqueue/dslqueue"
	"github.com/dslqueue/dslqueue/internal/config"
	"github.com/dslqueue/dslqueue/internal/observability"
)

// Server exposes the queue over HTTP: a poll endpoint for the consumer,
// an enqueue endpoint plus browser page for producers, a status endpoint,
// and prometheus metrics.
type Server struct {
	addr        string
	pollPath    string
	enqueuePath string
	statusPath  string

	queue    *dslqueue.Queue
	policy   dslqueue.Policy
	log      *slog.Logger
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	page     string
}

// New wires a server from the resolved configuration.
func New(cfg config.Config, queue *dslqueue.Queue, policy dslqueue.Policy, logger *slog.Logger) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		addr:        cfg.Addr(),
		pollPath:    cfg.Endpoints.Poll,
		enqueuePath: cfg.Endpoints.Enqueue,
		statusPath:  cfg.Endpoints.Status,
		queue:       queue,
		policy:      policy,
		log:         logger,
		metrics:     observability.New(registry, queue.Len),
		gatherer:    registry,
		page:        renderIndexPage(cfg.Endpoints.Enqueue, cfg.Endpoints.Status),
	}
}

// Queue returns the server's payload queue.
func (s *Server) Queue() *dslqueue.Queue {
	return s.queue
}

// Handler builds the route table once. Paths are trailing-slash
// insensitive, matching how the consumer normalizes its poll URL.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(allowCrossOrigin)

	r.Get(s.pollPath, s.handlePoll)
	r.Post(s.pollPath, s.handlePollPost)
	r.Post(s.enqueuePath, s.handleEnqueue)
	r.Get(s.statusPath, s.handleStatus)
	r.Get("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	if s.pollPath != "/" {
		r.Get("/", s.handleIndex)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}

// Run starts the HTTP server and shuts it down when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    resolveAddr(s.addr),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("dslqueue listening",
		"addr", server.Addr,
		"poll", s.pollPath,
		"mode", s.policy.Mode.String(),
		"queued", s.queue.Len(),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	s.log.Info("dslqueue stopped")
	return nil
}

func resolveAddr(addr string) string {
	if addr != "" {
		return addr
	}
	if env := os.Getenv("DSLQUEUE_HTTP_ADDR"); env != "" {
		return env
	}
	if env := os.Getenv("PORT"); env != "" {
		return ":" + env
	}
	if env := os.Getenv("DSLQUEUE_PORT"); env != "" {
		return ":" + env
	}
	return "127.0.0.1:9001"
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	userAgent := r.Header.Get("User-Agent")
	out := dslqueue.Poll(s.queue, s.policy, userAgent)

	if s.policy.IsProbe(userAgent) {
		s.metrics.CountPoll(observability.OutcomeProbe)
		s.log.Debug("probe poll denied", "user_agent", userAgent)
	} else {
		s.metrics.CountPoll(outcomeLabel(out.Kind))
	}

	s.writeOutcome(w, out)
}

// handlePollPost lets an interactive session be terminated by POSTing the
// exit command to the poll endpoint. Any other body is treated as a poll.
func (s *Server) handlePollPost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if strings.EqualFold(strings.TrimSpace(string(body)), s.policy.ExitSignal) {
		s.log.Info("manual exit requested")
		s.metrics.CountPoll(observability.OutcomeExit)
		s.writeOutcome(w, dslqueue.Outcome{Kind: dslqueue.OutcomeExit, Text: s.policy.ExitSignal})
		return
	}
	s.handlePoll(w, r)
}

func (s *Server) writeOutcome(w http.ResponseWriter, out dslqueue.Outcome) {
	switch out.Kind {
	case dslqueue.OutcomePayload:
		s.log.Debug("payload served", "id", out.Payload.ID, "source", out.Payload.Source)
		writeText(w, out.Text)
	case dslqueue.OutcomeExit:
		writeText(w, out.Text)
	case dslqueue.OutcomeEmpty:
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func outcomeLabel(kind dslqueue.OutcomeKind) string {
	switch kind {
	case dslqueue.OutcomePayload:
		return observability.OutcomePayload
	case dslqueue.OutcomeExit:
		return observability.OutcomeExit
	default:
		return observability.OutcomeEmpty
	}
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if !utf8.Valid(body) {
		s.metrics.CountRejected()
		http.Error(w, "payload is not valid UTF-8", http.StatusBadRequest)
		return
	}

	text := string(body)
	contentType := strings.TrimSpace(strings.SplitN(r.Header.Get("Content-Type"), ";", 2)[0])
	if contentType == "application/x-www-form-urlencoded" {
		values, err := url.ParseQuery(text)
		if err != nil {
			s.metrics.CountRejected()
			http.Error(w, "malformed form body", http.StatusBadRequest)
			return
		}
		text = values.Get("payload")
	}

	payload, err := dslqueue.NewPayload(dslqueue.SourceHTTP, text)
	if err != nil {
		s.metrics.CountRejected()
		http.Error(w, "Empty payload", http.StatusBadRequest)
		return
	}

	s.queue.Enqueue(payload)
	s.metrics.CountEnqueued()
	s.log.Info("payload enqueued", "id", payload.ID, "bytes", len(payload.Text), "queued", s.queue.Len())

	w.Header().Set("X-Payload-Id", payload.ID)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Size int `json:"size"`
	}{Size: s.queue.Len()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.page))
}
