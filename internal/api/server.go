// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires the route table, the per-connection pipeline, and all domain
handlers into a runnable TCP server.

Architecture:

  - This package is the topmost transport boundary.
  - Each accepted connection carries exactly one request: read once into a
    fixed buffer, parse, dispatch, write one response, close.
  - Only this package and cmd/api touch net primitives; domain handlers see
    parsed requests only.

The per-connection pipeline mirrors a conventional middleware chain, inlined:
rate limit, request id, structured logging, global timeout, panic recovery,
then dispatch.
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taibuivan/biblio/internal/books"
	"github.com/taibuivan/biblio/internal/httpwire"
	"github.com/taibuivan/biblio/internal/lending"
	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/config"
	"github.com/taibuivan/biblio/internal/platform/constants"
	"github.com/taibuivan/biblio/internal/platform/ctxutil"
	"github.com/taibuivan/biblio/internal/users/auth"
)

// # Handler Registry

// Handlers groups all domain-specific handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if the process is alive.
	Liveness httpwire.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness httpwire.HandlerFunc

	// Auth handles registration, login, sessions, and the admin user list.
	Auth *auth.Handler

	// Books handles the public catalog and its admin management routes.
	Books *books.Handler

	// Lending handles borrow/return and the loan listings.
	Lending *lending.Handler
}

// # Server Definitions

// Server owns the TCP listener and the route table.
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	addr    string
	log     *slog.Logger
	router  *httpwire.Router
	limiter *ipLimiter

	listener net.Listener
	baseCtx  context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// # Server Initialization

// NewServer builds the route table and the per-connection infrastructure.
//
// Route registration order matters for prefix routes: the search route is
// registered by the books handler before its integer routes, and exact paths
// always precede the prefixes that could shadow them.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	router := httpwire.NewRouter()

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	router.Handle(http.MethodGet, "/health", h.Liveness)
	router.Handle(http.MethodGet, "/ready", h.Readiness)

	// # Application API
	h.Auth.Register(router)
	h.Books.Register(router)
	h.Lending.Register(router)

	baseCtx, cancel := context.WithCancel(ctx)

	return &Server{
		addr:    cfg.ServerAddr,
		log:     log,
		router:  router,
		limiter: newIPLimiter(baseCtx, cfg.RateLimitRPS, cfg.RateLimitBurst),
		baseCtx: baseCtx,
		cancel:  cancel,
	}
}

// # Server Lifecycle

// ListenAndServe accepts connections until Shutdown closes the listener.
//
// Accepting is sequential; every accepted connection is served on its own
// goroutine, so one slow client never blocks the next.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("api_server_listen_failed: %w", err)
	}
	s.listener = listener

	s.log.Info("server starting", slog.String("addr", s.addr))

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.baseCtx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error("accept_failed", slog.Any("error", err))
			continue
		}

		s.inflight.Add(1)
		go s.handleConnection(conn)
	}
}

// Shutdown stops accepting and drains in-flight connections.
//
// Connections still open when the timeout elapses are abandoned; their
// goroutines end when the global request timeout fires.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}

	drained := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-time.After(timeout):
		return errors.New("api_server_shutdown_timeout: in-flight connections did not drain")
	}
}

// # Connection Pipeline

/*
handleConnection serves one request/response cycle on one connection.

Description: The full pipeline — rate limit, single read, parse, dispatch,
single write — runs under the global request timeout with panic recovery. The
connection is always closed on exit; there is no keep-alive.
*/
func (s *Server) handleConnection(conn net.Conn) {
	defer s.inflight.Done()
	defer conn.Close()

	startTime := time.Now()
	requestID := newRequestID()
	clientIP := remoteIP(conn)

	logger := s.log.With(
		slog.String("request_id", requestID),
		slog.String("ip", clientIP),
	)

	ctx, cancel := context.WithTimeout(s.baseCtx, constants.GlobalRequestTimeout)
	defer cancel()
	ctx = ctxutil.WithRequestID(ctx, requestID)
	ctx = ctxutil.WithLogger(ctx, logger)

	// Panic recovery: the goroutine must never take the process down, and the
	// client still deserves exactly one response.
	defer func() {
		if rec := recover(); rec != nil {
			stackTrace := make([]byte, 4096)
			length := runtime.Stack(stackTrace, false)

			logger.ErrorContext(ctx, "panic_recovered",
				slog.Any("error", rec),
				slog.String("stack", string(stackTrace[:length])),
			)

			s.writeResponse(conn, httpwire.Error(ctx, apperr.Internal(fmt.Errorf("panic: %v", rec))))
		}
	}()

	if !s.limiter.Allow(clientIP) {
		response := httpwire.JSON(http.StatusTooManyRequests, httpwire.ErrorEnvelope{
			Error: "Rate limit exceeded",
			Code:  "TOO_MANY_REQUESTS",
		})
		s.writeResponse(conn, response)
		s.logFinished(ctx, logger, response, startTime)
		return
	}

	// One read, whole message. The protocol trusts the buffer to contain the
	// full request; anything that does not fit is malformed by contract.
	_ = conn.SetReadDeadline(time.Now().Add(constants.DefaultReadTimeout))
	buffer := make([]byte, constants.MaxRequestBytes)
	bytesRead, err := conn.Read(buffer)
	if err != nil || bytesRead == 0 {
		logger.WarnContext(ctx, "request_read_failed", slog.Any("error", err))
		s.writeResponse(conn, httpwire.Error(ctx, apperr.BadRequest("Malformed request")))
		return
	}

	request, err := httpwire.Parse(buffer[:bytesRead])
	if err != nil {
		response := httpwire.Error(ctx, apperr.BadRequest("Malformed request"))
		s.writeResponse(conn, response)
		s.logFinished(ctx, logger, response, startTime)
		return
	}

	// Enrich the request-scoped logger now that method and path are known.
	logger = logger.With(
		slog.String("method", request.Method),
		slog.String("path", request.Path),
	)
	ctx = ctxutil.WithLogger(ctx, logger)

	response := s.router.Dispatch(ctx, request)
	s.writeResponse(conn, response)
	s.logFinished(ctx, logger, response, startTime)
}

// writeResponse renders the response onto the connection under the write deadline.
func (s *Server) writeResponse(conn net.Conn, response *httpwire.Response) {
	_ = conn.SetWriteDeadline(time.Now().Add(constants.DefaultWriteTimeout))
	if _, err := conn.Write(response.Render()); err != nil {
		s.log.Warn("response_write_failed", slog.Any("error", err))
	}
}

// logFinished emits the final per-request log line with level escalation.
func (s *Server) logFinished(ctx context.Context, logger *slog.Logger, response *httpwire.Response, startTime time.Time) {
	logLevel := slog.LevelInfo
	if response.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if response.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}

	logger.Log(ctx, logLevel, "request_finished",
		slog.Int("status", response.StatusCode),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)
}

// # Helpers

// newRequestID generates a correlation id, preferring time-sortable UUIDv7.
func newRequestID() string {
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return uuidV7.String()
}

// remoteIP extracts the client address without its port.
func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
