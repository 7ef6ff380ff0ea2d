// Package server exposes the migrator over a websocket. Each text message on
// /migrate is one Request; replies arrive in request order on the same
// connection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/dataconverter/internal/config"
	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/migrator"
	"github.com/zeusync/dataconverter/internal/core/observability/log"
	"github.com/zeusync/dataconverter/pkg/encoding"
)

type Server struct {
	migrator *migrator.Migrator
	config   config.ServerConfig
	target   converter.Version
	logger   log.Log
	upgrader websocket.Upgrader

	http     *http.Server
	listener net.Listener
	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc

	connsMu sync.Mutex
	conns   map[*websocket.Conn]struct{}

	requests atomic.Uint64
	failures atomic.Uint64
}

// New returns a stopped server migrating records up to target unless a
// request names another version.
func New(m *migrator.Migrator, cfg config.ServerConfig, target converter.Version, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		migrator: m,
		config:   cfg,
		target:   target,
		logger:   logger.With(log.String("component", "server")),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool {
				return true
			},
			EnableCompression: cfg.EnableCompression,
		},
		ctx:    ctx,
		cancel: cancel,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Handler routes /migrate and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/migrate", s.handleMigrate)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start binds the configured address and serves in the background.
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = listener
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", log.Error(err))
		}
	}()

	s.logger.Info("server started", log.String("address", listener.Addr().String()))
	return nil
}

// Addr is the bound address, available after Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop cancels in-flight batches, closes open sockets and shuts the listener
// down.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.cancel()

	s.connsMu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	clear(s.conns)
	s.connsMu.Unlock()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("server stopped",
		log.Uint64("requests", s.requests.Load()),
		log.Uint64("failures", s.failures.Load()),
	)
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.connsMu.Lock()
	connections := len(s.conns)
	s.connsMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "healthy",
		"connections": connections,
		"requests":    s.requests.Load(),
		"failures":    s.failures.Load(),
	})
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", log.Error(err))
		return
	}
	conn.SetReadLimit(s.config.MaxMessageBytes)

	s.connsMu.Lock()
	s.conns[conn] = struct{}{}
	s.connsMu.Unlock()

	logger := s.logger.With(log.String("remote", conn.RemoteAddr().String()))
	defer func() {
		s.connsMu.Lock()
		delete(s.conns, conn)
		s.connsMu.Unlock()
		_ = conn.Close()
		logger.Debug("client disconnected")
	}()

	ctx, cancel := mergeDone(r.Context(), s.ctx)
	defer cancel()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("read failed", log.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			_ = s.write(conn, Response{Error: fmt.Sprintf("%s: text messages only", ErrInvalidMessage)})
			continue
		}

		resp := s.serve(ctx, data, logger)
		if err := s.write(conn, resp); err != nil {
			logger.Warn("write failed", log.Error(err))
			return
		}
	}
}

func (s *Server) serve(ctx context.Context, data []byte, logger log.Log) Response {
	s.requests.Add(1)

	req, b, err := decodeRequest(data, s.target)
	if err != nil {
		s.failures.Add(1)
		return Response{ID: req.ID, Error: err.Error()}
	}

	report, err := s.migrator.Batch(ctx, b.typ, b.records, b.from, b.to)
	if err != nil {
		s.failures.Add(1)
		return Response{ID: req.ID, Error: err.Error()}
	}

	resp, err := encodeReport(req, report)
	if err != nil {
		s.failures.Add(1)
		logger.Error("encode reply failed", log.String("job", report.JobID.String()), log.Error(err))
		return Response{ID: req.ID, Job: report.JobID.String(), Error: err.Error()}
	}
	return resp
}

func (s *Server) write(conn *websocket.Conn, resp Response) error {
	data, err := encoding.StableJSON(resp)
	if err != nil {
		return err
	}
	if s.config.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// mergeDone returns a context cancelled when either parent is done.
func mergeDone(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
