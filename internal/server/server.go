package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"aichat/internal/agent"
	"aichat/internal/logger"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxRequestBodySize 限制 /chat 请求体大小。
	MaxRequestBodySize = 1 << 20

	msgRequired = "message is required"
	msgUpstream = "An error occurred while communicating with the AI service."
	msgBadJSON  = "request body must be a JSON object"

	shutdownTimeout = 5 * time.Second
)

type Options struct {
	Port int
	// Log 为空时丢弃日志。
	Log *logger.LogEntry
	// Exchanges 记录上游生成请求，为空时不记录。
	Exchanges logger.ExchangeLogger
}

// Server 提供 POST /chat，把消息转交给 Generator。
type Server struct {
	port      int
	gen       agent.Generator
	log       *logger.LogEntry
	exchanges logger.ExchangeLogger
	mux       *http.ServeMux
}

func New(gen agent.Generator, opts Options) *Server {
	s := &Server{
		port:      opts.Port,
		gen:       gen,
		log:       opts.Log,
		exchanges: opts.Exchanges,
		mux:       http.NewServeMux(),
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.exchanges == nil {
		s.exchanges = logger.NoopExchangeLogger{}
	}
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("/chat", s.handleMethodNotAllowed)
	return s
}

// Handler 返回带中间件的根 handler。
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.log),
		RequestIDMiddleware(),
		LoggingMiddleware(s.log),
		CORSMiddleware(),
	)(s.mux)
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.port)
}

// Run 监听 Addr 并服务，直到 ctx 结束后优雅关闭。
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve 在给定 listener 上服务，ctx 结束时关闭。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Infof("server listening on %s (model=%s)", ln.Addr(), s.gen.Model())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Infof("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", MaxRequestBodySize))
			return
		}
		writeError(w, http.StatusBadRequest, msgBadJSON)
		return
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		writeError(w, http.StatusBadRequest, msgBadJSON)
		return
	}
	field := gjson.GetBytes(body, "message")
	if field.Type != gjson.String || strings.TrimSpace(field.String()) == "" {
		writeError(w, http.StatusBadRequest, msgRequired)
		return
	}
	message := field.String()

	requestID := RequestIDFromContext(r.Context())
	model := s.gen.Model()
	s.exchanges.Request(requestID, model, message)

	text, err := s.gen.Generate(r.Context(), message)
	if err != nil {
		s.exchanges.Error(requestID, model, err)
		writeError(w, http.StatusInternalServerError, msgUpstream)
		return
	}
	s.exchanges.Response(requestID, model, text)
	writeField(w, http.StatusOK, "response", text)
}

// handleMethodNotAllowed 让非 POST 请求也拿到 JSON 错误体。
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeField(w, status, "error", message)
}

func writeField(w http.ResponseWriter, status int, key, value string) {
	payload, err := sjson.SetBytes([]byte(`{}`), key, value)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
