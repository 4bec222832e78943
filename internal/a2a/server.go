package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// AgentCardPath is the well-known URI of the agent card.
const AgentCardPath = "/.well-known/agent-card.json"

// Handler processes incoming requests for an agent.
type Handler interface {
	// HandleSendMessage processes a message and returns the finished task.
	HandleSendMessage(ctx context.Context, req SendMessageRequest) (*Task, error)

	// HandleStreamMessage processes a message and reports progress through
	// emit. Returning an error after the first emit ends the stream with an
	// error event.
	HandleStreamMessage(ctx context.Context, req SendMessageRequest, emit func(StreamEvent) error) error

	// HandleGetTask returns the current state of a task.
	HandleGetTask(ctx context.Context, req GetTaskRequest) (*Task, error)
}

// Server exposes a Handler over HTTP.
type Server struct {
	card    AgentCard
	handler Handler
	logger  *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger used for request tracing.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a server for the given agent.
func NewServer(card AgentCard, handler Handler, opts ...ServerOption) *Server {
	s := &Server{
		card:    card,
		handler: handler,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP handler serving the agent card and JSON-RPC.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+AgentCardPath, s.handleAgentCard)
	mux.HandleFunc("POST /", s.handleJSONRPC)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("agent listening", "addr", addr, "agent", s.card.Name)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("a2a: serve %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleAgentCard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.card); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONRPCError(w, nil, ErrCodeParse, "Parse error: "+err.Error())
		return
	}
	if req.JSONRPC != JSONRPCVersion {
		writeJSONRPCError(w, req.ID, ErrCodeInvalidRequest, "Invalid request: jsonrpc must be \"2.0\"")
		return
	}
	s.logger.Debug("rpc request", "method", req.Method)

	ctx := r.Context()
	switch req.Method {
	case MethodSendMessage:
		var params SendMessageRequest
		if !decodeParams(w, &req, &params) {
			return
		}
		task, err := s.handler.HandleSendMessage(ctx, params)
		writeHandlerResult(w, req.ID, task, err)

	case MethodGetTask:
		var params GetTaskRequest
		if !decodeParams(w, &req, &params) {
			return
		}
		task, err := s.handler.HandleGetTask(ctx, params)
		writeHandlerResult(w, req.ID, task, err)

	case MethodStreamMessage:
		var params SendMessageRequest
		if !decodeParams(w, &req, &params) {
			return
		}
		s.stream(ctx, w, params)

	default:
		writeJSONRPCError(w, req.ID, ErrCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

// stream answers message/stream with an SSE body. Headers are sent before the
// handler runs, so late failures travel as error events.
func (s *Server) stream(ctx context.Context, w http.ResponseWriter, params SendMessageRequest) {
	sw := NewSSEWriter(w)
	sw.Init()

	err := s.handler.HandleStreamMessage(ctx, params, sw.WriteEvent)
	if err == nil || ctx.Err() != nil {
		return
	}
	s.logger.Warn("stream failed", "error", err)
	_ = sw.WriteEvent(StreamEvent{Error: &JSONRPCError{Code: errorCode(err), Message: err.Error()}})
}

func decodeParams(w http.ResponseWriter, req *JSONRPCRequest, v any) bool {
	if err := json.Unmarshal(req.Params, v); err != nil {
		writeJSONRPCError(w, req.ID, ErrCodeInvalidParams, "Invalid params: "+err.Error())
		return false
	}
	return true
}

func errorCode(err error) int {
	if errors.Is(err, ErrTaskNotFound) {
		return ErrCodeTaskNotFound
	}
	if errors.Is(err, ErrInvalidParams) {
		return ErrCodeInvalidParams
	}
	return ErrCodeInternal
}

func writeHandlerResult(w http.ResponseWriter, id any, result any, err error) {
	if err != nil {
		writeJSONRPCError(w, id, errorCode(err), err.Error())
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		writeJSONRPCError(w, id, ErrCodeInternal, "Failed to marshal result: "+err.Error())
		return
	}
	_ = json.NewEncoder(w).Encode(JSONRPCResponse{JSONRPC: JSONRPCVersion, ID: id, Result: data})
}

func writeJSONRPCError(w http.ResponseWriter, id any, code int, message string) {
	_ = json.NewEncoder(w).Encode(JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	})
}
