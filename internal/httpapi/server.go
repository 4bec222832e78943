// Package httpapi exposes a Description over HTTP: generation events come in
// as JSON, content goes out as JSON or markdown, and changes are streamed to
// clients as Server-Sent Events.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dusk-indust/descstream/internal/a2a"
	"github.com/dusk-indust/descstream/internal/content"
	"github.com/dusk-indust/descstream/internal/export"
	"github.com/dusk-indust/descstream/internal/status"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server serves one Description.
type Server struct {
	desc      *content.Description
	formatter *status.Formatter
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithFormatter enables the localized text status on GET /status.
func WithFormatter(f *status.Formatter) Option {
	return func(s *Server) { s.formatter = f }
}

// New creates a server for d.
func New(d *content.Description, opts ...Option) *Server {
	s := &Server{
		desc:   d,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LocaleRequest is the body of POST /locale.
type LocaleRequest struct {
	Locale string `json:"locale"`
	Block  string `json:"block,omitempty"`
	// Force requests a fresh translation even when content already exists.
	Force bool `json:"force,omitempty"`
}

// LocaleResponse answers POST /locale.
type LocaleResponse struct {
	Locale      content.Locale              `json:"locale"`
	Translation *content.TranslationRequest `json:"translation,omitempty"`
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /events", s.handleEvents)
	mux.HandleFunc("POST /locale", s.handleLocale)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /content", s.handleContent)
	mux.HandleFunc("GET /content/{locale}", s.handleLocaleContent)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /diagram", s.handleDiagram)
	mux.HandleFunc("GET /changes", s.handleChanges)
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
	s.logger.Info("http api listening", "addr", addr, "run", s.desc.RunID())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("httpapi: serve %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var ev content.Event
	if !decodeBody(w, r, &ev) {
		return
	}
	if err := s.normalizeLocale(&ev); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.desc.Apply(ev); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// normalizeLocale rewrites the event locale to its canonical form so that
// fr-FR and fr_FR land in the same locale content.
func (s *Server) normalizeLocale(ev *content.Event) error {
	switch {
	case ev.Start != nil:
		l, err := content.ParseLocale(string(ev.Start.Locale), s.desc.Languages())
		if err != nil {
			return err
		}
		start := *ev.Start
		start.Locale = l
		ev.Start = &start
	case ev.Chunk != nil:
		l, err := content.ParseLocale(string(ev.Chunk.Locale), s.desc.Languages())
		if err != nil {
			return err
		}
		chunk := *ev.Chunk
		chunk.Locale = l
		ev.Chunk = &chunk
	}
	return nil
}

func (s *Server) handleLocale(w http.ResponseWriter, r *http.Request) {
	var body LocaleRequest
	if !decodeBody(w, r, &body) {
		return
	}
	locale, err := content.ParseLocale(body.Locale, s.desc.Languages())
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req *content.TranslationRequest
	if body.Force {
		req, err = s.desc.Translate(r.Context(), locale, body.Block)
	} else {
		req, err = s.desc.ChangeLocale(r.Context(), locale, body.Block)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	code := http.StatusOK
	if req != nil {
		code = http.StatusAccepted
	}
	writeJSON(w, code, LocaleResponse{Locale: locale, Translation: req})
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.desc.ResetAll()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, export.ExportDescription(s.desc))
}

// handleLocaleContent renders one locale as markdown, or as JSON with
// ?format=json.
func (s *Server) handleLocaleContent(w http.ResponseWriter, r *http.Request) {
	locale, err := content.ParseLocale(r.PathValue("locale"), s.desc.Languages())
	if err != nil {
		s.writeError(w, err)
		return
	}
	lc, ok := s.desc.LocaleContent(locale)
	if !ok {
		http.Error(w, fmt.Sprintf("no content for locale %s", locale), http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, export.ExportLocale(lc))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(export.Markdown(lc)))
}

// handleStatus renders the summary as text in ?lang (or the current
// locale) when a formatter is configured, as JSON otherwise.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	summary := status.Summarize(s.desc)
	if s.formatter == nil || r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	locale := summary.CurrentLocale
	if lang := r.URL.Query().Get("lang"); lang != "" {
		l, err := content.ParseLocale(lang, s.desc.Languages())
		if err != nil {
			s.writeError(w, err)
			return
		}
		locale = l
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.formatter.FormatIn(locale, summary)))
}

func (s *Server) handleDiagram(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(export.GenerateMermaid(s.desc)))
}

// handleChanges streams change events until the client goes away. Each
// frame is named after the change kind.
func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	changes, cancel := s.desc.Feed().Subscribe(0)
	defer cancel()

	sw := a2a.NewSSEWriter(w)
	sw.Init()
	s.logger.Debug("change subscriber connected", "remote", r.RemoteAddr)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-changes:
			if !ok {
				return
			}
			if err := sw.WriteNamed(string(ev.Kind), ev); err != nil {
				s.logger.Debug("change subscriber gone", "error", err)
				return
			}
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// statusCode maps domain errors to HTTP statuses.
func statusCode(err error) int {
	switch {
	case errors.Is(err, content.ErrUnknownLocale):
		return http.StatusBadRequest
	case errors.Is(err, content.ErrBlockNotFound):
		return http.StatusNotFound
	case errors.Is(err, content.ErrLocaleMismatch), errors.Is(err, content.ErrTranslation):
		return http.StatusConflict
	case errors.Is(err, content.ErrEmptyEvent):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
