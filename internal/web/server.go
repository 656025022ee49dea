// Package web serves the browser chat page and a JSON API over the chat
// service.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/j0lvera/cbtbot/internal/chat"
	"github.com/j0lvera/cbtbot/internal/observe"
	"github.com/j0lvera/cbtbot/internal/responder"
	"github.com/j0lvera/cbtbot/internal/session"
	"github.com/rs/zerolog"
)

//go:embed page.html
var pageFS embed.FS

var pageTmpl = template.Must(template.ParseFS(pageFS, "page.html"))

// maxBodyBytes caps form and JSON request bodies.
const maxBodyBytes = 16 << 10

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins may call /api with credentials. Empty disables CORS.
	AllowedOrigins []string
	CookieSecure   bool
	// MetricsHandler is mounted at /metrics when set
	MetricsHandler http.Handler
}

// Server routes HTTP requests to the chat service.
type Server struct {
	router *chi.Mux
	chat   *chat.Service
	opts   Options
	ready  atomic.Bool
	log    zerolog.Logger
}

// NewServer creates a server with all routes mounted.
func NewServer(svc *chat.Service, metrics *observe.Metrics, log zerolog.Logger, opts Options) *Server {
	s := &Server{
		router: chi.NewRouter(),
		chat:   svc,
		opts:   opts,
		log:    log,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(observe.Middleware(metrics, log))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)
	if s.opts.MetricsHandler != nil {
		s.router.Method(http.MethodGet, "/metrics", s.opts.MetricsHandler)
	}

	s.router.Get("/", s.handlePage)
	s.router.Post("/chat", s.handleChatForm)
	s.router.Post("/actions", s.handleActionForm)
	s.router.Post("/reset", s.handleResetForm)

	s.router.Route("/api", func(r chi.Router) {
		// An empty origin list means allow-all to cors, so the API stays
		// same-origin unless origins are listed
		if len(s.opts.AllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   s.opts.AllowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}
		r.Get("/transcript", s.handleTranscript)
		r.Post("/messages", s.handleMessage)
		r.Get("/actions", s.handleListActions)
		r.Post("/actions", s.handleAction)
		r.Post("/reset", s.handleReset)
	})
}

// Router returns the root handler.
func (s *Server) Router() http.Handler { return s.router }

// SetReady flips the readiness probe.
func (s *Server) SetReady(ready bool) { s.ready.Store(ready) }

type entryView struct {
	Label  string
	Class  string
	Bot    bool
	Text   string
	Markup template.HTML
}

type pageData struct {
	Entries []entryView
	Actions []responder.QuickAction
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, s.chat.Transcript(r.Context(), s.existingKey(r)))
}

func (s *Server) render(w http.ResponseWriter, transcript []session.Entry) {
	data := pageData{
		Entries: make([]entryView, 0, len(transcript)),
		Actions: responder.QuickActions,
	}
	for _, e := range transcript {
		v := entryView{
			Label: e.Speaker.Label(),
			Class: string(e.Speaker),
			Bot:   e.Speaker == session.SpeakerBot,
		}
		if v.Bot {
			// Bot entries come from the reply catalogue and may carry links
			v.Markup = template.HTML(e.Text)
		} else {
			v.Text = e.Text
		}
		data.Entries = append(data.Entries, v)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		s.log.Error().Err(err).Msg("unable to render page")
	}
}

func (s *Server) handleChatForm(w http.ResponseWriter, r *http.Request) {
	key, ok := s.key(w, r)
	if !ok || !s.parseForm(w, r) {
		return
	}
	s.chat.Type(r.Context(), key, r.FormValue("message"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleActionForm(w http.ResponseWriter, r *http.Request) {
	key, ok := s.key(w, r)
	if !ok || !s.parseForm(w, r) {
		return
	}
	if _, err := s.chat.QuickAction(r.Context(), key, r.FormValue("token")); err != nil {
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	key, ok := s.key(w, r)
	if !ok {
		return
	}
	s.chat.Reset(r.Context(), key)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type messageRequest struct {
	Text string `json:"text"`
}

type actionRequest struct {
	Token string `json:"token"`
}

type transcriptResponse struct {
	Processed  bool            `json:"processed"`
	Transcript []session.Entry `json:"transcript"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, transcriptResponse{Transcript: s.chat.Transcript(r.Context(), s.existingKey(r))})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	key, ok := s.key(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}

	res := s.chat.Send(r.Context(), key, req.Text)
	writeJSON(w, http.StatusOK, transcriptResponse{Processed: res.Processed, Transcript: res.Transcript})
}

func (s *Server) handleListActions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, responder.QuickActions)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	key, ok := s.key(w, r)
	if !ok {
		return
	}
	var req actionRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.chat.QuickAction(r.Context(), key, req.Token)
	if errors.Is(err, chat.ErrUnknownAction) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown action"})
		return
	}
	writeJSON(w, http.StatusOK, transcriptResponse{Processed: res.Processed, Transcript: res.Transcript})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	key, ok := s.key(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, transcriptResponse{Transcript: s.chat.Reset(r.Context(), key)})
}

func (s *Server) key(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := s.sessionKey(w, r)
	if err != nil {
		s.log.Error().Err(err).Msg("unable to create session id")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return "", false
	}
	return key, true
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
	}
}
