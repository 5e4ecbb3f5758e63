// Package api provides the HTTP server for tapeboard.
//
// It serves the dashboard page, a JSON API for earnings lookups and the
// merged timeline, CSV position uploads, and WebSocket refresh push.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/zanisimone/tapeboard/internal/config"
	"github.com/zanisimone/tapeboard/internal/dashboard"
	"github.com/zanisimone/tapeboard/internal/earnings"
	"github.com/zanisimone/tapeboard/internal/news"
	"github.com/zanisimone/tapeboard/internal/positions"
	"github.com/zanisimone/tapeboard/internal/timeline"
	"github.com/zanisimone/tapeboard/pkg/models"
	"github.com/zanisimone/tapeboard/pkg/utils"
	"github.com/zanisimone/tapeboard/web"
)

// maxUploadBytes caps CSV uploads. Position files are small; anything
// bigger is a mistake.
const maxUploadBytes = 8 << 20

// Server is the HTTP server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	earnings *earnings.Service
	news     *news.Service
	store    *positions.Store
	wsHub    *WSHub
	version  string
}

// NewServer creates a configured server with all routes and middleware.
func NewServer(cfg *config.Config, version string) *Server {
	src := earnings.NewYahooSource(cfg.Provider.RequestsPerSec, cfg.Provider.UserAgent)
	return newServer(cfg, src, version)
}

// newServer wires the server around an explicit earnings source so tests
// can substitute a fake provider.
func newServer(cfg *config.Config, src earnings.Source, version string) *Server {
	if version == "" {
		version = "dev"
	}

	srv := &Server{
		cfg:      cfg,
		earnings: earnings.NewService(src, cfg.Provider.CacheTTL(), cfg.Provider.Timeout()),
		news:     news.NewService(cfg.News.CacheTTL()),
		store:    positions.NewStore(),
		wsHub:    NewWSHub(),
		version:  version,
	}

	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	<-done
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.Server.CORSOrigins) > 0 {
		origins = s.cfg.Server.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Earnings lookups
		r.Get("/earnings", s.handleEarnings)

		// Positions
		r.Get("/positions", s.handleGetPositions)
		r.Post("/positions", s.handlePostPositions)
		r.Delete("/positions", s.handleDeletePositions)
		r.Get("/positions/template.csv", s.handleTemplateCSV)

		// Merged timeline
		r.Get("/timeline", s.handleTimeline)

		// Headlines
		r.Get("/news", s.handleNews)

		// Effective request defaults
		r.Get("/config", s.handleGetConfig)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	// WebSocket at the root for the dashboard page script
	r.Get("/ws", s.handleWebSocket)

	// Dashboard pages
	r.Get("/", s.handleDashboard)
	r.Post("/upload", s.handleUpload)
	r.Post("/clear", s.handleClear)
	r.Get("/template.csv", s.handleTemplateCSV)

	// Static assets
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS())))

	return r
}

// requestLogger logs one line per request through the global zerolog logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TimelineResponse is the body for GET /api/v1/timeline.
type TimelineResponse struct {
	Events  []models.MergedEvent `json:"events"`
	Missing []earnings.Miss      `json:"missing,omitempty"`
}

// PositionsResponse is the body for GET /api/v1/positions.
type PositionsResponse struct {
	Events []models.PositioningEvent `json:"events"`
	Report *positions.UploadReport   `json:"report,omitempty"`
}

// UploadResult is the body for POST /api/v1/positions.
type UploadResult struct {
	Accepted int                  `json:"accepted"`
	Dropped  []positions.RowError `json:"dropped,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"version":    s.version,
			"time":       time.Now().UTC().Format(time.RFC3339),
			"positions":  s.store.Len(),
			"ws_clients": s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handleEarnings(w http.ResponseWriter, r *http.Request) {
	symbols := s.symbolsParam(r)
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols is required")
		return
	}

	result := s.earnings.Fetch(r.Context(), symbols)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    result,
	})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	symbols := s.symbolsParam(r)

	minNotional, err := s.minNotionalParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid min_notional; use a plain number")
		return
	}

	result := s.earnings.Fetch(r.Context(), symbols)
	merged := timeline.Merge(result.Events, s.store.Snapshot(), minNotional)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: TimelineResponse{
			Events:  merged,
			Missing: result.Missing,
		},
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.News.Enabled {
		writeJSON(w, http.StatusOK, APIResponse{
			Success: true,
			Data:    []models.Headline{},
		})
		return
	}

	symbols := s.symbolsParam(r)

	limit := s.cfg.News.Limit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	headlines, err := s.news.Headlines(r.Context(), symbols, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    headlines,
	})
}

// ============================================================
// Position handlers
// ============================================================

func (s *Server) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	resp := PositionsResponse{Events: s.store.Snapshot()}
	if report, ok := s.store.Report(); ok {
		resp.Report = &report
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    resp,
	})
}

func (s *Server) handlePostPositions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	// Accept either a multipart upload or a raw CSV body.
	var reader io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer f.Close()
		reader = f
	}

	events, dropped := positions.ParseCSV(reader)
	if events == nil {
		reason := "invalid CSV"
		if len(dropped) > 0 {
			reason = dropped[0].Reason
		}
		writeError(w, http.StatusBadRequest, reason)
		return
	}

	s.store.Replace(events, dropped)
	s.broadcastPositions()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: UploadResult{
			Accepted: len(events),
			Dropped:  dropped,
		},
	})
}

func (s *Server) handleDeletePositions(w http.ResponseWriter, r *http.Request) {
	cleared := s.store.Len()
	s.store.Clear()
	s.broadcastPositions()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]int{"cleared": cleared},
	})
}

func (s *Server) handleTemplateCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="positions_template.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(positions.Template(time.Now())) //nolint:errcheck
}

// ============================================================
// Dashboard page handlers
// ============================================================

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	symbols := s.symbolsParam(r)

	// A hand-typed threshold that fails to parse falls back to the
	// configured default rather than breaking the page.
	minNotional, err := s.minNotionalParam(r)
	if err != nil {
		minNotional = s.cfg.Dashboard.MinNotional
	}

	result := s.earnings.Fetch(r.Context(), symbols)

	var headlines []models.Headline
	if s.cfg.News.Enabled {
		headlines, err = s.news.Headlines(r.Context(), symbols, s.cfg.News.Limit)
		if err != nil {
			log.Warn().Err(err).Msg("headline fetch failed")
			headlines = nil
		}
	}

	in := dashboard.Inputs{
		Now:         time.Now(),
		Symbols:     symbols,
		MinNotional: minNotional,
		Earnings:    result.Events,
		Missing:     result.Missing,
		Positions:   s.store.Snapshot(),
		Headlines:   headlines,
		Version:     s.version,
	}
	if report, ok := s.store.Report(); ok {
		in.Upload = &report
	}

	html, err := dashboard.Render(in)
	if err != nil {
		log.Error().Err(err).Msg("dashboard render failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html)) //nolint:errcheck
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	f, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer f.Close()

	events, dropped := positions.ParseCSV(f)
	if events == nil {
		reason := "invalid CSV"
		if len(dropped) > 0 {
			reason = dropped[0].Reason
		}
		http.Error(w, reason, http.StatusBadRequest)
		return
	}

	s.store.Replace(events, dropped)
	s.broadcastPositions()

	http.Redirect(w, r, dashboardURL(r.FormValue("symbols"), r.FormValue("min_notional")), http.StatusSeeOther)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()
	s.broadcastPositions()

	http.Redirect(w, r, dashboardURL(r.FormValue("symbols"), r.FormValue("min_notional")), http.StatusSeeOther)
}

// dashboardURL rebuilds the dashboard path with the view parameters the
// form carried, so a redirect lands on the same filtered view.
func dashboardURL(symbols, minNotional string) string {
	q := url.Values{}
	if symbols != "" {
		q.Set("symbols", symbols)
	}
	if minNotional != "" {
		q.Set("min_notional", minNotional)
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

// ============================================================
// Helpers
// ============================================================

// symbolsParam resolves the symbols query parameter, falling back to the
// configured watchlist when absent.
func (s *Server) symbolsParam(r *http.Request) []string {
	if raw := r.URL.Query().Get("symbols"); strings.TrimSpace(raw) != "" {
		return utils.ResolveSymbols(raw)
	}
	return utils.ResolveSymbolList(s.cfg.Dashboard.Symbols)
}

// minNotionalParam parses the min_notional query parameter, falling back
// to the configured default when absent.
func (s *Server) minNotionalParam(r *http.Request) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("min_notional"))
	if raw == "" {
		return s.cfg.Dashboard.MinNotional, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func (s *Server) broadcastPositions() {
	s.wsHub.Broadcast(WSMessage{
		Type: "positions_updated",
		Data: map[string]interface{}{
			"count": s.store.Len(),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; disconnect
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, client)
					close(client.send)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}
