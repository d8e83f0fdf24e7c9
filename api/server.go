package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/inconshreveable/log15"

	"github.com/wricardo/colormatch/game/config"
	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/service"
	"github.com/wricardo/colormatch/game/session"
	"github.com/wricardo/colormatch/transport/websocket"
)

// DefaultStaticDir holds the browser client
const DefaultStaticDir = "./static/"

// maxConfigBody caps uploaded presets
const maxConfigBody = 64 << 10

// Server represents the REST API server
type Server struct {
	service   service.GameService
	hub       *websocket.Hub
	router    *mux.Router
	log       log15.Logger
	staticDir string
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(gameService service.GameService, hub *websocket.Hub, logger log15.Logger) *Server {
	s := &Server{
		service:   gameService,
		hub:       hub,
		router:    mux.NewRouter(),
		log:       logger,
		staticDir: DefaultStaticDir,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	// Game operations
	api.HandleFunc("/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/start", s.handleStart).Methods("POST")
	api.HandleFunc("/select", s.handleSelect).Methods("POST")
	api.HandleFunc("/reset", s.handleReset).Methods("POST")

	// Presentation data
	api.HandleFunc("/colors", s.handleListColors).Methods("GET")
	api.HandleFunc("/instructions", s.handleInstructions).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/configs/{name}", s.handleSaveConfig).Methods("PUT")
	api.HandleFunc("/configs/{name}/use", s.handleUseConfig).Methods("POST")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	s.router.PathPrefix("/").HandlerFunc(s.handleStatic)
}

// SetStaticDir changes where the browser client is served from
func (s *Server) SetStaticDir(dir string) {
	s.staticDir = dir
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	http.FileServer(http.Dir(s.staticDir)).ServeHTTP(w, r)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api") {
			s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
		}
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidColor):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusConflict
	case errors.Is(err, config.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, config.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrManagerStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Start(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Color string `json:"color"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Select(r.Context(), req.Color)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.log.Debug("select", "color", req.Color, "correct", result.Correct,
		"score", result.GameState.Score, "level", result.GameState.Level)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Reset(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Game reset successfully",
		"state":   result.GameState,
	})
}

func (s *Server) handleListColors(w http.ResponseWriter, r *http.Request) {
	colors, err := s.service.ListColors(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"colors": colors,
	})
}

func (s *Server) handleInstructions(w http.ResponseWriter, r *http.Request) {
	lines, err := s.service.GetInstructions(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"instructions": lines,
	})
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := mux.Vars(r)["name"]

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	configName := mux.Vars(r)["name"]

	cfg := engine.DefaultConfig()
	cfg.Name = ""
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxConfigBody)).Decode(cfg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.SaveConfig(r.Context(), configName, cfg); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.log.Info("config saved", "config", configName)
	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleUseConfig(w http.ResponseWriter, r *http.Request) {
	configName := mux.Vars(r)["name"]

	result, err := s.service.UseConfig(r.Context(), configName)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.log.Info("config selected", "config", configName)
	respondJSON(w, http.StatusOK, result)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket disabled", http.StatusNotFound)
		return
	}

	// Upgrade to WebSocket
	s.hub.ServeWS(w, r)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
