package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/collegiate-app/collegiate/internal/handler"
	"github.com/collegiate-app/collegiate/internal/identity"
	"github.com/collegiate-app/collegiate/internal/middleware"
	"github.com/collegiate-app/collegiate/internal/openai"
	"github.com/collegiate-app/collegiate/internal/scorecard"
	"github.com/collegiate-app/collegiate/internal/store"
	ws "github.com/collegiate-app/collegiate/internal/websocket"
)

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	collegeH       *handler.CollegeHandler
	savedCollegeH  *handler.SavedCollegeHandler
	openaiH        *handler.OpenAIHandler
	identityClient *identity.Client
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, scorecardClient *scorecard.Client, aiClient *openai.Client, identityClient *identity.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	savedCollegeStore := store.NewSavedCollegeStore(db)

	return &Server{
		db:             db,
		hub:            hub,
		collegeH:       handler.NewCollegeHandler(scorecardClient, logger.With("component", "college")),
		savedCollegeH:  handler.NewSavedCollegeHandler(savedCollegeStore, hub, logger.With("component", "saved_college")),
		openaiH:        handler.NewOpenAIHandler(aiClient, logger.With("component", "openai")),
		identityClient: identityClient,
		rateLimiter:    middleware.NewRateLimiter(),
		logger:         logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /api/college/search", s.collegeH.Search)

	// AI routes are public like the rest of the guidance surface, but
	// rate limited since each call costs money.
	mux.HandleFunc("POST /api/openai/generate-outline", s.aiLimited(s.openaiH.GenerateOutline))
	mux.HandleFunc("POST /api/openai/grade-essay", s.aiLimited(s.openaiH.GradeEssay))
	mux.HandleFunc("POST /api/openai/analyze-resume", s.aiLimited(s.openaiH.AnalyzeResume))
	mux.HandleFunc("POST /api/openai/upload-resume", s.aiLimited(s.openaiH.UploadResume))

	// Saved-college routes require a valid bearer token
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/database/list", s.savedCollegeH.List)
	protectedMux.HandleFunc("POST /api/database/insert", s.savedCollegeH.Insert)
	protectedMux.HandleFunc("DELETE /api/database/delete/{id}", s.savedCollegeH.Delete)

	authMiddleware := middleware.RequireUser(s.identityClient)
	mux.Handle("/api/database/", authMiddleware(protectedMux))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) aiLimited(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 20, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
