// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/cors"

	repository "github.com/okian/fanhop/internal/adapters/repository"
	"github.com/okian/fanhop/internal/adapters/storage"
	service "github.com/okian/fanhop/internal/app"
	"github.com/okian/fanhop/internal/domain/bracket"
	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/domain/scorecard"
	"github.com/okian/fanhop/pkg/logger"
)

// OwnerHeader carries the caller's identity, set by an upstream auth proxy.
const OwnerHeader = "X-Owner-ID"

// SimulationService runs and grades brackets.
type SimulationService interface {
	Catalog() *edition.Catalog
	Simulate(ctx context.Context, req service.SimulateRequest) (service.Simulation, error)
	DecodeBracket(ctx context.Context, editionID, token string) (bracket.Tournament, error)
	Score(ctx context.Context, req service.SimulateRequest) (service.Graded, error)
	ScoreBracket(ctx context.Context, editionID, token string) (scorecard.Card, error)
}

// ModelService manages saved models.
type ModelService interface {
	SaveModel(ctx context.Context, req service.SaveModelRequest) (storage.Model, bool, error)
	Models(ctx context.Context, ownerID string) ([]storage.Model, error)
	SetModelPublic(ctx context.Context, ownerID, id string, public bool) (storage.Model, error)
	DeleteModel(ctx context.Context, ownerID, id string) error
	PublicModel(ctx context.Context, slug string) (service.PublicModel, error)
}

// LeaderboardService reads the per-edition leaderboards.
type LeaderboardService interface {
	Leaderboard(ctx context.Context, editionID string, n int) ([]repository.Entry, error)
	Rank(ctx context.Context, editionID, modelID string) (service.Standing, error)
}

// StatsProvider reports service statistics.
type StatsProvider interface {
	Stats(ctx context.Context) map[string]any
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	SimulationService
	ModelService
	LeaderboardService
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	catalogHandler     *CatalogHandler
	simulateHandler    *SimulateHandler
	modelsHandler      *ModelsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler

	corsOrigins []string
	logger      logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the browser origins allowed to call the API.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets the logger used for server errors.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, maxLeaderboardLimit int, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(deps),
		catalogHandler:     NewCatalogHandler(deps.Catalog()),
		simulateHandler:    NewSimulateHandler(deps),
		modelsHandler:      NewModelsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		rankHandler:        NewRankHandler(deps),
		corsOrigins:        []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /editions", MetricsMiddleware(s.catalogHandler.HandleEditions, "editions"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.catalogHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /simulate", MetricsMiddleware(s.simulateHandler.HandleGetSimulate, "simulate"))
	mux.HandleFunc("POST /simulate", MetricsMiddleware(s.simulateHandler.HandlePostSimulate, "simulate"))
	mux.HandleFunc("GET /bracket", MetricsMiddleware(s.simulateHandler.HandleGetBracket, "bracket"))
	mux.HandleFunc("GET /score", MetricsMiddleware(s.simulateHandler.HandleGetScore, "score"))

	mux.HandleFunc("GET /models", MetricsMiddleware(s.modelsHandler.HandleList, "models"))
	mux.HandleFunc("POST /models", MetricsMiddleware(s.modelsHandler.HandleSave, "models"))
	mux.HandleFunc("PATCH /models/{id}", MetricsMiddleware(s.modelsHandler.HandlePatch, "models"))
	mux.HandleFunc("DELETE /models/{id}", MetricsMiddleware(s.modelsHandler.HandleDelete, "models"))
	mux.HandleFunc("GET /models/public/{slug}", MetricsMiddleware(s.modelsHandler.HandlePublic, "public_model"))

	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /rank/{model_id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

// Handler wraps mux with request ids, error logging and CORS.
func (s *Server) Handler(mux http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", OwnerHeader, RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return RequestID(s.logOnError(c.Handler(mux)))
}

// logOnError logs server-side failures with the request id.
func (s *Server) logOnError(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		if wrapped.statusCode < http.StatusInternalServerError {
			return
		}
		l := s.logger
		if l == nil {
			l = logger.Get().Named("http")
		}
		l.Error(r.Context(), "request failed",
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", wrapped.statusCode),
		)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err with the status its kind maps to.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func badRequest(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest(op, err)
	}
	return nil
}
