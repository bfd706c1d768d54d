// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/leetlens/internal/app"
	"github.com/okian/leetlens/internal/contest"
	"github.com/okian/leetlens/internal/domain/model"
	"github.com/okian/leetlens/pkg/metrics"
)

// Service is the application surface the handlers call into. Using an
// interface bundle keeps the handler layer loosely coupled to the app
// package's concrete wiring.
type Service interface {
	WeakTopics(ctx context.Context, userID string) (*app.WeakTopicsResponse, error)
	Recommend(ctx context.Context, userID string, req app.RecommendRequest) (*app.RecommendResponse, error)
	CurrentRecommendation(ctx context.Context, userID string) ([]model.RecommendationEntry, error)
	ContestHistory(ctx context.Context, userID string, page contest.Page, forceRefresh bool) (*contest.HistoryResult, error)
	SyncUserData(ctx context.Context, sessionToken, csrfToken string) (*model.User, error)
	RateProblem(ctx context.Context, title string) (*float64, error)
	RateProblems(ctx context.Context, titles []string) (map[string]*float64, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	svc       Service
	jwtSecret []byte
}

// NewServer creates an API server around the application service. The secret
// signs the tokens minted on sync and verifies them on every other route.
func NewServer(svc Service, jwtSecret string) *Server {
	return &Server{svc: svc, jwtSecret: []byte(jwtSecret)}
}

// Router builds the route tree. Open routes sit outside the auth group.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID, RequestLogger, Metrics)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Default().Registry(), promhttp.HandlerOpts{}))
	r.Post("/api/user/data", s.handleSync)

	r.Group(func(r chi.Router) {
		r.Use(Auth(s.jwtSecret))
		r.Get("/api/user/weak-topics", s.handleWeakTopics)
		r.Get("/api/user/contest-history", s.handleContestHistory)
		r.Post("/api/problems/recommendations", s.handleRecommend)
		r.Get("/api/problems/recommendations/current", s.handleCurrentRecommendation)
		r.Post("/api/problems/rate", s.handleRateProblem)
		r.Post("/api/problems/rate-batch", s.handleRateProblems)
	})
	return r
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
