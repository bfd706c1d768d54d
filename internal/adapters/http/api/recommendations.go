package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/okian/leetlens/internal/app"
	"github.com/okian/leetlens/internal/domain/recommend"
)

// handleRecommend handles POST /api/problems/recommendations. The filter
// body may be empty; push and limit ride on the query string.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var filters recommend.Filters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	req := app.RecommendRequest{Filters: filters}
	req.Push, _ = strconv.ParseBool(r.URL.Query().Get("push"))
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: limit must be an integer", ErrBadRequest))
			return
		}
		req.Limit = limit
	}

	resp, err := s.svc.Recommend(r.Context(), UserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCurrentRecommendation handles GET
// /api/problems/recommendations/current without rebuilding the batch.
func (s *Server) handleCurrentRecommendation(w http.ResponseWriter, r *http.Request) {
	batch, err := s.svc.CurrentRecommendation(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": batch})
}
