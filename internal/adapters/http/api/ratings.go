package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

type rateRequest struct {
	Title string `json:"title"`
}

type rateBatchRequest struct {
	Titles []string `json:"titles"`
}

// handleRateProblem handles POST /api/problems/rate. A null rating means
// the problem is not in the corpus.
func (s *Server) handleRateProblem(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	rating, err := s.svc.RateProblem(r.Context(), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"title": req.Title, "rating": rating})
}

// handleRateProblems handles POST /api/problems/rate-batch.
func (s *Server) handleRateProblems(w http.ResponseWriter, r *http.Request) {
	var req rateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if len(req.Titles) == 0 {
		writeError(w, fmt.Errorf("%w: titles must not be empty", ErrBadRequest))
		return
	}
	ratings, err := s.svc.RateProblems(r.Context(), req.Titles)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ratings": ratings})
}
