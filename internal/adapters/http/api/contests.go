package api

import (
	"net/http"
	"strconv"

	"github.com/okian/leetlens/internal/contest"
)

// handleContestHistory handles GET /api/user/contest-history with
// page/pageSize/forceRefresh query parameters.
func (s *Server) handleContestHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var page contest.Page
	page.Page, _ = strconv.Atoi(q.Get("page"))
	page.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
	force, _ := strconv.ParseBool(q.Get("forceRefresh"))

	result, err := s.svc.ContestHistory(r.Context(), UserID(r.Context()), page, force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
