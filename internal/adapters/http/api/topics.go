package api

import (
	"net/http"
)

// handleWeakTopics handles GET /api/user/weak-topics.
func (s *Server) handleWeakTopics(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.WeakTopics(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
