package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// syncRequest carries the session cookies captured by the extension.
type syncRequest struct {
	SessionToken string `json:"sessionToken"`
	CSRFToken    string `json:"csrfToken"`
}

func (r syncRequest) validate() error {
	switch {
	case strings.TrimSpace(r.SessionToken) == "":
		return fmt.Errorf("%w: missing sessionToken", ErrBadRequest)
	case strings.TrimSpace(r.CSRFToken) == "":
		return fmt.Errorf("%w: missing csrfToken", ErrBadRequest)
	}
	return nil
}

// handleSync handles POST /api/user/data. A successful sync returns the
// stored record together with a bearer token for the other routes.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.svc.SyncUserData(r.Context(), req.SessionToken, req.CSRFToken)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.mintToken(user.ID, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}
