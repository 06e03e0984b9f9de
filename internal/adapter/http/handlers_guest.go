package adapthttp

import (
	"errors"
	"net/http"

	"prochecka/internal/domain"
)

var errMissingFields = errors.New("missing required fields")

func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleGuestCreate(w, r)
	case http.MethodPatch:
		s.handleGuestUpdate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleGuestCreate creates a new anonymous session, or resumes the one
// identified by sessionToken when it is still live.
func (s *Server) handleGuestCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionToken string `json:"sessionToken"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := s.guests.CreateOrResume(r.Context(), body.SessionToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess})
}

func (s *Server) handleGuestUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionToken   string                `json:"sessionToken"`
		AssessmentData domain.AssessmentData `json:"assessmentData"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.SessionToken == "" {
		writeError(w, http.StatusBadRequest, errMissingFields)
		return
	}

	sess, err := s.guests.UpdateProgress(r.Context(), body.SessionToken, body.AssessmentData)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess})
}

// handleGuestConvert promotes a guest session into the authenticated user's
// records. Safe to retry: converting an already-converted session reports
// success without migrating anything again.
func (s *Server) handleGuestConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := requireUser(w, r)
	if user == nil {
		return
	}

	var body struct {
		SessionToken string `json:"sessionToken"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.SessionToken == "" {
		writeError(w, http.StatusBadRequest, errMissingFields)
		return
	}

	res, err := s.guests.Convert(r.Context(), body.SessionToken, user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
