package adapthttp

import "net/http"

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	owner, ok := resolveOwner(w, r)
	if !ok {
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Message == "" {
		writeError(w, http.StatusBadRequest, errMissingFields)
		return
	}

	reply, err := s.chat.Send(r.Context(), owner, body.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": reply})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	owner, ok := resolveOwner(w, r)
	if !ok {
		return
	}

	limit := intQuery(r, "limit", 50)
	msgs, err := s.chat.History(r.Context(), owner, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
