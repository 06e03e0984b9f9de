package adapthttp

import (
	"net/http"
	"strings"
	"time"

	"prochecka/internal/domain"
)

// handleProgress serves both /progress/diet and /progress/exercise; the
// checklist kind is the last path segment. Progress is account-only: guests
// keep theirs inside the session's assessment data.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	kind := domain.ProgressKind(r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:])
	day := r.URL.Query().Get("day")
	if day == "" {
		day = localDayString(time.Now())
	}

	switch r.Method {
	case http.MethodGet:
		ids, err := s.progress.GetDay(r.Context(), user.ID, kind, day)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"day": day, "completed": ids})

	case http.MethodPut:
		var body struct {
			Completed []string `json:"completed"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.progress.SetDay(r.Context(), user.ID, kind, day, body.Completed); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"day": day, "completed": body.Completed})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
