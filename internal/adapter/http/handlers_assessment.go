package adapthttp

import (
	"net/http"

	"prochecka/internal/domain"
)

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"features": domain.Features})
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	owner, ok := resolveOwner(w, r)
	if !ok {
		return
	}

	var body struct {
		Inputs domain.HealthInputsForm `json:"inputs"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	inputs, err := body.Inputs.Inputs()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, plan, err := s.assess.Submit(r.Context(), owner, inputs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result, "plan": plan})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	owner, ok := resolveOwner(w, r)
	if !ok {
		return
	}

	plan, err := s.assess.GetPlan(r.Context(), owner)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": plan})
}

func (s *Server) handlePlanTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	owner, ok := resolveOwner(w, r)
	if !ok {
		return
	}

	var body struct {
		TaskID    string `json:"taskId"`
		Completed *bool  `json:"completed"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.TaskID == "" || body.Completed == nil {
		writeError(w, http.StatusBadRequest, errMissingFields)
		return
	}

	plan, err := s.assess.ToggleTask(r.Context(), owner, body.TaskID, *body.Completed)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": plan})
}
