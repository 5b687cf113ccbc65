package httpserver

import (
	"net/http"

	workflowhttp "legisflow/contexts/legislative-advocacy/workflow-service/transport/http"
)

func (s *Server) handleListProcessStates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.workflow.Handler.ListProcessStatesHandler(r.Context()))
}

func (s *Server) handleListGateTemplates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.workflow.Handler.ListGateTemplatesHandler(r.Context(), r.PathValue("process_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInitializeWorkflow(w http.ResponseWriter, r *http.Request) {
	resp, err := s.workflow.Handler.InitializeWorkflowHandler(r.Context(), userID(r), r.PathValue("campaign_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetWorkflowState(w http.ResponseWriter, r *http.Request) {
	resp, err := s.workflow.Handler.GetCurrentStateHandler(r.Context(), r.PathValue("campaign_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListWorkflowStates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.workflow.Handler.ListWorkflowStatesHandler(r.Context(), r.PathValue("campaign_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListGates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.workflow.Handler.ListGatesHandler(r.Context(), r.PathValue("campaign_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.workflow.Handler.GetHistoryHandler(r.Context(), r.PathValue("campaign_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req workflowhttp.AdvanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.workflow.Handler.AdvanceHandler(r.Context(), userID(r), r.PathValue("campaign_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveGate(w http.ResponseWriter, r *http.Request) {
	var req workflowhttp.ApproveGateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.workflow.Handler.ApproveGateHandler(r.Context(), userID(r), r.PathValue("gate_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	actor := userID(r)
	if actor == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req workflowhttp.ResetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.workflow.Handler.ResetHandler(r.Context(), actor, r.PathValue("campaign_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
