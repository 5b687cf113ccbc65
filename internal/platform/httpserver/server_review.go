package httpserver

import (
	"net/http"

	reviewhttp "legisflow/contexts/legislative-advocacy/review-service/transport/http"
)

func (s *Server) handleRegisterArtifact(w http.ResponseWriter, r *http.Request) {
	var req reviewhttp.RegisterArtifactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.review.Handler.RegisterArtifactHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	resp, err := s.review.Handler.GetArtifactHandler(r.Context(), r.PathValue("artifact_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewhttp.UpdateReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.review.Handler.UpdateReviewHandler(r.Context(), userID(r), r.PathValue("artifact_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDocumentReviews(w http.ResponseWriter, r *http.Request) {
	resp, err := s.review.Handler.GetDocumentReviewsHandler(r.Context(), r.PathValue("document_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDocumentSummaries(w http.ResponseWriter, r *http.Request) {
	resp, err := s.review.Handler.ListDocumentSummariesHandler(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
