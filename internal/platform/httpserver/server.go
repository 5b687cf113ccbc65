package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	reviewservice "legisflow/contexts/legislative-advocacy/review-service"
	reviewerrors "legisflow/contexts/legislative-advocacy/review-service/domain/errors"
	workflowservice "legisflow/contexts/legislative-advocacy/workflow-service"
	workflowerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
	"legisflow/internal/platform/observability"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	_ "legisflow/internal/platform/httpserver/docs"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Options struct {
	Addr                string
	WriteRateLimitRPS   float64
	WriteRateLimitBurst int
	Tracer              trace.Tracer
}

type Server struct {
	mux      *http.ServeMux
	handler  http.Handler
	http     *http.Server
	logger   *slog.Logger
	addr     string
	limiter  *rate.Limiter
	workflow workflowservice.Module
	review   reviewservice.Module
}

func New(
	workflow workflowservice.Module,
	review reviewservice.Module,
	logger *slog.Logger,
	opts Options,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		addr = ":8080"
	}
	limit, burst := opts.WriteRateLimitRPS, opts.WriteRateLimitBurst
	if limit <= 0 {
		limit = 50
	}
	if burst <= 0 {
		burst = 100
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = observability.Tracer()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		limiter:  rate.NewLimiter(rate.Limit(limit), burst),
		workflow: workflow,
		review:   review,
	}
	s.registerRoutes()
	s.handler = observability.HTTPTracing(tracer, s.mux)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /v1/process/states", s.handleListProcessStates)
	s.mux.HandleFunc("GET /v1/process/{process_id}/gates", s.handleListGateTemplates)

	s.mux.Handle("POST /v1/campaigns/{campaign_id}/workflow", s.limitWrites(s.handleInitializeWorkflow))
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}/workflow/state", s.handleGetWorkflowState)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}/workflow/states", s.handleListWorkflowStates)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}/workflow/gates", s.handleListGates)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}/workflow/history", s.handleGetHistory)
	s.mux.Handle("POST /v1/campaigns/{campaign_id}/workflow/advance", s.limitWrites(s.handleAdvance))
	s.mux.Handle("POST /v1/gates/{gate_id}/approve", s.limitWrites(s.handleApproveGate))
	s.mux.Handle("POST /v1/admin/campaigns/{campaign_id}/workflow/reset", s.limitWrites(s.handleReset))

	s.mux.Handle("POST /v1/artifacts", s.limitWrites(s.handleRegisterArtifact))
	s.mux.HandleFunc("GET /v1/artifacts/{artifact_id}", s.handleGetArtifact)
	s.mux.Handle("PATCH /v1/artifacts/{artifact_id}/review", s.limitWrites(s.handleUpdateReview))
	s.mux.HandleFunc("GET /v1/documents/{document_id}/reviews", s.handleGetDocumentReviews)
	s.mux.HandleFunc("GET /v1/documents/reviews/summary", s.handleListDocumentSummaries)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// limitWrites rejects mutating requests once the shared token bucket is
// empty.
func (s *Server) limitWrites(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.logger.Warn("write request rate limited",
				"event", "http_write_rate_limited",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"method", r.Method,
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many write requests")
			return
		}
		next(w, r)
	})
}

// decodeBody accepts an empty body as the zero value.
func decodeBody(r *http.Request, target any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workflowerrors.ErrGateNotApproved):
		writeError(w, http.StatusConflict, "gate_not_approved", err.Error())
	case errors.Is(err, workflowerrors.ErrAlreadyTerminal):
		writeError(w, http.StatusConflict, "already_terminal", err.Error())
	case errors.Is(err, workflowerrors.ErrGateNotActive):
		writeError(w, http.StatusConflict, "gate_not_active", err.Error())
	case errors.Is(err, workflowerrors.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, workflowerrors.ErrValidation),
		errors.Is(err, reviewerrors.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, workflowerrors.ErrNotFound),
		errors.Is(err, reviewerrors.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, workflowerrors.ErrConflict),
		errors.Is(err, reviewerrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, workflowerrors.ErrStoreUnavailable),
		errors.Is(err, reviewerrors.ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "store unavailable, retry later")
	default:
		s.logger.Error("unmapped request error",
			"event", "http_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
