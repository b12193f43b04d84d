package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"atsgenie/internal/errors"
	"atsgenie/internal/types"
)

const sourceHTTP = "http"

// healthHandler reports liveness and the state of the optional AI provider
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "atsgenie",
		"version": s.Version,
	}

	if s.Analysis != nil && s.Analysis.TipsEnabled() {
		tips := s.Analysis.TipStats()
		response["ai_tips"] = tips
		// Tips are optional, an open breaker only degrades them
		if healthy, ok := tips["healthy"].(bool); ok && !healthy {
			response["status"] = "degraded"
		}
	} else {
		response["ai_tips"] = map[string]any{"enabled": false}
	}

	if s.certs != nil {
		response["certificates"] = s.certs.status()
	}

	writeJSON(w, http.StatusOK, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "atsgenie",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"mcp_enabled":            s.MCP != nil,
			"auth_enabled":           len(s.APIKeys) > 0,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	response["rate_limit_config"] = map[string]any{
		"enabled":          s.RateLimit.Enabled,
		"requests_per_min": s.RateLimit.RequestsPerMin,
		"burst_capacity":   s.RateLimit.BurstCapacity,
		"by_ip":            s.RateLimit.ByIP,
		"by_api_key":       s.RateLimit.ByAPIKey,
	}

	writeJSON(w, http.StatusOK, response)
}

// matchHandler scores one resume against one job description
func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	var req types.MatchInput
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	report, err := s.Analysis.Analyze(r.Context(), sourceHTTP, req)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// batchHandler ranks several job descriptions against one resume
func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	var req types.BatchInput
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	report, err := s.Analysis.AnalyzeBatch(r.Context(), sourceHTTP, req)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

var errBodyTooLarge = stderrors.New("request body too large")

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("%w (limit is %d bytes)", errBodyTooLarge, maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

func (s *Server) writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	if stderrors.Is(err, errBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	s.Logger.Debug("Rejected request body", "endpoint", r.URL.Path, "error", err.Error())
	writeErrorResponse(w, r, "Invalid request body", errors.ErrCodeInvalidRequest, err.Error(), status)
}

// writeAppError maps application errors to HTTP responses
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		s.Logger.LogError(err, "Request failed", "endpoint", r.URL.Path, "request_id", requestIDFrom(r.Context()))
		writeErrorResponse(w, r, "Internal error", errors.ErrCodeInvalidRequest, "Request failed", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Type {
	case errors.ErrorTypeValidation:
		status = http.StatusBadRequest
		if appErr.Code == errors.ErrCodeTooManyJobs {
			status = http.StatusUnprocessableEntity
		}
	case errors.ErrorTypeAI, errors.ErrorTypeNetwork:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed", "endpoint", r.URL.Path, "request_id", requestIDFrom(r.Context()))
	}
	writeErrorResponse(w, r, http.StatusText(status), appErr.Code, appErr.Message, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, title, code, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:     title,
		Code:      code,
		Message:   message,
		RequestID: requestIDFrom(r.Context()),
	})
}
