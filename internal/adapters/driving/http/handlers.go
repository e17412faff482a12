package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"

	_ "github.com/custodia-labs/sercha-estimator/docs"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"requirements text or file is required"`
}

// HealthResponse represents the health check response
// @Description Health status and capabilities
type HealthResponse struct {
	Status         string `json:"status" example:"healthy"`
	Version        string `json:"version" example:"1.0.0"`
	LLMAvailable   bool   `json:"llm_available"`
	IndexAvailable bool   `json:"index_available"`
	Documents      int    `json:"documents" example:"3"`
}

// FeaturesResponse lists the reference feature catalog
// @Description Reference feature catalog
type FeaturesResponse struct {
	Features   []domain.CatalogFeature `json:"features"`
	TotalCount int                     `json:"total_count" example:"12"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status and capabilities of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.statusService.Status(r.Context())
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "healthy",
		Version:        st.Version,
		LLMAvailable:   st.LLMAvailable,
		IndexAvailable: st.IndexAvailable,
		Documents:      st.Documents,
	})
}

// Estimate endpoints

// handleEstimate godoc
// @Summary      Estimate time and cost
// @Description  Estimates hours and cost for free-text requirements and/or an uploaded PDF, DOCX or TXT file
// @Tags         Estimates
// @Accept       multipart/form-data
// @Produce      json
// @Param        requirements  formData  string  false  "Requirements text"
// @Param        hourly_rate   formData  number  false  "Hourly rate (default 30)"
// @Param        file          formData  file    false  "Requirements document"
// @Success      200  {object}  domain.Totals
// @Failure      400  {object}  ErrorResponse  "Missing requirements, unsupported file or invalid rate"
// @Failure      413  {object}  ErrorResponse  "Upload too large"
// @Failure      422  {object}  ErrorResponse  "Requirements too vague to estimate"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /estimate [post]
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseEstimateRequest(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := s.estimateService.Estimate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Totals.Rounded())
}

// handleEstimateDetailed godoc
// @Summary      Detailed estimate
// @Description  Same input as /estimate; returns the per-feature breakdown, timeline, assumptions and a narrative
// @Tags         Estimates
// @Accept       multipart/form-data
// @Produce      json
// @Param        requirements  formData  string  false  "Requirements text"
// @Param        hourly_rate   formData  number  false  "Hourly rate (default 30)"
// @Param        file          formData  file    false  "Requirements document"
// @Success      200  {object}  domain.EstimateResult
// @Failure      400  {object}  ErrorResponse  "Missing requirements, unsupported file or invalid rate"
// @Failure      413  {object}  ErrorResponse  "Upload too large"
// @Failure      422  {object}  ErrorResponse  "Requirements too vague to estimate"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /estimate/detailed [post]
func (s *Server) handleEstimateDetailed(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseEstimateRequest(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	req.IncludeNarrative = true

	result, err := s.estimateService.Estimate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Rounded())
}

// parseEstimateRequest reads the multipart or urlencoded estimate form
func (s *Server) parseEstimateRequest(w http.ResponseWriter, r *http.Request) (domain.EstimateRequest, error) {
	var req domain.EstimateRequest

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, fmt.Errorf("%w: limit is %d bytes", domain.ErrPayloadTooLarge, s.maxUpload)
		}
		return req, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	req.Requirements = r.FormValue("requirements")

	if raw := strings.TrimSpace(r.FormValue("hourly_rate")); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return req, fmt.Errorf("%w: %q", domain.ErrInvalidHourlyRate, raw)
		}
		req.HourlyRate = rate
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return req, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	default:
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			return req, fmt.Errorf("%w: read upload: %v", domain.ErrInvalidInput, err)
		}
		req.FileName = header.Filename
		req.FileContent = content
	}

	return req, nil
}

// Chat endpoints

// handleChat godoc
// @Summary      Chat with the estimation consultant
// @Description  Replies to a message and attaches an estimate when the message describes buildable work
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ChatRequest  true  "Chat message and history"
// @Success      200      {object}  domain.ChatResult
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.chatService.Chat(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Catalog endpoints

// handleFeatures godoc
// @Summary      List reference features
// @Description  Returns the feature catalog parsed from the primary reference document
// @Tags         Catalog
// @Produce      json
// @Success      200  {object}  FeaturesResponse
// @Router       /features [get]
func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	features := s.estimateService.Features(r.Context())
	if features == nil {
		features = []domain.CatalogFeature{}
	}
	writeJSON(w, http.StatusOK, FeaturesResponse{Features: features, TotalCount: len(features)})
}

// handleSwagger serves the generated OpenAPI document
func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, doc)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps domain errors onto HTTP status codes
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingRequirements),
		errors.Is(err, domain.ErrUnsupportedFileType),
		errors.Is(err, domain.ErrInvalidHourlyRate),
		errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, domain.ErrVagueRequirements):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
