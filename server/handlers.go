package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/shopmetrics/storecast"
	"github.com/shopmetrics/storecast/models"
	"github.com/shopmetrics/storecast/report"
	"github.com/shopmetrics/storecast/store"
)

// Error kinds surfaced on the wire.
const (
	kindNotFound   = "not_found"
	kindValidation = "validation"
	kindModelFit   = "model_fit"
	kindUpstream   = "upstream"
	kindInternal   = "internal"
)

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind string, err error) {
	s.writeJSON(w, status, errorResponse{Kind: kind, Message: err.Error()})
}

// writeDomainError maps pipeline errors onto the wire taxonomy.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, kindNotFound, err)
	case errors.Is(err, store.ErrNoName):
		s.writeError(w, http.StatusBadRequest, kindValidation, err)
	case errors.Is(err, models.ErrInsufficientTrainingData):
		s.writeError(w, http.StatusUnprocessableEntity, kindModelFit, err)
	case errors.Is(err, storecast.ErrSeriesUnavailable):
		s.writeError(w, http.StatusBadGateway, kindUpstream, err)
	default:
		s.logger.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, kindInternal, err)
	}
}

func businessID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "storecast api"})
}

type businessRequest struct {
	OwnerID         int64             `json:"owner_id"`
	Name            string            `json:"name"`
	PlatformType    string            `json:"platform_type"`
	PlatformURL     string            `json:"platform_url"`
	PlatformToken   string            `json:"platform_token"`
	PlatformDetails map[string]string `json:"platform_details"`
}

func (s *Server) handleCreateBusiness(w http.ResponseWriter, r *http.Request) {
	var req businessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, kindValidation, fmt.Errorf("decode body: %w", err))
		return
	}

	business := &store.Business{
		OwnerID:         req.OwnerID,
		Name:            req.Name,
		PlatformType:    req.PlatformType,
		PlatformURL:     req.PlatformURL,
		PlatformToken:   req.PlatformToken,
		PlatformDetails: req.PlatformDetails,
	}
	if err := s.directory.Save(r.Context(), business); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.logger.Info("business created", "id", business.ID, "name", business.Name)
	s.writeJSON(w, http.StatusCreated, business)
}

func (s *Server) handleListBusinesses(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := strconv.ParseInt(r.URL.Query().Get("owner_id"), 10, 64)
	businesses, err := s.directory.List(r.Context(), ownerID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"businesses": businesses})
}

func (s *Server) handleGetBusiness(w http.ResponseWriter, r *http.Request) {
	business, err := s.directory.Find(r.Context(), businessID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, business)
}

type businessUpdateRequest struct {
	Name            *string            `json:"name"`
	PlatformType    *string            `json:"platform_type"`
	PlatformURL     *string            `json:"platform_url"`
	PlatformToken   *string            `json:"platform_token"`
	PlatformDetails *map[string]string `json:"platform_details"`
}

func (s *Server) handleUpdateBusiness(w http.ResponseWriter, r *http.Request) {
	var req businessUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, kindValidation, fmt.Errorf("decode body: %w", err))
		return
	}

	business, err := s.directory.Find(r.Context(), businessID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if req.Name != nil {
		business.Name = *req.Name
	}
	if req.PlatformType != nil {
		business.PlatformType = *req.PlatformType
	}
	if req.PlatformURL != nil {
		business.PlatformURL = *req.PlatformURL
	}
	if req.PlatformToken != nil {
		business.PlatformToken = *req.PlatformToken
	}
	if req.PlatformDetails != nil {
		business.PlatformDetails = *req.PlatformDetails
	}

	if err := s.directory.Save(r.Context(), business); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, business)
}

func (s *Server) handleDeleteBusiness(w http.ResponseWriter, r *http.Request) {
	if err := s.directory.Delete(r.Context(), businessID(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "business deleted"})
}

type forecastRequest struct {
	Timeframe  string         `json:"timeframe"`
	Parameters map[string]any `json:"parameters"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, kindValidation, fmt.Errorf("decode body: %w", err))
			return
		}
	}

	res, err := s.forecaster.Forecast(r.Context(), businessID(r), req.Timeframe)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.logger.Info("forecast generated",
		"business_id", res.BusinessID,
		"timeframe", res.Summary.Timeframe,
		"total", res.Summary.TotalPredictedSales)
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleForecastReport(w http.ResponseWriter, r *http.Request) {
	timeframe := r.URL.Query().Get("timeframe")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatJSON
	}

	res, err := s.forecaster.Forecast(r.Context(), businessID(r), timeframe)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	switch format {
	case report.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
		err = report.WriteJSON(w, res)
	case report.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
		err = report.WriteCSV(w, res)
	case report.FormatHTML:
		w.Header().Set("Content-Type", "text/html")
		err = report.WriteHTML(w, res)
	default:
		s.writeError(w, http.StatusBadRequest, kindValidation, fmt.Errorf("%q: %w", format, report.ErrUnknownFormat))
		return
	}
	if err != nil {
		s.logger.Error("render report", "format", format, "error", err)
	}
}

type optimizeRequest struct {
	OptimizationType string            `json:"optimization_type"`
	Parameters       map[string]string `json:"parameters"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, kindValidation, fmt.Errorf("decode body: %w", err))
		return
	}
	if req.OptimizationType == "" {
		req.OptimizationType = "general"
	}

	business, err := s.directory.Find(r.Context(), businessID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	prompt := OptimizationPrompt(business, req.OptimizationType, req.Parameters)
	suggestion, err := s.suggester.Suggest(r.Context(), prompt)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, kindUpstream, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"business_id": business.ID,
		"suggestions": map[string]string{req.OptimizationType: suggestion},
	})
}
