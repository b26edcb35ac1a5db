package transport

import (
	"errors"
	"net/http"

	"wine-cellar/internal/domain"
	"wine-cellar/internal/middleware"
	"wine-cellar/internal/repository"
	"wine-cellar/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CommentRequest represents a comment submitted through the JSON API
type CommentRequest struct {
	Text string `json:"text" validate:"required,notblank,max=2000"`
}

// APIHandler serves the JSON endpoints used by the dashboard and the
// recommendation form
type APIHandler struct {
	catalog   service.CatalogService
	dashboard service.DashboardService
	comments  service.CommentService
	logger    *zap.Logger
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(
	catalog service.CatalogService,
	dashboard service.DashboardService,
	comments service.CommentService,
	logger *zap.Logger,
) *APIHandler {
	return &APIHandler{
		catalog:   catalog,
		dashboard: dashboard,
		comments:  comments,
		logger:    logger,
	}
}

// RegisterRoutes registers the JSON API. Comment writes go through the
// rate limiter.
func (h *APIHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.Get("/recommend", h.Recommend)
	r.Get("/dashboard-data", h.DashboardData)
	r.Get("/wine-map", h.WineMap)
	r.Get("/options", h.Options)
	r.Get("/wines/{id}", h.GetWine)
	r.Get("/wines/{id}/comments", h.ListComments)
	r.With(rateLimit).Post("/wines/{id}/comments", h.AddComment)
}

// Recommend returns the best-rated wines matching the query filter
func (h *APIHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	filter, err := recommendFilter(r.URL.Query())
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	wines, err := h.catalog.Recommend(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to recommend wines", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to recommend wines")
		return
	}
	if wines == nil {
		wines = []*domain.Wine{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, wines)
}

// DashboardData returns KPIs and the type distribution. The country and
// quality filters accept both their English and Portuguese parameter names.
func (h *APIHandler) DashboardData(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	country := firstValue(query, "country", "pais")

	minRating, err := parseRating(firstValue(query, "min_rating", "qualidade"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.dashboard.Dashboard(r.Context(), country, minRating)
	if err != nil {
		h.logger.Error("Failed to build dashboard", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load dashboard data")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, data)
}

// WineMap returns per-country density for the choropleth
func (h *APIHandler) WineMap(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.WineMap(r.Context())
	if err != nil {
		h.logger.Error("Failed to build wine map", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load map data")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, data)
}

// Options returns the distinct types and countries for filter inputs
func (h *APIHandler) Options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.catalog.Options(r.Context())
	if err != nil {
		h.logger.Error("Failed to load filter options", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load options")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, opts)
}

// GetWine returns one wine
func (h *APIHandler) GetWine(w http.ResponseWriter, r *http.Request) {
	id, err := wineID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	wine, err := h.catalog.GetWine(r.Context(), id)
	if err != nil {
		h.respondWineError(w, err, "failed to load wine")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, wine)
}

// ListComments returns a wine's comments, newest first
func (h *APIHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := wineID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.catalog.GetWine(r.Context(), id); err != nil {
		h.respondWineError(w, err, "failed to load comments")
		return
	}

	comments, err := h.comments.List(r.Context(), id)
	if err != nil {
		h.respondWineError(w, err, "failed to load comments")
		return
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, comments)
}

// AddComment stores a comment sent as JSON
func (h *APIHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := wineID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CommentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.comments.Add(r.Context(), id, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyComment) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondWineError(w, err, "failed to add comment")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, comment)
}

func (h *APIHandler) respondWineError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, repository.ErrWineNotFound) {
		middleware.RespondWithError(w, http.StatusNotFound, "wine not found")
		return
	}
	h.logger.Error("Request failed", zap.String("operation", message), zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, message)
}
