package transport

import (
	"errors"
	"net/http"
	"strings"

	"wine-cellar/internal/domain"
	"wine-cellar/internal/middleware"
	"wine-cellar/internal/repository"
	"wine-cellar/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateWineRequest represents the admin payload for a new wine
type CreateWineRequest struct {
	Rank           *int     `json:"rank" validate:"omitempty,gte=1"`
	Name           string   `json:"name" validate:"required,notblank,max=200"`
	Country        *string  `json:"country" validate:"omitempty,max=100"`
	Region         *string  `json:"region" validate:"omitempty,max=100"`
	GrapeVarieties []string `json:"grape_varieties" validate:"omitempty,dive,notblank,max=100"`
	Vintage        *int     `json:"vintage" validate:"omitempty,gte=1800,lte=2100"`
	Type           *string  `json:"type" validate:"omitempty,max=50"`
	AlcoholABV     *float64 `json:"alcohol_abv" validate:"omitempty,gte=0,lte=100"`
	VolumeML       *int     `json:"volume_ml" validate:"omitempty,gt=0"`
	Description    *string  `json:"description"`
	AverageRating  *float64 `json:"average_rating" validate:"omitempty,gte=0,lte=5"`
	ReviewsCount   *int     `json:"reviews_count" validate:"omitempty,gte=0"`
}

func (req *CreateWineRequest) wine() *domain.Wine {
	grapes := make([]string, 0, len(req.GrapeVarieties))
	for _, g := range req.GrapeVarieties {
		grapes = append(grapes, strings.TrimSpace(g))
	}

	return &domain.Wine{
		Rank:           req.Rank,
		Name:           req.Name,
		Country:        req.Country,
		Region:         req.Region,
		GrapeVarieties: grapes,
		Vintage:        req.Vintage,
		Type:           req.Type,
		AlcoholABV:     req.AlcoholABV,
		VolumeML:       req.VolumeML,
		Description:    req.Description,
		AverageRating:  req.AverageRating,
		ReviewsCount:   req.ReviewsCount,
	}
}

// ImageRequestResponse reports whether a wine was queued for an image
type ImageRequestResponse struct {
	WineID int64 `json:"wine_id"`
	Queued bool  `json:"queued"`
}

// AdminHandler handles catalog writes
type AdminHandler struct {
	wines  service.WineService
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(wines service.WineService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		wines:  wines,
		logger: logger,
	}
}

// RegisterRoutes registers the admin routes behind the given middleware
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)

		r.Post("/wines", h.CreateWine)
		r.Post("/wines/{id}/image", h.RequestImage)
	})
}

// CreateWine inserts a wine and queues it for image acquisition
func (h *AdminHandler) CreateWine(w http.ResponseWriter, r *http.Request) {
	var req CreateWineRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create wine validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wine := req.wine()
	if err := h.wines.Create(r.Context(), wine); err != nil {
		if errors.Is(err, service.ErrWineNameRequired) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to create wine", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create wine")
		return
	}

	subject, _ := middleware.GetSubject(r.Context())
	h.logger.Info("Wine created",
		zap.Int64("wine_id", wine.ID),
		zap.String("name", wine.Name),
		zap.String("by", subject),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, wine)
}

// RequestImage queues an existing wine for image acquisition
func (h *AdminHandler) RequestImage(w http.ResponseWriter, r *http.Request) {
	id, err := wineID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, queued, err := h.wines.RequestImage(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrWineNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "wine not found")
			return
		}
		h.logger.Error("Failed to request image", zap.Int64("wine_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to request image")
		return
	}

	status := http.StatusAccepted
	if !queued {
		status = http.StatusServiceUnavailable
	}
	middleware.RespondWithJSON(w, status, ImageRequestResponse{WineID: id, Queued: queued})
}
