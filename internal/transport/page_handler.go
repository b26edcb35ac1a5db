package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"wine-cellar/internal/domain"
	"wine-cellar/internal/middleware"
	"wine-cellar/internal/repository"
	"wine-cellar/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CommentForm represents the comment form on the wine page
type CommentForm struct {
	Text string `validate:"required,notblank,max=2000"`
}

type homePage struct {
	Title string
}

type catalogPage struct {
	Title  string
	Page   *domain.Page
	Search string
}

type recommendPage struct {
	Title      string
	Filter     domain.WineFilter
	Options    *domain.FilterOptions
	Results    []*domain.Wine
	SearchDone bool
	Error      string
}

type winePage struct {
	Title    string
	Wine     *domain.Wine
	Comments []*domain.Comment
	Text     string
	Error    string
}

type dashboardPage struct {
	Title   string
	Options *domain.FilterOptions
}

// PageHandler serves the server-rendered HTML pages
type PageHandler struct {
	catalog  service.CatalogService
	comments service.CommentService
	pages    *renderer
	logger   *zap.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(catalog service.CatalogService, comments service.CommentService, logger *zap.Logger) (*PageHandler, error) {
	pages, err := newRenderer(logger)
	if err != nil {
		return nil, err
	}
	return &PageHandler{
		catalog:  catalog,
		comments: comments,
		pages:    pages,
		logger:   logger,
	}, nil
}

// RegisterRoutes registers the page routes. Comment posts go through the
// rate limiter.
func (h *PageHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.Get("/", h.Home)
	r.Get("/catalog", h.Catalog)
	r.Get("/recommend", h.Recommend)
	r.Post("/recommend", h.Recommend)
	r.Get("/wines/{id}", h.Wine)
	r.With(rateLimit).Post("/wines/{id}", h.AddComment)
	r.Get("/dashboard", h.Dashboard)
}

// NotFound renders the 404 page
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.pages.renderError(w, http.StatusNotFound, "page not found")
}

// Home renders the landing page
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, http.StatusOK, "home", homePage{Title: "Wine Cellar"})
}

// Catalog renders one page of the rank-ordered catalog
func (h *PageHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := parsePage(query.Get("page"))
	if err != nil {
		h.pages.renderError(w, http.StatusBadRequest, err.Error())
		return
	}
	search := strings.TrimSpace(query.Get("search"))

	result, err := h.catalog.Browse(r.Context(), domain.WineFilter{Search: search}, page)
	if err != nil {
		h.logger.Error("Failed to browse catalog", zap.Error(err))
		h.pages.renderError(w, http.StatusInternalServerError, "the catalog is unavailable")
		return
	}

	h.pages.render(w, http.StatusOK, "catalog", catalogPage{Title: "Catalog", Page: result, Search: search})
}

// Recommend renders the recommendation form, and results once criteria
// were submitted by query string or form post
func (h *PageHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	data := recommendPage{Title: "Recommendations"}

	opts, err := h.catalog.Options(r.Context())
	if err != nil {
		h.logger.Warn("Failed to load filter options", zap.Error(err))
		opts = &domain.FilterOptions{}
	}
	data.Options = opts

	if err := r.ParseForm(); err != nil {
		h.pages.renderError(w, http.StatusBadRequest, "invalid form")
		return
	}

	if r.Method == http.MethodPost || r.Form.Has("type") || r.Form.Has("grape") || r.Form.Has("min_rating") {
		filter, err := recommendFilter(r.Form)
		if err != nil {
			data.Error = err.Error()
			h.pages.render(w, http.StatusBadRequest, "recommend", data)
			return
		}
		data.Filter = filter

		results, err := h.catalog.Recommend(r.Context(), filter)
		if err != nil {
			h.logger.Error("Failed to recommend wines", zap.Error(err))
			h.pages.renderError(w, http.StatusInternalServerError, "recommendations are unavailable")
			return
		}
		data.Results = results
		data.SearchDone = true
	}

	h.pages.render(w, http.StatusOK, "recommend", data)
}

// Wine renders a wine with its comments
func (h *PageHandler) Wine(w http.ResponseWriter, r *http.Request) {
	h.renderWine(w, r, http.StatusOK, "", "")
}

// AddComment stores a comment from the wine page form and redirects back
func (h *PageHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := wineID(r)
	if err != nil {
		h.pages.renderError(w, http.StatusNotFound, "wine not found")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.pages.renderError(w, http.StatusBadRequest, "invalid form")
		return
	}

	form := CommentForm{Text: r.PostForm.Get("text")}
	if err := middleware.ValidateRequest(&form); err != nil {
		h.renderWine(w, r, http.StatusBadRequest, form.Text, "Please write something before posting.")
		return
	}

	if _, err := h.comments.Add(r.Context(), id, form.Text); err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyComment):
			h.renderWine(w, r, http.StatusBadRequest, form.Text, "Please write something before posting.")
		case errors.Is(err, repository.ErrWineNotFound):
			h.pages.renderError(w, http.StatusNotFound, "wine not found")
		default:
			h.logger.Error("Failed to add comment", zap.Int64("wine_id", id), zap.Error(err))
			h.pages.renderError(w, http.StatusInternalServerError, "the comment could not be saved")
		}
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/wines/%d", id), http.StatusSeeOther)
}

func (h *PageHandler) renderWine(w http.ResponseWriter, r *http.Request, status int, text, formError string) {
	id, err := wineID(r)
	if err != nil {
		h.pages.renderError(w, http.StatusNotFound, "wine not found")
		return
	}

	wine, err := h.catalog.GetWine(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrWineNotFound) {
			h.pages.renderError(w, http.StatusNotFound, "wine not found")
			return
		}
		h.logger.Error("Failed to load wine", zap.Int64("wine_id", id), zap.Error(err))
		h.pages.renderError(w, http.StatusInternalServerError, "the wine could not be loaded")
		return
	}

	comments, err := h.comments.List(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load comments", zap.Int64("wine_id", id), zap.Error(err))
		h.pages.renderError(w, http.StatusInternalServerError, "the wine could not be loaded")
		return
	}

	h.pages.render(w, status, "wine", winePage{
		Title:    wine.Name,
		Wine:     wine,
		Comments: comments,
		Text:     text,
		Error:    formError,
	})
}

// Dashboard renders the dashboard shell; the charts load from the JSON API
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	opts, err := h.catalog.Options(r.Context())
	if err != nil {
		h.logger.Warn("Failed to load filter options", zap.Error(err))
		opts = &domain.FilterOptions{}
	}

	h.pages.render(w, http.StatusOK, "dashboard", dashboardPage{Title: "Dashboard", Options: opts})
}
