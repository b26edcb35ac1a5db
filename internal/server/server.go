package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"wine-cellar/internal/app"
	"wine-cellar/internal/metrics"
	custommiddleware "wine-cellar/internal/middleware"
	"wine-cellar/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	app    *app.App
	logger *zap.Logger
}

func NewServer(a *app.App) (*Server, error) {
	router, err := NewRouter(a)
	if err != nil {
		return nil, err
	}

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", a.Config.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		app:    a,
		logger: a.Logger,
	}

	return server, nil
}

// NewRouter mounts the pages, the JSON API, the admin API and the asset
// routes on one chi router.
func NewRouter(a *app.App) (chi.Router, error) {
	cfg := a.Config
	logger := a.Logger

	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(metrics.Middleware)

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if a.DB == nil {
			custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
			return
		}
		health := a.DB.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})
	router.Handle("/metrics", metrics.Handler())

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(transport.StaticFiles()))))
	router.Handle("/images/*", http.StripPrefix("/images/", hideDotfiles(http.FileServer(http.Dir(a.Pipeline.Dir())))))

	rateLimit := custommiddleware.RateLimitMiddleware(a.Redis(), custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit:comments",
	}, logger)

	// Initialize handlers
	pageHandler, err := transport.NewPageHandler(a.Catalog, a.CommentsSvc, logger)
	if err != nil {
		return nil, err
	}
	apiHandler := transport.NewAPIHandler(a.Catalog, a.Dashboard, a.CommentsSvc, logger)
	adminHandler := transport.NewAdminHandler(a.WinesSvc, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	// Register routes
	pageHandler.RegisterRoutes(router, rateLimit)
	router.NotFound(pageHandler.NotFound)

	router.Route("/api", func(r chi.Router) {
		r.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))
		apiHandler.RegisterRoutes(r, rateLimit)
		adminHandler.RegisterRoutes(r, authMiddleware, adminMiddleware)
	})

	return router, nil
}

// hideDotfiles answers 404 for any path segment starting with a dot, which
// covers the lock directory and in-flight temp files.
func hideDotfiles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, part := range strings.Split(r.URL.Path, "/") {
			if strings.HasPrefix(part, ".") {
				http.NotFound(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.app.Close()

	_ = s.logger.Sync()
	return nil
}
