package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kitsouko/aniarr/internal/api/handlers"
	"github.com/kitsouko/aniarr/internal/api/middleware"
	"github.com/kitsouko/aniarr/internal/cache"
	"github.com/kitsouko/aniarr/internal/config"
	"github.com/kitsouko/aniarr/internal/controllers"
	"github.com/kitsouko/aniarr/internal/metrics"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/sirupsen/logrus"
)

// Deps carries everything the HTTP layer needs
type Deps struct {
	DB      *models.Database
	Mirror  *cache.Mirror
	Metrics *metrics.Metrics

	Evaluator     *controllers.FreshnessEvaluator
	RefreshCtrl   *controllers.RefreshController
	EnrichCtrl    *controllers.EnrichmentController
	ReviewCtrl    *controllers.ReviewController
	WatchlistCtrl *controllers.WatchlistController
	VerifyCtrl    *controllers.VerifyController
	MigrateCtrl   *controllers.MigrationController
	MetaCtrl      *controllers.MetaController
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, deps Deps, logger *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.Logging(logger), gin.Recovery())

	setupRoutes(router, deps, logger)

	return &Server{
		server: &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second, // enrichment fan-out can take a while
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, deps Deps, logger *logrus.Logger) {
	handlers.NewHealthHandler().Register(router)
	handlers.NewStatusHandler(deps.DB, deps.Evaluator, logger).Register(router)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	animeHandler := handlers.NewAnimeHandler(deps.DB, deps.Mirror, deps.Evaluator, deps.RefreshCtrl, deps.EnrichCtrl, logger)
	reviewHandler := handlers.NewReviewHandler(deps.DB, deps.ReviewCtrl, logger)

	public := router.Group("/api")
	animeHandler.RegisterPublic(public)
	reviewHandler.RegisterPublic(public)
	handlers.NewMetaHandler(deps.DB, logger).Register(public)

	protected := router.Group("/api")
	protected.Use(middleware.RequireUser())
	animeHandler.RegisterProtected(protected)
	reviewHandler.RegisterProtected(protected)
	handlers.NewWatchlistHandler(deps.WatchlistCtrl, logger).Register(protected)
	handlers.NewProfileHandler(deps.DB, logger).Register(protected)
	handlers.NewVerifyHandler(deps.VerifyCtrl, logger).Register(protected)

	admin := router.Group("/api")
	admin.Use(middleware.RequireUser(), middleware.RequireAdmin(deps.DB))
	handlers.NewAdminHandler(deps.DB, deps.MigrateCtrl, deps.MetaCtrl, logger).Register(admin)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
