package web

import (
	"context"
	"net/http"

	"reelsearch/config"
	"reelsearch/database"
	"reelsearch/search"
	"reelsearch/web/handlers"
	"reelsearch/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	engine *search.Engine
	store  *database.PostgresStore
	logger *zap.Logger
	config *config.Config
}

func NewServer(engine *search.Engine, store *database.PostgresStore, logger *zap.Logger, config *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger))

	server := &Server{
		router: router,
		engine: engine,
		store:  store,
		logger: logger,
		config: config,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	searchHandler := handlers.NewSearchHandler(s.engine, s.logger)
	listicleHandler := handlers.NewListicleHandler(s.engine, s.logger)
	healthHandler := handlers.NewHealthHandler(s.store, s.logger)

	s.router.GET("/healthz", healthHandler.Healthz)

	api := s.router.Group("/api")
	api.POST("/search", searchHandler.Search)
	api.POST("/listicle", listicleHandler.Listicle)
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}
