package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/webpot/internal/server/http/handlers"
	"github.com/polkiloo/webpot/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.WebpotFacade, policy handlers.Authorizer, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	actionHandler := handlers.NewActionHandler(facade, policy, logger)

	engine.GET("/healthz", actionHandler.Health)

	exec := engine.Group("/exec")
	exec.Use(middleware.Authenticate(facade))
	exec.GET("", actionHandler.Exec)
	exec.POST("", actionHandler.Exec)

	return engine
}
