package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/api/handlers"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/api/middleware"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/config"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/metrics"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/rpc"
)

// APIBasePath prefixes the public batch API.
const APIBasePath = "/api/v1"

// defaultAllowedOrigins is used when server.allowed_origins is empty.
var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

func newRouter(cfg *config.Config, server *handlers.Server, rpcServer *rpc.Server, recorder *metrics.Recorder) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	router.Use(cors.New(buildCORSConfig(cfg)))

	server.RegisterHealth(router)
	router.GET("/metrics", gin.WrapH(recorder.Handler()))
	router.GET("/log/level", gin.WrapH(logger.LevelHandler()))
	router.PUT("/log/level", gin.WrapH(logger.LevelHandler()))

	api := router.Group(APIBasePath)
	api.Use(middleware.MustOpenAPIValidator(APIBasePath), middleware.ErrorHandler())
	server.RegisterRoutes(api)

	rpcServer.Register(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "route not found"})
	})
	return router
}

// buildCORSConfig derives the CORS policy. A wildcard origin is honoured
// only with server.unsafe_allow_all_origins, and then without credentials.
func buildCORSConfig(cfg *config.Config) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}

	if cfg.Server.UnsafeAllowAllOrigins {
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
		return cc
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, o := range cfg.Server.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" || o == "*" {
			continue
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		origins = append(origins, defaultAllowedOrigins...)
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = cfg.Server.AllowCredentials
	return cc
}
