package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/catalog"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/planner"
)

// Server exposes the catalog services and the planner sessions over HTTP. catalog is nil
// when requirements come from a remote instance; the catalog routes answer 503 then.
type Server struct {
	catalog *catalog.Service
	manager *planner.Manager
	router  *gin.Engine
}

func New(service *catalog.Service, manager *planner.Manager) *Server {
	server := &Server{catalog: service, manager: manager}
	server.router = server.routes()
	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	catalogRoutes := api.Group("", server.requireCatalog)
	catalogRoutes.GET("/catalog/courses", server.listCourses)
	catalogRoutes.GET("/catalog/groups", server.listGroups)
	catalogRoutes.GET("/catalog/programs", server.listPrograms)
	catalogRoutes.GET("/catalog/domains", server.listDomains)
	catalogRoutes.POST("/requirements", server.requirements)
	catalogRoutes.POST("/groups/:code/options", server.groupOptions)
	catalogRoutes.POST("/suggestions", server.suggestions)

	sessions := api.Group("/sessions")
	sessions.GET("", server.listSessions)
	sessions.POST("", server.createSession)
	sessions.GET("/:id", server.getSession)
	sessions.DELETE("/:id", server.deleteSession)
	sessions.PUT("/:id/selection", server.setSelection)
	sessions.POST("/:id/place", server.place)
	sessions.POST("/:id/remove", server.remove)
	sessions.POST("/:id/terms", server.addTerm)
	sessions.DELETE("/:id/terms/:term", server.removeTerm)
	sessions.POST("/:id/choose", server.choose)
	sessions.GET("/:id/groups/:code/options", server.sessionGroupOptions)

	return router
}

// Run serves on address until ctx is done
func (server *Server) Run(ctx context.Context, address string) error {
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("address", address).Msg("http server listening")
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request served")
	}
}

func (server *Server) requireCatalog(c *gin.Context) {
	if server.catalog == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, planner.ErrorBody{
			Error: "catalog not served by this instance",
			Code:  planner.CodeServiceUnavailable,
		})
		return
	}
	c.Next()
}
