package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// Server is the HTTP query API over the job store. Serving never blocks
// ingestion: both processes share only the durable store.
type Server struct {
	store  model.JobStore
	logger *slog.Logger
	router *gin.Engine
}

// New creates a server with its routes and middleware configured.
// An empty corsOrigins list allows all origins.
func New(store model.JobStore, corsOrigins []string, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:  store,
		logger: logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(corsOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = corsOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(corsCfg))

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.GET("/jobs", s.handleListJobs)
	router.GET("/jobs/:id", s.handleGetJob)
	router.GET("/users/:user_id/preferences", s.handleGetPreference)
	router.PUT("/users/:user_id/preferences", s.handleSavePreference)
	router.GET("/users/:user_id/matches", s.handleListMatches)

	s.router = router
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("serving query API", "addr", addr)
	return s.router.Run(addr)
}

// requestLogger logs one structured line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).String(),
		)
	}
}
