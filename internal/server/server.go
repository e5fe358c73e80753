package server

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"officedesk/internal/deadline"
	"officedesk/internal/models"
	"officedesk/internal/session"
	"officedesk/internal/storage/sqlite"
	"officedesk/internal/upstream"
)

// Options carries the collaborators and settings of a Server.
type Options struct {
	Sessions       *session.Parser
	Classifier     deadline.Classifier
	Logger         *slog.Logger
	StaticDir      string
	AllowedOrigins []string
	// Now is the clock used for remaining-time labels and session expiry.
	Now func() time.Time
}

// Server provides the HTTP API consumed by the office frontend.
type Server struct {
	engine     *gin.Engine
	store      *sqlite.Store
	upstream   *upstream.Client
	sessions   *session.Parser
	classifier deadline.Classifier
	logger     *slog.Logger
	staticDir  string
	origins    []string
	now        func() time.Time
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, client *upstream.Client, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewParser("")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine:     router,
		store:      store,
		upstream:   client,
		sessions:   opts.Sessions,
		classifier: opts.Classifier,
		logger:     opts.Logger,
		staticDir:  opts.StaticDir,
		origins:    opts.AllowedOrigins,
		now:        opts.Now,
	}

	router.Use(requestID(), srv.requestLogger())
	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the engine wrapped with CORS handling for the frontend origins.
// Credentials are only allowed when every origin is listed explicitly.
func (s *Server) Handler() http.Handler {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: !slices.Contains(origins, "*"),
	})
	return c.Handler(s.engine)
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.POST("/classify", s.handleClassify)

		authed := api.Group("", s.authenticate())
		{
			authed.GET("/session", s.handleSession)
			authed.GET("/tasks", s.handleListTasks)
			authed.GET("/tasks/:id", s.handleGetTask)
			authed.GET("/notifications", s.handleNotifications)
			authed.GET("/dashboard", s.handleDashboard)

			audit := authed.Group("/audit-logs", requireRole(models.RoleAdmin))
			{
				audit.GET("", s.handleListAuditLogs)
				audit.GET("/export", s.handleExportAuditLogs)
				audit.DELETE("", s.handleCleanupAuditLogs)
			}
		}
	}

	s.mountStatic()
}

// handleHealth reports readiness and the last snapshot sync.
func (s *Server) handleHealth(c *gin.Context) {
	payload := gin.H{"status": "ok"}
	run, err := s.store.LastSync(c.Request.Context())
	switch {
	case err == nil:
		payload["last_sync"] = run
	case !errors.Is(err, sqlite.ErrNoSync):
		s.logger.Warn("health: unable to read last sync", slog.String("error", err.Error()))
	}
	c.JSON(http.StatusOK, payload)
}

// handleSession returns the caller's session.
func (s *Server) handleSession(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"session": currentSession(c)})
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(c.Request.Context(), level, "request failed",
		slog.String("path", c.FullPath()),
		slog.String("request_id", c.GetString(requestIDKey)),
		slog.String("error", err.Error()),
	)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// respondUpstreamError maps an upstream client error onto an HTTP status.
func (s *Server) respondUpstreamError(c *gin.Context, err error) {
	var statusErr *upstream.StatusError
	switch {
	case errors.Is(err, upstream.ErrUnauthorized):
		s.respondError(c, http.StatusUnauthorized, err)
	case errors.Is(err, upstream.ErrNotFound), errors.Is(err, sqlite.ErrTaskNotFound):
		s.respondError(c, http.StatusNotFound, err)
	case upstream.IsUnavailable(err):
		s.respondError(c, http.StatusBadGateway, err)
	case errors.As(err, &statusErr) && statusErr.Code >= 400 && statusErr.Code < 500:
		s.respondError(c, statusErr.Code, err)
	default:
		s.respondError(c, http.StatusInternalServerError, err)
	}
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
