package server

import (
	"net/http"
	"time"

	"github.com/existflow/ironbill/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// sessionTTL is how long a login stays valid
const sessionTTL = 30 * 24 * time.Hour

// Server is the backup server
type Server struct {
	store Store
	echo  *echo.Echo
	now   func() time.Time
}

// New connects to PostgreSQL at dbURL and creates a server on it
func New(dbURL string) (*Server, error) {
	store, err := OpenPostgres(dbURL)
	if err != nil {
		return nil, err
	}
	return NewWithStore(store), nil
}

// NewWithStore creates a server backed by store
func NewWithStore(store Store) *Server {
	s := &Server{
		store: store,
		now:   time.Now,
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("16M"))

	e.GET("/health", s.handleHealth)

	api := e.Group("/api/v1")

	// Public
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.POST("/logout", s.handleLogout)
	protected.GET("/snapshots", s.handleListSnapshots)
	protected.GET("/snapshots/:collection", s.handleGetSnapshot)
	protected.PUT("/snapshots/:collection", s.handlePutSnapshot)
	protected.POST("/clear", s.handleClear)

	s.echo = e
}

// requestLogger writes one line per request through the application logger
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		res := c.Response()
		logger.Info("HTTP Request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("remote", c.RealIP()),
			logger.F("duration", time.Since(start).String()))
		return nil
	}
}

// Close closes the store
func (s *Server) Close() error {
	return s.store.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}
