// Package mockform runs a local stand-in for the hosted timesheet form
// so the automation can be exercised end to end without touching the
// real provider.
package mockform

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sheetpilot/internal/logging"
)

// ServerConfig controls where the mock form listens.
type ServerConfig struct {
	Host   string
	Port   int
	FormID string
	Debug  bool
}

// DefaultServerConfig matches the defaults the automation's mock mode
// points at.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:   "localhost",
		Port:   3456,
		FormID: "mock-form-123",
		Debug:  false,
	}
}

// Submission is one recorded form post.
type Submission struct {
	ID         string            `json:"submissionId"`
	FormID     string            `json:"formId"`
	Fields     map[string]string `json:"fields"`
	ReceivedAt time.Time         `json:"receivedAt"`
}

// Server serves the mock login page, the form, and the submission
// endpoint, recording everything it receives.
type Server struct {
	cfg        ServerConfig
	logger     logging.Logger
	engine     *gin.Engine
	httpServer *http.Server

	mu          sync.Mutex
	submissions []Submission
}

func NewServer(cfg ServerConfig, logger logging.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		cfg:    cfg,
		logger: logging.OrNop(logger),
		engine: engine,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.handleLoginPage)
	s.engine.POST("/login", s.handleLogin)
	s.engine.GET("/b/form/:formID", s.handleFormPage)
	s.engine.GET("/b/form/:formID/success", s.handleSuccessPage)
	s.engine.POST("/api/submit/:formID", s.handleSubmit)
	s.engine.GET("/api/submissions", s.handleListSubmissions)
}

// Handler exposes the routing tree for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr is the base URL the server listens on.
func (s *Server) Addr() string {
	return fmt.Sprintf("http://%s:%d", s.cfg.Host, s.cfg.Port)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mock form listening on %s", s.Addr())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Submissions returns a copy of everything posted so far.
func (s *Server) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Submission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

func (s *Server) handleLoginPage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, loginHTML)
}

// handleLogin accepts any credentials and bounces to the form.
func (s *Server) handleLogin(c *gin.Context) {
	email := c.PostForm("email")
	s.logger.Info("mock login for %s", logging.RedactEmail(email))
	c.Redirect(http.StatusFound, "/b/form/"+s.cfg.FormID)
}

func (s *Server) handleFormPage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, formHTML, c.Param("formID"))
}

func (s *Server) handleSuccessPage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, successHTML)
}

func (s *Server) handleSubmit(c *gin.Context) {
	formID := c.Param("formID")
	fields := map[string]string{}
	if c.ContentType() == "application/json" {
		_ = c.ShouldBindJSON(&fields)
	} else {
		_ = c.Request.ParseForm()
		for key := range c.Request.PostForm {
			fields[key] = c.Request.PostForm.Get(key)
		}
	}

	sub := Submission{
		ID:         uuid.NewString(),
		FormID:     formID,
		Fields:     fields,
		ReceivedAt: time.Now(),
	}
	s.mu.Lock()
	s.submissions = append(s.submissions, sub)
	s.mu.Unlock()

	s.logger.Info("mock submission %s recorded for form %s", sub.ID, formID)
	c.JSON(http.StatusOK, gin.H{
		"submissionId": sub.ID,
		"status":       "success",
	})
}

func (s *Server) handleListSubmissions(c *gin.Context) {
	c.JSON(http.StatusOK, s.Submissions())
}
