package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/denysvitali/audio-renamer/internal/models"
	"github.com/denysvitali/audio-renamer/pkg/config"
	"github.com/denysvitali/audio-renamer/pkg/renamer"
	"github.com/denysvitali/audio-renamer/pkg/telemetry"
)

// Server exposes plan and rename over HTTP. Operations are serialised:
// only one request touches the filesystem at a time.
type Server struct {
	config *config.Config
	logger *logrus.Logger
	fs     afero.Fs
	engine *gin.Engine
	server *http.Server

	mu           sync.Mutex
	startTime    time.Time
	lastRunTime  time.Time
	renamesTotal int
}

// New creates a new server instance
func New(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	if _, err := renamer.ParseOrder(cfg.Rename.Order); err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	if logger.Level == logrus.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(ginLogger(logger))

	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(telemetry.ServiceName))
	}

	if cfg.Server.SessionAPIKey != "" {
		engine.Use(authMiddleware(cfg.Server.SessionAPIKey))
	}

	server := &Server{
		config:    cfg,
		logger:    logger,
		fs:        afero.NewOsFs(),
		engine:    engine,
		startTime: time.Now(),
	}

	server.setupRoutes()

	return server, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.Port),
		Handler: s.engine,
	}

	s.logger.Infof("Starting server on port %d", s.config.Server.Port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Engine returns the gin engine for testing purposes
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/alive", s.handleAlive)
	s.engine.GET("/server_info", s.handleServerInfo)
	s.engine.POST("/plan", s.handlePlan)
	s.engine.POST("/rename", s.handleRename)
}

func (s *Server) handleAlive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleServerInfo(c *gin.Context) {
	now := time.Now()

	s.mu.Lock()
	lastRun := s.lastRunTime
	total := s.renamesTotal
	s.mu.Unlock()

	idleSince := lastRun
	if idleSince.IsZero() {
		idleSince = s.startTime
	}

	rc := s.config.Rename
	c.JSON(http.StatusOK, models.ServerInfoResponse{
		Uptime:      now.Sub(s.startTime).Seconds(),
		IdleTime:    now.Sub(idleSince).Seconds(),
		LastRunTime: lastRun,
		WorkingDir:  s.config.Server.WorkingDir,
		Defaults: models.Defaults{
			Folder:    rc.Folder,
			Extension: rc.Extension,
			Prefix:    rc.Prefix,
			Order:     rc.Order,
			Preflight: rc.Preflight,
		},
		SystemStats:  renamer.SystemStats(s.logger, s.config.Server.WorkingDir),
		RenamesTotal: total,
	})
}

func (s *Server) handlePlan(c *gin.Context) {
	ctx, span := otel.Tracer(telemetry.ServiceName).Start(c.Request.Context(), "handle_plan")
	defer span.End()

	req, order, ok := s.bindRequest(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("folder", req.Folder))

	r := s.newRenamer(order, io.Discard)

	s.mu.Lock()
	plan, err := r.BuildPlan(ctx, req.Folder, req.Extension, req.Prefix)
	s.mu.Unlock()
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "error_type": errorType(err)})
		return
	}

	resp := models.PlanResponse{
		Folder:     req.Folder,
		Operations: toRenameOps(plan.Steps),
		Conflicts:  toConflicts(plan.Conflicts()),
	}
	if s.config.Telemetry.Enabled {
		telemetry.ReportJSON(ctx, s.logger, "plan_response", resp)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRename(c *gin.Context) {
	ctx, span := otel.Tracer(telemetry.ServiceName).Start(c.Request.Context(), "handle_rename")
	defer span.End()

	req, order, ok := s.bindRequest(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("folder", req.Folder))

	notices := s.logger.WithField("folder", req.Folder).WriterLevel(logrus.InfoLevel)
	defer notices.Close()
	r := s.newRenamer(order, notices)

	s.mu.Lock()
	result, err := r.Rename(ctx, req.Folder, req.Extension, req.Prefix)
	s.lastRunTime = time.Now()
	s.renamesTotal += len(result.Applied)
	s.mu.Unlock()

	resp := models.RenameResponse{
		Folder:  req.Folder,
		Renamed: toRenameOps(result.Applied),
	}
	status := http.StatusOK
	if err != nil {
		span.RecordError(err)
		s.logger.Errorf("Rename in %s failed: %v", req.Folder, err)
		resp.Error = err.Error()
		resp.ErrorType = errorType(err)
		var conflictErr *renamer.ConflictError
		if errors.As(err, &conflictErr) {
			resp.Conflicts = toConflicts(conflictErr.Conflicts)
		}
		status = statusFor(err)
	}

	if s.config.Telemetry.Enabled {
		telemetry.ReportJSON(ctx, s.logger, "rename_response", resp)
	}
	c.JSON(status, resp)
}

// bindRequest parses the body and fills defaults from the configuration.
// On failure it writes the response and returns false.
func (s *Server) bindRequest(c *gin.Context) (models.RenameRequest, renamer.Order, bool) {
	var req models.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, "", false
	}

	rc := s.config.Rename
	if req.Folder == "" {
		req.Folder = rc.Folder
	}
	if req.Extension == "" {
		req.Extension = rc.Extension
	}
	if req.Prefix == "" {
		req.Prefix = rc.Prefix
	}
	if req.Order == "" {
		req.Order = rc.Order
	}
	req.Folder = s.resolvePath(req.Folder)

	order, err := renamer.ParseOrder(req.Order)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": errorType(err)})
		return req, "", false
	}
	return req, order, true
}

// newRenamer builds a renamer printing its notices to out.
func (s *Server) newRenamer(order renamer.Order, out io.Writer) *renamer.Renamer {
	return renamer.New(s.logger,
		renamer.WithFs(s.fs),
		renamer.WithOrder(order),
		renamer.WithPreflight(s.config.Rename.Preflight),
		renamer.WithOutput(out),
	)
}

// resolvePath resolves a path relative to the working directory
func (s *Server) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.config.Server.WorkingDir, path)
}

func toRenameOps(steps []renamer.Step) []models.RenameOp {
	ops := make([]models.RenameOp, 0, len(steps))
	for _, st := range steps {
		ops = append(ops, models.RenameOp{Index: st.Index, OldName: st.From, NewName: st.To})
	}
	return ops
}

func toConflicts(conflicts []renamer.Conflict) []models.Conflict {
	out := make([]models.Conflict, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, models.Conflict{
			Index:   c.Step.Index,
			OldName: c.Step.From,
			NewName: c.Step.To,
			Reason:  c.Reason,
		})
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, renamer.ErrPathNotFound):
		return http.StatusNotFound
	case errors.Is(err, renamer.ErrNotADirectory), errors.Is(err, renamer.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, renamer.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, renamer.ErrRenameConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, renamer.ErrPathNotFound):
		return "PathNotFound"
	case errors.Is(err, renamer.ErrNotADirectory):
		return "NotADirectory"
	case errors.Is(err, renamer.ErrInvalidArgument):
		return "InvalidArgument"
	case errors.Is(err, renamer.ErrPermissionDenied):
		return "PermissionDenied"
	case errors.Is(err, renamer.ErrRenameConflict):
		return "RenameConflict"
	default:
		return "InternalError"
	}
}

// ginLogger creates a gin logger middleware using logrus
func ginLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		statusCode := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"status":  statusCode,
			"method":  c.Request.Method,
			"path":    path,
			"ip":      c.ClientIP(),
			"latency": time.Since(start),
		})

		if statusCode >= 500 {
			entry.Error("Server error")
		} else if statusCode >= 400 {
			entry.Warn("Client error")
		} else {
			entry.Info("Request completed")
		}
	}
}

// authMiddleware validates API key
func authMiddleware(expectedAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-Session-API-Key")
		if apiKey != expectedAPIKey {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid API Key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
