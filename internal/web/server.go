package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spacesedan/bookpulse/internal/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

// analysisService is the one operation the web layer needs from the pipeline.
type analysisService interface {
	Analyze(ctx context.Context, query string) (models.AnalysisResult, error)
}

type Server struct {
	echo          *echo.Echo
	port          string
	analyzer      analysisService
	sourceHealthy *atomic.Bool
	indexTemplate *template.Template
	startTime     time.Time
}

// NewServer wires the routes. sourceHealthy is written by the source health
// monitor; a nil flag reports the source as not ready.
func NewServer(port string, analyzer analysisService, sourceHealthy *atomic.Bool) (*Server, error) {
	indexTmpl, err := template.ParseFS(templateFiles, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	if sourceHealthy == nil {
		sourceHealthy = &atomic.Bool{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestID)
	e.Use(observe)

	srv := &Server{
		echo:          e,
		port:          port,
		analyzer:      analyzer,
		sourceHealthy: sourceHealthy,
		indexTemplate: indexTmpl,
		startTime:     time.Now(),
	}
	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("[WebServer] Starting server", slog.String("port", s.port))
	return s.echo.Start(fmt.Sprintf(":%s", s.port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
