package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spacesedan/bookpulse/internal/analyzer"
	"github.com/spacesedan/bookpulse/internal/models"
	"github.com/spacesedan/bookpulse/internal/processing"
	"github.com/spacesedan/bookpulse/internal/sentiment"
)

const (
	MSG_EMPTY_QUERY    = "Please enter a book title or author."
	MSG_INTERNAL_ERROR = "An internal server error occurred: "
)

type analyzeResponse struct {
	SearchQuery string                `json:"search_query"`
	Sentiment   models.AnalysisResult `json:"sentiment"`
	Excerpts    []postExcerpt         `json:"top_post_excerpts,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(c echo.Context) error {
	var buf bytes.Buffer
	if err := s.indexTemplate.Execute(&buf, nil); err != nil {
		slog.Error("[WebServer] Failed to render index", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render page")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *Server) handleAnalyze(c echo.Context) error {
	query := strings.TrimSpace(c.FormValue("search_query"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: MSG_EMPTY_QUERY})
	}

	result, err := s.analyzer.Analyze(c.Request().Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, analyzer.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: MSG_EMPTY_QUERY})
		case errors.Is(err, processing.ErrSourceUnavailable), errors.Is(err, sentiment.ErrLexiconUnavailable):
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: result.Error})
		default:
			summary := result.Error
			if summary == "" {
				summary = err.Error()
			}
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: MSG_INTERNAL_ERROR + summary})
		}
	}

	return c.JSON(http.StatusOK, analyzeResponse{
		SearchQuery: query,
		Sentiment:   result,
		Excerpts:    renderExcerpts(result.TopPosts),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":       "ok",
		"source_ready": s.sourceHealthy.Load(),
		"uptime":       time.Since(s.startTime).Seconds(),
	})
}
