package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spacesedan/bookpulse/internal/analyzer"
	"github.com/spacesedan/bookpulse/internal/models"
	"github.com/spacesedan/bookpulse/internal/processing"
	"github.com/spacesedan/bookpulse/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAnalyzer struct {
	result    models.AnalysisResult
	err       error
	calls     int
	requestID string
}

func (m *mockAnalyzer) Analyze(ctx context.Context, query string) (models.AnalysisResult, error) {
	m.calls++
	m.requestID = analyzer.RequestID(ctx)
	result := m.result
	result.Query = query
	return result, m.err
}

func newTestServer(t *testing.T, a analysisService, healthy *atomic.Bool) *Server {
	t.Helper()
	srv, err := NewServer("0", a, healthy)
	require.NoError(t, err)
	return srv
}

func postAnalyze(srv *Server, query string) *httptest.ResponseRecorder {
	form := url.Values{"search_query": {query}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleAnalyze_EmptyQuery(t *testing.T) {
	mock := &mockAnalyzer{}
	srv := newTestServer(t, mock, nil)

	rec := postAnalyze(srv, "   ")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Please enter a book title or author."}`, rec.Body.String())
	assert.Zero(t, mock.calls)
}

func TestHandleAnalyze_SourceUnavailable(t *testing.T) {
	mock := &mockAnalyzer{
		result: models.AnalysisResult{Error: analyzer.MSG_SOURCE_UNAVAILABLE},
		err:    fmt.Errorf("%w: missing credentials", processing.ErrSourceUnavailable),
	}
	srv := newTestServer(t, mock, nil)

	rec := postAnalyze(srv, "Dune")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Reddit API initialization failed. Check credentials."}`, rec.Body.String())
}

func TestHandleAnalyze_LexiconUnavailable(t *testing.T) {
	mock := &mockAnalyzer{
		result: models.AnalysisResult{Error: analyzer.MSG_LEXICON_UNAVAILABLE},
		err:    sentiment.ErrLexiconUnavailable,
	}
	srv := newTestServer(t, mock, nil)

	rec := postAnalyze(srv, "Dune")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Sentiment lexicon initialization failed."}`, rec.Body.String())
}

func TestHandleAnalyze_InternalError(t *testing.T) {
	mock := &mockAnalyzer{
		result: models.AnalysisResult{Error: "analysis failed: boom"},
		err:    fmt.Errorf("%w: boom", analyzer.ErrInternal),
	}
	srv := newTestServer(t, mock, nil)

	rec := postAnalyze(srv, "Dune")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"An internal server error occurred: analysis failed: boom"}`, rec.Body.String())
}

func TestHandleAnalyze_UnclassifiedError(t *testing.T) {
	mock := &mockAnalyzer{err: errors.New("socket closed")}
	srv := newTestServer(t, mock, nil)

	rec := postAnalyze(srv, "Dune")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "An internal server error occurred: socket closed")
}

func TestHandleAnalyze_NoResults(t *testing.T) {
	mock := &mockAnalyzer{result: models.AnalysisResult{
		Message:               `No relevant Reddit posts found for "Dune" in the searched subreddits.`,
		SentimentDistribution: map[models.Category]int{},
		TopPosts:              []models.Post{},
	}}
	srv := newTestServer(t, mock, nil)

	rec := postAnalyze(srv, "Dune")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		SearchQuery string         `json:"search_query"`
		Sentiment   map[string]any `json:"sentiment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Dune", body.SearchQuery)
	assert.Equal(t, false, body.Sentiment["success"])
	assert.Equal(t, float64(0), body.Sentiment["post_count"])
	assert.Contains(t, body.Sentiment["message"], "No relevant Reddit posts found")
}

func TestHandleAnalyze_Success(t *testing.T) {
	mock := &mockAnalyzer{result: models.AnalysisResult{
		Success:          true,
		Summary:          "Generally Positive Sentiment",
		AverageSentiment: 0.6,
		PostCount:        1,
		SentimentDistribution: map[models.Category]int{
			models.CategoryPositive: 1,
		},
		TopPosts: []models.Post{{
			Title:      "Loved Dune",
			Body:       "Read it **twice** <script>alert(1)</script>",
			Popularity: 42,
			URL:        "https://reddit.com/r/books/comments/a",
			Sentiment:  0.6,
			Scored:     true,
		}},
	}}
	srv := newTestServer(t, mock, nil)

	rec := postAnalyze(srv, "Dune")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HEADER_REQUEST_ID))
	assert.Equal(t, rec.Header().Get(HEADER_REQUEST_ID), mock.requestID)

	var body analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Dune", body.SearchQuery)
	assert.True(t, body.Sentiment.Success)
	assert.Equal(t, 1, body.Sentiment.SentimentDistribution[models.CategoryPositive])
	require.Len(t, body.Sentiment.TopPosts, 1)
	assert.Equal(t, 42, body.Sentiment.TopPosts[0].Popularity)

	require.Len(t, body.Excerpts, 1)
	assert.Contains(t, string(body.Excerpts[0].HTML), "<strong>twice</strong>")
	assert.NotContains(t, string(body.Excerpts[0].HTML), "<script>")
}

func TestRequestIDPassthrough(t *testing.T) {
	mock := &mockAnalyzer{result: models.AnalysisResult{Success: true}}
	srv := newTestServer(t, mock, nil)

	form := url.Values{"search_query": {"Dune"}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(HEADER_REQUEST_ID, "req-123")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(HEADER_REQUEST_ID))
	assert.Equal(t, "req-123", mock.requestID)
}

func TestHandleIndex(t *testing.T) {
	srv := newTestServer(t, &mockAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `name="search_query"`)
}

func TestHandleHealth(t *testing.T) {
	healthy := &atomic.Bool{}
	srv := newTestServer(t, &mockAnalyzer{}, healthy)

	check := func() map[string]any {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	assert.Equal(t, false, check()["source_ready"])
	healthy.Store(true)
	body := check()
	assert.Equal(t, true, body["source_ready"])
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bookpulse_")
}

func TestRenderExcerpts(t *testing.T) {
	long := strings.Repeat("word ", 100)
	excerpts := renderExcerpts([]models.Post{
		{Title: "empty", Body: "  "},
		{Title: "link", Body: "[site](javascript:void) and [ok](https://example.com)"},
		{Title: "long", Body: long},
	})

	require.Len(t, excerpts, 2)
	assert.NotContains(t, string(excerpts[0].HTML), `href="javascript`)
	assert.Contains(t, string(excerpts[0].HTML), `href="https://example.com"`)
	assert.Contains(t, string(excerpts[1].HTML), "…")
}

func TestRenderExcerptsConcurrent(t *testing.T) {
	posts := []models.Post{{
		Title: "Dune",
		Body:  "# Thoughts\n\nRead it **twice**, see [the wiki](https://example.com).",
	}}
	want := renderExcerpts(posts)
	require.Len(t, want, 1)

	var wg sync.WaitGroup
	results := make(chan string, 16*50)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				results <- string(renderExcerpts(posts)[0].HTML)
			}
		}()
	}
	wg.Wait()
	close(results)

	for got := range results {
		assert.Equal(t, string(want[0].HTML), got)
	}
}
