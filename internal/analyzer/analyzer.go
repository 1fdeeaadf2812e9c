package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spacesedan/bookpulse/internal/aggregate"
	"github.com/spacesedan/bookpulse/internal/models"
	"github.com/spacesedan/bookpulse/internal/monitoring"
	"github.com/spacesedan/bookpulse/internal/processing"
	"github.com/spacesedan/bookpulse/internal/quality"
	"github.com/spacesedan/bookpulse/internal/sentiment"
)

const (
	MSG_SOURCE_UNAVAILABLE  = "Reddit API initialization failed. Check credentials."
	MSG_LEXICON_UNAVAILABLE = "Sentiment lexicon initialization failed."
	MSG_NO_RESULTS          = "No relevant Reddit posts found for %q in the searched subreddits."
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Fetcher produces scored posts for a query. *processing.PostFetcher is the
// production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, query string, limit int) (models.PostCollection, error)
}

type Options struct {
	Limit            int
	QualityFilter    bool
	QualityThreshold float64
	IncludeTrend     bool
	TrendWindow      int
}

type Analyzer struct {
	fetcher Fetcher
	quality *quality.Scorer
	opts    Options
}

func New(fetcher Fetcher, opts Options) *Analyzer {
	if opts.TrendWindow < 1 {
		opts.TrendWindow = aggregate.DEFAULT_WINDOW_SIZE
	}
	return &Analyzer{
		fetcher: fetcher,
		quality: quality.NewScorer(opts.QualityThreshold),
		opts:    opts,
	}
}

// Analyze runs one query through fetch, filter and aggregation. The returned
// result is always populated enough to render, even alongside an error.
func (a *Analyzer) Analyze(ctx context.Context, query string) (result models.AnalysisResult, err error) {
	start := time.Now()
	query = strings.TrimSpace(query)
	logger := slog.With(slog.String("request_id", RequestID(ctx)), slog.String("query", query))

	result = emptyResult(query)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Analyzer] Recovered from panic",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			result = emptyResult(query)
			result.Error = fmt.Sprintf("analysis failed: %v", r)
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
		monitoring.AnalysesTotal.WithLabelValues(outcome(result, err)).Inc()
		monitoring.AnalysisDuration.Observe(time.Since(start).Seconds())
	}()

	if query == "" {
		result.Error = "Please enter a book title or author."
		return result, ErrInvalidInput
	}

	if err := sentiment.Init(); err != nil {
		logger.Error("[Analyzer] Lexicon unavailable", slog.String("error", err.Error()))
		result.Error = MSG_LEXICON_UNAVAILABLE
		return result, err
	}

	posts, fetchErr := a.fetcher.Fetch(ctx, query, a.opts.Limit)
	switch {
	case fetchErr == nil:
	case errors.Is(fetchErr, processing.ErrPartialFetch):
		logger.Warn("[Analyzer] Continuing with partial results",
			slog.Int("posts", len(posts)),
			slog.String("error", fetchErr.Error()))
		result.Partial = true
	case errors.Is(fetchErr, context.Canceled), errors.Is(fetchErr, context.DeadlineExceeded):
		logger.Info("[Analyzer] Request cancelled", slog.String("error", fetchErr.Error()))
		result.Error = "request cancelled"
		return result, fetchErr
	case errors.Is(fetchErr, processing.ErrSourceUnavailable):
		logger.Error("[Analyzer] Source unavailable", slog.String("error", fetchErr.Error()))
		result.Error = MSG_SOURCE_UNAVAILABLE
		return result, fetchErr
	default:
		logger.Error("[Analyzer] Fetch failed", slog.String("error", fetchErr.Error()))
		result.Error = fmt.Sprintf("analysis failed: %v", fetchErr)
		return result, fmt.Errorf("%w: %w", ErrInternal, fetchErr)
	}

	if a.opts.QualityFilter {
		kept := a.quality.Filter(posts)
		result.Filtered = len(posts) - len(kept)
		posts = kept
	}

	if len(posts) == 0 {
		logger.Info("[Analyzer] No posts found")
		result.Message = fmt.Sprintf(MSG_NO_RESULTS, query)
		return result, nil
	}

	summary, err := aggregate.Summarize(posts)
	if err != nil {
		logger.Error("[Analyzer] Summary failed", slog.String("error", err.Error()))
		result.Error = fmt.Sprintf("analysis failed: %v", err)
		return result, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	result.Success = true
	result.Summary = aggregate.Describe(summary.AverageSentiment)
	result.AverageSentiment = summary.AverageSentiment
	result.PostCount = summary.PostCount
	result.SentimentDistribution = summary.Distribution
	result.TopPosts = summary.TopPosts

	if a.opts.IncludeTrend {
		trend := aggregate.AnalyzeTrend(posts, a.opts.TrendWindow)
		result.Trend = &trend
	}

	logger.Info("[Analyzer] Analysis complete",
		slog.Int("posts", result.PostCount),
		slog.Int("filtered", result.Filtered),
		slog.Float64("average", result.AverageSentiment),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

func emptyResult(query string) models.AnalysisResult {
	return models.AnalysisResult{
		Query:                 query,
		SentimentDistribution: map[models.Category]int{},
		TopPosts:              []models.Post{},
	}
}

func outcome(result models.AnalysisResult, err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, processing.ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, sentiment.ErrLexiconUnavailable):
		return "lexicon_unavailable"
	case err != nil:
		return "internal_error"
	case !result.Success:
		return "no_results"
	}
	return "success"
}
