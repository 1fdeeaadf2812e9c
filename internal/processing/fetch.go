package processing

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/bookpulse/internal/models"
	"github.com/spacesedan/bookpulse/internal/monitoring"
	"github.com/spacesedan/bookpulse/internal/sentiment"
)

const (
	DEFAULT_FETCH_LIMIT = 100
	MIN_CLEANED_LENGTH  = 30
	REDDIT_BASE_URL     = "https://reddit.com"
)

var (
	ErrSourceUnavailable = errors.New("post source unavailable")
	ErrPartialFetch      = errors.New("fetch aborted before completion")
)

// PartialFetchError reports a source failure after some posts were already
// collected. It matches ErrPartialFetch.
type PartialFetchError struct {
	Collected int
	Err       error
}

func (e *PartialFetchError) Error() string {
	return fmt.Sprintf("fetch aborted after %d posts: %v", e.Collected, e.Err)
}

func (e *PartialFetchError) Unwrap() []error {
	return []error{ErrPartialFetch, e.Err}
}

// Source is where candidate posts come from.
type Source interface {
	Ready(ctx context.Context) error
	Search(ctx context.Context, req models.SearchRequest) iter.Seq2[models.Candidate, error]
}

type FetcherOptions struct {
	Communities       []string
	Limit             int
	RequireQueryMatch bool
}

type PostFetcher struct {
	source Source
	opts   FetcherOptions
}

func NewPostFetcher(source Source, opts FetcherOptions) *PostFetcher {
	if opts.Limit <= 0 {
		opts.Limit = DEFAULT_FETCH_LIMIT
	}
	if len(opts.Communities) == 0 {
		opts.Communities = PresetToCommunities[PRESET_NARROW]
	}
	return &PostFetcher{source: source, opts: opts}
}

// Fetch searches the configured communities for query and returns the scored
// posts in encounter order. A limit of zero or less uses the configured one.
//
// When the source fails mid-iteration the posts collected so far are returned
// together with a *PartialFetchError.
func (f *PostFetcher) Fetch(ctx context.Context, query string, limit int) (models.PostCollection, error) {
	if err := f.source.Ready(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	if limit <= 0 {
		limit = f.opts.Limit
	}

	req := models.SearchRequest{
		Communities: f.opts.Communities,
		Query:       query,
		Limit:       limit,
		Sort:        "relevance",
		TimeWindow:  "all",
	}

	slog.Info("[PostFetcher] Searching",
		slog.String("query", query),
		slog.String("communities", strings.Join(req.Communities, "+")),
		slog.Int("limit", limit))

	posts := models.PostCollection{}
	seen := make(map[string]struct{})
	needle := strings.ToLower(query)

	for candidate, err := range f.source.Search(ctx, req) {
		if err != nil {
			monitoring.PartialFetches.Inc()
			slog.Warn("[PostFetcher] Search aborted, keeping collected posts",
				slog.Int("collected", len(posts)),
				slog.String("error", err.Error()))
			return posts, &PartialFetchError{Collected: len(posts), Err: err}
		}

		dedupeKey := candidate.Permalink
		if dedupeKey == "" {
			dedupeKey = candidate.ID
		}
		if dedupeKey != "" {
			if _, dup := seen[dedupeKey]; dup {
				monitoring.PostsDiscarded.WithLabelValues("duplicate").Inc()
				continue
			}
			seen[dedupeKey] = struct{}{}
		}

		post, ok := f.scoreCandidate(candidate, needle)
		if !ok {
			continue
		}
		posts = append(posts, post)
	}

	monitoring.PostsFetched.Add(float64(len(posts)))
	slog.Info("[PostFetcher] Fetch complete", slog.String("query", query), slog.Int("posts", len(posts)))

	return posts, nil
}

func (f *PostFetcher) scoreCandidate(c models.Candidate, needle string) (models.Post, bool) {
	cleaned := sentiment.Clean(c.Title + " " + c.Body)
	if len([]rune(cleaned)) < MIN_CLEANED_LENGTH {
		monitoring.PostsDiscarded.WithLabelValues("too_short").Inc()
		return models.Post{}, false
	}

	if f.opts.RequireQueryMatch && needle != "" &&
		!strings.Contains(strings.ToLower(c.Title), needle) &&
		!strings.Contains(strings.ToLower(c.Body), needle) {
		monitoring.PostsDiscarded.WithLabelValues("irrelevant").Inc()
		return models.Post{}, false
	}

	alt := sentiment.ScoreAlt(cleaned)
	post := models.Post{
		Title:        c.Title,
		Body:         c.Body,
		Popularity:   c.Popularity,
		URL:          postURL(c),
		SourceGroup:  c.Subreddit,
		Sentiment:    sentiment.ScoreVader(cleaned),
		Scored:       true,
		SentimentAlt: &alt,
	}
	if c.CreatedUTC > 0 {
		sec := int64(c.CreatedUTC)
		nsec := int64((c.CreatedUTC - float64(sec)) * float64(time.Second))
		post.CreatedAt = time.Unix(sec, nsec).UTC()
	}
	return post, true
}

func postURL(c models.Candidate) string {
	if c.Permalink != "" {
		return REDDIT_BASE_URL + c.Permalink
	}
	return c.URL
}
