package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/bookpulse/internal/models"
	"github.com/spacesedan/bookpulse/internal/monitoring"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"
)

var (
	ErrMissingCredentials = errors.New("reddit credentials are not configured")
	ErrUnauthorized       = errors.New("reddit rejected the credentials")
)

type RedditConfig struct {
	ClientID          string
	ClientSecret      string
	UserAgent         string
	AuthURL           string
	APIURL            string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	InitialBackoff    time.Duration
}

type RedditClient struct {
	config         *clientcredentials.Config
	baseCtx        context.Context
	apiURL         string
	userAgent      string
	limiter        *rate.Limiter
	initialBackoff time.Duration

	mu          sync.Mutex
	tokenSource oauth2.TokenSource
	client      *http.Client
}

// userAgentTransport stamps every request, including the token grant, with
// the User-Agent Reddit requires.
type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

func NewRedditClient(cfg RedditConfig) *RedditClient {
	if cfg.AuthURL == "" {
		cfg.AuthURL = REDDIT_AUTH_URL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = REDDIT_API_URL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = USER_AGENT
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = INITIAL_BACKOFF
	}

	base := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{userAgent: cfg.UserAgent, base: http.DefaultTransport},
	}

	rc := &RedditClient{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.AuthURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		baseCtx:        context.WithValue(context.Background(), oauth2.HTTPClient, base),
		apiURL:         strings.TrimRight(cfg.APIURL, "/"),
		userAgent:      cfg.UserAgent,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		initialBackoff: cfg.InitialBackoff,
	}
	rc.RefreshClient()

	return rc
}

// RefreshClient drops the cached token and builds a fresh authorized client.
func (rc *RedditClient) RefreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.tokenSource = rc.config.TokenSource(rc.baseCtx)
	rc.client = oauth2.NewClient(rc.baseCtx, rc.tokenSource)
}

func (rc *RedditClient) current() (*http.Client, oauth2.TokenSource) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.client, rc.tokenSource
}

// Ready reports whether an access token can be obtained. The token is cached
// until it expires, so this is cheap to call per query.
func (rc *RedditClient) Ready(ctx context.Context) error {
	if rc.config.ClientID == "" || rc.config.ClientSecret == "" {
		return ErrMissingCredentials
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	_, ts := rc.current()
	if _, err := ts.Token(); err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return fmt.Errorf("[RedditClient] token grant failed: %w", err)
	}
	return nil
}

// Search walks the listing pages lazily. It stops after req.Limit candidates,
// when Reddit reports no further page, or at the first error, which is
// yielded as the final element.
func (rc *RedditClient) Search(ctx context.Context, req models.SearchRequest) iter.Seq2[models.Candidate, error] {
	return func(yield func(models.Candidate, error) bool) {
		remaining := req.Limit
		after := ""

		for remaining > 0 {
			page, err := rc.FetchSearchPage(ctx, req, after, min(remaining, MAX_PAGE_SIZE))
			if err != nil {
				yield(models.Candidate{}, err)
				return
			}

			for _, child := range page.Data.Children {
				if !yield(child.Data.ToCandidate(), nil) {
					return
				}
				remaining--
				if remaining == 0 {
					return
				}
			}

			if page.Data.After == "" || len(page.Data.Children) == 0 {
				return
			}
			after = page.Data.After
		}
	}
}

func (rc *RedditClient) searchURL(req models.SearchRequest, after string, limit int) (string, error) {
	parsedUrl, err := url.Parse(fmt.Sprintf("%s/r/%s/search", rc.apiURL, strings.Join(req.Communities, "+")))
	if err != nil {
		return "", fmt.Errorf("[RedditClient] Failed to parse URL: %w", err)
	}

	queryParams := parsedUrl.Query()
	queryParams.Add("q", req.Query)
	queryParams.Add("sort", req.Sort)
	queryParams.Add("t", req.TimeWindow)
	queryParams.Add("restrict_sr", "on")
	queryParams.Add("type", "link")
	queryParams.Add("raw_json", "1")
	queryParams.Add("limit", strconv.Itoa(limit))
	if after != "" {
		queryParams.Add("after", after)
	}
	parsedUrl.RawQuery = queryParams.Encode()

	return parsedUrl.String(), nil
}

// FetchSearchPage requests a single listing page. A 401 refreshes the token
// once; 429 and 5xx responses are retried with doubling backoff.
func (rc *RedditClient) FetchSearchPage(ctx context.Context, req models.SearchRequest, after string, limit int) (*models.RedditAPIResponse, error) {
	endpoint, err := rc.searchURL(req, after, limit)
	if err != nil {
		return nil, err
	}

	backoff := rc.initialBackoff
	refreshed := false
	var lastErr error

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		if err := rc.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("[RedditClient] rate limiter: %w", err)
		}

		status, body, err := rc.get(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) {
				return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
			}
			lastErr = err
		} else {
			switch {
			case status == http.StatusOK:
				var page models.RedditAPIResponse
				if err := json.Unmarshal(body, &page); err != nil {
					return nil, fmt.Errorf("[RedditClient] Failed to parse listing: %w", err)
				}
				return &page, nil
			case status == http.StatusUnauthorized || status == http.StatusForbidden:
				if refreshed {
					return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, status)
				}
				slog.Warn("[RedditClient] Token rejected - Refreshing and Retrying...")
				rc.RefreshClient()
				refreshed = true
				continue
			case status == http.StatusTooManyRequests || status >= 500:
				lastErr = fmt.Errorf("[RedditClient] status %d", status)
			default:
				return nil, fmt.Errorf("[RedditClient] Unexpected status code %d", status)
			}
		}

		if attempt == MAX_RETRIES {
			break
		}

		slog.Warn("[RedditClient] Retrying request",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.String("error", lastErr.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}

	return nil, fmt.Errorf("[RedditClient] Max retries reached request failed: %w", lastErr)
}

func (rc *RedditClient) get(ctx context.Context, endpoint string) (int, []byte, error) {
	client, _ := rc.current()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		monitoring.RedditRequests.WithLabelValues("error").Inc()
		return 0, nil, err
	}
	defer resp.Body.Close()

	monitoring.RedditRequests.WithLabelValues(fmt.Sprintf("%dxx", resp.StatusCode/100)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
