package processing

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/spacesedan/bookpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	readyErr   error
	candidates []models.Candidate
	failAt     int
	searchErr  error
	lastReq    models.SearchRequest
}

func (s *fakeSource) Ready(context.Context) error { return s.readyErr }

func (s *fakeSource) Search(_ context.Context, req models.SearchRequest) iter.Seq2[models.Candidate, error] {
	s.lastReq = req
	return func(yield func(models.Candidate, error) bool) {
		for i, c := range s.candidates {
			if s.searchErr != nil && i == s.failAt {
				yield(models.Candidate{}, s.searchErr)
				return
			}
			if !yield(c, nil) {
				return
			}
		}
		if s.searchErr != nil && s.failAt >= len(s.candidates) {
			yield(models.Candidate{}, s.searchErr)
		}
	}
}

func candidate(id, title, body string) models.Candidate {
	return models.Candidate{
		ID:         "t3_" + id,
		Title:      title,
		Body:       body,
		Popularity: 12,
		CreatedUTC: 1700000000.5,
		Permalink:  "/r/books/comments/" + id,
		Subreddit:  "books",
	}
}

var sampleCandidates = []models.Candidate{
	candidate("a", "Dune is a wonderful book", "I loved every page of it, truly great writing."),
	candidate("b", "Short", "tiny"),
	candidate("c", "Thoughts on Hyperion", "Terrible pacing and awful characters, I hated it."),
}

func TestFetchSourceUnavailable(t *testing.T) {
	f := NewPostFetcher(&fakeSource{readyErr: errors.New("no token")}, FetcherOptions{})

	posts, err := f.Fetch(context.Background(), "Dune", 0)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Nil(t, posts)
}

func TestFetchCancelledBeforeReady(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewPostFetcher(&fakeSource{readyErr: ctx.Err()}, FetcherOptions{})

	posts, err := f.Fetch(ctx, "Dune", 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
	assert.Nil(t, posts)
}

func TestFetchScoresAndDiscardsShortPosts(t *testing.T) {
	source := &fakeSource{candidates: sampleCandidates}
	f := NewPostFetcher(source, FetcherOptions{Communities: []string{"books"}})

	posts, err := f.Fetch(context.Background(), "Dune", 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, "Dune is a wonderful book", first.Title)
	assert.True(t, first.Scored)
	assert.Greater(t, first.Sentiment, 0.05)
	require.NotNil(t, first.SentimentAlt)
	assert.Greater(t, *first.SentimentAlt, 0.0)
	assert.Nil(t, first.Quality)
	assert.Equal(t, "https://reddit.com/r/books/comments/a", first.URL)
	assert.Equal(t, "books", first.SourceGroup)
	assert.Equal(t, time.UTC, first.CreatedAt.Location())
	assert.Equal(t, int64(1700000000), first.CreatedAt.Unix())

	assert.Less(t, posts[1].Sentiment, -0.05)

	assert.Equal(t, DEFAULT_FETCH_LIMIT, source.lastReq.Limit)
	assert.Equal(t, "relevance", source.lastReq.Sort)
	assert.Equal(t, "all", source.lastReq.TimeWindow)
	assert.Equal(t, []string{"books"}, source.lastReq.Communities)
}

func TestFetchExplicitLimit(t *testing.T) {
	source := &fakeSource{}
	f := NewPostFetcher(source, FetcherOptions{Limit: 50})

	_, err := f.Fetch(context.Background(), "Dune", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, source.lastReq.Limit)

	_, err = f.Fetch(context.Background(), "Dune", 0)
	require.NoError(t, err)
	assert.Equal(t, 50, source.lastReq.Limit)
	assert.Equal(t, PresetToCommunities[PRESET_NARROW], source.lastReq.Communities)
}

func TestFetchRelevanceGate(t *testing.T) {
	source := &fakeSource{candidates: sampleCandidates}

	gated := NewPostFetcher(source, FetcherOptions{RequireQueryMatch: true})
	posts, err := gated.Fetch(context.Background(), "dune", 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Dune is a wonderful book", posts[0].Title)

	open := NewPostFetcher(source, FetcherOptions{})
	posts, err = open.Fetch(context.Background(), "dune", 0)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestFetchSkipsDuplicates(t *testing.T) {
	dup := sampleCandidates[0]
	source := &fakeSource{candidates: []models.Candidate{sampleCandidates[0], dup, sampleCandidates[2]}}
	f := NewPostFetcher(source, FetcherOptions{})

	posts, err := f.Fetch(context.Background(), "Dune", 0)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestFetchPartial(t *testing.T) {
	cause := errors.New("status 503")
	source := &fakeSource{candidates: sampleCandidates, failAt: 2, searchErr: cause}
	f := NewPostFetcher(source, FetcherOptions{})

	posts, err := f.Fetch(context.Background(), "Dune", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialFetch)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)

	var partial *PartialFetchError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, partial.Collected)
	assert.Len(t, posts, 1)
}

func TestFetchPartialBeforeAnyPost(t *testing.T) {
	source := &fakeSource{searchErr: errors.New("timeout")}
	f := NewPostFetcher(source, FetcherOptions{})

	posts, err := f.Fetch(context.Background(), "Dune", 0)
	assert.ErrorIs(t, err, ErrPartialFetch)
	assert.Empty(t, posts)
}

func TestResolveCommunities(t *testing.T) {
	got, err := ResolveCommunities([]string{" books ", "r/fantasy", ""}, PRESET_BROAD)
	require.NoError(t, err)
	assert.Equal(t, []string{"books", "fantasy"}, got)

	got, err = ResolveCommunities(nil, "")
	require.NoError(t, err)
	assert.Equal(t, PresetToCommunities[PRESET_NARROW], got)

	got, err = ResolveCommunities(nil, "BROAD")
	require.NoError(t, err)
	assert.Contains(t, got, "printSF")

	_, err = ResolveCommunities(nil, "everything")
	assert.Error(t, err)
}
