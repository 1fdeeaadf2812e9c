package aggregate

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/spacesedan/bookpulse/internal/models"
	"github.com/spacesedan/bookpulse/internal/sentiment"
)

const TOP_POSTS = 5

// Overall labels for a mean sentiment. These use the same bounds as trend
// labelling, not the post-level category thresholds.
const (
	SummaryPositive = "Generally Positive Sentiment"
	SummaryNegative = "Generally Negative Sentiment"
	SummaryMixed    = "Mixed or Neutral Sentiment"
)

var ErrUnscoredPost = errors.New("post has no sentiment score")

// Summarize reduces a collection to its mean sentiment, category counts and
// most popular posts. An empty collection gives the zero summary.
func Summarize(posts models.PostCollection) (models.SentimentSummary, error) {
	summary := models.SentimentSummary{
		Distribution: make(map[models.Category]int),
		TopPosts:     []models.Post{},
	}
	if len(posts) == 0 {
		return summary, nil
	}

	var total float64
	for i, post := range posts {
		if !post.Scored {
			return models.SentimentSummary{}, fmt.Errorf("post %d (%q): %w", i, post.URL, ErrUnscoredPost)
		}
		total += post.Sentiment
		summary.Distribution[sentiment.Label(post.Sentiment)]++
	}

	summary.PostCount = len(posts)
	summary.AverageSentiment = total / float64(len(posts))
	summary.TopPosts = topByPopularity(posts, TOP_POSTS)

	return summary, nil
}

func topByPopularity(posts models.PostCollection, n int) []models.Post {
	ranked := slices.Clone(posts)
	slices.SortStableFunc(ranked, func(a, b models.Post) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Describe labels a mean sentiment the way the overview line reads.
func Describe(average float64) string {
	if average > TREND_POSITIVE_THRESHOLD {
		return SummaryPositive
	} else if average < TREND_NEGATIVE_THRESHOLD {
		return SummaryNegative
	}
	return SummaryMixed
}
