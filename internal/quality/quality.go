package quality

import (
	"log/slog"
	"math"
	"unicode/utf8"

	"github.com/spacesedan/bookpulse/internal/models"
	"github.com/spacesedan/bookpulse/internal/sentiment"
)

const (
	DefaultThreshold = 0.3

	LONG_BODY_CHARS    = 150
	POPULARITY_MINIMUM = 5

	lengthWeight     = 0.4
	popularityWeight = 0.3
	sentimentWeight  = 0.3
)

type Scorer struct {
	Threshold float64
}

func NewScorer(threshold float64) *Scorer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Scorer{Threshold: threshold}
}

// Score rates how substantive a post is, from 0 to 1. Unscored posts get
// their sentiment computed on the fly; the post itself is not modified.
func (s *Scorer) Score(post models.Post) float64 {
	score := 0.0

	if utf8.RuneCountInString(post.Body) > LONG_BODY_CHARS {
		score += lengthWeight
	}
	if post.Popularity > POPULARITY_MINIMUM {
		score += popularityWeight
	}

	compound := post.Sentiment
	if !post.Scored {
		compound = sentiment.ScoreVader(post.FullText())
	}
	score += math.Abs(compound) * sentimentWeight

	return math.Min(score, 1.0)
}

// Filter returns copies of the posts scoring at or above the threshold, in
// their original order, each annotated with its quality score.
func (s *Scorer) Filter(posts models.PostCollection) models.PostCollection {
	kept := make(models.PostCollection, 0, len(posts))
	for _, post := range posts {
		score := s.Score(post)
		if score < s.Threshold {
			continue
		}
		if post.Quality == nil {
			post.Quality = &score
		}
		kept = append(kept, post)
	}

	slog.Info("[QualityScorer] Filtered posts",
		slog.Int("kept", len(kept)),
		slog.Int("total", len(posts)),
		slog.Float64("threshold", s.Threshold))

	return kept
}
