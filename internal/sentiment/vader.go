package sentiment

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/bookpulse/internal/models"
)

// Post-level categorization thresholds. Trend labelling uses its own,
// wider thresholds in the aggregate package.
const (
	POSITIVE_THRESHOLD = 0.05
	NEGATIVE_THRESHOLD = -0.05
)

var ErrLexiconUnavailable = errors.New("sentiment lexicon unavailable")

var (
	analyzer  *govader.SentimentIntensityAnalyzer
	polarity  *polarityLexicon
	initOnce  sync.Once
	initError error
)

// Init loads both lexicons. It is safe to call from several goroutines; the
// work happens once per process and later calls return the first result.
func Init() error {
	initOnce.Do(func() {
		initError = loadLexicons()
		if initError != nil {
			slog.Error("[Sentiment] Failed to load lexicons", slog.String("error", initError.Error()))
			return
		}
		slog.Info("[Sentiment] Lexicons loaded", slog.Int("polarity_words", len(polarity.words)))
	})
	return initError
}

func loadLexicons() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrLexiconUnavailable, r)
		}
	}()

	analyzer = govader.NewSentimentIntensityAnalyzer()

	polarity, err = loadPolarityLexicon()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLexiconUnavailable, err)
	}
	return nil
}

// ScoreVader returns the VADER compound score of the cleaned text, or 0 for
// text that cleans down to nothing.
func ScoreVader(text string) float64 {
	cleaned := Clean(text)
	if cleaned == "" {
		return 0.0
	}
	if Init() != nil {
		return 0.0
	}

	return analyzer.PolarityScores(cleaned).Compound
}

// ScoreAlt returns the polarity lexicon estimate of the cleaned text. It is
// an auxiliary signal and never used for categorization.
func ScoreAlt(text string) float64 {
	cleaned := Clean(text)
	if cleaned == "" {
		return 0.0
	}
	if Init() != nil {
		return 0.0
	}

	return polarity.score(cleaned)
}

// Label maps a compound score onto a post-level category.
func Label(score float64) models.Category {
	if score >= POSITIVE_THRESHOLD {
		return models.CategoryPositive
	} else if score <= NEGATIVE_THRESHOLD {
		return models.CategoryNegative
	}
	return models.CategoryNeutral
}
