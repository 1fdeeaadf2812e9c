package aggregate

import (
	"time"

	"github.com/spacesedan/bookpulse/internal/models"
)

const (
	DEFAULT_WINDOW_SIZE = 7

	TREND_POSITIVE_THRESHOLD = 0.15
	TREND_NEGATIVE_THRESHOLD = -0.10
)

const secondsPerDay = 86400

type dayBucket struct {
	sum   float64
	count int
}

// AnalyzeTrend buckets post sentiment by UTC day and smooths it with a
// trailing moving average over windowSize days. A window needs at least
// max(1, windowSize/2) days with posts to produce a value.
func AnalyzeTrend(posts models.PostCollection, windowSize int) models.TrendResult {
	if windowSize < 1 {
		windowSize = DEFAULT_WINDOW_SIZE
	}

	insufficient := models.TrendResult{
		DailySentiment: []models.TrendPoint{},
		MovingAverage:  []models.TrendPoint{},
		Label:          models.TrendInsufficient,
	}

	buckets := make(map[int64]*dayBucket)
	var first, last int64
	seen := false
	for _, post := range posts {
		if !post.Scored || post.CreatedAt.IsZero() {
			continue
		}

		d := dayNumber(post.CreatedAt)
		b, ok := buckets[d]
		if !ok {
			b = &dayBucket{}
			buckets[d] = b
		}
		b.sum += post.Sentiment
		b.count++

		if !seen {
			first, last, seen = d, d, true
		}
		first = min(first, d)
		last = max(last, d)
	}
	if !seen {
		return insufficient
	}

	daily := dailySeries(buckets, first, last)
	moving := movingAverage(daily, windowSize, max(1, windowSize/2))

	result := models.TrendResult{
		DailySentiment: daily,
		MovingAverage:  moving,
		Label:          models.TrendInsufficient,
	}

	for i := len(moving) - 1; i >= 0; i-- {
		if v := moving[i].Value; v != nil {
			current := *v
			result.CurrentSentiment = &current
			result.Label = labelTrend(current)
			break
		}
	}

	return result
}

// dayNumber counts whole UTC days since the Unix epoch.
func dayNumber(t time.Time) int64 {
	secs := t.Unix()
	d := secs / secondsPerDay
	if secs%secondsPerDay < 0 {
		d--
	}
	return d
}

// dailySeries lays the buckets out on every calendar day from first to last,
// leaving days without posts empty.
func dailySeries(buckets map[int64]*dayBucket, first, last int64) []models.TrendPoint {
	series := make([]models.TrendPoint, 0, last-first+1)

	for d := first; d <= last; d++ {
		point := models.TrendPoint{Date: time.Unix(d*secondsPerDay, 0).UTC()}
		if b, ok := buckets[d]; ok {
			mean := b.sum / float64(b.count)
			point.Value = &mean
		}
		series = append(series, point)
	}
	return series
}

func movingAverage(daily []models.TrendPoint, window, minPeriods int) []models.TrendPoint {
	moving := make([]models.TrendPoint, len(daily))

	for i := range daily {
		moving[i].Date = daily[i].Date

		var sum float64
		var valid int
		for j := max(0, i-window+1); j <= i; j++ {
			if v := daily[j].Value; v != nil {
				sum += *v
				valid++
			}
		}
		if valid >= minPeriods {
			mean := sum / float64(valid)
			moving[i].Value = &mean
		}
	}
	return moving
}

func labelTrend(current float64) models.TrendLabel {
	if current >= TREND_POSITIVE_THRESHOLD {
		return models.TrendPositive
	} else if current <= TREND_NEGATIVE_THRESHOLD {
		return models.TrendNegative
	}
	return models.TrendNeutral
}
