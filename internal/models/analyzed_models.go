package models

import "time"

type Category string

const (
	CategoryPositive Category = "positive"
	CategoryNegative Category = "negative"
	CategoryNeutral  Category = "neutral"
)

type SentimentSummary struct {
	AverageSentiment float64          `json:"average_sentiment"`
	PostCount        int              `json:"post_count"`
	Distribution     map[Category]int `json:"sentiment_distribution"`
	TopPosts         []Post           `json:"top_posts"`
}

type TrendLabel string

const (
	TrendPositive     TrendLabel = "Trending Positive"
	TrendNegative     TrendLabel = "Trending Negative"
	TrendNeutral      TrendLabel = "Neutral / Fluctuating"
	TrendInsufficient TrendLabel = "Insufficient Data"
)

// TrendPoint is one calendar day of a series. A nil Value means the day has
// no usable observation.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

type TrendResult struct {
	DailySentiment   []TrendPoint `json:"daily_sentiment"`
	MovingAverage    []TrendPoint `json:"moving_average"`
	Label            TrendLabel   `json:"trend_description"`
	CurrentSentiment *float64     `json:"current_sentiment"`
}

// AnalysisResult is what the boundary hands to the web layer for a single
// query.
type AnalysisResult struct {
	Success               bool             `json:"success"`
	Error                 string           `json:"error,omitempty"`
	Message               string           `json:"message,omitempty"`
	Query                 string           `json:"query"`
	Summary               string           `json:"summary,omitempty"`
	AverageSentiment      float64          `json:"average_sentiment"`
	PostCount             int              `json:"post_count"`
	SentimentDistribution map[Category]int `json:"sentiment_distribution"`
	TopPosts              []Post           `json:"top_posts"`
	Filtered              int              `json:"filtered,omitempty"`
	Partial               bool             `json:"partial,omitempty"`
	Trend                 *TrendResult     `json:"trend,omitempty"`
}
