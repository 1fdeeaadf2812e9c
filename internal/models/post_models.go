package models

import "time"

// Post is a scored social-media post. Sentiment is assigned exactly once by
// the fetcher; Scored reports whether that has happened.
type Post struct {
	Title        string    `json:"title"`
	Body         string    `json:"text"`
	Popularity   int       `json:"score"`
	CreatedAt    time.Time `json:"created_utc"`
	URL          string    `json:"url"`
	SourceGroup  string    `json:"subreddit"`
	Sentiment    float64   `json:"sentiment"`
	Scored       bool      `json:"-"`
	SentimentAlt *float64  `json:"sentiment_alt,omitempty"`
	Quality      *float64  `json:"quality_score,omitempty"`
}

// FullText is the title and body joined the way they are scored.
func (p Post) FullText() string {
	return p.Title + " " + p.Body
}

// PostCollection keeps posts in fetch order, which is not necessarily
// chronological.
type PostCollection []Post
