package models

// Candidate is one search hit as returned by the external source, before any
// cleaning or scoring has happened.
type Candidate struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	Popularity int     `json:"popularity"`
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink"`
	URL        string  `json:"url"`
	Subreddit  string  `json:"subreddit"`
}

type RedditAPIResponse struct {
	Data RedditAPIData `json:"data"`
}

type RedditAPIData struct {
	After    string           `json:"after"`
	Children []RedditAPIChild `json:"children"`
}

type RedditAPIChild struct {
	Kind string             `json:"kind"`
	Data RedditAPIChildData `json:"data"`
}

type RedditAPIChildData struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Score      int     `json:"score"`
	Ups        int     `json:"ups"`
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink"`
	URL        string  `json:"url"`
}

// ToCandidate maps the raw listing entry onto the source-neutral candidate.
func (d RedditAPIChildData) ToCandidate() Candidate {
	return Candidate{
		ID:         d.Name,
		Title:      d.Title,
		Body:       d.Selftext,
		Popularity: d.Score,
		CreatedUTC: d.CreatedUTC,
		Permalink:  d.Permalink,
		URL:        d.URL,
		Subreddit:  d.Subreddit,
	}
}

// SearchRequest describes one query against the external source.
type SearchRequest struct {
	Communities []string
	Query       string
	Limit       int
	Sort        string
	TimeWindow  string
}
