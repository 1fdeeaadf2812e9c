package clients

import "time"

const (
	MAX_RETRIES     = 5
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 32 * time.Second
	USER_AGENT      = "bookpulse/0.1 (+https://github.com/spacesedan/bookpulse)"

	// Reddit never returns more than this per listing page.
	MAX_PAGE_SIZE = 100
)
