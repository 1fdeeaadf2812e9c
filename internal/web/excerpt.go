package web

import (
	"html/template"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/bookpulse/internal/models"
)

const EXCERPT_MAX_RUNES = 280

type postExcerpt struct {
	Title string        `json:"title"`
	URL   string        `json:"url"`
	HTML  template.HTML `json:"html"`
}

// The HTML renderer keeps state while it runs, so each call builds its own.
var excerptRendererParams = blackfriday.HTMLRendererParameters{
	Flags: blackfriday.SkipHTML | blackfriday.SkipImages | blackfriday.Safelink |
		blackfriday.NofollowLinks | blackfriday.NoreferrerLinks | blackfriday.HrefTargetBlank,
}

// renderExcerpts turns the markdown bodies of the top posts into short HTML
// previews. Raw HTML and images in the post are dropped.
func renderExcerpts(posts []models.Post) []postExcerpt {
	renderer := blackfriday.NewHTMLRenderer(excerptRendererParams)
	excerpts := make([]postExcerpt, 0, len(posts))
	for _, post := range posts {
		body := strings.TrimSpace(post.Body)
		if body == "" {
			continue
		}
		out := blackfriday.Run([]byte(truncate(body, EXCERPT_MAX_RUNES)),
			blackfriday.WithRenderer(renderer),
			blackfriday.WithExtensions(blackfriday.CommonExtensions))
		excerpts = append(excerpts, postExcerpt{
			Title: post.Title,
			URL:   post.URL,
			HTML:  template.HTML(out),
		})
	}
	return excerpts
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
