package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"urls", "Check https://example.com/x and www.foo.com now", "Check and now"},
		{"markdown link keeps label", "I loved [Dune](https://dune.example/book) a lot", "I loved Dune a lot"},
		{"html tags", "<p>Great <b>book</b></p>", "Great book"},
		{"symbols", "Wow!!! #1 @author :) ***", "Wow!!! 1 author"},
		{"whitespace", "  multiple\n\nlines\tand   spaces ", "multiple lines and spaces"},
		{"kept punctuation", `It's "fine", right? Yes - sort of.`, `It's "fine", right? Yes - sort of.`},
		{"unicode letters", "Café déjà vu", "Café déjà vu"},
		{"invalid utf8", "good\xffbook", "goodbook"},
		{"spliced url", "ww#w.example.com thing", "thing"},
		{"only noise", "<br/> *** http://x.y", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Plain text.",
		"[a](b) [c](d)",
		"<a href='x'>link</a> and https://reddit.com/r/books",
		"ww<b>w.example.com</b> and ww#w.site",
		"- list item\n1. numbered\n> quote",
		"mixed nbsp em space",
		"\xff\xfe\xfd",
		"awww.great stuff www.",
		"x https://a.b/c?d=e#f y",
	}

	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input %q", in)
	}
}
