// Package htmlutils provides small HTML processing helpers for search
// result snippets, which arrive with markup like <b> highlights.
package htmlutils

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags converts an HTML fragment to plain text. Entity references
// are decoded and surrounding whitespace is trimmed.
func StripTags(fragment string) string {
	if fragment == "" {
		return ""
	}

	var sb strings.Builder

	tokenizer := html.NewTokenizer(strings.NewReader(fragment))

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}

		if tt == html.TextToken {
			sb.Write(tokenizer.Text())
		}
	}

	return strings.TrimSpace(sb.String())
}
