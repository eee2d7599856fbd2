package fetch

import (
	"bytes"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// minBodyLength is the boilerplate/paywall floor: bodies shorter than
// this are treated as extraction failures.
const minBodyLength = 200

// ExtractedArticle is readable content pulled from one page. Candidate
// images are in encounter order and not yet filtered.
type ExtractedArticle struct {
	Title           string
	Body            string
	TopImage        string
	CandidateImages []string
}

// ExtractArticle parses htmlBytes with the readability algorithm.
// It returns ok=false when no usable title or body could be extracted
// or the body is below the content floor.
func ExtractArticle(htmlBytes []byte, rawURL string) (*ExtractedArticle, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, false
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), u)
	if err != nil {
		return nil, false
	}

	meta := extractMetaTags(htmlBytes)

	// Korean sources occasionally serve decomposed Hangul; normalize so
	// downstream matching and storage see one canonical form.
	title := norm.NFC.String(strings.TrimSpace(article.Title))
	body := norm.NFC.String(strings.TrimSpace(article.TextContent))

	if title == "" || body == "" {
		return nil, false
	}

	if len([]rune(body)) < minBodyLength {
		return nil, false
	}

	topImage := article.Image
	if topImage == "" {
		topImage = meta.OGImage
	}

	return &ExtractedArticle{
		Title:           title,
		Body:            body,
		TopImage:        resolveURL(u, topImage),
		CandidateImages: extractImageURLs(article.Content, u),
	}, true
}

type metaTags struct {
	OGImage string
}

func extractMetaTags(htmlBytes []byte) metaTags {
	var meta metaTags

	doc, err := html.Parse(bytes.NewReader(htmlBytes))
	if err != nil {
		return meta
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var property, content string

			for _, attr := range n.Attr {
				switch attr.Key {
				case "property", "name":
					property = attr.Val
				case "content":
					content = attr.Val
				}
			}

			if property == "og:image" && meta.OGImage == "" {
				meta.OGImage = content
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return meta
}

// extractImageURLs collects img src attributes from the readability
// content HTML, in encounter order, deduplicated.
func extractImageURLs(contentHTML string, base *url.URL) []string {
	doc, err := html.Parse(strings.NewReader(contentHTML))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})

	var urls []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, attr := range n.Attr {
				if attr.Key != "src" {
					continue
				}

				resolved := resolveURL(base, attr.Val)
				if resolved == "" {
					continue
				}

				if _, ok := seen[resolved]; !ok {
					seen[resolved] = struct{}{}

					urls = append(urls, resolved)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return urls
}

func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	if base != nil {
		parsed = base.ResolveReference(parsed)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}

	return parsed.String()
}
