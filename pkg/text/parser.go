// Package text pulls links out of free-form text such as pasted chat logs or notes.
package text

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	urlRegex        = regexp.MustCompile(`https?://\S+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)

	// trackingParams are query parameters that identify the share, not the video.
	trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "si", "feature"}
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ExtractLinks returns the distinct links found in text, in order of appearance, with
// trailing punctuation and tracking parameters removed.
func (p *Parser) ExtractLinks(text string) []string {
	text = p.normalizeText(text)

	matches := urlRegex.FindAllString(text, -1)
	links := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))

	for _, match := range matches {
		link := p.cleanURL(match)
		if link == "" {
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	return links
}

func (p *Parser) normalizeText(text string) string {
	text = norm.NFKC.String(text)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

func (p *Parser) cleanURL(rawURL string) string {
	rawURL = strings.TrimRight(rawURL, ".,!?;:)]>\"'")

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	q := u.Query()
	for _, param := range trackingParams {
		q.Del(param)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
