// Package extract pulls candidate image URLs out of a search results page.
package extract

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// Extractor turns a results page into an ordered list of image URLs
type Extractor interface {
	Extract(page []byte) ([]string, error)
}

// imageURLPattern matches a quoted absolute http(s) URL ending in a known
// image extension. The extension match is case-sensitive.
var imageURLPattern = regexp.MustCompile(`"(https?://[^"]+\.(?:jpg|jpeg|png|gif|bmp|webp))"`)

// ScriptExtractor scans the text of every <script> element
type ScriptExtractor struct {
	pattern *regexp.Regexp
}

// NewScriptExtractor creates an extractor using the default image URL pattern
func NewScriptExtractor() *ScriptExtractor {
	return &ScriptExtractor{pattern: imageURLPattern}
}

// Extract returns the unique URLs found in script text, in document order
func (e *ScriptExtractor) Extract(page []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var found []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		found = append(found, FindURLs(e.pattern, s.Text())...)
	})

	return Dedupe(found), nil
}

// FindURLs returns the first capture group of every match of pattern in text
func FindURLs(pattern *regexp.Regexp, text string) []string {
	if text == "" {
		return nil
	}
	matches := pattern.FindAllStringSubmatch(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, m[1])
	}
	return urls
}

// Dedupe drops repeated strings, keeping the first occurrence of each
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
