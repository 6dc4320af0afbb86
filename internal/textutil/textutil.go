// Package textutil provides the text cleaning and normalization helpers
// shared by extraction and deduplication.
package textutil

import (
	"regexp"
	"strings"
)

var (
	reNonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s+\-/#@]`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reBlankRuns  = regexp.MustCompile(`\n{3,}`)
	reSpaceRuns  = regexp.MustCompile(` {2,}`)
	reHTTPURL    = regexp.MustCompile(`https?://[\w$\-_.+!*'(),%&=/?#@~:;]+`)
	reBareTMeURL = regexp.MustCompile(`t\.me/[A-Za-z0-9_/]+`)
)

// Normalize prepares text for fingerprinting and comparison: lowercase,
// strip punctuation outside the small whitelist (+ - / # @, significant in
// titles like "C++" or "SMM/контент"), collapse whitespace.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(strings.TrimSpace(text))
	text = reNonWord.ReplaceAllString(text, "")
	text = reSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Clean strips noisy formatting from a raw message: runs of 3+ newlines
// collapse to a blank line, repeated spaces collapse, every line is trimmed.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = reBlankRuns.ReplaceAllString(text, "\n\n")
	text = reSpaceRuns.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// FirstLine returns the first line of text, trimmed.
func FirstLine(text string) string {
	if text == "" {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(line)
}

// ExtractURL returns the first URL found in text: an explicit http(s) URL,
// or a bare t.me link upgraded to https. Empty string when none found.
func ExtractURL(text string) string {
	if text == "" {
		return ""
	}
	if u := reHTTPURL.FindString(text); u != "" {
		return u
	}
	if u := reBareTMeURL.FindString(text); u != "" {
		return "https://" + u
	}
	return ""
}

// Truncate cuts text to at most max runes, appending an ellipsis when cut.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
