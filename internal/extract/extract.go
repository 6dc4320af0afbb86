// Package extract turns raw channel messages into candidate postings.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"vacradar/internal/feed"
	"vacradar/internal/textutil"
	"vacradar/internal/vacancy"
	"vacradar/pkg/logx"
)

// companyPatterns recognize organization names, tried in priority order.
// Each pattern captures the name in group 1.
// The capture class deliberately excludes newlines so a name never bleeds
// across lines of the post.
var companyPatterns = []*regexp.Regexp{
	// explicit "компания: X" phrasing
	regexp.MustCompile(`(?i)компания[: ]+[«"]?([\p{L}0-9 \-.]+?)[»"]?(?:\n|$|[,;!?])`),
	regexp.MustCompile(`(?i)(?:в )?(?:компанию?|студию|агентств[оау]?) [«"]?([\p{L}0-9 \-.]+?)[»"]?(?:\n|$|[,;!?])`),
	// "X ищет / приглашает / набирает" phrasing
	regexp.MustCompile(`(?i)([\p{L}0-9 \-.]+?) (?:ищет|приглашает|набирает)`),
	regexp.MustCompile(`(?i)(?:в|для) ([\p{L}0-9 \-.]+?) (?:требуется|нужен|ищем)`),
	regexp.MustCompile(`(?i)работодатель[: ]+[«"]?([\p{L}0-9 \-.]+?)[»"]?(?:\n|$|[,;!?])`),
	// hashtag fallback
	regexp.MustCompile(`#([A-Za-z0-9_]+)`),
	// quoted name opening the message
	regexp.MustCompile(`^[«"]([\p{L}0-9 \-.]+)[»"]`),
}

const (
	minTitleLen    = 5
	titleFallback  = 100
	minCompanyLen  = 4 // names of 3 chars or fewer are noise
	companyTrimSet = ".,;:!?-_ "
)

// Extractor builds candidates from messages. Source ids are resolved by the
// caller; the extractor works purely on message content.
type Extractor struct {
	log logx.Logger
}

func New(log logx.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract returns the candidate derived from msg, or false when the message
// has no text to work with.
func (e *Extractor) Extract(msg feed.Message) (vacancy.Candidate, bool) {
	if strings.TrimSpace(msg.Text) == "" {
		return vacancy.Candidate{}, false
	}

	text := textutil.Clean(msg.Text)

	title := textutil.FirstLine(text)
	if len([]rune(title)) < minTitleLen {
		// first line too short to be a heading; take the leading content
		runes := []rune(text)
		if len(runes) > titleFallback {
			title = string(runes[:titleFallback])
		} else {
			title = text
		}
	}

	return vacancy.Candidate{
		Title:     title,
		Company:   extractCompany(text),
		Link:      extractLink(msg),
		FullText:  text,
		MessageID: msg.ID,
		PostedAt:  msg.Date,
	}, true
}

// BatchExtract applies Extract to each message, preserving order. Messages
// without text contribute nothing.
func (e *Extractor) BatchExtract(msgs []feed.Message) []vacancy.Candidate {
	var out []vacancy.Candidate
	for _, msg := range msgs {
		c, ok := e.Extract(msg)
		if !ok {
			e.log.Debug("message skipped, no text",
				logx.String("source", msg.Source),
				logx.Int64("message_id", msg.ID))
			continue
		}
		out = append(out, c)
	}
	return out
}

func extractCompany(text string) string {
	lower := strings.ToLower(text)
	for _, re := range companyPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		company := strings.Trim(strings.TrimSpace(m[1]), companyTrimSet)
		if len([]rune(company)) >= minCompanyLen {
			return company
		}
	}
	return ""
}

// extractLink picks the posting link by priority: inline button URL, URL in
// the text, hyperlink entity, then a synthesized deep link back to the
// source message.
func extractLink(msg feed.Message) string {
	if len(msg.ButtonURLs) > 0 && msg.ButtonURLs[0] != "" {
		return msg.ButtonURLs[0]
	}
	if u := textutil.ExtractURL(msg.Text); u != "" {
		return u
	}
	if len(msg.EntityURLs) > 0 && msg.EntityURLs[0] != "" {
		return msg.EntityURLs[0]
	}
	if msg.Source != "" && msg.ID > 0 {
		return fmt.Sprintf("https://t.me/%s/%d", msg.Source, msg.ID)
	}
	return ""
}
