// Package tgweb implements feed.Client over Telegram's public channel
// preview pages (t.me/s/<handle>). It covers public channels without an
// authenticated session; channels that disable the web preview need an
// authenticated client wired in its place.
package tgweb

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"vacradar/internal/feed"
)

const (
	baseURL        = "https://t.me/s/"
	defaultTimeout = 20 * time.Second
	userAgent      = "vacradar/1.0"
)

type Client struct {
	http *http.Client
	base string
}

func New(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{http: client, base: baseURL}
}

func (c *Client) Close() error { return nil }

// History fetches the channel preview page and returns its messages
// newest-first, at most limit. The preview page carries roughly the 20 most
// recent posts, which is plenty for a daily harvest of announcement
// channels.
func (c *Client) History(source string, limit int) ([]feed.Message, error) {
	req, err := http.NewRequest(http.MethodGet, c.base+source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request preview page: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &feed.SlowDownError{RetryAfter: retryAfter(resp)}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &feed.SourceUnavailableError{Source: source, Reason: "channel not found"}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("preview page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse preview page: %w", err)
	}

	nodes := doc.Find(".tgme_widget_message")
	if nodes.Length() == 0 {
		// Private channel, or preview disabled: t.me redirects to the bare
		// join page which carries no message widgets.
		return nil, &feed.SourceUnavailableError{Source: source, Reason: "no public preview"}
	}

	var msgs []feed.Message
	nodes.Each(func(_ int, sel *goquery.Selection) {
		if m, ok := parseMessage(source, sel); ok {
			msgs = append(msgs, m)
		}
	})

	// The page lists oldest-first; the reader expects newest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func parseMessage(source string, sel *goquery.Selection) (feed.Message, bool) {
	post, ok := sel.Attr("data-post")
	if !ok {
		return feed.Message{}, false
	}
	_, idStr, ok := strings.Cut(post, "/")
	if !ok {
		return feed.Message{}, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return feed.Message{}, false
	}

	msg := feed.Message{Source: source, ID: id}

	if dt, ok := sel.Find(".tgme_widget_message_date time").Attr("datetime"); ok {
		if t, err := time.Parse(time.RFC3339, dt); err == nil {
			msg.Date = t
		}
	}

	text := sel.Find(".tgme_widget_message_text").First()
	if text.Length() > 0 {
		// <br> carries the line structure the extractor relies on.
		text.Find("br").Each(func(_ int, br *goquery.Selection) {
			br.ReplaceWithHtml("\n")
		})
		msg.Text = text.Text()
		text.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			if href, ok := a.Attr("href"); ok && strings.HasPrefix(href, "http") {
				msg.EntityURLs = append(msg.EntityURLs, href)
			}
		})
	}

	sel.Find("a.tgme_widget_message_inline_button").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && strings.HasPrefix(href, "http") {
			msg.ButtonURLs = append(msg.ButtonURLs, href)
		}
	})

	return msg, true
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 30 * time.Second
}
