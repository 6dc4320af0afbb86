package extract

import (
	"testing"
	"time"

	"vacradar/internal/feed"
	"vacradar/pkg/logx"
)

func TestExtract(t *testing.T) {
	t.Parallel()
	e := New(logx.Nop())

	posted := time.Date(2026, 8, 29, 18, 30, 0, 0, time.UTC)
	msg := feed.Message{
		Source: "studio",
		ID:     42,
		Date:   posted,
		Text:   "Видеоредактор\nСтудия Креатив ищет специалиста\nhttps://t.me/studio/42",
	}

	cand, ok := e.Extract(msg)
	if !ok {
		t.Fatal("Extract ok = false")
	}
	if cand.Title != "Видеоредактор" {
		t.Fatalf("Title = %q", cand.Title)
	}
	if cand.Company != "студия креатив" {
		t.Fatalf("Company = %q", cand.Company)
	}
	if cand.Link != "https://t.me/studio/42" {
		t.Fatalf("Link = %q", cand.Link)
	}
	if cand.MessageID != 42 {
		t.Fatalf("MessageID = %d", cand.MessageID)
	}
	if !cand.PostedAt.Equal(posted) {
		t.Fatalf("PostedAt = %v", cand.PostedAt)
	}
}

func TestExtractNoText(t *testing.T) {
	t.Parallel()
	e := New(logx.Nop())
	if _, ok := e.Extract(feed.Message{Source: "studio", ID: 1, Text: "   "}); ok {
		t.Fatal("Extract accepted a blank message")
	}
}

func TestExtractShortFirstLineFallsBack(t *testing.T) {
	t.Parallel()
	e := New(logx.Nop())
	cand, ok := e.Extract(feed.Message{Source: "studio", ID: 2, Text: "Топ!\nИщем монтажера в студию"})
	if !ok {
		t.Fatal("Extract ok = false")
	}
	if cand.Title != "Топ!\nИщем монтажера в студию" {
		t.Fatalf("Title = %q, want whole leading content", cand.Title)
	}
}

func TestExtractCompanyPhrasings(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "explicit label", text: "Монтажер нужен\nКомпания: Яркие Кадры\nпишите в лс", want: "яркие кадры"},
		{name: "into studio", text: "Приглашаем в студию «Белый Свет», монтаж роликов", want: "белый свет"},
		{name: "org seeks", text: "Студия Креатив ищет монтажера", want: "студия креатив"},
		{name: "required at", text: "Для продакшена Яркий Свет требуется редактор", want: "продакшена яркий свет"},
		{name: "hashtag fallback", text: "Монтажер на проект #brightmedia", want: "brightmedia"},
		{name: "too short is noise", text: "Компания: ИП\nждем откликов", want: ""},
		{name: "no company", text: "Монтажер на удаленку, пишите в лс", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractCompany(tt.text); got != tt.want {
				t.Fatalf("extractCompany(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractLinkPriority(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		msg  feed.Message
		want string
	}{
		{
			name: "button url first",
			msg: feed.Message{
				Source: "studio", ID: 5,
				Text:       "вакансия https://example.com/text",
				ButtonURLs: []string{"https://example.com/button"},
				EntityURLs: []string{"https://example.com/entity"},
			},
			want: "https://example.com/button",
		},
		{
			name: "text url next",
			msg: feed.Message{
				Source: "studio", ID: 5,
				Text:       "вакансия https://example.com/text",
				EntityURLs: []string{"https://example.com/entity"},
			},
			want: "https://example.com/text",
		},
		{
			name: "entity url next",
			msg: feed.Message{
				Source: "studio", ID: 5,
				Text:       "вакансия без ссылки",
				EntityURLs: []string{"https://example.com/entity"},
			},
			want: "https://example.com/entity",
		},
		{
			name: "deep link synthesized last",
			msg:  feed.Message{Source: "studio", ID: 5, Text: "вакансия без ссылки"},
			want: "https://t.me/studio/5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractLink(tt.msg); got != tt.want {
				t.Fatalf("extractLink = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBatchExtract(t *testing.T) {
	t.Parallel()
	e := New(logx.Nop())
	msgs := []feed.Message{
		{Source: "a", ID: 1, Text: "Сценарист для ютуб канала"},
		{Source: "a", ID: 2, Text: ""},
		{Source: "b", ID: 3, Text: "Монтажер в студию"},
	}
	got := e.BatchExtract(msgs)
	if len(got) != 2 {
		t.Fatalf("BatchExtract kept %d, want 2", len(got))
	}
	if got[0].MessageID != 1 || got[1].MessageID != 3 {
		t.Fatalf("order lost: %d, %d", got[0].MessageID, got[1].MessageID)
	}
}
