package notify

import (
	"strings"
	"testing"

	"vacradar/internal/storage"
)

func TestFormatRecordsGrouping(t *testing.T) {
	t.Parallel()
	records := []storage.Record{
		{Title: "Монтажер", Company: "Студия Креатив", Link: "https://t.me/a/1", Category: "редактор"},
		{Title: "Сценарист ютуб-канала", Link: "https://t.me/b/2", Category: "сценарист"},
		{Title: "Шеф-редактор", Company: "Медиа", Link: "https://t.me/c/3", Category: "шеф-редактор"},
	}

	got := FormatRecords(records)

	iScript := strings.Index(got, "📝 СЦЕНАРИСТЫ:")
	iEditor := strings.Index(got, "🎬 РЕДАКТОРЫ:")
	iChief := strings.Index(got, "👔 ШЕФ-РЕДАКТОРЫ:")
	if iScript < 0 || iEditor < 0 || iChief < 0 {
		t.Fatalf("missing section header in:\n%s", got)
	}
	if !(iScript < iEditor && iEditor < iChief) {
		t.Fatalf("sections out of order in:\n%s", got)
	}
	if !strings.Contains(got, "Монтажер — Студия Креатив\nhttps://t.me/a/1") {
		t.Fatalf("record line malformed in:\n%s", got)
	}
	// No company: no dangling separator.
	if !strings.Contains(got, "Сценарист ютуб-канала\nhttps://t.me/b/2") {
		t.Fatalf("companyless line malformed in:\n%s", got)
	}
	if strings.Contains(got, "Сценарист ютуб-канала —") {
		t.Fatalf("dangling company separator in:\n%s", got)
	}
}

func TestFormatRecordsSkipsEmptySections(t *testing.T) {
	t.Parallel()
	records := []storage.Record{
		{Title: "Монтажер", Category: "редактор"},
	}
	got := FormatRecords(records)
	if strings.Contains(got, "СЦЕНАРИСТЫ") || strings.Contains(got, "ШЕФ-РЕДАКТОРЫ") {
		t.Fatalf("empty section rendered in:\n%s", got)
	}
}

func TestFormatRecordsEmpty(t *testing.T) {
	t.Parallel()
	got := FormatRecords(nil)
	if got != nothingFoundMessage {
		t.Fatalf("FormatRecords(nil) = %q", got)
	}
	if !strings.HasPrefix(got, "📭 Вакансий не найдено\n\n") {
		t.Fatalf("notice missing header paragraph: %q", got)
	}
	if !strings.Contains(got, "сценарист, редактор видео, шеф-редактор") {
		t.Fatalf("notice missing the search criteria: %q", got)
	}
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	t.Run("under limit stays whole", func(t *testing.T) {
		got := SplitMessage("короткий текст", MessageLimit)
		if len(got) != 1 || got[0] != "короткий текст" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("splits on blank line", func(t *testing.T) {
		text := strings.Repeat("a", 30) + "\n\n" + strings.Repeat("b", 30)
		got := SplitMessage(text, 50)
		if len(got) != 2 {
			t.Fatalf("got %d parts, want 2", len(got))
		}
		if got[0] != strings.Repeat("a", 30) || got[1] != strings.Repeat("b", 30) {
			t.Fatalf("parts = %q", got)
		}
	})

	t.Run("hard cut lands on rune boundary", func(t *testing.T) {
		text := strings.Repeat("ж", 100) // 2 bytes per rune, no blank lines
		got := SplitMessage(text, 33)    // odd limit would split mid-rune
		total := 0
		for _, part := range got {
			if len(part) > 33 {
				t.Fatalf("part exceeds limit: %d bytes", len(part))
			}
			for _, r := range part {
				if r != 'ж' {
					t.Fatalf("mangled rune %q in part %q", r, part)
				}
			}
			total += len(part)
		}
		if total != len(text) {
			t.Fatalf("content lost: %d of %d bytes", total, len(text))
		}
	})
}
