package notify

import (
	"strings"
	"unicode/utf8"

	"vacradar/internal/storage"
	"vacradar/internal/vacancy"
)

// MessageLimit is the provider's single-message size limit.
const MessageLimit = 4096

var sectionHeaders = map[vacancy.Category]string{
	vacancy.CategoryScriptwriter: "📝 СЦЕНАРИСТЫ:",
	vacancy.CategoryEditor:       "🎬 РЕДАКТОРЫ:",
	vacancy.CategoryChiefEditor:  "👔 ШЕФ-РЕДАКТОРЫ:",
}

const nothingFoundMessage = "📭 Вакансий не найдено\n\n" +
	"За последние 24 часа не было найдено новых вакансий по вашим критериям (сценарист, редактор видео, шеф-редактор)."

// FormatRecords renders records grouped in the fixed category order: a
// section header per non-empty category, one "title — company" line per
// record, the link on its own line, blank line between records.
func FormatRecords(records []storage.Record) string {
	if len(records) == 0 {
		return nothingFoundMessage
	}

	groups := map[vacancy.Category][]storage.Record{}
	for _, rec := range records {
		cat := vacancy.Category(rec.Category)
		groups[cat] = append(groups[cat], rec)
	}

	var sb strings.Builder
	for _, cat := range vacancy.Order {
		recs := groups[cat]
		if len(recs) == 0 {
			continue
		}
		sb.WriteString(sectionHeaders[cat])
		sb.WriteString("\n\n")
		for _, rec := range recs {
			if rec.Company != "" {
				sb.WriteString(rec.Title + " — " + rec.Company + "\n")
			} else {
				sb.WriteString(rec.Title + "\n")
			}
			if rec.Link != "" {
				sb.WriteString(rec.Link + "\n")
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String())
}

// SplitMessage cuts text into parts of at most limit characters, splitting
// on the last blank-line boundary at or before the limit, with a hard cut
// when no boundary exists.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var parts []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n\n")
		if cut <= 0 {
			// hard cut, backed off to a rune boundary
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		parts = append(parts, strings.TrimSpace(text[:cut]))
		text = strings.TrimLeft(text[cut:], "\n ")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
