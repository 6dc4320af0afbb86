package semantic

import (
	"testing"

	"vacradar/internal/vacancy"
	"vacradar/pkg/logx"
)

func TestApplyVerdicts(t *testing.T) {
	t.Parallel()
	batch := []vacancy.Candidate{
		{Title: "сырой заголовок", Company: "сырая компания", Category: vacancy.CategoryEditor},
		{Title: "спам про курсы"},
		{Title: "третий пост"},
	}
	raw := `{
		"vacancies": [
			{"index": 0, "is_relevant": true, "position_type": "редактор", "title": "Видеоредактор", "company": "Студия Креатив"},
			{"index": 1, "is_relevant": false, "position_type": null, "title": "реклама курсов", "company": null},
			{"index": 2, "is_relevant": true, "position_type": "сценарист", "title": "", "company": null}
		]
	}`

	kept, err := applyVerdicts(batch, raw)
	if err != nil {
		t.Fatalf("applyVerdicts: %v", err)
	}
	if len(kept) != 2 {
		t.Fatalf("kept %d, want 2", len(kept))
	}

	if kept[0].Title != "Видеоредактор" {
		t.Fatalf("Title = %q", kept[0].Title)
	}
	if kept[0].Company != "Студия Креатив" {
		t.Fatalf("Company = %q", kept[0].Company)
	}
	if kept[0].Category != vacancy.CategoryEditor {
		t.Fatalf("Category = %q", kept[0].Category)
	}

	// Empty normalized title keeps the original; null company is untouched.
	if kept[1].Title != "третий пост" {
		t.Fatalf("fallback Title = %q", kept[1].Title)
	}
	if kept[1].Category != vacancy.CategoryScriptwriter {
		t.Fatalf("Category = %q", kept[1].Category)
	}
}

// The model sometimes invents labels; those must not displace the
// keyword-assigned category, or the record would render in no section.
func TestApplyVerdictsUnknownCategoryKept(t *testing.T) {
	t.Parallel()
	batch := []vacancy.Candidate{
		{Title: "Монтажер", Category: vacancy.CategoryEditor},
	}
	raw := `{"vacancies": [
		{"index": 0, "is_relevant": true, "position_type": "video editor", "title": "Монтажер", "company": null}
	]}`
	kept, err := applyVerdicts(batch, raw)
	if err != nil {
		t.Fatalf("applyVerdicts: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("kept %d, want 1", len(kept))
	}
	if kept[0].Category != vacancy.CategoryEditor {
		t.Fatalf("Category = %q, want the keyword-assigned one", kept[0].Category)
	}
}

func TestApplyVerdictsBadIndex(t *testing.T) {
	t.Parallel()
	batch := []vacancy.Candidate{{Title: "один"}}
	raw := `{"vacancies": [
		{"index": 5, "is_relevant": true, "title": "вне диапазона"},
		{"index": -1, "is_relevant": true, "title": "отрицательный"}
	]}`
	kept, err := applyVerdicts(batch, raw)
	if err != nil {
		t.Fatalf("applyVerdicts: %v", err)
	}
	if len(kept) != 0 {
		t.Fatalf("kept %d, want 0", len(kept))
	}
}

func TestApplyVerdictsMalformed(t *testing.T) {
	t.Parallel()
	if _, err := applyVerdicts([]vacancy.Candidate{{}}, "не json"); err == nil {
		t.Fatal("malformed response accepted")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{APIKey: "  "}, logx.Nop()); err == nil {
		t.Fatal("empty api key accepted")
	}
}
