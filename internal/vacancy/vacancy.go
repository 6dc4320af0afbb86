// Package vacancy holds the in-flight domain types shared by the
// pipeline stages.
package vacancy

import "time"

// Category is one of the fixed target positions.
//
// Values are the canonical Russian labels the upstream channels use;
// they double as storage values and section keys in delivery messages.
type Category string

const (
	CategoryScriptwriter Category = "сценарист"
	CategoryEditor       Category = "редактор"
	CategoryChiefEditor  Category = "шеф-редактор"
)

// Order is the fixed category order used for grouping in delivery
// messages. Classification precedence is the rule-table order in
// internal/classify, which is deliberately different (the narrow
// "шеф-редактор" rule must run before the broad "редактор" one).
var Order = []Category{CategoryScriptwriter, CategoryEditor, CategoryChiefEditor}

// ParseCategory maps a raw label to a known Category. Labels outside the
// fixed set are rejected so untrusted inputs cannot mint categories no
// delivery section renders.
func ParseCategory(raw string) (Category, bool) {
	switch c := Category(raw); c {
	case CategoryScriptwriter, CategoryEditor, CategoryChiefEditor:
		return c, true
	}
	return "", false
}

// Candidate is an extracted, not-yet-accepted posting. It is mutated as it
// moves through the pipeline: the classifier assigns Category, the semantic
// filter may overwrite Title/Company/Category with normalized values.
type Candidate struct {
	Title    string
	Company  string // empty when no organization was recognized
	Link     string // empty when no link could be derived
	Category Category
	FullText string

	SourceID  int64 // storage id of the originating source
	MessageID int64 // provider message id
	PostedAt  time.Time
}
