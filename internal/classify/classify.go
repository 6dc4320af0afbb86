// Package classify decides whether a candidate posting belongs to one of
// the fixed target categories. Matching is keyword-driven with exclusion
// lists and, for ambiguous categories, a fuzzy contextual confirmation.
package classify

import (
	"strings"

	"vacradar/internal/similarity"
	"vacradar/internal/vacancy"
	"vacradar/pkg/logx"
)

// Classifier applies the rule table in order.
type Classifier struct {
	rules []Rule
	ctx   *ContextAnalyzer
	log   logx.Logger
}

func New(rules []Rule, ctx *ContextAnalyzer, log logx.Logger) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules, ctx: ctx, log: log}
}

// Match returns the first category (in table order) whose checks all pass.
// Exclusion wins over inclusion: an excluded rule is skipped and scanning
// continues with later rules.
func (c *Classifier) Match(cand vacancy.Candidate) (vacancy.Category, bool) {
	combined := strings.ToLower(cand.Title + " " + cand.FullText)

	for _, rule := range c.rules {
		if !containsAny(combined, rule.Keywords) {
			continue
		}
		if containsAny(combined, rule.Exclude) {
			c.log.Debug("category excluded", logx.String("category", string(rule.Category)))
			continue
		}
		if rule.RequiresContext && !c.ctx.HasContext(strings.ToLower(cand.FullText)) {
			c.log.Debug("category rejected, no domain context", logx.String("category", string(rule.Category)))
			continue
		}
		return rule.Category, true
	}
	return "", false
}

// Filter assigns a category to each matching candidate and drops the rest,
// preserving order.
func (c *Classifier) Filter(cands []vacancy.Candidate) []vacancy.Candidate {
	var out []vacancy.Candidate
	for _, cand := range cands {
		category, ok := c.Match(cand)
		if !ok {
			continue
		}
		cand.Category = category
		out = append(out, cand)
	}
	c.log.Info("candidates classified", logx.Int("matched", len(out)), logx.Int("total", len(cands)))
	return out
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// ContextAnalyzer checks whether a text carries enough video-production
// context. Exact substring hits are counted first; if short of the
// threshold, a fuzzy partial-similarity pass over the longer keywords picks
// up misspellings.
type ContextAnalyzer struct {
	keywords       []string
	minMatches     int
	fuzzyThreshold int
	scorer         similarity.Scorer
}

const minFuzzyKeywordLen = 5

func NewContextAnalyzer(minMatches, fuzzyThreshold int, scorer similarity.Scorer) *ContextAnalyzer {
	if minMatches <= 0 {
		minMatches = 2
	}
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = 85
	}
	return &ContextAnalyzer{
		keywords:       contextKeywords,
		minMatches:     minMatches,
		fuzzyThreshold: fuzzyThreshold,
		scorer:         scorer,
	}
}

// HasContext expects lowercased text.
func (a *ContextAnalyzer) HasContext(text string) bool {
	if text == "" {
		return false
	}

	matches := 0
	for _, kw := range a.keywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}

	if matches < a.minMatches {
		for _, kw := range a.keywords {
			if len([]rune(kw)) < minFuzzyKeywordLen {
				continue
			}
			if a.scorer.PartialRatio(kw, text) >= a.fuzzyThreshold {
				matches++
			}
		}
	}

	return matches >= a.minMatches
}
