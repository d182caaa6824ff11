// Package categorizer assigns categories to transaction descriptions using a
// fixed chain of strategies: user rules, learned rules, then the built-in
// keyword taxonomy. An optional Gemini-backed suggester sits outside the
// chain and never fires during classification.
package categorizer

import "fjacquet/finsync/internal/models"

// Strategy is a single step in the classification chain. Categorize receives
// normalized (lowercased, trimmed) text and reports whether it produced a
// category.
type Strategy interface {
	Name() string
	Categorize(text string) (string, bool, error)
}

// RuleStore is the slice of persistence the rule strategies and the learner
// need. *store.Store satisfies it.
type RuleStore interface {
	ListRules(origin models.RuleOrigin) ([]models.CategoryRule, error)
	FindRuleByPattern(pattern string) (models.CategoryRule, bool, error)
	InsertRule(r models.CategoryRule) error
	UpdateRule(r models.CategoryRule) error
	IncrementRuleMatchCount(id int64) error
}
