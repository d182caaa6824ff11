package categorizer

import (
	"fmt"
	"strings"

	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/models"
)

// Learner records manual category corrections as learned rules so the same
// merchant is categorized correctly on the next sync.
type Learner struct {
	store RuleStore
	log   logging.Logger
}

// NewLearner builds a learner over the given rule store.
func NewLearner(store RuleStore, logger logging.Logger) *Learner {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Learner{store: store, log: logger}
}

// Learn upserts a rule for the merchant text. When a rule with the exact
// normalized pattern already exists, regardless of origin, its category is
// rewritten and its counter bumped instead of creating a duplicate.
func (l *Learner) Learn(merchantText, category string) error {
	pattern := strings.ToLower(strings.TrimSpace(merchantText))
	if pattern == "" {
		return fmt.Errorf("cannot learn from empty merchant text")
	}
	if category == "" {
		return fmt.Errorf("cannot learn empty category")
	}

	existing, found, err := l.store.FindRuleByPattern(pattern)
	if err != nil {
		return fmt.Errorf("looking up rule: %w", err)
	}

	if found {
		existing.Category = category
		existing.MatchCount++
		if err := l.store.UpdateRule(existing); err != nil {
			return fmt.Errorf("updating rule: %w", err)
		}
		l.log.WithFields(
			logging.Field{Key: "pattern", Value: pattern},
			logging.Field{Key: logging.FieldCategory, Value: category},
		).Info("Updated categorization rule")
		return nil
	}

	rule := models.CategoryRule{
		Pattern:    pattern,
		Category:   category,
		Origin:     models.RuleOriginLearned,
		MatchCount: 1,
	}
	if err := l.store.InsertRule(rule); err != nil {
		return fmt.Errorf("inserting rule: %w", err)
	}
	l.log.WithFields(
		logging.Field{Key: "pattern", Value: pattern},
		logging.Field{Key: logging.FieldCategory, Value: category},
	).Info("Learned categorization rule")
	return nil
}
