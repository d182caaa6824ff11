package categorizer

import (
	"strings"

	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/models"
)

// RuleStrategy matches stored rules of one origin against the transaction
// text. Rules are consulted most-used first, so frequently firing patterns
// win ties, and the winning rule's counter is bumped.
type RuleStrategy struct {
	store  RuleStore
	origin models.RuleOrigin
	log    logging.Logger
}

// NewRuleStrategy builds a strategy over rules of the given origin.
func NewRuleStrategy(store RuleStore, origin models.RuleOrigin, logger logging.Logger) *RuleStrategy {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &RuleStrategy{store: store, origin: origin, log: logger}
}

// Name identifies the strategy in logs.
func (s *RuleStrategy) Name() string {
	return string(s.origin) + "-rules"
}

// Categorize returns the category of the first rule whose pattern occurs as a
// substring of the text. Patterns are stored lowercase; text arrives
// lowercase from the classifier.
func (s *RuleStrategy) Categorize(text string) (string, bool, error) {
	rules, err := s.store.ListRules(s.origin)
	if err != nil {
		return "", false, err
	}

	for _, r := range rules {
		if !strings.Contains(text, r.Pattern) {
			continue
		}
		if err := s.store.IncrementRuleMatchCount(r.ID); err != nil {
			s.log.WithError(err).WithFields(
				logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
				logging.Field{Key: "pattern", Value: r.Pattern},
			).Warn("Failed to bump rule match count")
		}
		return r.Category, true, nil
	}
	return "", false, nil
}
