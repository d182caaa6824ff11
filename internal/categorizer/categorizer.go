package categorizer

import (
	"strings"

	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/models"
)

// Classifier runs the classification chain over a transaction description.
// The chain order is fixed: user rules, learned rules, keywords. The first
// strategy that produces a category wins; when none does, the result is
// "Other".
type Classifier struct {
	strategies []Strategy
	log        logging.Logger
}

// NewClassifier assembles the standard chain on top of the given rule store
// and keyword taxonomy.
func NewClassifier(store RuleStore, keywords *KeywordStrategy, logger logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Classifier{
		strategies: []Strategy{
			NewRuleStrategy(store, models.RuleOriginUser, logger),
			NewRuleStrategy(store, models.RuleOriginLearned, logger),
			keywords,
		},
		log: logger,
	}
}

// Classify returns the category for a transaction description. It never
// fails: a strategy error is logged and the chain moves on, and empty input
// short-circuits to "Other" without touching any rule.
func (c *Classifier) Classify(description string) string {
	text := strings.ToLower(strings.TrimSpace(description))
	if text == "" {
		return models.CategoryOther
	}

	for _, strategy := range c.strategies {
		category, ok, err := strategy.Categorize(text)
		if err != nil {
			c.log.WithError(err).WithField(logging.FieldStrategy, strategy.Name()).
				Warn("Categorization strategy failed")
			continue
		}
		if ok {
			c.log.WithFields(
				logging.Field{Key: logging.FieldStrategy, Value: strategy.Name()},
				logging.Field{Key: logging.FieldCategory, Value: category},
			).Debug("Transaction categorized")
			return category
		}
	}
	return models.CategoryOther
}
