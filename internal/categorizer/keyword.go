package categorizer

import (
	"fmt"
	"os"
	"strings"

	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/models"

	"gopkg.in/yaml.v3"
)

// defaultCategories is the built-in keyword taxonomy, used when no
// categories.yaml override is present. Keywords are lowercase.
var defaultCategories = []models.CategoryConfig{
	{Name: models.CategoryFood, Keywords: []string{
		"lidl", "albert", "tesco", "billa", "kaufland", "penny",
		"restaurace", "restaurant", "mcdonald", "kfc", "burger",
		"pizza", "kavarna", "cafe", "rohlik", "kosik",
	}},
	{Name: models.CategoryTransport, Keywords: []string{
		"uber", "bolt", "taxi", "dpp", "litacka", "cd.cz", "regiojet",
		"benzina", "shell", "mol", "orlen", "parking",
	}},
	{Name: models.CategoryUtilities, Keywords: []string{
		"cez", "čez", "pre", "innogy", "vodafone", "o2", "t-mobile",
		"najem", "rent", "pojisteni", "insurance",
	}},
	{Name: models.CategoryEntertainment, Keywords: []string{
		"netflix", "spotify", "hbo", "disney", "steam", "cinema", "kino",
	}},
	{Name: models.CategoryShopping, Keywords: []string{
		"amazon", "alza", "datart", "ikea", "zara", "h&m", "decathlon", "dm",
	}},
	{Name: models.CategorySalary, Keywords: []string{
		"mzda", "plat", "salary", "payroll", "vyplata",
	}},
}

// KeywordStrategy matches the transaction text against a keyword taxonomy.
// It is the last step of the chain before the "Other" fallback.
type KeywordStrategy struct {
	categories []models.CategoryConfig
	log        logging.Logger
}

// NewKeywordStrategy builds a keyword strategy from the built-in taxonomy.
func NewKeywordStrategy(logger logging.Logger) *KeywordStrategy {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &KeywordStrategy{categories: defaultCategories, log: logger}
}

// LoadCategoriesFile replaces the built-in taxonomy with the one in the given
// YAML file. A missing file leaves the built-in taxonomy in place.
func (s *KeywordStrategy) LoadCategoriesFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.log.WithField("path", path).Debug("No categories file, using built-in taxonomy")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading categories file: %w", err)
	}

	var cfg models.CategoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing categories file: %w", err)
	}
	if len(cfg.Categories) == 0 {
		return fmt.Errorf("categories file %s defines no categories", path)
	}

	s.categories = cfg.Categories
	s.log.WithField(logging.FieldCount, len(cfg.Categories)).Info("Loaded category taxonomy")
	return nil
}

// Name identifies the strategy in logs.
func (s *KeywordStrategy) Name() string {
	return "keywords"
}

// Categorize scans categories in taxonomy order and returns the first whose
// keyword occurs in the text.
func (s *KeywordStrategy) Categorize(text string) (string, bool, error) {
	for _, cat := range s.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				return capitalize(cat.Name), true, nil
			}
		}
	}
	return "", false, nil
}

// Categories returns the category names of the active taxonomy, used to
// constrain AI suggestions.
func (s *KeywordStrategy) Categories() []string {
	names := make([]string, 0, len(s.categories)+1)
	for _, cat := range s.categories {
		names = append(names, capitalize(cat.Name))
	}
	return append(names, models.CategoryOther)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
