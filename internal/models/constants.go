package models

// Well-known category names. The classifier falls back to CategoryOther when
// no rule or keyword matches; the sync pass assigns CategoryInvestment and
// CategoryDividend to synthesized brokerage transactions.
const (
	CategoryOther            = "Other"
	CategoryFood             = "Food"
	CategoryTransport        = "Transport"
	CategoryUtilities        = "Utilities"
	CategoryEntertainment    = "Entertainment"
	CategoryShopping         = "Shopping"
	CategorySalary           = "Salary"
	CategoryInvestment       = "Investment"
	CategoryDividend         = "Dividend"
	CategoryInternalTransfer = "Internal Transfer"
)

// CategoryConfig represents a category configuration in the YAML taxonomy file.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CategoriesConfig represents the structure of the categories YAML file.
type CategoriesConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}
