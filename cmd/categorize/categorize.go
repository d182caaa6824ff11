// Package categorize handles transaction categorization commands.
package categorize

import (
	"fmt"
	"strings"

	"fjacquet/finsync/cmd/root"
	"fjacquet/finsync/internal/categorizer"

	"github.com/spf13/cobra"
)

var (
	learnCategory string
	suggest       bool
)

// Cmd represents the categorize command.
var Cmd = &cobra.Command{
	Use:   "categorize <description>",
	Short: "Categorize a transaction description",
	Long: `Categorize a transaction description through the rule chain: user rules,
learned rules, then keywords. With --learn the description is recorded as a
rule for the given category; with --suggest the Gemini model proposes a
category without touching the rules.`,
	Args: cobra.MinimumNArgs(1),
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&learnCategory, "learn", "l", "", "Record the description as a rule for this category")
	Cmd.Flags().BoolVar(&suggest, "suggest", false, "Ask the AI model for a suggestion instead of classifying")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	description := strings.Join(args, " ")

	s, err := root.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	keywords := categorizer.NewKeywordStrategy(root.Log)
	if err := keywords.LoadCategoriesFile(root.Cfg.Categorization.CategoriesFile); err != nil {
		return err
	}

	if learnCategory != "" {
		learner := categorizer.NewLearner(s, root.Log)
		if err := learner.Learn(description, learnCategory); err != nil {
			return err
		}
		fmt.Printf("Learned: %q -> %s\n", strings.ToLower(strings.TrimSpace(description)), learnCategory)
		return nil
	}

	if suggest {
		if !root.Cfg.AI.Enabled {
			return fmt.Errorf("AI suggestions are disabled, set ai.enabled and GEMINI_API_KEY")
		}
		suggester, err := categorizer.NewGeminiSuggester(cmd.Context(), root.Cfg.AI.APIKey, root.Cfg.AI.Model, root.Log)
		if err != nil {
			return err
		}
		category, err := suggester.SuggestCategory(cmd.Context(), description, keywords.Categories())
		if err != nil {
			return err
		}
		fmt.Printf("Suggested category: %s\n", category)
		return nil
	}

	classifier := categorizer.NewClassifier(s, keywords, root.Log)
	fmt.Printf("Category: %s\n", classifier.Classify(description))
	return nil
}
