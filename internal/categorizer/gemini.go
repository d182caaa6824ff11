package categorizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Suggester proposes a category for a description without consulting or
// mutating the rule chain. Suggestions are advisory; nothing is persisted
// unless the user accepts one via Learn.
type Suggester interface {
	SuggestCategory(ctx context.Context, description string, categories []string) (string, error)
}

// GeminiSuggester asks the Gemini API for a category suggestion.
type GeminiSuggester struct {
	model *genai.GenerativeModel
	log   logging.Logger
}

// NewGeminiSuggester creates a suggester backed by the given model name.
func NewGeminiSuggester(ctx context.Context, apiKey, modelName string, logger logging.Logger) (*GeminiSuggester, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not set")
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiSuggester{model: client.GenerativeModel(modelName), log: logger}, nil
}

// SuggestCategory asks the model to pick one of the given categories for the
// description. A response outside the allowed set degrades to "Other".
func (g *GeminiSuggester) SuggestCategory(ctx context.Context, description string, categories []string) (string, error) {
	prompt := fmt.Sprintf(`Categorize the following financial transaction:
Description: %s

Please assign this transaction to exactly one of the following categories:
%s

Respond in this format:
Category: [Selected Category Name]`,
		description, strings.Join(categories, ", "))

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini api")
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	suggestion := extractCategory(text, categories)

	g.log.WithFields(
		logging.Field{Key: logging.FieldCategory, Value: suggestion},
		logging.Field{Key: "description", Value: description},
	).Debug("Gemini suggested category")
	return suggestion, nil
}

// extractCategory pulls the category out of the model response and validates
// it against the allowed set.
func extractCategory(response string, categories []string) string {
	var name string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Category:") {
			name = strings.TrimSpace(strings.TrimPrefix(line, "Category:"))
			break
		}
	}
	if name == "" {
		// Unstructured response: look for any allowed category mentioned.
		for _, c := range categories {
			if strings.Contains(response, c) {
				return c
			}
		}
		return models.CategoryOther
	}
	for _, c := range categories {
		if strings.EqualFold(name, c) {
			return c
		}
	}
	return models.CategoryOther
}
