package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/fycapp/fyc-backend/pkg/ai/llm"
	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/logger"
	"github.com/fycapp/fyc-backend/pkg/models"
)

const systemPrompt = "You are an AI assistant that identifies business competitors based on given information. " +
	"Always answer with a single JSON object matching the schema you are given. Leave every \"logo\" field empty."

// competitorSchema is appended to every prompt so JSON mode has an
// explicit shape to fill in.
const competitorSchema = `Respond with JSON of the form:
{"competitors": [{
  "name": string,
  "business_type": string,
  "location": string,
  "logo": "",
  "revenue_range": string (e.g. "$1M-$10M"),
  "target_market": string,
  "description": string,
  "website": string,
  "what_they_sell": [string, ...],
  "strengths": [string, ...],
  "social_media": {"facebook": string|null, "twitter": string|null, "youtube": string|null, "instagram": string|null}%s
}]}`

// ChatClient is the slice of the LLM client the finder needs.
type ChatClient interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// Finder wraps schema-constrained competitor generation. It does not
// retry: retry policy belongs to the caller.
type Finder struct {
	client   ChatClient
	validate *validator.Validate
	logger   logger.Logger
}

// NewFinder creates a new competitor finder
func NewFinder(client ChatClient, log logger.Logger) *Finder {
	if log == nil {
		log = logger.Default()
	}
	return &Finder{
		client:   client,
		validate: validator.New(),
		logger:   log,
	}
}

// competitorList is the JSON envelope the model fills in.
type competitorList struct {
	Competitors []models.Competitor `json:"competitors"`
}

// FindByDescription returns competitors for a free-text business
// description plus location. Target cardinality is prompt-enforced.
func (f *Finder) FindByDescription(ctx context.Context, description, location string) ([]models.Competitor, error) {
	prompt := fmt.Sprintf(
		"Given the following business description and location, identify the top 6 competitors.\n"+
			"Business: %s\nLocation: %s\n\n%s",
		description, location, fmt.Sprintf(competitorSchema, ""),
	)

	return f.generate(ctx, prompt)
}

// FindByNameOrURL returns the queried business as the first record,
// followed by its competitors. Each record additionally carries the
// countries it operates in; "global" presences are expanded to the ten
// most representative countries by the prompt contract.
func (f *Finder) FindByNameOrURL(ctx context.Context, nameOrURL string) ([]models.Competitor, error) {
	prompt := fmt.Sprintf(
		"Given the following name or link about a business, return the top 5 competitors of the business, "+
			"including the business itself as the first item.\nName or URL: %s\n\n"+
			"For each company include a \"countries\" list of the countries it operates in. "+
			"If a company operates globally, list its 10 most representative countries instead of the word \"global\".\n\n%s",
		nameOrURL, fmt.Sprintf(competitorSchema, `,
  "countries": [string, ...]`),
	)

	return f.generate(ctx, prompt)
}

func (f *Finder) generate(ctx context.Context, prompt string) ([]models.Competitor, error) {
	resp, err := f.client.Chat(ctx, llm.ChatRequest{
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		JSONMode: true,
	})
	if err != nil {
		return nil, domain.NewAIUnavailableError(err)
	}

	if resp.Message == "" {
		return nil, domain.NewAIResponseError("model returned an empty response", nil)
	}

	var list competitorList
	if err := json.Unmarshal([]byte(resp.Message), &list); err != nil {
		return nil, domain.NewAIResponseError("model returned invalid JSON", err)
	}

	if len(list.Competitors) == 0 {
		return nil, domain.NewAIResponseError("model returned no competitors", nil)
	}

	for i := range list.Competitors {
		if err := f.validate.Struct(&list.Competitors[i]); err != nil {
			return nil, domain.NewAIResponseError(
				fmt.Sprintf("competitor %q failed schema validation", list.Competitors[i].Name), err)
		}

		// The model is told to leave logos blank; enforce it so the
		// resolver is the only source of logo URLs.
		list.Competitors[i].Logo = ""
		list.Competitors[i].ID = ""
		list.Competitors[i].SearchID = ""
		list.Competitors[i].UserID = ""
	}

	f.logger.Debug("AI competitor generation completed",
		"competitors", len(list.Competitors),
		"tokens_used", resp.TokensUsed)

	return list.Competitors, nil
}
