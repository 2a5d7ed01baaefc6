package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/logger"
	"github.com/fycapp/fyc-backend/pkg/models"
)

const maxInsights = 5

// Completer is the slice of the LLM client the service needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, systemPrompt ...string) (string, error)
}

// Service generates free-text competitive insights for one competitor
// by combining its stored profile with freshly scraped website context.
type Service struct {
	completer Completer
	scraper   *Scraper
	logger    logger.Logger
}

// NewService creates a new insights service
func NewService(completer Completer, scraper *Scraper, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		completer: completer,
		scraper:   scraper,
		logger:    log,
	}
}

// Generate returns up to five insight lines for the competitor.
func (s *Service) Generate(ctx context.Context, competitor models.Competitor) ([]string, error) {
	scraped := s.scraper.Scrape(ctx, competitor.Website)

	prompt := fmt.Sprintf(`Analyze the following competitor information and provide 3-5 key insights:

Company: %s
Business Type: %s
Location: %s
Revenue: %s
Target Market: %s
Description: %s

Additional scraped data:
%s

Please provide insights on their market position, strengths, weaknesses, and potential strategies.
Write one insight per line.`,
		competitor.Name, competitor.BusinessType, competitor.Location,
		competitor.RevenueRange, competitor.TargetMarket, competitor.Description,
		scraped)

	response, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, domain.NewAIUnavailableError(err)
	}

	insights := []string{}
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		insights = append(insights, line)
		if len(insights) == maxInsights {
			break
		}
	}

	if len(insights) == 0 {
		return nil, domain.NewAIResponseError("model returned no insights", nil)
	}

	return insights, nil
}
