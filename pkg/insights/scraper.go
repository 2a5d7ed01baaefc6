package insights

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const contentPreviewLimit = 500

// Scraper pulls a small amount of public context from a competitor's
// website: title, meta description and a content preview. It is a
// best-effort helper; failures are reported as text so the insights
// prompt can still be built.
type Scraper struct {
	httpClient *http.Client
}

// NewScraper creates a new website scraper
func NewScraper(client *http.Client) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Scraper{httpClient: client}
}

// Scrape fetches and summarizes the given website.
func (s *Scraper) Scrape(ctx context.Context, website string) string {
	if website == "" {
		return "No website provided for scraping."
	}

	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, website, nil)
	if err != nil {
		return fmt.Sprintf("An error occurred while requesting %s: %v", website, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("An error occurred while requesting %s: %v", website, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error response %d while requesting %s", resp.StatusCode, website)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Sprintf("An error occurred while parsing %s: %v", website, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "No title found"
	}

	description, _ := doc.Find(`meta[name="description"]`).Attr("content")
	if description == "" {
		description = "No description found"
	}

	content := doc.Find("main").First()
	if content.Length() == 0 {
		content = doc.Find("body").First()
	}
	preview := truncateRunes(strings.Join(strings.Fields(content.Text()), " "), contentPreviewLimit)

	return fmt.Sprintf("Title: %s\nDescription: %s\nMain Content Preview: %s...", title, description, preview)
}

// truncateRunes cuts s to at most limit runes without splitting a
// multi-byte sequence.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
