package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fycapp/fyc-backend/pkg/ai/llm"
	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/logger"
)

// fakeOpenAI serves a canned chat-completion payload on the OpenAI
// wire format so the real client code path is exercised end to end.
func fakeOpenAI(t *testing.T, content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)

		resp := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"total_tokens": 42},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestFinder(t *testing.T, baseURL string) *Finder {
	client := llm.NewOpenAIClient(llm.Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
	}, nil)
	return NewFinder(client, logger.Nop())
}

const validCompetitorJSON = `{"competitors": [{
	"name": "Bean Supreme",
	"business_type": "Coffee Roaster",
	"location": "Seattle, WA",
	"logo": "",
	"revenue_range": "$1M-$10M",
	"target_market": "Local cafes",
	"description": "Specialty roaster",
	"website": "https://beansupreme.example",
	"what_they_sell": ["roasted beans", "brewing gear"],
	"strengths": ["brand", "sourcing"],
	"social_media": {"facebook": null, "twitter": "https://twitter.com/beansupreme", "youtube": null, "instagram": null}
}]}`

func TestFinder_FindByDescription(t *testing.T) {
	srv := fakeOpenAI(t, validCompetitorJSON)
	defer srv.Close()

	finder := newTestFinder(t, srv.URL)

	records, err := finder.FindByDescription(context.Background(), "organic coffee roaster", "Seattle")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "Bean Supreme", records[0].Name)
	assert.Empty(t, records[0].Logo, "logo must be left for the resolver")
	assert.Empty(t, records[0].ID)
	assert.Empty(t, records[0].SearchID)
}

func TestFinder_FindByNameOrURL_Countries(t *testing.T) {
	content := `{"competitors": [{
		"name": "Acme Corp",
		"business_type": "SaaS",
		"location": "Austin, TX",
		"logo": "",
		"revenue_range": "$10M-$50M",
		"target_market": "SMBs",
		"what_they_sell": ["software"],
		"strengths": ["pricing"],
		"social_media": {},
		"countries": ["US", "CA", "UK"]
	}]}`
	srv := fakeOpenAI(t, content)
	defer srv.Close()

	finder := newTestFinder(t, srv.URL)

	records, err := finder.FindByNameOrURL(context.Background(), "acme.example")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"US", "CA", "UK"}, records[0].Countries)
}

func TestFinder_EmptyContent(t *testing.T) {
	srv := fakeOpenAI(t, "")
	defer srv.Close()

	finder := newTestFinder(t, srv.URL)

	_, err := finder.FindByDescription(context.Background(), "bakery", "Lyon")
	require.Error(t, err)
	assert.True(t, domain.IsAIResponse(err))
}

func TestFinder_MalformedJSON(t *testing.T) {
	srv := fakeOpenAI(t, "here are some competitors: Acme, Globex")
	defer srv.Close()

	finder := newTestFinder(t, srv.URL)

	_, err := finder.FindByDescription(context.Background(), "bakery", "Lyon")
	require.Error(t, err)
	assert.True(t, domain.IsAIResponse(err))
}

func TestFinder_SchemaViolation(t *testing.T) {
	// Missing required fields (revenue_range, strengths, ...).
	srv := fakeOpenAI(t, `{"competitors": [{"name": "Acme"}]}`)
	defer srv.Close()

	finder := newTestFinder(t, srv.URL)

	_, err := finder.FindByDescription(context.Background(), "bakery", "Lyon")
	require.Error(t, err)
	assert.True(t, domain.IsAIResponse(err))
}

func TestFinder_ProviderUnreachable(t *testing.T) {
	srv := fakeOpenAI(t, validCompetitorJSON)
	srv.Close() // closed before use: transport failure

	finder := newTestFinder(t, srv.URL)

	_, err := finder.FindByDescription(context.Background(), "bakery", "Lyon")
	require.Error(t, err)
	assert.True(t, domain.IsAIUnavailable(err))
	assert.False(t, domain.IsAIResponse(err))
}
