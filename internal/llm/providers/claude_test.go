package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

func messageResponse(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":            "msg_01",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-3-5-haiku-latest",
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"content":       []map[string]string{{"type": "text", "text": text}},
		"usage":         map[string]int{"input_tokens": 10, "output_tokens": 20},
	})
	return string(body)
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *ClaudeProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.BaseURL = srv.URL + "/"
	cfg.LLM.Timeout = 5 * time.Second
	return NewClaudeProvider(cfg, logging.NewMultiLogger())
}

func TestSuggestBullets_ParsesFencedArray(t *testing.T) {
	var prompt string
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		raw, _ := io.ReadAll(r.Body)
		var body struct {
			Messages []struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		prompt = body.Messages[0].Content[0].Text

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, messageResponse("```json\n[\"Cut build time by **40%**\", \" \", \"Shipped **Go** services\", \"extra\"]\n```"))
	})

	bullets, err := provider.SuggestBullets(context.Background(), BulletRequest{
		Category: "Backend",
		JobType:  "Backend Engineer",
		Company:  "Acme",
		Existing: []string{"Wrote APIs"},
		Count:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Cut build time by **40%**", "Shipped **Go** services"}, bullets)
	assert.Contains(t, prompt, `"Backend" category`)
	assert.Contains(t, prompt, "- Wrote APIs")
	assert.Contains(t, prompt, "Backend Engineer application at Acme")
}

func TestSuggestBullets_APIErrorIsReturned(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	})

	_, err := provider.SuggestBullets(context.Background(), BulletRequest{Category: "Cloud", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to call Claude API")
}

func TestParseBulletList(t *testing.T) {
	bullets, err := ParseBulletList(`["one", "two"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, bullets)

	_, err = ParseBulletList("")
	assert.Error(t, err)

	_, err = ParseBulletList("Here are some bullets: one, two")
	assert.Error(t, err)
}

func TestBuildBulletPrompt_TruncatesPosting(t *testing.T) {
	long := make([]byte, maxPostingChars+100)
	for i := range long {
		long[i] = 'x'
	}

	prompt := buildBulletPrompt(BulletRequest{Posting: string(long), Count: 3})
	assert.Contains(t, prompt, "(none)")
	assert.NotContains(t, prompt, string(long))
	assert.Contains(t, prompt, "...")
}

func TestIsHealthy_RequiresKey(t *testing.T) {
	cfg := config.Default()
	provider := NewClaudeProvider(cfg, logging.NewMultiLogger())
	assert.Error(t, provider.IsHealthy(context.Background()))
	assert.Equal(t, "claude", provider.GetProviderName())
}
