package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

// maxPostingChars bounds how much posting text goes into a prompt
const maxPostingChars = 6000

// BulletRequest describes the bullets wanted for one category
type BulletRequest struct {
	Category string   `json:"category"`
	JobType  string   `json:"job_type"`
	Company  string   `json:"company"`
	Posting  string   `json:"posting,omitempty"`
	Existing []string `json:"existing,omitempty"`
	Count    int      `json:"count"`
}

// ClaudeProvider suggests bullets with Anthropic's Claude
type ClaudeProvider struct {
	client anthropic.Client
	config *config.Config
	logger logging.Logger
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg *config.Config, logger logging.Logger) *ClaudeProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.LLM.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.LLM.BaseURL))
	}

	return &ClaudeProvider{
		client: anthropic.NewClient(opts...),
		config: cfg,
		logger: logger,
	}
}

// SuggestBullets asks Claude for resume bullets as a JSON array
func (cp *ClaudeProvider) SuggestBullets(ctx context.Context, req BulletRequest) ([]string, error) {
	start := time.Now()

	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cp.config.LLM.Model),
		MaxTokens: int64(cp.config.LLM.MaxTokens),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: buildBulletPrompt(req)},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call Claude API: %w", err)
	}

	var text string
	for _, content := range response.Content {
		if t := content.AsText().Text; t != "" {
			text = t
			break
		}
	}

	bullets, err := ParseBulletList(text)
	if err != nil {
		return nil, err
	}
	if req.Count > 0 && len(bullets) > req.Count {
		bullets = bullets[:req.Count]
	}

	cp.logger.Info("Bullet suggestions generated", map[string]interface{}{
		"category":        req.Category,
		"count":           len(bullets),
		"processing_time": time.Since(start).String(),
	})
	return bullets, nil
}

func buildBulletPrompt(req BulletRequest) string {
	posting := strings.TrimSpace(req.Posting)
	if len(posting) > maxPostingChars {
		posting = posting[:maxPostingChars] + "..."
	}
	if posting == "" {
		posting = "(not available)"
	}

	existing := "(none)"
	if len(req.Existing) > 0 {
		existing = "- " + strings.Join(req.Existing, "\n- ")
	}

	return fmt.Sprintf(`You write resume bullet points for a %s application at %s.

Write %d new bullet points for the "%s" category. Each bullet is one sentence that starts with a past-tense verb and states a concrete, measurable outcome. Wrap the single most important technology or metric of each bullet in **double asterisks**.

Do not repeat any of these existing bullets:
%s

Return ONLY a JSON array of strings, no additional text.

JOB POSTING:
%s`, req.JobType, req.Company, req.Count, req.Category, existing, posting)
}

// ParseBulletList reads a JSON array of strings, tolerating markdown fences
func ParseBulletList(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no text content in Claude response")
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	var raw []string
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response from Claude: %w, response: %s", err, text)
	}

	bullets := make([]string, 0, len(raw))
	for _, b := range raw {
		if b = strings.TrimSpace(b); b != "" {
			bullets = append(bullets, b)
		}
	}
	return bullets, nil
}

// IsHealthy sends a minimal request to confirm the key works
func (cp *ClaudeProvider) IsHealthy(ctx context.Context) error {
	if cp.config.LLM.APIKey == "" {
		return fmt.Errorf("Claude API key not configured - set LLM_API_KEY environment variable")
	}

	_, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cp.config.LLM.Model),
		MaxTokens: 16,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: "Hello"},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return fmt.Errorf("Claude API health check failed: %w", err)
	}
	return nil
}

// GetProviderName returns the name of the provider
func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}
