package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePDF  = "application/pdf"
	ContentTypeJSON = "application/json"
)

// maxErrorBody caps how much of a failed response body is kept on APIError
const maxErrorBody = 4 << 10

// Client talks to the signed-in user's OneDrive through Microsoft Graph.
// A Client without a token is a template; use WithToken per request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
	token      string
}

// NewClient creates a Graph client from configuration
func NewClient(cfg *config.Config, logger logging.Logger) *Client {
	perMinute := cfg.Graph.RateLimit
	if perMinute <= 0 {
		perMinute = 120
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.Graph.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Graph.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute/4+1),
		logger:     logger,
	}
}

// WithToken returns a copy of the client that authenticates with token.
// The copy shares the rate limiter and transport.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// itemURL builds the path-addressed drive item URL, escaping each segment
func (c *Client) itemURL(path string, suffix string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return c.baseURL + "/me/drive/root" + suffix
	}

	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	u := c.baseURL + "/me/drive/root:/" + strings.Join(segments, "/")
	if suffix != "" {
		u += ":" + suffix
	}
	return u
}

// do performs one request. No retries: failures surface to the caller.
func (c *Client) do(ctx context.Context, op, method, rawURL string, body io.Reader, headers map[string]string) (*http.Response, error) {
	if c.token == "" {
		return nil, fmt.Errorf("%s: no access token", op)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Graph request failed", map[string]interface{}{
			"op":     op,
			"method": method,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.logger.Debug("Graph request", map[string]interface{}{
		"op":       op,
		"method":   method,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})
	return resp, nil
}

// expect reads the body of resp, returning an APIError unless the status is
// one of ok
func expect(op string, resp *http.Response, ok ...int) ([]byte, error) {
	defer resp.Body.Close()

	for _, code := range ok {
		if resp.StatusCode == code {
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
			}
			return data, nil
		}
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

func (c *Client) postJSON(ctx context.Context, op, rawURL string, payload interface{}, headers map[string]string) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode payload: %w", op, err)
	}

	h := map[string]string{"Content-Type": ContentTypeJSON}
	for k, v := range headers {
		h[k] = v
	}
	return c.do(ctx, op, http.MethodPost, rawURL, bytes.NewReader(data), h)
}
