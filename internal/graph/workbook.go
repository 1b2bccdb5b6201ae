package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type workbookSession struct {
	ID string `json:"id"`
}

// AppendRow adds one row to the end of a named table inside a workbook. It
// runs inside a persistent workbook session so existing rows are never
// rewritten. Closing the session is best effort.
func (c *Client) AppendRow(ctx context.Context, workbookPath, table string, values []interface{}) error {
	sessionID, err := c.createSession(ctx, workbookPath)
	if err != nil {
		return err
	}
	defer c.closeSession(ctx, workbookPath, sessionID)

	op := fmt.Sprintf("append row to %s/%s", workbookPath, table)
	payload := map[string]interface{}{
		"values": [][]interface{}{values},
	}
	resp, err := c.postJSON(ctx, op, c.itemURL(workbookPath, "/workbook/tables/"+url.PathEscape(table)+"/rows/add"), payload,
		map[string]string{"workbook-session-id": sessionID})
	if err != nil {
		return err
	}
	_, err = expect(op, resp, http.StatusOK, http.StatusCreated)
	return err
}

func (c *Client) createSession(ctx context.Context, workbookPath string) (string, error) {
	op := "create workbook session " + workbookPath
	resp, err := c.postJSON(ctx, op, c.itemURL(workbookPath, "/workbook/createSession"),
		map[string]interface{}{"persistChanges": true}, nil)
	if err != nil {
		return "", err
	}

	body, err := expect(op, resp, http.StatusCreated)
	if err != nil {
		return "", err
	}

	var session workbookSession
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("%s: failed to decode session: %w", op, err)
	}
	if session.ID == "" {
		return "", fmt.Errorf("%s: session id missing from response", op)
	}
	return session.ID, nil
}

// closeSession logs failures instead of returning them; Graph expires
// abandoned sessions on its own
func (c *Client) closeSession(ctx context.Context, workbookPath, sessionID string) {
	op := "close workbook session " + workbookPath
	resp, err := c.do(ctx, op, http.MethodPost, c.itemURL(workbookPath, "/workbook/closeSession"), nil,
		map[string]string{"workbook-session-id": sessionID})
	if err != nil {
		c.logger.Warn("Failed to close workbook session", map[string]interface{}{"error": err.Error()})
		return
	}
	if _, err := expect(op, resp, http.StatusOK, http.StatusNoContent); err != nil {
		c.logger.Warn("Failed to close workbook session", map[string]interface{}{"error": err.Error()})
	}
}

// ReadWorkbook downloads the xlsx at path
func (c *Client) ReadWorkbook(ctx context.Context, path string) ([]byte, error) {
	return c.Download(ctx, path)
}

// OverwriteWorkbook replaces the xlsx at path
func (c *Client) OverwriteWorkbook(ctx context.Context, path string, data []byte) error {
	return c.Upload(ctx, path, ContentTypeXLSX, data)
}
