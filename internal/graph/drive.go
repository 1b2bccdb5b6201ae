package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
)

// Download returns the content of the file at path
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	op := "download " + path
	resp, err := c.do(ctx, op, http.MethodGet, c.itemURL(path, "/content"), nil, nil)
	if err != nil {
		return nil, err
	}
	return expect(op, resp, http.StatusOK)
}

// Upload creates or replaces the file at path
func (c *Client) Upload(ctx context.Context, path, contentType string, data []byte) error {
	op := "upload " + path
	headers := map[string]string{}
	if contentType != "" {
		headers["Content-Type"] = contentType
	}

	resp, err := c.do(ctx, op, http.MethodPut, c.itemURL(path, "/content"), bytes.NewReader(data), headers)
	if err != nil {
		return err
	}
	_, err = expect(op, resp, http.StatusOK, http.StatusCreated)
	return err
}

// Exists probes the drive item at path: 200 is true, 404 false, anything
// else an error
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	op := "probe " + path
	resp, err := c.do(ctx, op, http.MethodGet, c.itemURL(path, ""), nil, nil)
	if err != nil {
		return false, err
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return false, nil
	}
	if _, err := expect(op, resp, http.StatusOK); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureFolder creates the folder at folderPath when it does not exist,
// creating missing ancestors first
func (c *Client) EnsureFolder(ctx context.Context, folderPath string) error {
	folderPath = strings.Trim(folderPath, "/")
	if folderPath == "" {
		return nil
	}

	exists, err := c.Exists(ctx, folderPath)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	parent, name := path.Split(folderPath)
	parent = strings.TrimSuffix(parent, "/")
	if parent != "" {
		if err := c.EnsureFolder(ctx, parent); err != nil {
			return err
		}
	}

	op := "create folder " + folderPath
	payload := map[string]interface{}{
		"name":                              name,
		"folder":                            map[string]interface{}{},
		"@microsoft.graph.conflictBehavior": "rename",
	}
	resp, err := c.postJSON(ctx, op, c.itemURL(parent, "/children"), payload, nil)
	if err != nil {
		return err
	}
	if _, err := expect(op, resp, http.StatusOK, http.StatusCreated); err != nil {
		return err
	}

	c.logger.Info("Created folder", map[string]interface{}{"path": folderPath})
	return nil
}

// CopyFile copies srcFolder/name to dstFolder/name unless the destination
// already exists, in which case nothing is transferred. copied reports
// whether a transfer happened.
func (c *Client) CopyFile(ctx context.Context, name, srcFolder, dstFolder string) (copied bool, err error) {
	dst := joinPath(dstFolder, name)

	exists, err := c.Exists(ctx, dst)
	if err != nil {
		return false, err
	}
	if exists {
		c.logger.Debug("Skipping copy, destination exists", map[string]interface{}{"path": dst})
		return false, nil
	}

	data, err := c.Download(ctx, joinPath(srcFolder, name))
	if err != nil {
		return false, err
	}
	if err := c.Upload(ctx, dst, contentTypeFor(name), data); err != nil {
		return false, err
	}
	return true, nil
}

// ReadJSON downloads path and decodes it into v
func (c *Client) ReadJSON(ctx context.Context, path string, v interface{}) error {
	data, err := c.Download(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// WriteJSON encodes v with two-space indentation and uploads it to path
func (c *Client) WriteJSON(ctx context.Context, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return c.Upload(ctx, path, ContentTypeJSON, data)
}

// DownloadAsPDF has Graph convert src to PDF and uploads the result to dst
func (c *Client) DownloadAsPDF(ctx context.Context, src, dst string) ([]byte, error) {
	op := "convert " + src
	resp, err := c.do(ctx, op, http.MethodGet, c.itemURL(src, "/content")+"?format=pdf", nil, nil)
	if err != nil {
		return nil, err
	}
	pdf, err := expect(op, resp, http.StatusOK)
	if err != nil {
		return nil, err
	}

	if err := c.Upload(ctx, dst, ContentTypePDF, pdf); err != nil {
		return nil, err
	}
	return pdf, nil
}

func joinPath(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".docx":
		return ContentTypeDOCX
	case ".xlsx":
		return ContentTypeXLSX
	case ".json":
		return ContentTypeJSON
	case ".pdf":
		return ContentTypePDF
	default:
		return "application/octet-stream"
	}
}
