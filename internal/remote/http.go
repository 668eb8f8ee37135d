package remote

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

	"mangapages/pkg/models"
)

const DefaultTimeout = 30 * time.Second

// HTTPClient calls the gin page service.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *HTTPClient) Analyze(ctx context.Context, pageID string) (*models.Document, error) {
	var doc models.Document
	if err := c.doJSON(ctx, "analyze", http.MethodPost, c.pageURL(pageID)+"/analyze", nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *HTTPClient) Fetch(ctx context.Context, pageID string) (*models.Document, error) {
	var doc models.Document
	if err := c.doJSON(ctx, "fetch", http.MethodGet, c.pageURL(pageID), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *HTTPClient) Save(ctx context.Context, pageID string, doc *models.Document) (*models.Document, error) {
	var saved models.Document
	if err := c.doJSON(ctx, "save", http.MethodPut, c.pageURL(pageID), doc, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *HTTPClient) pageURL(pageID string) string {
	return c.BaseURL + "/pages/" + url.PathEscape(pageID)
}

func (c *HTTPClient) doJSON(ctx context.Context, op, method, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		return &StatusError{Op: op, Code: resp.StatusCode, Status: resp.Status, Message: errorMessage(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode body: %w", op, err)
	}
	return nil
}

// errorMessage pulls "error" out of a gin.H{"error": ...} body, else the raw text.
func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}
