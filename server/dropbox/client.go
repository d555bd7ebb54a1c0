package dropbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	listFolderPath       = "/2/files/list_folder"
	getTemporaryLinkPath = "/2/files/get_temporary_link"
)

func New(cfg Config, httpClient *http.Client) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(time.Duration(cfg.Every)), cfg.Burst),
	}
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ListFolder fetches a single page of folder entries. Continuation pages are
// never followed; HasMore and Cursor are passed through for callers that care.
func (c *Client) ListFolder(ctx context.Context, token string, path string) (*ListFolderResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(listFolderRequest{
		Path: path,
	}); err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+listFolderPath, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	rq.Header.Set("Content-Type", "application/json")
	rq.Header.Set("Authorization", "Bearer "+token)

	rs, err := c.httpClient.Do(rq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer rs.Body.Close()

	if rs.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(rs.Body)
		return nil, fmt.Errorf("request failed with status code: %d, response: %s", rs.StatusCode, data)
	}

	var result ListFolderResult
	if err = json.NewDecoder(rs.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// GetTemporaryLink resolves one path to a short-lived direct download URL.
func (c *Client) GetTemporaryLink(ctx context.Context, token string, path string) (TemporaryLink, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return TemporaryLink{}, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(temporaryLinkRequest{
		Path: path,
	}); err != nil {
		return TemporaryLink{}, fmt.Errorf("failed to encode request body: %w", err)
	}

	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+getTemporaryLinkPath, buf)
	if err != nil {
		return TemporaryLink{}, fmt.Errorf("failed to create request: %w", err)
	}

	rq.Header.Set("Content-Type", "application/json")
	rq.Header.Set("Authorization", "Bearer "+token)

	rs, err := c.httpClient.Do(rq)
	if err != nil {
		return TemporaryLink{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer rs.Body.Close()

	if rs.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(rs.Body)
		return TemporaryLink{}, fmt.Errorf("request failed with status code: %d, response: %s", rs.StatusCode, data)
	}

	var result temporaryLinkResponse
	if err = json.NewDecoder(rs.Body).Decode(&result); err != nil {
		return TemporaryLink{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return TemporaryLink{
		Path: path,
		URL:  result.Link,
	}, nil
}
