// Package drive is a minimal Google Drive v3 client covering the
// folder-listing call the recall source needs.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://www.googleapis.com/drive/v3"
	pageSize       = 1000
)

// Client performs Google Drive API operations.
type Client interface {
	ListFolder(ctx context.Context, folderID string) ([]DriveFile, error)
}

// DriveFile is one file descriptor from a listing.
type DriveFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

type listResponse struct {
	Files         []DriveFile `json:"files"`
	NextPageToken string      `json:"nextPageToken"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Google Drive API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(2, 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ListFolder returns every file directly inside the folder, following
// pagination to the end.
func (c *httpClient) ListFolder(ctx context.Context, folderID string) ([]DriveFile, error) {
	var files []DriveFile
	pageToken := ""

	for {
		page, err := c.listPage(ctx, folderID, pageToken)
		if err != nil {
			return nil, err
		}
		files = append(files, page.Files...)

		if page.NextPageToken == "" {
			return files, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *httpClient) listPage(ctx context.Context, folderID, pageToken string) (*listResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "drive: rate limiter wait")
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("'%s' in parents and trashed = false", folderID))
	params.Set("fields", "nextPageToken,files(id,name,mimeType)")
	params.Set("pageSize", fmt.Sprintf("%d", pageSize))
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "drive: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "drive: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "drive: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("drive: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result listResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "drive: unmarshal response")
	}

	return &result, nil
}
