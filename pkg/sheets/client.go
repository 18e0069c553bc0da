// Package sheets is a minimal Google Sheets v4 client covering the
// values:batchGet call the refresher needs.
package sheets

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

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Client performs Google Sheets API operations.
type Client interface {
	BatchGetValues(ctx context.Context, spreadsheetID string, ranges []string) (*BatchGetResponse, error)
}

// BatchGetResponse is the response from values:batchGet.
type BatchGetResponse struct {
	SpreadsheetID string       `json:"spreadsheetId"`
	ValueRanges   []ValueRange `json:"valueRanges"`
}

// ValueRange is one named block of formatted cell values.
type ValueRange struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
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

// WithLimiter overrides the default request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Google Sheets API client. The default limiter stays
// inside the per-minute read quota of an API-key project.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(1, 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) BatchGetValues(ctx context.Context, spreadsheetID string, ranges []string) (*BatchGetResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "sheets: rate limiter wait")
	}

	params := url.Values{}
	for _, r := range ranges {
		params.Add("ranges", r)
	}
	params.Set("valueRenderOption", "FORMATTED_VALUE")
	params.Set("key", c.apiKey)

	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values:batchGet?%s",
		c.baseURL, url.PathEscape(spreadsheetID), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("sheets: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result BatchGetResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "sheets: unmarshal response")
	}

	return &result, nil
}
