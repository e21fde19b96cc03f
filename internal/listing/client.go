// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package listing is the HTTP client for the property listing REST API.
// It implements fetch.Source and fetch.SuggestSource.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/estate-search/internal/httputil"
	"github.com/pdiddy/estate-search/internal/query"
	"github.com/pdiddy/estate-search/pkg/types"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

// CredentialProvider supplies the bearer token for requests. An empty
// token sends the request without an Authorization header.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client queries the listing API.
type Client struct {
	HTTP *http.Client

	cfg    types.ListingConfig
	creds  CredentialProvider
	logger *zap.Logger
}

// NewClient returns a Client for cfg. creds and logger may be nil.
func NewClient(cfg types.ListingConfig, creds CredentialProvider, logger *zap.Logger) *Client {
	cfg.ApplyDefaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		creds:  creds,
		logger: logger,
	}
}

// PageSize returns the number of listings requested per page.
func (c *Client) PageSize() int { return c.cfg.PageSize }

// wireProperty accepts both "id" and Mongo-style "_id" identifiers.
type wireProperty struct {
	types.PropertySummary
	MongoID string `json:"_id"`
}

func (w wireProperty) summary() types.PropertySummary {
	p := w.PropertySummary
	if p.ID == "" {
		p.ID = w.MongoID
	}
	return p
}

func summaries(in []wireProperty) []types.PropertySummary {
	out := make([]types.PropertySummary, 0, len(in))
	for _, w := range in {
		out = append(out, w.summary())
	}
	return out
}

type listResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Data    *struct {
		Properties  []wireProperty `json:"properties"`
		Total       int            `json:"total"`
		TotalPages  int            `json:"totalPages"`
		CurrentPage int            `json:"currentPage"`
	} `json:"data"`
}

type searchResponse struct {
	Success    bool           `json:"success"`
	Error      string         `json:"error"`
	Message    string         `json:"message"`
	Properties []wireProperty `json:"properties"`
	Data       *struct {
		Properties []wireProperty `json:"properties"`
	} `json:"data"`
}

// ListProperties fetches the page of listings matching intent.
func (c *Client) ListProperties(ctx context.Context, intent types.SearchIntent) (*types.ResultPage, error) {
	intent = intent.Normalize()
	params := listParams(intent, c.cfg.PageSize)

	var lr listResponse
	status, err := c.get(ctx, "list properties", "/properties", params, &lr)
	if err != nil {
		return nil, err
	}
	if !lr.Success {
		return nil, &BackendError{Status: status, Message: firstNonEmpty(lr.Error, lr.Message, "request unsuccessful")}
	}
	if lr.Data == nil {
		return nil, &BackendError{Status: status, Message: "response has no data"}
	}

	page := &types.ResultPage{
		Items:       summaries(lr.Data.Properties),
		TotalCount:  lr.Data.Total,
		TotalPages:  lr.Data.TotalPages,
		CurrentPage: lr.Data.CurrentPage,
	}
	if page.TotalPages <= 0 {
		page.TotalPages = types.PageCount(page.TotalCount, c.cfg.PageSize)
	}
	if page.CurrentPage <= 0 {
		page.CurrentPage = intent.Page
	}
	return page, nil
}

// Search returns listings matching a free-text term for type-ahead.
func (c *Client) Search(ctx context.Context, term string) ([]types.PropertySummary, error) {
	params := url.Values{"q": {strings.TrimSpace(term)}}

	var sr searchResponse
	status, err := c.get(ctx, "search properties", "/properties/search", params, &sr)
	if err != nil {
		return nil, err
	}
	if !sr.Success {
		return nil, &BackendError{Status: status, Message: firstNonEmpty(sr.Error, sr.Message, "request unsuccessful")}
	}
	if len(sr.Properties) == 0 && sr.Data != nil {
		return summaries(sr.Data.Properties), nil
	}
	return summaries(sr.Properties), nil
}

// listParams builds the backend query: the shareable parameters plus the
// page and limit the backend always expects.
func listParams(intent types.SearchIntent, pageSize int) url.Values {
	v := query.Serialize(intent)
	v.Set(query.ParamPage, strconv.Itoa(intent.Page))
	v.Set("limit", strconv.Itoa(pageSize))
	return v
}

// get issues a GET, retrying throttled responses, and decodes a 2xx JSON
// body into out. It returns the final HTTP status.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) (int, error) {
	reqURL := c.cfg.BaseURL + path + "?" + params.Encode()
	reqID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-Request-ID", reqID)
	if c.creds != nil {
		token, err := c.creds.Token(ctx)
		if err != nil {
			return 0, fmt.Errorf("loading credentials: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.cfg.MaxRetries, c.logger)
	fields := []zap.Field{
		zap.String("client", "listing"),
		zap.String("method", http.MethodGet),
		zap.String("url", reqURL),
		zap.String("request_id", reqID),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		c.logger.Debug("http_client_request", append(fields, zap.Error(err))...)
		return 0, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.logger.Debug("http_client_request", append(fields, zap.Int("status", resp.StatusCode))...)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, &NetworkError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &BackendError{Status: resp.StatusCode, Message: errorMessage(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, &BackendError{Status: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return resp.StatusCode, nil
}

// errorMessage extracts the backend's error text from a failed response.
func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if msg := firstNonEmpty(e.Error, e.Message); msg != "" {
			return msg
		}
	}
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "<") {
		return ""
	}
	if r := []rune(text); len(r) > 200 {
		text = string(r[:197]) + "..."
	}
	return text
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
