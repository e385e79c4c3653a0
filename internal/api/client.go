package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/crypton-club/clubdata/internal/club"
)

// Client talks to the club REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultBaseURL   = "http://127.0.0.1:3001/api"
	defaultUserAgent = "clubdata/0.1"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 4 << 10
)

// StatusError reports a non-2xx answer other than 404.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// NewClient builds a Client for the API rooted at base, for example
// "http://127.0.0.1:3001/api". A bare host:port is accepted too.
func NewClient(base string, timeout time.Duration) (*Client, error) {
	u, err := parseBaseURL(base)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// List fetches a whole collection and validates every record.
func List[T club.Record[T]](ctx context.Context, c *Client, resource club.Resource) ([]T, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.path(resource), nil, &raw); err != nil {
		return nil, err
	}
	items, err := club.DecodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", resource, err)
	}
	return items, nil
}

// Create posts a single record and returns the record the server stored.
func Create[T club.Record[T]](ctx context.Context, c *Client, rec T) (T, error) {
	var saved T
	if c == nil {
		return saved, fmt.Errorf("client is nil")
	}
	if err := c.do(ctx, http.MethodPost, c.path(rec.Resource()), rec, &saved); err != nil {
		return saved, err
	}
	if err := saved.Validate(); err != nil {
		return saved, fmt.Errorf("decode created %s: %w", rec.Resource(), err)
	}
	return saved, nil
}

// Replace puts rec over the stored record with the same id. A missing
// record yields club.ErrNotFound.
func Replace[T club.Record[T]](ctx context.Context, c *Client, rec T) (T, error) {
	var saved T
	if c == nil {
		return saved, fmt.Errorf("client is nil")
	}
	if err := c.do(ctx, http.MethodPut, c.path(rec.Resource(), rec.Key().String()), rec, &saved); err != nil {
		return saved, err
	}
	if err := saved.Validate(); err != nil {
		return saved, fmt.Errorf("decode updated %s: %w", rec.Resource(), err)
	}
	return saved, nil
}

// SuccessResponse is the body of DELETE and bulk POST answers.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, resource club.Resource, id club.ID) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var resp SuccessResponse
	if err := c.do(ctx, http.MethodDelete, c.path(resource, id.String()), nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("delete %s/%s: server reported failure", resource, id)
	}
	return nil
}

// ReplaceAll posts the entire collection, replacing what the server holds.
func ReplaceAll[T club.Record[T]](ctx context.Context, c *Client, resource club.Resource, items []T) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if items == nil {
		items = []T{}
	}
	var resp SuccessResponse
	if err := c.do(ctx, http.MethodPost, c.path(resource), items, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("replace %s: server reported failure", resource)
	}
	return nil
}

func (c *Client) path(resource club.Resource, rest ...string) string {
	parts := append([]string{string(resource)}, rest...)
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, rel string, body, dest any) error {
	reqURL := c.baseURL.JoinPath(rel)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("api %s %s: %w", method, rel, club.ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: rel, Status: resp.StatusCode, Body: errorMessage(snippet)}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == code
}

func parseBaseURL(base string) (*url.URL, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", base, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api base %q: missing host", base)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u, nil
}
