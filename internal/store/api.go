package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/onecx/workspace-menu/internal/domain"
)

// DefaultAPITimeout bounds every request of an APIClient.
const DefaultAPITimeout = 30 * time.Second

// APIError is returned for non-success responses of the menu API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s returned %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unwrap maps 404 responses onto ErrItemNotFound and 409 onto
// ErrDuplicateItem so callers can match them with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrItemNotFound
	case http.StatusConflict:
		return ErrDuplicateItem
	}
	return nil
}

// APIClient talks to the workspace menu REST API.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	header     http.Header
}

// APIClientOption configures an APIClient.
type APIClientOption func(*APIClient)

// WithHTTPClient sets the HTTP client used for requests. The client is used
// as given; WithTimeout does not modify it.
func WithHTTPClient(client *http.Client) APIClientOption {
	return func(c *APIClient) { c.httpClient = client }
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) APIClientOption {
	return func(c *APIClient) { c.timeout = d }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) APIClientOption {
	return func(c *APIClient) { c.header.Add(key, value) }
}

// NewAPIClient creates a client for the API rooted at baseURL.
func NewAPIClient(baseURL string, opts ...APIClientOption) *APIClient {
	c := &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    DefaultAPITimeout,
		header:     make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

type menuStructureRequest struct {
	MenuKeys []string `json:"menuKeys"`
}

// FetchMenu requests the structure of one menu key.
func (c *APIClient) FetchMenu(ctx context.Context, ref domain.MenuRef) (*domain.MenuStructure, error) {
	var out domain.MenuStructure
	err := c.do(ctx, http.MethodPost, c.workspacePath(ref.Workspace, "menu", "structure"),
		menuStructureRequest{MenuKeys: []string{ref.MenuKey}}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// WritePositions sends a position batch.
func (c *APIClient) WritePositions(ctx context.Context, ref domain.MenuRef, updates []domain.PositionUpdate) error {
	return c.do(ctx, http.MethodPatch, c.workspacePath(ref.Workspace, "menuItems"), updates, nil)
}

// CreateItem creates a menu item.
func (c *APIClient) CreateItem(ctx context.Context, ref domain.MenuRef, item domain.MenuItemRecord) error {
	return c.do(ctx, http.MethodPost, c.workspacePath(ref.Workspace, "menuItems"), item, nil)
}

// UpdateItem replaces a menu item.
func (c *APIClient) UpdateItem(ctx context.Context, ref domain.MenuRef, item domain.MenuItemRecord) error {
	return c.do(ctx, http.MethodPut, c.workspacePath(ref.Workspace, "menuItems", item.ID), item, nil)
}

// DeleteItems deletes each item in turn and stops at the first failure.
// ids list parents before their descendants, so they are sent in reverse
// to delete children first.
func (c *APIClient) DeleteItems(ctx context.Context, ref domain.MenuRef, ids []string) error {
	for _, id := range slices.Backward(ids) {
		if err := c.do(ctx, http.MethodDelete, c.workspacePath(ref.Workspace, "menuItems", id), nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// Close releases idle connections.
func (c *APIClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *APIClient) workspacePath(workspace string, parts ...string) string {
	segs := []string{"workspaces", url.PathEscape(workspace)}
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	return "/" + strings.Join(segs, "/")
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
