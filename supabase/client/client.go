// Package client is the Supabase transport for the front-of-house
// service layer: PostgREST row operations, remote procedures, and
// GoTrue auth. Realtime subscriptions live in realtime.go and the
// retry/circuit-breaker transport in resilience.go.
package client

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
)

// Client is a Supabase REST API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// New creates a new Supabase client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("APIKey is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// BaseURL returns the configured project URL.
func (c *Client) BaseURL() string { return c.baseURL }

// APIKey returns the configured key.
func (c *Client) APIKey() string { return c.apiKey }

// =============================================================================
// Database Operations (PostgREST)
// =============================================================================

// From starts a query builder for a table.
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{client: c, table: table}
}

// QueryBuilder builds PostgREST queries.
type QueryBuilder struct {
	client  *Client
	table   string
	columns string
	filters []string
	orders  []string
	limit   int
	offset  int
	single  bool
}

// Select specifies columns (and PostgREST embedded resources) to select.
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

// Eq adds an equality filter.
func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=eq.%v", column, value))
	return q
}

// Neq adds a not-equal filter.
func (q *QueryBuilder) Neq(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=neq.%v", column, value))
	return q
}

// Lte adds a less-than-or-equal filter.
func (q *QueryBuilder) Lte(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=lte.%v", column, value))
	return q
}

// In adds an IN filter.
func (q *QueryBuilder) In(column string, values []string) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=in.(%s)", column, strings.Join(values, ",")))
	return q
}

// Is adds an IS filter (for NULL, TRUE, FALSE).
func (q *QueryBuilder) Is(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=is.%v", column, value))
	return q
}

// Order adds an ORDER BY clause.
func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.orders = append(q.orders, fmt.Sprintf("%s.%s", column, dir))
	return q
}

// Limit sets the LIMIT.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Offset sets the OFFSET.
func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	q.offset = n
	return q
}

// Single expects exactly one row in the response.
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

func (q *QueryBuilder) queryString() string {
	params := url.Values{}
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	for _, f := range q.filters {
		parts := strings.SplitN(f, "=", 2)
		if len(parts) == 2 {
			params.Add(parts[0], parts[1])
		}
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	if q.limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", q.limit))
	}
	if q.offset > 0 {
		params.Set("offset", fmt.Sprintf("%d", q.offset))
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

// Get executes the SELECT and decodes the rows into dest.
func (q *QueryBuilder) Get(ctx context.Context, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.restURL()+q.queryString(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q.client.setHeaders(ctx, req)
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}

	resp, err := q.client.do(req)
	if err != nil {
		return err
	}
	if err := resp.Error(); err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	return resp.JSON(dest)
}

// Insert inserts rows and, when dest is non-nil, decodes the
// representation returned by PostgREST.
func (q *QueryBuilder) Insert(ctx context.Context, data any, dest any) error {
	return q.write(ctx, http.MethodPost, data, dest, "return=representation")
}

// Update patches rows matching the filters.
func (q *QueryBuilder) Update(ctx context.Context, data any, dest any) error {
	return q.write(ctx, http.MethodPatch, data, dest, "return=representation")
}

// Upsert inserts rows, merging on conflict.
func (q *QueryBuilder) Upsert(ctx context.Context, data any, dest any) error {
	return q.write(ctx, http.MethodPost, data, dest, "resolution=merge-duplicates,return=representation")
}

// Delete removes rows matching the filters.
func (q *QueryBuilder) Delete(ctx context.Context) error {
	return q.write(ctx, http.MethodDelete, nil, nil, "return=minimal")
}

func (q *QueryBuilder) write(ctx context.Context, method string, data, dest any, prefer string) error {
	var body io.Reader
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal data: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.restURL()+q.queryString(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q.client.setHeaders(ctx, req)
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	req.Header.Set("Prefer", prefer)

	resp, err := q.client.do(req)
	if err != nil {
		return err
	}
	if err := resp.Error(); err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	return resp.JSON(dest)
}

func (q *QueryBuilder) restURL() string {
	return fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, q.table)
}

// =============================================================================
// RPC (Stored Procedures)
// =============================================================================

// RPC calls a stored procedure and decodes the result into dest when
// dest is non-nil.
func (c *Client) RPC(ctx context.Context, fn string, params any, dest any) error {
	var body io.Reader
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		body = bytes.NewReader(data)
	}

	reqURL := fmt.Sprintf("%s/rest/v1/rpc/%s", c.baseURL, fn)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(ctx, req)
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if err := resp.Error(); err != nil {
		return err
	}
	if dest == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.JSON(dest)
}

// =============================================================================
// Response Types
// =============================================================================

// Response is a generic API response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// APIError is a failed Supabase response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase: %s (status %d)", e.Message, e.StatusCode)
}

// IsNotFound reports whether the error is a missing-row response.
// PostgREST answers 406 when Accept demands a single object and no row
// matches.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && (apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusNotAcceptable)
}

// Error returns an *APIError if the response indicates failure.
func (r *Response) Error() error {
	if r.StatusCode < 400 {
		return nil
	}
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Msg     string `json:"msg"`
	}
	msg := http.StatusText(r.StatusCode)
	if err := json.Unmarshal(r.Body, &errResp); err == nil {
		switch {
		case errResp.Message != "":
			msg = errResp.Message
		case errResp.Error != "":
			msg = errResp.Error
		case errResp.Msg != "":
			msg = errResp.Msg
		}
	}
	return &APIError{StatusCode: r.StatusCode, Message: msg}
}

// =============================================================================
// Internal Methods
// =============================================================================

type accessTokenKey struct{}

// WithAccessToken stores a per-request user token on the context. Row
// operations issued with that context run under the user's row-level
// security policies instead of the configured key.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFromContext returns the per-request token, or "".
func AccessTokenFromContext(ctx context.Context) string {
	if tok, ok := ctx.Value(accessTokenKey{}).(string); ok {
		return tok
	}
	return ""
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	token := c.apiKey
	if tok := AccessTokenFromContext(ctx); tok != "" {
		token = tok
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}
