// Package http provides the default Transport implementation: a
// retry-capable HTTP client injecting JSON:API content types and bearer
// authentication.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dbendilas/jsonapi/internal/constants"
	"github.com/dbendilas/jsonapi/pkg/jsonapi"
)

// TokenProvider supplies the bearer token injected into requests. A nil
// provider sends unauthenticated requests.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider for a fixed token.
type StaticToken string

// GetToken implements TokenProvider.
func (t StaticToken) GetToken(_ context.Context) (string, error) {
	return string(t), nil
}

// Client executes HTTP exchanges against a JSON:API server. It implements
// jsonapi.Transport.
type Client struct {
	baseURL       string
	tokenProvider TokenProvider
	httpClient    *retryablehttp.Client
	userAgent     string
	logger        jsonapi.Logger
	debug         bool
	interceptors  *jsonapi.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets a logger for debug output.
func WithLogger(logger jsonapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response debug logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig configures transport-level retries.
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = retryWaitMin
		c.httpClient.RetryWaitMax = retryWaitMax
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithInterceptors attaches a request/response interceptor chain.
func WithInterceptors(chain *jsonapi.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a new transport client. Retries are disabled unless
// configured through WithRetryConfig.
func NewClient(baseURL string, tokenProvider TokenProvider, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		tokenProvider: tokenProvider,
		httpClient:    retryClient,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Execute implements jsonapi.Transport. Non-success responses are decoded
// into a jsonapi.ResponseError carrying status and body.
func (c *Client) Execute(ctx context.Context, req *jsonapi.Request) (*jsonapi.Response, error) {
	fullURL, err := c.resolveURL(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Accept", constants.ContentTypeJSONAPI)

	if len(req.Body) > 0 {
		if req.Bulk {
			httpReq.Header.Set("Content-Type", constants.ContentTypeJSONAPIBulk)
		} else {
			httpReq.Header.Set("Content-Type", constants.ContentTypeJSONAPI)
		}
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	if c.tokenProvider != nil {
		token, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if c.interceptors != nil {
		if err := c.interceptors.ExecuteRequestInterceptors(ctx, req); err != nil {
			return nil, err
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &jsonapi.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.interceptors != nil {
		if err := c.interceptors.ExecuteResponseInterceptors(ctx, req, resp); err != nil {
			return nil, err
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("API Response", map[string]interface{}{
			"method":      req.Method,
			"url":         fullURL,
			"status_code": resp.StatusCode,
		})
	}

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return resp, jsonapi.ParseResponseError(httpResp.StatusCode, respBody)
	}

	return resp, nil
}

// resolveURL joins the base URL with a possibly-absolute request URL and
// merges extra query parameters into any carried by the URL itself.
// Pagination links may be absolute or host-relative; both pass through.
func (c *Client) resolveURL(requestURL string, query url.Values) (string, error) {
	target := requestURL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.baseURL + target
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parsing request URL %q: %w", requestURL, err)
	}

	if len(query) > 0 {
		merged := parsed.Query()
		for key, values := range query {
			merged[key] = values
		}

		parsed.RawQuery = merged.Encode()
	}

	return parsed.String(), nil
}
