// Package http is the transport used by every resource client. It adds the
// DreamFactory headers, session handling, retries, rate limiting and
// interceptors on top of go-retryablehttp.
package http

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

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// TokenManager supplies the session token sent with each request.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// StaleTokenRefresher is implemented by token managers that can tell whether
// the token a request was rejected with has already been replaced.
type StaleTokenRefresher interface {
	RefreshStaleToken(ctx context.Context, rejected string) error
}

// Request is a single API call. Body may be nil, raw []byte, a string (sent
// as text/plain) or any value that encodes to JSON.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte

	sessionToken string
}

// Client sends requests to one DreamFactory instance.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager TokenManager
	logger       dfapi.Logger
	debug        bool
	userAgent    string
	appName      string
	apiKey       string
	limiter      *rate.Limiter
	interceptors *dfapi.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(logger dfapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig enables retries of transient failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax

		if waitMin > 0 {
			c.httpClient.RetryWaitMin = waitMin
		}

		if waitMax > 0 {
			c.httpClient.RetryWaitMax = waitMax
		}
	}
}

// WithHTTPTimeout sets the per-attempt timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithApplicationName sets the X-DreamFactory-Application-Name header.
func WithApplicationName(appName string) Option {
	return func(c *Client) {
		c.appName = appName
	}
}

// WithAPIKey sets the X-DreamFactory-Api-Key header.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithRateLimit limits outgoing requests per second. Zero disables it.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = nil

			return
		}

		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithInterceptors runs chain around every request.
func WithInterceptors(chain *dfapi.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a client for baseURL. tokenManager may be nil.
func NewClient(baseURL string, tokenManager TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		logger:       dfapi.NopLogger{},
		userAgent:    constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the instance root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req. For a status of 400 or above both the response and a
// *dfapi.ResponseError are returned. A 401 triggers one session refresh and
// one retry.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.do(ctx, req)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized || c.tokenManager == nil {
		return resp, err
	}

	var refreshErr error
	if refresher, ok := c.tokenManager.(StaleTokenRefresher); ok {
		refreshErr = refresher.RefreshStaleToken(ctx, resp.sessionToken)
	} else {
		refreshErr = c.tokenManager.RefreshToken(ctx)
	}

	if refreshErr != nil {
		c.logger.Debug("Session refresh failed", map[string]interface{}{"error": refreshErr.Error()})

		return resp, err
	}

	return c.do(ctx, req)
}

//nolint:funlen,cyclop
func (c *Client) do(ctx context.Context, req *Request) (*Response, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	headers, err := c.headers(ctx, contentType, req.Headers)
	if err != nil {
		return nil, err
	}

	intercepted := &dfapi.Request{
		Method:   req.Method,
		Path:     req.Path,
		Headers:  headers,
		Body:     body,
		Metadata: map[string]interface{}{dfapi.MetadataStartTime: time.Now()},
	}

	if c.interceptors != nil {
		err = c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
		if err != nil {
			return nil, err
		}
	}

	if c.limiter != nil {
		err = c.limiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	var rawBody interface{}
	if intercepted.Body != nil {
		rawBody = intercepted.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header = intercepted.Headers

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        target,
			"request_id": headers.Get(constants.HeaderRequestID),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		err = fmt.Errorf("executing request: %w", err)
		_ = c.intercept(ctx, intercepted, &dfapi.Response{Error: err})

		return nil, err
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status_code": httpResp.StatusCode,
			"body_size":   len(respBody),
			"request_id":  headers.Get(constants.HeaderRequestID),
		})
	}

	response := &Response{
		StatusCode:   httpResp.StatusCode,
		Headers:      httpResp.Header,
		Body:         respBody,
		sessionToken: httpReq.Header.Get(constants.HeaderSessionToken),
	}

	var callErr error
	if httpResp.StatusCode >= http.StatusBadRequest {
		callErr = dfapi.ParseResponseError(httpResp.StatusCode, respBody)
	}

	interceptErr := c.intercept(ctx, intercepted, &dfapi.Response{
		StatusCode: response.StatusCode,
		Headers:    response.Headers,
		Body:       response.Body,
		Error:      callErr,
	})
	if callErr != nil {
		return response, callErr
	}

	if interceptErr != nil {
		return response, interceptErr
	}

	return response, nil
}

func (c *Client) intercept(ctx context.Context, req *dfapi.Request, resp *dfapi.Response) error {
	if c.interceptors == nil {
		return nil
	}

	return c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
}

func (c *Client) headers(ctx context.Context, contentType string, extra map[string]string) (http.Header, error) {
	headers := make(http.Header)
	headers.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	headers.Set(constants.HeaderUserAgent, c.userAgent)
	headers.Set(constants.HeaderRequestID, uuid.NewString())

	if contentType != "" {
		headers.Set(constants.HeaderContentType, contentType)
	}

	if c.appName != "" {
		headers.Set(constants.HeaderApplicationName, c.appName)
	}

	if c.apiKey != "" {
		headers.Set(constants.HeaderAPIKey, c.apiKey)
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting session token: %w", err)
		}

		if token != "" {
			headers.Set(constants.HeaderSessionToken, token)
		}
	}

	for key, value := range extra {
		headers.Set(key, value)
	}

	return headers, nil
}

func encodeBody(body any) ([]byte, string, error) {
	switch value := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return value, constants.ContentTypeJSON, nil
	case string:
		return []byte(value), constants.ContentTypeText, nil
	case io.Reader:
		var buf bytes.Buffer

		_, err := buf.ReadFrom(value)
		if err != nil {
			return nil, "", fmt.Errorf("reading request body: %w", err)
		}

		return buf.Bytes(), constants.ContentTypeText, nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, "", fmt.Errorf("marshaling request body: %w", err)
		}

		return data, constants.ContentTypeJSON, nil
	}
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post sends a POST request.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Put sends a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch sends a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
		Query:  query,
	})
}
