package dfapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

var errPublish = errors.New("nats: connection closed")

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	messages [][]byte
	err      error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}

	p.subjects = append(p.subjects, subject)
	p.messages = append(p.messages, data)

	return nil
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, map[string]interface{}) {}
func (l *recordingLogger) Info(string, map[string]interface{})  {}
func (l *recordingLogger) Error(string, map[string]interface{}) {}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.warns = append(l.warns, msg)
}

func newRequest(method, path string) *dfapi.Request {
	headers := http.Header{}
	headers.Set("X-Request-ID", "req-1")

	return &dfapi.Request{
		Method:   method,
		Path:     path,
		Headers:  headers,
		Metadata: map[string]interface{}{dfapi.MetadataStartTime: time.Now().Add(-20 * time.Millisecond)},
	}
}

func TestInterceptorChain(t *testing.T) {
	t.Parallel()

	chain := dfapi.NewInterceptorChain()
	ctx := context.Background()

	var order []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *dfapi.Request) error {
		order = append(order, "first")

		return nil
	})
	chain.AddRequestInterceptor(dfapi.HeaderInterceptor(map[string]string{"X-Tenant": "blue"}))
	chain.AddRequestInterceptor(func(ctx context.Context, req *dfapi.Request) error {
		order = append(order, "third")

		return nil
	})

	req := &dfapi.Request{Method: "GET", Path: "/rest/system/role"}
	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
	assert.Equal(t, []string{"first", "third"}, order)
	assert.Equal(t, "blue", req.Headers.Get("X-Tenant"))

	chain.AddResponseInterceptor(func(ctx context.Context, req *dfapi.Request, resp *dfapi.Response) error {
		return dfapi.ErrCircuitBreakerOpen
	})

	err := chain.ExecuteResponseInterceptors(ctx, req, &dfapi.Response{StatusCode: 200})
	require.ErrorIs(t, err, dfapi.ErrCircuitBreakerOpen)
}

func TestRateLimitInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := dfapi.RateLimitInterceptor(rate.NewLimiter(1, 1))

	require.NoError(t, interceptor(context.Background(), newRequest("GET", "/rest/system/app")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := interceptor(ctx, newRequest("GET", "/rest/system/app"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestResourceFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "role", dfapi.ResourceFromPath("/rest/system/role"))
	assert.Equal(t, "user", dfapi.ResourceFromPath("/rest/system/user/4"))
	assert.Equal(t, "other", dfapi.ResourceFromPath("/rest/user/session"))
	assert.Equal(t, "other", dfapi.ResourceFromPath("/rest/system/"))
}

func TestMetricsCollector(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()

	collector, err := dfapi.NewMetricsCollector(registry)
	require.NoError(t, err)

	before := dfapi.MetricsRequestInterceptor(collector)
	after := dfapi.MetricsResponseInterceptor(collector)
	ctx := context.Background()

	create := newRequest("POST", "/rest/system/user")
	create.Body = []byte(`{"record":[{"name":"ops"}]}`)

	for _, call := range []struct {
		req  *dfapi.Request
		resp *dfapi.Response
	}{
		{newRequest("GET", "/rest/system/role"), &dfapi.Response{StatusCode: 200}},
		{newRequest("GET", "/rest/system/role/2"), &dfapi.Response{StatusCode: 200}},
		{create, &dfapi.Response{StatusCode: 400}},
		{&dfapi.Request{Method: "GET", Path: "/rest/system/app"}, &dfapi.Response{Error: context.DeadlineExceeded}},
	} {
		require.NoError(t, before(ctx, call.req))
		require.NoError(t, after(ctx, call.req, call.resp))
	}

	expected := `
# HELP dfapi_client_requests_total Total number of system API calls.
# TYPE dfapi_client_requests_total counter
dfapi_client_requests_total{method="GET",resource="app",status="error"} 1
dfapi_client_requests_total{method="GET",resource="role",status="200"} 2
dfapi_client_requests_total{method="POST",resource="user",status="400"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "dfapi_client_requests_total"))

	count, err := testutil.GatherAndCount(registry, "dfapi_client_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Only the call with a body is sized.
	count, err = testutil.GatherAndCount(registry, "dfapi_client_request_size_bytes")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = dfapi.NewMetricsCollector(registry)
	require.Error(t, err)
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	breaker := dfapi.NewCircuitBreaker(&dfapi.CircuitBreakerConfig{
		Threshold:        2,
		Timeout:          20 * time.Millisecond,
		SuccessThreshold: 1,
	})
	before := dfapi.CircuitBreakerRequestInterceptor(breaker)
	after := dfapi.CircuitBreakerResponseInterceptor(breaker)
	ctx := context.Background()
	req := newRequest("GET", "/rest/system/service")

	// Client errors never trip the breaker.
	require.NoError(t, after(ctx, req, &dfapi.Response{StatusCode: 404}))
	require.NoError(t, after(ctx, req, &dfapi.Response{StatusCode: 404}))
	assert.Equal(t, "closed", breaker.State())

	require.NoError(t, after(ctx, req, &dfapi.Response{StatusCode: 503}))
	require.NoError(t, after(ctx, req, &dfapi.Response{StatusCode: 500}))
	assert.Equal(t, "open", breaker.State())
	require.ErrorIs(t, before(ctx, req), dfapi.ErrCircuitBreakerOpen)

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, before(ctx, req))
	assert.Equal(t, "half-open", breaker.State())

	require.NoError(t, after(ctx, req, &dfapi.Response{StatusCode: 200}))
	assert.Equal(t, "closed", breaker.State())
}

func TestAuditInterceptor(t *testing.T) {
	t.Parallel()

	t.Run("publishes record", func(t *testing.T) {
		t.Parallel()

		publisher := &fakePublisher{}
		interceptor := dfapi.AuditInterceptor(publisher, "", nil)

		err := interceptor(context.Background(), newRequest("DELETE", "/rest/system/app"),
			&dfapi.Response{StatusCode: 404, Error: errors.New("not found")})
		require.NoError(t, err)

		require.Len(t, publisher.messages, 1)
		assert.Equal(t, "dfapi.audit", publisher.subjects[0])

		var record dfapi.AuditRecord
		require.NoError(t, json.Unmarshal(publisher.messages[0], &record))
		assert.Equal(t, "req-1", record.RequestID)
		assert.Equal(t, "DELETE", record.Method)
		assert.Equal(t, "app", record.Resource)
		assert.Equal(t, 404, record.StatusCode)
		assert.Equal(t, "not found", record.Error)
		assert.GreaterOrEqual(t, record.DurationMS, int64(20))
	})

	t.Run("publish failure does not fail the call", func(t *testing.T) {
		t.Parallel()

		logger := &recordingLogger{}
		interceptor := dfapi.AuditInterceptor(&fakePublisher{err: errPublish}, "ops.audit", logger)

		err := interceptor(context.Background(), newRequest("GET", "/rest/system/role"), &dfapi.Response{StatusCode: 200})
		require.NoError(t, err)
		assert.Equal(t, []string{"Failed to publish audit record"}, logger.warns)
	})
}
