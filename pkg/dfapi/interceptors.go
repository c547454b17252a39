package dfapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/dfapi/internal/constants"
)

// MetadataStartTime is the Request.Metadata key holding the time the request
// was handed to the transport.
const MetadataStartTime = "start_time"

// Request represents an HTTP request that can be intercepted.
type Request struct {
	Method   string
	Path     string
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// Response represents an HTTP response that can be intercepted.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method":     req.Method,
			"path":       req.Path,
			"request_id": req.Headers.Get(constants.HeaderRequestID),
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		}

		if resp.Error != nil {
			fields["error"] = resp.Error.Error()
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// RateLimitInterceptor blocks until limiter admits the request or ctx ends.
func RateLimitInterceptor(limiter *rate.Limiter) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		err := limiter.Wait(ctx)
		if err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}

		return nil
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// MetricsCollector records call counts, latencies and request body sizes
// per resource.
type MetricsCollector struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	requestSize *prometheus.HistogramVec
}

// NewMetricsCollector creates the collectors and registers them with
// registerer. A nil registerer leaves them unregistered.
func NewMetricsCollector(registerer prometheus.Registerer) (*MetricsCollector, error) {
	collector := &MetricsCollector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dfapi",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of system API calls.",
			},
			[]string{"method", "resource", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dfapi",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Duration of system API calls.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "resource"},
		),
		requestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dfapi",
				Subsystem: "client",
				Name:      "request_size_bytes",
				Help:      "Size of system API request bodies.",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
			},
			[]string{"method", "resource"},
		),
	}

	if registerer != nil {
		for _, c := range []prometheus.Collector{collector.requests, collector.duration, collector.requestSize} {
			err := registerer.Register(c)
			if err != nil {
				return nil, fmt.Errorf("registering metrics: %w", err)
			}
		}
	}

	return collector, nil
}

// Describe implements prometheus.Collector.
func (m *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	m.requests.Describe(ch)
	m.duration.Describe(ch)
	m.requestSize.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	m.requests.Collect(ch)
	m.duration.Collect(ch)
	m.requestSize.Collect(ch)
}

// MetricsRequestInterceptor records the request start time and the size of
// any request body.
func MetricsRequestInterceptor(collector *MetricsCollector) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if len(req.Body) > 0 {
			collector.requestSize.WithLabelValues(req.Method, ResourceFromPath(req.Path)).Observe(float64(len(req.Body)))
		}

		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		if _, ok := req.Metadata[MetadataStartTime]; !ok {
			req.Metadata[MetadataStartTime] = time.Now()
		}

		return nil
	}
}

// MetricsResponseInterceptor records response metrics.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		resource := ResourceFromPath(req.Path)

		status := strconv.Itoa(resp.StatusCode)
		if resp.Error != nil && resp.StatusCode == 0 {
			status = "error"
		}

		collector.requests.WithLabelValues(req.Method, resource, status).Inc()

		if start, ok := startTime(req); ok {
			collector.duration.WithLabelValues(req.Method, resource).Observe(time.Since(start).Seconds())
		}

		return nil
	}
}

// ResourceFromPath returns the first segment below /rest/system, or "other".
func ResourceFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, constants.SystemPrefix+"/")
	if !ok {
		return "other"
	}

	resource, _, _ := strings.Cut(rest, "/")
	if resource == "" {
		return "other"
	}

	return resource
}

func startTime(req *Request) (time.Time, bool) {
	if req.Metadata == nil {
		return time.Time{}, false
	}

	start, ok := req.Metadata[MetadataStartTime].(time.Time)

	return start, ok
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	Threshold        int           // Number of failures before opening
	Timeout          time.Duration // Time before trying again
	SuccessThreshold int           // Number of successes to close
}

// CircuitBreaker tracks circuit state. It is safe for concurrent use.
type CircuitBreaker struct {
	mu          sync.Mutex
	config      *CircuitBreakerConfig
	failures    int
	successes   int
	state       string
	lastFailure time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = &CircuitBreakerConfig{
			Threshold:        constants.CircuitBreakerThreshold,
			Timeout:          constants.CircuitBreakerTimeout,
			SuccessThreshold: constants.CircuitBreakerSuccessThreshold,
		}
	}

	return &CircuitBreaker{
		config: config,
		state:  constants.StatusClosed,
	}
}

// State returns the current state: closed, open or half-open.
func (b *CircuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// CircuitBreakerRequestInterceptor checks circuit state before requests.
func CircuitBreakerRequestInterceptor(breaker *CircuitBreaker) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		breaker.mu.Lock()
		defer breaker.mu.Unlock()

		if breaker.state == constants.StatusOpen {
			if time.Since(breaker.lastFailure) <= breaker.config.Timeout {
				return ErrCircuitBreakerOpen
			}

			breaker.state = constants.StatusHalfOpen
			breaker.successes = 0
		}

		return nil
	}
}

// CircuitBreakerResponseInterceptor updates circuit state based on responses.
// Only transport failures and 5xx answers count as failures.
func CircuitBreakerResponseInterceptor(breaker *CircuitBreaker) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		breaker.mu.Lock()
		defer breaker.mu.Unlock()

		if resp.StatusCode >= http.StatusInternalServerError || (resp.Error != nil && resp.StatusCode == 0) {
			breaker.failures++
			breaker.lastFailure = time.Now()

			if breaker.failures >= breaker.config.Threshold || breaker.state == constants.StatusHalfOpen {
				breaker.state = constants.StatusOpen
			}

			return nil
		}

		switch breaker.state {
		case constants.StatusHalfOpen:
			breaker.successes++
			if breaker.successes >= breaker.config.SuccessThreshold {
				breaker.state = constants.StatusClosed
				breaker.failures = 0
			}
		case constants.StatusClosed:
			breaker.failures = 0
		}

		return nil
	}
}

// Publisher sends a message to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// AuditRecord is published once per completed call.
type AuditRecord struct {
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Resource   string    `json:"resource"`
	StatusCode int       `json:"status_code"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// AuditInterceptor publishes an AuditRecord for every call. Publish failures
// are logged and never fail the call.
func AuditInterceptor(publisher Publisher, subject string, logger Logger) ResponseInterceptor {
	if subject == "" {
		subject = constants.DefaultAuditSubject
	}

	if logger == nil {
		logger = NopLogger{}
	}

	return func(ctx context.Context, req *Request, resp *Response) error {
		record := AuditRecord{
			RequestID:  req.Headers.Get(constants.HeaderRequestID),
			Method:     req.Method,
			Path:       req.Path,
			Resource:   ResourceFromPath(req.Path),
			StatusCode: resp.StatusCode,
			Timestamp:  time.Now().UTC(),
		}

		if resp.Error != nil {
			record.Error = resp.Error.Error()
		}

		if start, ok := startTime(req); ok {
			record.DurationMS = time.Since(start).Milliseconds()
		}

		data, err := json.Marshal(record)
		if err != nil {
			logger.Warn("Failed to encode audit record", map[string]interface{}{"error": err.Error()})

			return nil
		}

		err = publisher.Publish(subject, data)
		if err != nil {
			logger.Warn("Failed to publish audit record", map[string]interface{}{
				"subject": subject,
				"error":   err.Error(),
			})
		}

		return nil
	}
}

// ConnectAudit opens a NATS connection suitable for AuditInterceptor.
func ConnectAudit(url string, opts ...nats.Option) (*nats.Conn, error) {
	opts = append([]nats.Option{nats.Name(constants.DefaultUserAgent + "-audit")}, opts...)

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return conn, nil
}
