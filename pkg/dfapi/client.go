package dfapi

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/fivetwenty-io/dfapi/internal/constants"
)

// ResourceClient is the CRUD surface shared by every record kind.
type ResourceClient[T any] interface {
	// List returns the records matching query. A nil query lists everything.
	List(ctx context.Context, query *Query) ([]T, error)
	// Get returns one record by id.
	Get(ctx context.Context, id int, query *Query) (*T, error)
	// Create sends records as one batch and returns them in request order.
	Create(ctx context.Context, records []T) ([]T, error)
	// Update patches records as one batch and returns them in request order.
	Update(ctx context.Context, records []T) ([]T, error)
	// Delete removes the records with the given ids.
	Delete(ctx context.Context, ids []int, opts ...DeleteOption) error
}

// AppsClient manages applications.
type AppsClient interface {
	ResourceClient[App]
	DownloadPackage(ctx context.Context, id int, options PackageOptions) ([]byte, error)
	DownloadSDK(ctx context.Context, id int) ([]byte, error)
}

// ScriptsClient manages server-side scripts. Script ids are names, not numbers.
type ScriptsClient interface {
	List(ctx context.Context, includeUserScripts bool) ([]Script, error)
	Write(ctx context.Context, id, body string) (*Script, error)
	Run(ctx context.Context, id string, params map[string]any, logOutput bool) (string, error)
	Delete(ctx context.Context, id string) error
}

// EventsClient manages event listener registrations.
type EventsClient interface {
	List(ctx context.Context, allEvents, asCached bool) ([]EventCache, error)
	Register(ctx context.Context, requests []EventRequest) error
	Unregister(ctx context.Context, requests []EventRequest) error
}

// SystemConfigClient reads and writes instance configuration.
type SystemConfigClient interface {
	Get(ctx context.Context) (*SystemConfig, error)
	Set(ctx context.Context, config *SystemConfig) (*SystemConfig, error)
}

// ConstantsClient reads server enumerations.
type ConstantsClient interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (map[string]string, error)
}

// ResourceClients provides access to the record collection clients.
type ResourceClients interface {
	Apps() AppsClient
	AppGroups() ResourceClient[AppGroup]
	Roles() ResourceClient[Role]
	Users() ResourceClient[User]
	Services() ResourceClient[Service]
	EmailTemplates() ResourceClient[EmailTemplate]
	Devices() ResourceClient[Device]
	Providers() ResourceClient[Provider]
	ProviderUsers() ResourceClient[ProviderUser]
}

// SystemClients provides access to the non-collection system endpoints.
type SystemClients interface {
	Scripts() ScriptsClient
	Events() EventsClient
	SystemConfig() SystemConfigClient
	Constants() ConstantsClient
}

// EnvironmentClient reads server environment information.
type EnvironmentClient interface {
	GetEnvironment(ctx context.Context) (*Environment, error)
}

// Client is the full /rest/system surface.
type Client interface {
	ResourceClients
	SystemClients
	EnvironmentClient
}

// DeleteOption adds parameters to a delete request.
type DeleteOption func(params url.Values)

// WithDeleteStorage also removes the storage of apps hosted on a storage service.
func WithDeleteStorage(deleteStorage bool) DeleteOption {
	return func(params url.Values) {
		params.Set(constants.ParamDeleteStorage, strconv.FormatBool(deleteStorage))
	}
}

// WithDeleteParam sets an arbitrary query parameter on a delete request.
func WithDeleteParam(key, value string) DeleteOption {
	return func(params url.Values) {
		params.Set(key, value)
	}
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a dfapi.Client.
//
// # Authentication precedence
//
//  1. Email/Password: a session is opened at /rest/user/session and reopened
//     when the server answers 401. A SessionToken set alongside them is used
//     until the first 401 instead of logging in up front.
//  2. SessionToken alone: used as is and never refreshed.
//  3. Neither: requests carry only the application name and API key.
//
// APIKey and AppName are sent with every request regardless of the above.
type Config struct {
	// BaseURL: instance root, e.g. "https://df.example.com". dfclient.New adds
	// "https://" when no scheme is present and trims a trailing slash.
	BaseURL string

	// AppName: value of the X-DreamFactory-Application-Name header.
	AppName string
	// APIKey: value of the X-DreamFactory-Api-Key header.
	APIKey string
	// SessionToken: an existing session token. Refreshed only when Email and
	// Password are also set.
	SessionToken string
	// Email: account email used for session login.
	Email string
	// Password: account password used for session login.
	Password string

	// HTTPTimeout: per-attempt HTTP timeout. Defaults to 30s.
	HTTPTimeout time.Duration
	// RetryMax: retries for transient failures. 0 disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// RateLimit: maximum requests per second. 0 disables limiting.
	RateLimit float64
	// RateBurst: burst allowed above RateLimit. Defaults to 1.
	RateBurst int

	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// Interceptors: optional request/response hooks run around every call.
	Interceptors *InterceptorChain
}
