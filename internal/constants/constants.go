package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as session login.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are disabled unless a caller opts in.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Circuit breaker defaults.
const (
	CircuitBreakerThreshold        = 5
	CircuitBreakerTimeout          = 30 * time.Second
	CircuitBreakerSuccessThreshold = 2

	StatusClosed   = "closed"
	StatusOpen     = "open"
	StatusHalfOpen = "half-open"
)

// DreamFactory REST paths.
const (
	// RestPrefix is prepended to every API path.
	RestPrefix = "/rest"

	// SystemPrefix is the root of the administrative system API.
	SystemPrefix = RestPrefix + "/system"

	// SessionPath is the user session login endpoint.
	SessionPath = RestPrefix + "/user/session"
)

// DreamFactory request headers.
const (
	HeaderApplicationName = "X-DreamFactory-Application-Name"
	HeaderSessionToken    = "X-DreamFactory-Session-Token"
	HeaderAPIKey          = "X-DreamFactory-Api-Key"
	HeaderRequestID       = "X-Request-ID"
	HeaderContentType     = "Content-Type"
	HeaderAccept          = "Accept"
	HeaderUserAgent       = "User-Agent"

	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// Wire-level keys shared by every resource endpoint.
const (
	// RecordKey is the batch envelope container key.
	RecordKey = "record"

	// ResourceKey is used by listing endpoints that are not record collections.
	ResourceKey = "resource"

	// ErrorKey holds the remote error payload.
	ErrorKey = "error"

	// AllSentinel requests all fields or all relations.
	AllSentinel = "*"
)

// Query parameter names.
const (
	ParamIDs           = "ids"
	ParamFilter        = "filter"
	ParamLimit         = "limit"
	ParamOffset        = "offset"
	ParamOrder         = "order"
	ParamFields        = "fields"
	ParamRelated       = "related"
	ParamIncludeCount  = "include_count"
	ParamIncludeSchema = "include_schema"

	ParamDeleteStorage      = "delete_storage"
	ParamPackage            = "pkg"
	ParamSDK                = "sdk"
	ParamIncludeFiles       = "include_files"
	ParamIncludeServices    = "include_services"
	ParamIncludeAppSchema   = "include_schema"
	ParamIncludeUserScripts = "include_user_scripts"
	ParamLogOutput          = "log_output"
	ParamAllEvents          = "all_events"
	ParamAsCached           = "as_cached"
)

// Display and CLI defaults.
const (
	// DefaultUserAgent identifies this client to the server.
	DefaultUserAgent = "dfapi-go"

	// DefaultListLimit is the page size used by the CLI list commands.
	DefaultListLimit = 50

	// TimestampDisplayFormat is used when printing timestamps in tables.
	TimestampDisplayFormat = "2006-01-02 15:04:05"

	// DefaultAuditSubject is the NATS subject audit records are published to.
	DefaultAuditSubject = "dfapi.audit"
)
