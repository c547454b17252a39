package client

import (
	"context"

	"github.com/fivetwenty-io/dfapi/internal/auth"
	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/internal/http"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

var _ dfapi.Client = (*Client)(nil)

// Client implements the dfapi.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager http.TokenManager
	baseURL      string
	logger       dfapi.Logger

	// Resource clients
	apps           *AppsClient
	appGroups      *ResourceClient[dfapi.AppGroup]
	roles          *ResourceClient[dfapi.Role]
	users          *ResourceClient[dfapi.User]
	services       *ResourceClient[dfapi.Service]
	emailTemplates *ResourceClient[dfapi.EmailTemplate]
	devices        *ResourceClient[dfapi.Device]
	providers      *ResourceClient[dfapi.Provider]
	providerUsers  *ResourceClient[dfapi.ProviderUser]

	// System clients
	scripts      *ScriptsClient
	events       *EventsClient
	systemConfig *SystemConfigClient
	constants    *ConstantsClient
}

// createTokenManager creates appropriate token manager based on config.
func createTokenManager(config *dfapi.Config) http.TokenManager {
	if config.Email != "" && config.Password != "" {
		return auth.NewSessionTokenManager(&auth.SessionConfig{
			BaseURL:  config.BaseURL,
			AppName:  config.AppName,
			APIKey:   config.APIKey,
			Email:    config.Email,
			Password: config.Password,
			Token:    config.SessionToken,
		})
	}

	if config.SessionToken != "" {
		return auth.NewStaticTokenManager(config.SessionToken)
	}

	return nil // No session
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *dfapi.Config) []http.Option {
	httpOpts := []http.Option{
		http.WithApplicationName(config.AppName),
		http.WithAPIKey(config.APIKey),
		http.WithHTTPTimeout(config.HTTPTimeout),
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RateLimit, config.RateBurst))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	return httpOpts
}

// New creates a new system API client. No request is made; a session is
// opened on the first call that needs one.
func New(ctx context.Context, config *dfapi.Config) (*Client, error) {
	if config == nil {
		return nil, dfapi.ErrConfigRequired
	}

	return NewWithTokenManager(config, createTokenManager(config))
}

// NewWithTokenManager creates a new system API client with a custom token manager.
func NewWithTokenManager(config *dfapi.Config, tokenManager http.TokenManager) (*Client, error) {
	if config == nil {
		return nil, dfapi.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, dfapi.ErrBaseURLRequired
	}

	httpClient := http.NewClient(config.BaseURL, tokenManager, createHTTPClientOptions(config)...)

	logger := config.Logger
	if logger == nil {
		logger = dfapi.NopLogger{}
	}

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.BaseURL,
		logger:       logger,
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.apps = NewAppsClient(c.httpClient)
	c.appGroups = NewResourceClient(c.httpClient, dfapi.AppGroupCodec)
	c.roles = NewResourceClient(c.httpClient, dfapi.RoleCodec)
	c.users = NewResourceClient(c.httpClient, dfapi.UserCodec)
	c.services = NewResourceClient(c.httpClient, dfapi.ServiceCodec)
	c.emailTemplates = NewResourceClient(c.httpClient, dfapi.EmailTemplateCodec)
	c.devices = NewResourceClient(c.httpClient, dfapi.DeviceCodec)
	c.providers = NewResourceClient(c.httpClient, dfapi.ProviderCodec)
	c.providerUsers = NewResourceClient(c.httpClient, dfapi.ProviderUserCodec)

	c.scripts = NewScriptsClient(c.httpClient)
	c.events = NewEventsClient(c.httpClient)
	c.systemConfig = NewSystemConfigClient(c.httpClient)
	c.constants = NewConstantsClient(c.httpClient)
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() http.TokenManager {
	return c.tokenManager
}

// BaseURL returns the instance root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetEnvironment implements dfapi.Client.GetEnvironment.
func (c *Client) GetEnvironment(ctx context.Context) (*dfapi.Environment, error) {
	return getEnvironment(ctx, c.httpClient)
}

// Apps implements dfapi.Client.Apps.
func (c *Client) Apps() dfapi.AppsClient {
	return c.apps
}

// AppGroups implements dfapi.Client.AppGroups.
func (c *Client) AppGroups() dfapi.ResourceClient[dfapi.AppGroup] {
	return c.appGroups
}

// Roles implements dfapi.Client.Roles.
func (c *Client) Roles() dfapi.ResourceClient[dfapi.Role] {
	return c.roles
}

// Users implements dfapi.Client.Users.
func (c *Client) Users() dfapi.ResourceClient[dfapi.User] {
	return c.users
}

// Services implements dfapi.Client.Services.
func (c *Client) Services() dfapi.ResourceClient[dfapi.Service] {
	return c.services
}

// EmailTemplates implements dfapi.Client.EmailTemplates.
func (c *Client) EmailTemplates() dfapi.ResourceClient[dfapi.EmailTemplate] {
	return c.emailTemplates
}

// Devices implements dfapi.Client.Devices.
func (c *Client) Devices() dfapi.ResourceClient[dfapi.Device] {
	return c.devices
}

// Providers implements dfapi.Client.Providers.
func (c *Client) Providers() dfapi.ResourceClient[dfapi.Provider] {
	return c.providers
}

// ProviderUsers implements dfapi.Client.ProviderUsers.
func (c *Client) ProviderUsers() dfapi.ResourceClient[dfapi.ProviderUser] {
	return c.providerUsers
}

// Scripts implements dfapi.Client.Scripts.
func (c *Client) Scripts() dfapi.ScriptsClient {
	return c.scripts
}

// Events implements dfapi.Client.Events.
func (c *Client) Events() dfapi.EventsClient {
	return c.events
}

// SystemConfig implements dfapi.Client.SystemConfig.
func (c *Client) SystemConfig() dfapi.SystemConfigClient {
	return c.systemConfig
}

// Constants implements dfapi.Client.Constants.
func (c *Client) Constants() dfapi.ConstantsClient {
	return c.constants
}
