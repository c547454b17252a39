package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/internal/http"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

const (
	configPath      = constants.SystemPrefix + "/config"
	environmentPath = constants.SystemPrefix + "/environment"
)

// SystemConfigClient implements dfapi.SystemConfigClient.
type SystemConfigClient struct {
	httpClient *http.Client
}

// NewSystemConfigClient creates a new system config client.
func NewSystemConfigClient(httpClient *http.Client) *SystemConfigClient {
	return &SystemConfigClient{
		httpClient: httpClient,
	}
}

// Get implements dfapi.SystemConfigClient.Get.
func (c *SystemConfigClient) Get(ctx context.Context) (*dfapi.SystemConfig, error) {
	resp, err := c.httpClient.Get(ctx, configPath, nil)
	if err != nil {
		return nil, fmt.Errorf("getting system config: %w", err)
	}

	var config dfapi.SystemConfig

	err = json.Unmarshal(resp.Body, &config)
	if err != nil {
		return nil, fmt.Errorf("parsing system config response: %w", err)
	}

	return &config, nil
}

// Set implements dfapi.SystemConfigClient.Set. Only non-nil fields are sent.
func (c *SystemConfigClient) Set(ctx context.Context, config *dfapi.SystemConfig) (*dfapi.SystemConfig, error) {
	if config == nil {
		return nil, fmt.Errorf("setting system config: %w", dfapi.ErrConfigPayloadRequired)
	}

	resp, err := c.httpClient.Post(ctx, configPath, config)
	if err != nil {
		return nil, fmt.Errorf("setting system config: %w", err)
	}

	var updated dfapi.SystemConfig

	err = json.Unmarshal(resp.Body, &updated)
	if err != nil {
		return nil, fmt.Errorf("parsing system config response: %w", err)
	}

	return &updated, nil
}

// getEnvironment backs Client.GetEnvironment.
func getEnvironment(ctx context.Context, httpClient *http.Client) (*dfapi.Environment, error) {
	resp, err := httpClient.Get(ctx, environmentPath, nil)
	if err != nil {
		return nil, fmt.Errorf("getting environment: %w", err)
	}

	var environment dfapi.Environment

	err = json.Unmarshal(resp.Body, &environment)
	if err != nil {
		return nil, fmt.Errorf("parsing environment response: %w", err)
	}

	return &environment, nil
}
