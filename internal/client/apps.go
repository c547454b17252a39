package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/internal/http"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// AppsClient implements dfapi.AppsClient.
type AppsClient struct {
	*ResourceClient[dfapi.App]
}

// NewAppsClient creates a new apps client.
func NewAppsClient(httpClient *http.Client) *AppsClient {
	return &AppsClient{
		ResourceClient: NewResourceClient(httpClient, dfapi.AppCodec),
	}
}

// DownloadPackage implements dfapi.AppsClient.DownloadPackage.
func (c *AppsClient) DownloadPackage(ctx context.Context, id int, options dfapi.PackageOptions) ([]byte, error) {
	query := url.Values{}
	query.Set(constants.ParamPackage, "true")
	query.Set(constants.ParamIncludeFiles, strconv.FormatBool(options.IncludeFiles))
	query.Set(constants.ParamIncludeServices, strconv.FormatBool(options.IncludeServices))
	query.Set(constants.ParamIncludeAppSchema, strconv.FormatBool(options.IncludeSchema))

	return c.download(ctx, id, "package", query)
}

// DownloadSDK implements dfapi.AppsClient.DownloadSDK.
func (c *AppsClient) DownloadSDK(ctx context.Context, id int) ([]byte, error) {
	query := url.Values{}
	query.Set(constants.ParamSDK, "true")

	return c.download(ctx, id, "SDK", query)
}

func (c *AppsClient) download(ctx context.Context, id int, what string, query url.Values) ([]byte, error) {
	if id <= 0 {
		return nil, fmt.Errorf("downloading app %s: %w, got %d", what, dfapi.ErrInvalidID, id)
	}

	resp, err := c.httpClient.Get(ctx, c.codec.RecordEndpoint(id), query)
	if err != nil {
		return nil, fmt.Errorf("downloading app %s for app %d: %w", what, id, err)
	}

	return resp.Body, nil
}
