package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/internal/http"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

const constantsPath = constants.SystemPrefix + "/constant"

// ConstantsClient implements dfapi.ConstantsClient.
type ConstantsClient struct {
	httpClient *http.Client
}

// NewConstantsClient creates a new constants client.
func NewConstantsClient(httpClient *http.Client) *ConstantsClient {
	return &ConstantsClient{
		httpClient: httpClient,
	}
}

// List implements dfapi.ConstantsClient.List. Entries may be plain names or
// objects with a "name" field.
func (c *ConstantsClient) List(ctx context.Context) ([]string, error) {
	resp, err := c.httpClient.Get(ctx, constantsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("listing constants: %w", err)
	}

	if !gjson.ValidBytes(resp.Body) {
		return nil, fmt.Errorf("parsing constants list response: %w", dfapi.ErrMalformedEnvelope)
	}

	root := gjson.ParseBytes(resp.Body)

	items := root
	if !root.IsArray() {
		items = root.Get(constants.ResourceKey)
		if !items.IsArray() {
			return nil, fmt.Errorf("parsing constants list response: %w: no %q array",
				dfapi.ErrMalformedEnvelope, constants.ResourceKey)
		}
	}

	names := make([]string, 0)

	items.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			item = item.Get("name")
		}

		if item.String() != "" {
			names = append(names, item.String())
		}

		return true
	})

	return names, nil
}

// Get implements dfapi.ConstantsClient.Get. Values are returned in their
// string form.
func (c *ConstantsClient) Get(ctx context.Context, name string) (map[string]string, error) {
	if name == "" {
		return nil, fmt.Errorf("getting constant: %w", dfapi.ErrConstantNameRequired)
	}

	resp, err := c.httpClient.Get(ctx, constantsPath+"/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, fmt.Errorf("getting constant %s: %w", name, err)
	}

	if !gjson.ValidBytes(resp.Body) {
		return nil, fmt.Errorf("parsing constant %s response: %w", name, dfapi.ErrMalformedEnvelope)
	}

	root := gjson.ParseBytes(resp.Body)
	if !root.IsObject() {
		return nil, fmt.Errorf("parsing constant %s response: %w: expected an object", name, dfapi.ErrMalformedEnvelope)
	}

	// Some versions nest the values under the constant's own name.
	if nested := root.Get(gjson.Escape(name)); nested.IsObject() && len(root.Map()) == 1 {
		root = nested
	}

	values := make(map[string]string)

	root.ForEach(func(key, value gjson.Result) bool {
		values[key.String()] = value.String()

		return true
	})

	return values, nil
}
