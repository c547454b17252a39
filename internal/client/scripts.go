package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/internal/http"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

const scriptsPath = constants.SystemPrefix + "/script"

// ScriptsClient implements dfapi.ScriptsClient.
type ScriptsClient struct {
	httpClient *http.Client
}

// NewScriptsClient creates a new scripts client.
func NewScriptsClient(httpClient *http.Client) *ScriptsClient {
	return &ScriptsClient{
		httpClient: httpClient,
	}
}

// List implements dfapi.ScriptsClient.List.
func (c *ScriptsClient) List(ctx context.Context, includeUserScripts bool) ([]dfapi.Script, error) {
	query := url.Values{}
	query.Set(constants.ParamIncludeUserScripts, strconv.FormatBool(includeUserScripts))

	resp, err := c.httpClient.Get(ctx, scriptsPath, query)
	if err != nil {
		return nil, fmt.Errorf("listing scripts: %w", err)
	}

	scripts, err := decodeListing[dfapi.Script](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing scripts list response: %w", err)
	}

	return scripts, nil
}

// Write implements dfapi.ScriptsClient.Write. The body is sent as plain text.
func (c *ScriptsClient) Write(ctx context.Context, id, body string) (*dfapi.Script, error) {
	if id == "" {
		return nil, fmt.Errorf("writing script: %w", dfapi.ErrScriptIDRequired)
	}

	resp, err := c.httpClient.Put(ctx, scriptPath(id), body)
	if err != nil {
		return nil, fmt.Errorf("writing script %s: %w", id, err)
	}

	script := &dfapi.Script{}
	if len(resp.Body) > 0 {
		err = json.Unmarshal(resp.Body, script)
		if err != nil {
			return nil, fmt.Errorf("parsing script response: %w", err)
		}
	}

	if script.Name == nil {
		script.Name = dfapi.String(id)
	}

	return script, nil
}

// Run implements dfapi.ScriptsClient.Run. A JSON string result is unquoted;
// any other body is returned as received.
func (c *ScriptsClient) Run(ctx context.Context, id string, params map[string]any, logOutput bool) (string, error) {
	if id == "" {
		return "", fmt.Errorf("running script: %w", dfapi.ErrScriptIDRequired)
	}

	query := url.Values{}
	for key, value := range params {
		query.Set(key, fmt.Sprint(value))
	}

	query.Set(constants.ParamLogOutput, strconv.FormatBool(logOutput))

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   scriptPath(id),
		Query:  query,
	})
	if err != nil {
		return "", fmt.Errorf("running script %s: %w", id, err)
	}

	if gjson.ValidBytes(resp.Body) {
		result := gjson.ParseBytes(resp.Body)
		if result.Type == gjson.String {
			return result.String(), nil
		}
	}

	return string(resp.Body), nil
}

// Delete implements dfapi.ScriptsClient.Delete.
func (c *ScriptsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("deleting script: %w", dfapi.ErrScriptIDRequired)
	}

	_, err := c.httpClient.Delete(ctx, scriptPath(id), nil)
	if err != nil {
		return fmt.Errorf("deleting script %s: %w", id, err)
	}

	return nil
}

func scriptPath(id string) string {
	return scriptsPath + "/" + url.PathEscape(id)
}
