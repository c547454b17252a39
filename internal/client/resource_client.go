package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/internal/http"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// ResourceClient provides CRUD over one /rest/system record collection.
// It holds no mutable state.
type ResourceClient[T any] struct {
	httpClient *http.Client
	codec      *dfapi.Codec[T]
}

// NewResourceClient creates a client for the collection described by codec.
func NewResourceClient[T any](httpClient *http.Client, codec *dfapi.Codec[T]) *ResourceClient[T] {
	return &ResourceClient[T]{
		httpClient: httpClient,
		codec:      codec,
	}
}

// Codec returns the codec the client was built with.
func (c *ResourceClient[T]) Codec() *dfapi.Codec[T] {
	return c.codec
}

// List implements dfapi.ResourceClient.List.
func (c *ResourceClient[T]) List(ctx context.Context, query *dfapi.Query) ([]T, error) {
	err := query.Validate()
	if err != nil {
		return nil, fmt.Errorf("listing %ss: %w", c.codec.Kind, err)
	}

	resp, err := c.httpClient.Get(ctx, c.codec.Endpoint(), query.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing %ss: %w", c.codec.Kind, err)
	}

	records, err := c.codec.DecodeBatch(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s list response: %w", c.codec.Kind, err)
	}

	return records, nil
}

// Get implements dfapi.ResourceClient.Get.
func (c *ResourceClient[T]) Get(ctx context.Context, id int, query *dfapi.Query) (*T, error) {
	if id <= 0 {
		return nil, fmt.Errorf("getting %s: %w, got %d", c.codec.Kind, dfapi.ErrInvalidID, id)
	}

	err := query.Validate()
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", c.codec.Kind, err)
	}

	resp, err := c.httpClient.Get(ctx, c.codec.RecordEndpoint(id), query.ToValues())
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", c.codec.Kind, id, err)
	}

	record, err := c.codec.DecodeRecord(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", c.codec.Kind, err)
	}

	return record, nil
}

// Create implements dfapi.ResourceClient.Create.
func (c *ResourceClient[T]) Create(ctx context.Context, records []T) ([]T, error) {
	return c.sendBatch(ctx, "POST", "creating", records)
}

// Update implements dfapi.ResourceClient.Update.
func (c *ResourceClient[T]) Update(ctx context.Context, records []T) ([]T, error) {
	return c.sendBatch(ctx, "PATCH", "updating", records)
}

func (c *ResourceClient[T]) sendBatch(ctx context.Context, method, verb string, records []T) ([]T, error) {
	if len(records) == 0 {
		return []T{}, nil
	}

	body, err := c.codec.EncodeBatch(records)
	if err != nil {
		return nil, fmt.Errorf("%s %ss: %w", verb, c.codec.Kind, err)
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: method,
		Path:   c.codec.Endpoint(),
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("%s %ss: %w", verb, c.codec.Kind, err)
	}

	result, err := c.codec.DecodeBatch(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", c.codec.Kind, err)
	}

	if len(result) != len(records) {
		return nil, fmt.Errorf("%s %ss: %w: sent %d, received %d",
			verb, c.codec.Kind, dfapi.ErrBatchSizeMismatch, len(records), len(result))
	}

	return result, nil
}

// Delete implements dfapi.ResourceClient.Delete.
func (c *ResourceClient[T]) Delete(ctx context.Context, ids []int, opts ...dfapi.DeleteOption) error {
	if len(ids) == 0 {
		return nil
	}

	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("deleting %ss: %w, got %d", c.codec.Kind, dfapi.ErrInvalidID, id)
		}
	}

	params := url.Values{}
	for _, opt := range opts {
		opt(params)
	}

	params.Set(constants.ParamIDs, dfapi.JoinIDs(ids))

	_, err := c.httpClient.Delete(ctx, c.codec.Endpoint(), params)
	if err != nil {
		return fmt.Errorf("deleting %ss: %w", c.codec.Kind, err)
	}

	return nil
}
