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

const eventsPath = constants.SystemPrefix + "/event"

// EventsClient implements dfapi.EventsClient.
type EventsClient struct {
	httpClient *http.Client
}

// NewEventsClient creates a new events client.
func NewEventsClient(httpClient *http.Client) *EventsClient {
	return &EventsClient{
		httpClient: httpClient,
	}
}

// List implements dfapi.EventsClient.List.
func (c *EventsClient) List(ctx context.Context, allEvents, asCached bool) ([]dfapi.EventCache, error) {
	query := url.Values{}
	query.Set(constants.ParamAllEvents, strconv.FormatBool(allEvents))
	query.Set(constants.ParamAsCached, strconv.FormatBool(asCached))

	resp, err := c.httpClient.Get(ctx, eventsPath, query)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	events, err := decodeListing[dfapi.EventCache](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing events list response: %w", err)
	}

	return events, nil
}

// Register implements dfapi.EventsClient.Register.
func (c *EventsClient) Register(ctx context.Context, requests []dfapi.EventRequest) error {
	return c.send(ctx, "POST", "registering", requests)
}

// Unregister implements dfapi.EventsClient.Unregister.
func (c *EventsClient) Unregister(ctx context.Context, requests []dfapi.EventRequest) error {
	return c.send(ctx, "DELETE", "unregistering", requests)
}

func (c *EventsClient) send(ctx context.Context, method, verb string, requests []dfapi.EventRequest) error {
	if len(requests) == 0 {
		return nil
	}

	for _, request := range requests {
		if request.EventName == "" {
			return fmt.Errorf("%s events: %w", verb, dfapi.ErrEventNameRequired)
		}
	}

	_, err := c.httpClient.Do(ctx, &http.Request{
		Method: method,
		Path:   eventsPath,
		Body:   dfapi.Envelope[dfapi.EventRequest]{Record: requests},
	})
	if err != nil {
		return fmt.Errorf("%s events: %w", verb, err)
	}

	return nil
}
