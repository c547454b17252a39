package dfapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/fivetwenty-io/dfapi/internal/constants"
)

// APIError is a single error entry reported by the server.
type APIError struct {
	Code    int    `json:"code"    yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
}

// ResponseError is returned for every response with a status of 400 or above.
type ResponseError struct {
	StatusCode int        `json:"status_code" yaml:"status_code"`
	Errors     []APIError `json:"errors"      yaml:"errors"`
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	messages := make([]string, len(e.Errors))
	for i := range e.Errors {
		messages[i] = e.Errors[i].Error()
	}

	return "multiple errors: " + strings.Join(messages, "; ")
}

// FirstError returns the first error or nil.
func (e *ResponseError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// Local contract violations. These are returned before any request is sent,
// except ErrBatchSizeMismatch which is detected on the response.
var (
	ErrInvalidQuery          = errors.New("invalid query")
	ErrUnknownField          = errors.New("unknown field")
	ErrUnknownRelation       = errors.New("unknown relation")
	ErrEmptyBatch            = errors.New("batch must contain at least one record")
	ErrMalformedEnvelope     = errors.New("malformed response envelope")
	ErrBatchSizeMismatch     = errors.New("response record count does not match request")
	ErrUnexpectedRecordCount = errors.New("expected exactly one record in response")
	ErrInvalidID             = errors.New("record id must be positive")
	ErrScriptIDRequired      = errors.New("script id is required")
	ErrEventNameRequired     = errors.New("event name is required")
	ErrConstantNameRequired  = errors.New("constant name is required")
	ErrConfigPayloadRequired = errors.New("system config payload is required")
)

// Client construction and transport errors.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrBaseURLRequired    = errors.New("base URL is required")
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// ParseResponseError builds a ResponseError from an error body. Both
// {"error":[...]} and {"error":{...}} are accepted; anything else falls back
// to the HTTP status text.
func ParseResponseError(statusCode int, data []byte) *ResponseError {
	respErr := &ResponseError{StatusCode: statusCode}

	if gjson.ValidBytes(data) {
		node := gjson.GetBytes(data, constants.ErrorKey)

		switch {
		case node.IsArray():
			node.ForEach(func(_, item gjson.Result) bool {
				respErr.Errors = append(respErr.Errors, apiErrorFrom(item, statusCode))

				return true
			})
		case node.IsObject():
			respErr.Errors = append(respErr.Errors, apiErrorFrom(node, statusCode))
		case node.Type == gjson.String:
			respErr.Errors = append(respErr.Errors, APIError{Code: statusCode, Message: node.String()})
		}
	}

	if len(respErr.Errors) == 0 {
		message := strings.TrimSpace(string(data))
		if message == "" || gjson.ValidBytes(data) {
			message = http.StatusText(statusCode)
		}

		respErr.Errors = []APIError{{Code: statusCode, Message: message}}
	}

	return respErr
}

func apiErrorFrom(item gjson.Result, statusCode int) APIError {
	code := int(item.Get("code").Int())
	if code == 0 {
		code = statusCode
	}

	message := item.Get("message").String()
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return APIError{Code: code, Message: message}
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsBadRequest checks if the error is a bad request error.
func IsBadRequest(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

func hasStatus(err error, status int) bool {
	errResp := &ResponseError{}
	if errors.As(err, &errResp) {
		if errResp.StatusCode == status {
			return true
		}

		first := errResp.FirstError()

		return first != nil && first.Code == status
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == status
	}

	return false
}
