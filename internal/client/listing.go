package client

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// decodeListing reads endpoints that are not record collections. They answer
// with a bare array, a "resource" or "record" array, or a single object.
func decodeListing[T any](body []byte) ([]T, error) {
	if len(body) == 0 {
		return []T{}, nil
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", dfapi.ErrMalformedEnvelope)
	}

	root := gjson.ParseBytes(body)

	var raw string

	switch {
	case root.IsArray():
		raw = root.Raw
	case root.Get(constants.ResourceKey).IsArray():
		raw = root.Get(constants.ResourceKey).Raw
	case root.Get(constants.RecordKey).IsArray():
		raw = root.Get(constants.RecordKey).Raw
	case root.IsObject():
		var item T

		err := json.Unmarshal([]byte(root.Raw), &item)
		if err != nil {
			return nil, fmt.Errorf("decoding item: %w", err)
		}

		return []T{item}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s", dfapi.ErrMalformedEnvelope, root.Type)
	}

	items := make([]T, 0)

	err := json.Unmarshal([]byte(raw), &items)
	if err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}

	return items, nil
}
