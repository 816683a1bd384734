package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// envelopeKeys are the wrapper keys list endpoints have used, in lookup order.
var envelopeKeys = []string{"results", "items", "cart_items"}

// decodeList parses a list response that is either a flat JSON array or an
// object carrying the array under one of envelopeKeys.
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}

	switch body[0] {
	case '[':
		var out []T
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return out, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		for _, key := range envelopeKeys {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			out := []T{}
			if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				return out, nil
			}
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, fmt.Errorf("decode envelope %q: %w", key, err)
			}
			return out, nil
		}
	}
	return nil, ErrUnexpectedShape
}

// list runs a GET and decodes its list envelope.
func list[T any](ctx context.Context, c *Client, req request) ([]T, error) {
	body, _, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[T](body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	return items, nil
}
