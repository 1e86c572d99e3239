// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The service answers some endpoints with a keyed envelope
// ({"outpasses": [...]}) and others with the bare value. Both shapes
// are accepted.

func decodeList[T any](data json.RawMessage, keys ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("portal: decoding list: %w", err)
		}
		return list, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("portal: decoding list envelope: %w", err)
	}
	for _, key := range keys {
		raw, ok := envelope[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("portal: decoding %q: %w", key, err)
		}
		return list, nil
	}
	return nil, fmt.Errorf("portal: response has no list under %v", keys)
}

func decodeObject[T any](data json.RawMessage, keys ...string) (T, error) {
	var result T
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return result, fmt.Errorf("portal: decoding object: %w", err)
	}
	for _, key := range keys {
		raw, ok := envelope[key]
		if !ok || len(raw) == 0 || raw[0] != '{' {
			continue
		}
		if err := json.Unmarshal(raw, &result); err != nil {
			return result, fmt.Errorf("portal: decoding %q: %w", key, err)
		}
		return result, nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("portal: decoding object: %w", err)
	}
	return result, nil
}
