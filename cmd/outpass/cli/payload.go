// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
)

// ReadPayload reads a JSON object from path ("-" for stdin). Comments
// and trailing commas are accepted so that hand-edited payload files
// can be annotated.
func ReadPayload(path string, stdin io.Reader) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, Validation("reading payload: %w", err)
	}
	return ParsePayload(data)
}

// ParsePayload decodes a JSONC object.
func ParsePayload(data []byte) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &payload); err != nil {
		return nil, Validation("parsing payload: %w", err)
	}
	if payload == nil {
		return nil, Validation("payload must be a JSON object")
	}
	return payload, nil
}

// ParseAssignments turns key=value arguments into a payload. Values
// that parse as JSON (numbers, true, null, arrays) keep their type;
// everything else is a string.
func ParseAssignments(assignments []string) (map[string]any, error) {
	payload := make(map[string]any, len(assignments))
	for _, assignment := range assignments {
		key, raw, found := strings.Cut(assignment, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, Validation("expected key=value, got %q", assignment)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		payload[key] = value
	}
	return payload, nil
}

// MergePayload copies overrides onto base and returns base.
func MergePayload(base, overrides map[string]any) map[string]any {
	if base == nil {
		base = make(map[string]any, len(overrides))
	}
	for key, value := range overrides {
		base[key] = value
	}
	return base
}

// DescribeKeys lists payload keys for log lines; values may be personal
// data and are not logged.
func DescribeKeys(payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return fmt.Sprint(keys)
}
