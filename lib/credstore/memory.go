// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"context"
	"maps"
	"sync"
)

// Memory keeps the record in process memory only.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

var _ Backend = (*Memory)(nil)

// NewMemory returns an empty store, optionally seeded with initial.
func NewMemory(initial map[string]string) *Memory {
	values := make(map[string]string, len(initial))
	maps.Copy(values, initial)
	return &Memory{values: values}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, present := m.values[key]
	return value, present, nil
}

func (m *Memory) SetAll(_ context.Context, pairs map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.values, pairs)
	return nil
}

func (m *Memory) Clear(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

// Snapshot returns a copy of the stored pairs.
func (m *Memory) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.values)
}

func (m *Memory) Close() error { return nil }
