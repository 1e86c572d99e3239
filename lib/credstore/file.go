// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/bureau-foundation/outpass/lib/codec"
	"github.com/bureau-foundation/outpass/lib/sealed"
)

// File stores the record as a single file, rewritten atomically (temp
// file plus rename) on every mutation. A missing file is an empty store.
// When the last key is cleared the file is removed.
type File struct {
	path   string
	encode func(map[string]string) ([]byte, error)
	decode func([]byte) (map[string]string, error)

	// release runs on Close, for resources the store owns.
	release func() error

	mu sync.Mutex
}

var _ Backend = (*File)(nil)

// NewFile returns a plaintext JSON store at path.
func NewFile(path string) *File {
	return &File{
		path: path,
		encode: func(values map[string]string) ([]byte, error) {
			return json.MarshalIndent(values, "", "  ")
		},
		decode: func(data []byte) (map[string]string, error) {
			values := make(map[string]string)
			if err := json.Unmarshal(data, &values); err != nil {
				return nil, err
			}
			return values, nil
		},
	}
}

// NewSealedFile returns a store at path whose content is the CBOR
// record encrypted to identity. The identity is borrowed; the caller
// closes it after the store is no longer used.
func NewSealedFile(path string, identity *sealed.Identity) *File {
	return &File{
		path: path,
		encode: func(values map[string]string) ([]byte, error) {
			plaintext, err := codec.Marshal(values)
			if err != nil {
				return nil, err
			}
			return sealed.Encrypt(plaintext, identity.Recipient)
		},
		decode: func(data []byte) (map[string]string, error) {
			plaintext, err := sealed.Decrypt(data, identity)
			if err != nil {
				return nil, err
			}
			defer plaintext.Close()
			values := make(map[string]string)
			if err := codec.Unmarshal(plaintext.Bytes(), &values); err != nil {
				return nil, err
			}
			return values, nil
		},
	}
}

// Path returns the backing file.
func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	value, present := values[key]
	return value, present, nil
}

func (f *File) SetAll(_ context.Context, pairs map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	maps.Copy(values, pairs)
	return f.write(values)
}

func (f *File) Clear(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		// An unreadable record is replaced rather than left behind:
		// clearing must never keep a stale token alive.
		values = make(map[string]string)
	}
	for _, key := range keys {
		delete(values, key)
	}
	return f.write(values)
}

func (f *File) Close() error {
	if f.release != nil {
		return f.release()
	}
	return nil
}

func (f *File) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, unavailable("reading "+f.path, err)
	}
	values, err := f.decode(data)
	if err != nil {
		return nil, unavailable("decoding "+f.path, err)
	}
	return values, nil
}

func (f *File) write(values map[string]string) error {
	if len(values) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return unavailable("removing "+f.path, err)
		}
		return nil
	}

	data, err := f.encode(values)
	if err != nil {
		return unavailable("encoding record", err)
	}

	directory := filepath.Dir(f.path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return unavailable("creating "+directory, err)
	}
	temporary, err := os.CreateTemp(directory, ".credentials-*")
	if err != nil {
		return unavailable("creating temporary file", err)
	}
	temporaryPath := temporary.Name()
	defer os.Remove(temporaryPath)

	if err := temporary.Chmod(0600); err != nil {
		temporary.Close()
		return unavailable("chmod temporary file", err)
	}
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return unavailable("writing temporary file", err)
	}
	if err := temporary.Close(); err != nil {
		return unavailable("closing temporary file", err)
	}
	if err := os.Rename(temporaryPath, f.path); err != nil {
		return unavailable(fmt.Sprintf("renaming into %s", f.path), err)
	}
	return nil
}
