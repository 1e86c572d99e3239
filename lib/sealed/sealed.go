// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts small records at rest with age (X25519).
//
// The outpass client uses it for the sealed credential store: the
// session record is encrypted to the device identity's public key and
// decrypted into a [secret.Buffer]. The identity itself lives in a 0600
// file next to the store and is created on first use by
// [LoadOrCreateIdentity].
package sealed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"github.com/bureau-foundation/outpass/lib/secret"
)

// Identity is an age X25519 identity. The private half is kept in a
// secret.Buffer. Close releases it.
type Identity struct {
	privateKey *secret.Buffer

	// Recipient is the public key in age1... form.
	Recipient string
}

// Close releases the private key. Safe to call more than once.
func (i *Identity) Close() error {
	if i.privateKey != nil {
		return i.privateKey.Close()
	}
	return nil
}

// GenerateIdentity creates a fresh X25519 identity.
func GenerateIdentity() (*Identity, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("sealed: generating identity: %w", err)
	}
	privateKey, err := secret.NewFromBytes([]byte(identity.String()))
	if err != nil {
		return nil, fmt.Errorf("sealed: protecting identity: %w", err)
	}
	return &Identity{privateKey: privateKey, Recipient: identity.Recipient().String()}, nil
}

// LoadOrCreateIdentity reads the identity at path, generating and
// writing a new one (mode 0600, parent 0700) when the file does not
// exist.
func LoadOrCreateIdentity(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		identity, err := GenerateIdentity()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			identity.Close()
			return nil, fmt.Errorf("sealed: creating identity directory: %w", err)
		}
		contents := []byte(identity.privateKey.String() + "\n")
		err = os.WriteFile(path, contents, 0600)
		secret.Zero(contents)
		if err != nil {
			identity.Close()
			return nil, fmt.Errorf("sealed: writing identity: %w", err)
		}
		return identity, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sealed: reading identity: %w", err)
	}

	privateKey, err := secret.NewFromBytes(bytes.TrimSpace(data))
	secret.Zero(data)
	if err != nil {
		return nil, fmt.Errorf("sealed: identity file %s: %w", path, err)
	}
	parsed, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		privateKey.Close()
		return nil, fmt.Errorf("sealed: parsing identity %s: %w", path, err)
	}
	return &Identity{privateKey: privateKey, Recipient: parsed.Recipient().String()}, nil
}

// Encrypt encrypts plaintext to the given age recipients.
func Encrypt(plaintext []byte, recipientKeys ...string) ([]byte, error) {
	if len(recipientKeys) == 0 {
		return nil, fmt.Errorf("sealed: at least one recipient is required")
	}
	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("sealed: parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return nil, fmt.Errorf("sealed: creating encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("sealed: encrypting: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("sealed: finalizing: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// Decrypt decrypts ciphertext with identity. The caller must Close the
// returned buffer.
func Decrypt(ciphertext []byte, identity *Identity) (*secret.Buffer, error) {
	parsed, err := age.ParseX25519Identity(identity.privateKey.String())
	if err != nil {
		return nil, fmt.Errorf("sealed: parsing identity: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), parsed)
	if err != nil {
		return nil, fmt.Errorf("sealed: decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("sealed: reading plaintext: %w", err)
	}
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("sealed: decrypted record is empty")
	}
	return secret.NewFromBytes(plaintext)
}
