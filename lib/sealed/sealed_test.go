// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	identity, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	defer identity.Close()

	ciphertext, err := Encrypt([]byte("token=abc"), identity.Recipient)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	plaintext, err := Decrypt(ciphertext, identity)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	defer plaintext.Close()
	if got := plaintext.String(); got != "token=abc" {
		t.Errorf("Decrypt = %q, want %q", got, "token=abc")
	}
}

func TestDecryptWithWrongIdentity(t *testing.T) {
	owner, err := GenerateIdentity()
	if err != nil {
		t.Fatal(err)
	}
	defer owner.Close()
	stranger, err := GenerateIdentity()
	if err != nil {
		t.Fatal(err)
	}
	defer stranger.Close()

	ciphertext, err := Encrypt([]byte("token=abc"), owner.Recipient)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decrypt(ciphertext, stranger); err == nil {
		t.Fatal("Decrypt with a different identity succeeded")
	}
}

func TestEncryptRequiresRecipient(t *testing.T) {
	if _, err := Encrypt([]byte("x")); err == nil {
		t.Fatal("Encrypt without recipients succeeded")
	}
}

func TestLoadOrCreateIdentityPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "identity")

	created, err := LoadOrCreateIdentity(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer created.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat identity: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("identity mode = %o, want 0600", perm)
	}

	loaded, err := LoadOrCreateIdentity(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer loaded.Close()
	if loaded.Recipient != created.Recipient {
		t.Errorf("reloaded recipient = %q, want %q", loaded.Recipient, created.Recipient)
	}
}
