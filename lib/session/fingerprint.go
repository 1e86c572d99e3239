// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint identifies a token in logs without revealing it: the first
// 12 hex characters of its BLAKE3-256 digest. The empty token has the
// empty fingerprint.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	digest := blake3.Sum256([]byte(token))
	return hex.EncodeToString(digest[:6])
}
