// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds passwords, session tokens and decrypted credential
// records in memory that the Go runtime never manages.
//
// [Buffer] is backed by an anonymous mmap region locked into RAM (mlock)
// and excluded from core dumps (MADV_DONTDUMP). Close zeroes, unlocks and
// unmaps the region. The garbage collector never sees the bytes, so they
// are not copied around the heap behind the caller's back.
//
// The outpass CLI reads login passwords through [ReadTerminal] or
// [ReadFromPath], and the sealed credential store decrypts into a Buffer
// before decoding.
package secret
