// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// hasherPool holds HMAC-SHA256 hashers keyed with the shared app secret.
// Must be initialized via InitHasherPool before use.
var hasherPool sync.Pool

// InitHasherPool keys every hasher the pool hands out with hashKey. Both
// the server adapter (signing outgoing bodies) and the local API (checking
// incoming ones) draw from the same pool.
func InitHasherPool(hashKey string) {
	hasherPool = sync.Pool{
		New: func() any {
			return hmac.New(sha256.New, []byte(hashKey))
		},
	}
}

// Hash returns the raw HMAC-SHA256 digest of data.
func Hash(data []byte) []byte {
	h := hasherPool.Get().(hash.Hash)
	h.Reset()

	h.Write(data)
	sum := h.Sum(nil)

	h.Reset()
	hasherPool.Put(h)

	return sum
}

// Sign returns the hex digest of body as carried in the HashSHA256 header.
func Sign(body []byte) string {
	return hex.EncodeToString(Hash(body))
}
