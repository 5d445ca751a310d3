// Package xid generates prefixed identifiers for store documents and
// billing sessions, e.g. "tx-1756380000000000000-9f2c4a1b0d3e5f67".
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns "<prefix>-<unix nanos>-<8 random bytes, hex>". The timestamp
// keeps ids roughly ordered by creation time; the suffix disambiguates ids
// minted in the same nanosecond.
func New(prefix string) string {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(suffix))
}
