// Package identity derives the external identity fields the connector exports:
// a deterministic UUID for each internal user ID and the first/last name split.
package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Namespace and name prefix for deterministic UUID derivation.
//
// COMPATIBILITY CONTRACT:
// These constants are baked into every external identity ever issued by the
// connector. Changing either one changes the UUID of every user and orphans
// all identities already absorbed by the external system. Do not touch them.
const (
	connectorNamespace = "550e8400-e29b-41d4-a716-446655440002"
	connectorPrefix    = "connector_user_"
)

// DeriveUserUUID maps an internal user ID to a stable, UUID-shaped external
// identifier. The same ID always produces the same string, across process
// restarts and across implementations — repeated migration calls for one user
// must hand the external system one identity, not many.
//
// The derivation is a SHA-1 over the namespace constant concatenated with
// "connector_user_<id>", laid out as 8-4-4-4-12 hex groups. The version
// nibble is forced to 5 (name-based UUID) and the variant nibble to the
// RFC pattern (10xx), so consumers that validate UUID shape accept it.
//
// Note the layout overwrites hex digit 12 with the version and replaces hex
// digit 16 with the masked variant, dropping the originals. That differs from
// a textbook v5 UUID (which masks in place), but it is the layout the
// external system already has identities under, so it is preserved exactly.
func DeriveUserUUID(id int64) string {
	sum := sha1.Sum([]byte(connectorNamespace + connectorPrefix + strconv.FormatInt(id, 10)))
	h := hex.EncodeToString(sum[:])

	// hex digit 16 is the high nibble of digest byte 8
	variant := (sum[8]>>4)&0x3 | 0x8

	return fmt.Sprintf("%s-%s-5%s-%x%s-%s",
		h[0:8], h[8:12], h[13:16], variant, h[17:20], h[20:32])
}
