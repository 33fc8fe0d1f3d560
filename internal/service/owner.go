package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// Owner derives a stable, non-reversible identity from a bearer credential. Sessions, cache
// entries and receipts are partitioned by it so the raw token is never stored.
func Owner(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}
