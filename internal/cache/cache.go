// Package cache provides query result caching for the pipeline.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from an endpoint name and query text
func Key(endpoint, query string) string {
	hash := sha256.Sum256([]byte(endpoint + "\x00" + query))
	return "sciencelive:v1:" + hex.EncodeToString(hash[:])
}
