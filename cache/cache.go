// Package cache provides a small byte cache with memory and redis backends.
// The identity provider keeps live session records in it, keyed by session
// token id, so sign-out and expiry are cheap lookups instead of store reads.
package cache

import "time"

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}
