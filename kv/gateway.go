// Package kv is the persistence gateway: get/set/remove of opaque values
// under string keys in a host key/value store.
package kv

import (
	"context"
	"errors"
)

// ErrStorageUnavailable wraps every failure of the underlying host store.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Gateway is a key/value store holding whole values under single keys.
// A key that was never written is reported with found == false and a nil error.
type Gateway interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
