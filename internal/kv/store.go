package kv

import (
	"context"
	"errors"
)

var (
	ErrUnknownDriver = errors.New("unknown kv driver")
	ErrEmptyKey      = errors.New("kv key cannot be empty")
)

// Store is the string-keyed persistence boundary. A missing key is not an error:
// Get reports it with found == false, and Remove of a missing key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
