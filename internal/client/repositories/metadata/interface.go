// Package metadata is the durable key/value slot the session manager keeps
// its credential token and role marker in.
package metadata

import (
	"context"
)

// Repository stores plain string values by key. Get returns
// common.ErrNotFound for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
