package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss se devuelve cuando la clave no existe.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache es el contrato común de los backends de cache.
// Add es el primitivo del dedup ledger: set-if-not-exists con TTL,
// devuelve true si la clave era nueva.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Add(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
