package tabula

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cache is the interface for caching query results.
// Users may implement this interface with their preferred caching solution
// (e.g., Redis, Memcached); package cache provides an in-memory one.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the store's default applies.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey generates a cache key for a read operation.
type CacheKey struct {
	Table      string
	Operation  string
	Predicates string // Compiled WHERE clause
	Args       []any  // Parameter values in placeholder order
	OrderBy    string
	Limit      int
}

// String returns the string representation of the cache key. Keys of one
// table share the TablePrefix so writes can invalidate them together.
func (k CacheKey) String() string {
	var b strings.Builder
	b.WriteString(TablePrefix(k.Table))
	b.WriteString(k.Operation)
	b.WriteByte(':')
	b.WriteString(k.Predicates)
	b.WriteByte(':')
	for i, a := range k.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(formatArg(a))
	}
	b.WriteByte(':')
	b.WriteString(k.OrderBy)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(k.Limit))
	return b.String()
}

// TablePrefix returns the key prefix shared by every cached read of table.
func TablePrefix(table string) string {
	return table + ":"
}

func formatArg(v any) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case interface{ String() string }:
		return v.String()
	default:
		return fmt.Sprintf("%T(%v)", v, v)
	}
}
