package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// null marks a key whose loader reported absent.
var null = []byte("null")

// GetOrLoadJSON is GetOrLoad for JSON-encoded values. When load fails with an
// error matching absent, the miss itself is cached and every hit within ttl
// returns absent. Other load errors are not cached. absent may be nil.
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	absent error,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			if absent != nil && errors.Is(e, absent) {
				return null, nil
			}
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if string(b) == string(null) {
		return nil, absent
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return &out, nil
}
