// Package cache stores resolved menus keyed by workspace, menu and language.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// DefaultTTL applies when NewCache is given a zero ttl.
const DefaultTTL = 5 * time.Minute

// Cache is a string key/value store with prefix invalidation.
type Cache interface {
	// Get returns the value and whether it was present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	// Flush removes every key.
	Flush(ctx context.Context) error
	Close() error
}

// NewCache returns an in-memory cache when addr is empty and a Redis cache
// otherwise. Redis keys are namespaced with prefix.
func NewCache(ctx context.Context, addr, prefix string, ttl time.Duration) (Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if addr == "" {
		return NewMemoryCache(ttl), nil
	}
	rc, err := NewRedisCache(ctx, addr, prefix, ttl)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// Key builds the cache key of one resolved menu. Each component is escaped
// so a ':' inside a name cannot make two menus share a key.
func Key(workspace, menuKey, lang string) string {
	return MenuPrefix(workspace, menuKey) + url.QueryEscape(lang)
}

// MenuPrefix returns the prefix shared by all languages of one menu.
func MenuPrefix(workspace, menuKey string) string {
	return WorkspacePrefix(workspace) + url.QueryEscape(menuKey) + ":"
}

// WorkspacePrefix returns the prefix shared by all menus of a workspace.
func WorkspacePrefix(workspace string) string {
	return url.QueryEscape(workspace) + ":"
}

// GetJSON decodes a cached JSON value into out.
func GetJSON(ctx context.Context, c Cache, key string, out any) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v encoded as JSON.
func SetJSON(ctx context.Context, c Cache, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, string(b))
}
