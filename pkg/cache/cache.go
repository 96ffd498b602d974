// Package cache stores derived engine results - computed layouts and
// rendered artifacts - keyed by content hashes of their inputs.
//
// Only derived data ever enters the cache. The Flow itself is ground truth
// owned by the caller's persistence layer and is never cached here, which is
// what keeps a stale cache harmless: the worst case is recomputing a layout.
//
// Backends: [FileCache] for CLI usage (XDG cache directory), [RedisCache]
// for shared deployments, and [NullCache] when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache is the backend interface for derived-result storage.
// Implementations must treat Get misses as (nil, false, nil), reserving the
// error return for real backend failures.
type Cache interface {
	// Get retrieves the value for key. The second return reports presence.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the value for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// Keyer - Cache Key Construction
// =============================================================================

// LayoutKeyOpts are the layout parameters that contribute to a layout cache
// key. Two layouts of the same flow with different options must not collide.
type LayoutKeyOpts struct {
	Direction    string
	NodeSep      float64
	RankSep      float64
	ComponentSep float64
}

// ArtifactKeyOpts are the rendering parameters that contribute to an
// artifact cache key. Every option that changes the rendered bytes must be
// included, or stale artifacts would be served across option changes.
type ArtifactKeyOpts struct {
	Format    string
	Direction string
	ShowHalos bool
	Detailed  bool
}

// Keyer builds cache keys. Implementations must be deterministic: the same
// inputs always produce the same key.
type Keyer interface {
	// LayoutKey keys a computed layout by the flow's content hash and the
	// layout options.
	LayoutKey(flowHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the laid-out flow's hash and
	// the render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the structured options into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// LayoutKey generates a key of the form "layout:<sha256>".
func (k *DefaultKeyer) LayoutKey(flowHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", flowHash, opts)
}

// ArtifactKey generates a key of the form "artifact:<sha256>".
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// =============================================================================
// ScopedKeyer - Prefixed Keys
// =============================================================================

// ScopedKeyer wraps a Keyer with a prefix so multiple tenants or documents
// can share one backend without key collisions.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(flowHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(flowHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
