// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about split execution and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach avoids import cycles (hooks are registered by main, not
// by libraries) and keeps the core library free of observability
// framework dependencies.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSplitHooks(&mySplitHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Split().OnSplitStart(ctx, rows, cols)
//	// ... render pieces ...
//	observability.Split().OnSplitComplete(ctx, pieces, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Split Hooks
// =============================================================================

// SplitHooks receives events from the split pipeline.
type SplitHooks interface {
	// OnSplitStart records the start of a split run.
	OnSplitStart(ctx context.Context, rows, cols int)

	// OnPieceRendered records one finished piece and whether it came
	// from cache.
	OnPieceRendered(ctx context.Context, row, col int, cached bool)

	// OnSplitComplete records the end of a split run.
	OnSplitComplete(ctx context.Context, pieces int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSplitHooks is a no-op implementation of SplitHooks.
type NoopSplitHooks struct{}

func (NoopSplitHooks) OnSplitStart(context.Context, int, int)                     {}
func (NoopSplitHooks) OnPieceRendered(context.Context, int, int, bool)            {}
func (NoopSplitHooks) OnSplitComplete(context.Context, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	splitHooks SplitHooks = NoopSplitHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetSplitHooks registers custom split hooks.
// This should be called once at application startup before any splits run.
func SetSplitHooks(h SplitHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		splitHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Split returns the registered split hooks.
func Split() SplitHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return splitHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	splitHooks = NoopSplitHooks{}
	cacheHooks = NoopCacheHooks{}
}
