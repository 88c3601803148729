// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about routing, design rule checks, cache operations and
// HTTP requests served by copper.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so library packages never
// import a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDRCHooks(&myDRCHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.DRC().OnRunStart(ctx, len(rules))
//	// ... evaluate rules ...
//	observability.DRC().OnRunComplete(ctx, violations, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Routing Hooks
// =============================================================================

// RoutingHooks receives events from the interactive routing engine.
type RoutingHooks interface {
	// OnRouteStart records a route bound to net on layer.
	OnRouteStart(net, layer string)

	// OnRouteCommit records a committed route.
	OnRouteCommit(net string, traces, vias int, length float64)

	// OnRouteCancel records a discarded route.
	OnRouteCancel(net string, elements int)

	// OnRouteRejected records an operation refused with an error code.
	OnRouteRejected(op, code string)
}

// =============================================================================
// DRC Hooks
// =============================================================================

// DRCHooks receives events from design rule check runs.
type DRCHooks interface {
	// OnRunStart records the start of a run over the given number of rules.
	OnRunStart(ctx context.Context, rules int)

	// OnRuleComplete records one rule evaluation.
	OnRuleComplete(ctx context.Context, rule string, violations int, duration time.Duration)

	// OnRunComplete records the end of a run.
	OnRunComplete(ctx context.Context, violations int, duration time.Duration, err error)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the query server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRoutingHooks is a no-op implementation of RoutingHooks.
type NoopRoutingHooks struct{}

func (NoopRoutingHooks) OnRouteStart(string, string)             {}
func (NoopRoutingHooks) OnRouteCommit(string, int, int, float64) {}
func (NoopRoutingHooks) OnRouteCancel(string, int)               {}
func (NoopRoutingHooks) OnRouteRejected(string, string)          {}

// NoopDRCHooks is a no-op implementation of DRCHooks.
type NoopDRCHooks struct{}

func (NoopDRCHooks) OnRunStart(context.Context, int)                            {}
func (NoopDRCHooks) OnRuleComplete(context.Context, string, int, time.Duration) {}
func (NoopDRCHooks) OnRunComplete(context.Context, int, time.Duration, error)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	routingHooks RoutingHooks = NoopRoutingHooks{}
	drcHooks     DRCHooks     = NoopDRCHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetRoutingHooks registers custom routing hooks.
// This should be called once at application startup.
func SetRoutingHooks(h RoutingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		routingHooks = h
	}
}

// SetDRCHooks registers custom DRC hooks.
// This should be called once at application startup before any checks run.
func SetDRCHooks(h DRCHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		drcHooks = h
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

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Routing returns the registered routing hooks.
func Routing() RoutingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return routingHooks
}

// DRC returns the registered DRC hooks.
func DRC() DRCHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return drcHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	routingHooks = NoopRoutingHooks{}
	drcHooks = NoopDRCHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
