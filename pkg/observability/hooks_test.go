package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Routing hooks
	r := NoopRoutingHooks{}
	r.OnRouteStart("VCC", "F.Cu")
	r.OnRouteCommit("VCC", 3, 1, 1.5e6)
	r.OnRouteCancel("VCC", 2)
	r.OnRouteRejected("start", "NO_NET_AT_POINT")

	// DRC hooks
	d := NoopDRCHooks{}
	d.OnRunStart(ctx, 9)
	d.OnRuleComplete(ctx, "trace_clearance", 1, time.Millisecond)
	d.OnRunComplete(ctx, 1, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "report")
	c.OnCacheMiss(ctx, "report")
	c.OnCacheSet(ctx, "report", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/nets")
	h.OnResponse(ctx, "GET", "/nets", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Routing().(NoopRoutingHooks); !ok {
		t.Error("Routing() should return NoopRoutingHooks by default")
	}
	if _, ok := DRC().(NoopDRCHooks); !ok {
		t.Error("DRC() should return NoopDRCHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customRouting := &testRoutingHooks{}
	SetRoutingHooks(customRouting)
	if Routing() != customRouting {
		t.Error("SetRoutingHooks should set custom hooks")
	}

	customDRC := &testDRCHooks{}
	SetDRCHooks(customDRC)
	if DRC() != customDRC {
		t.Error("SetDRCHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := DRC().(NoopDRCHooks); !ok {
		t.Error("Reset() should restore NoopDRCHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testDRCHooks{}
	SetDRCHooks(custom)

	// Setting nil should be ignored
	SetDRCHooks(nil)

	if DRC() != custom {
		t.Error("SetDRCHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testRoutingHooks struct{ NoopRoutingHooks }
type testDRCHooks struct{ NoopDRCHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
