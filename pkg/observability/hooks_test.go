package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnOperationStart(ctx, "normalize", 128)
	p.OnOperationComplete(ctx, "normalize", 64, time.Second, nil)
	p.OnRetrocycle(ctx, "normalize", 2, 1, 1, 0)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "document")
	c.OnCacheMiss(ctx, "graph")
	c.OnCacheSet(ctx, "document", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/normalize")
	h.OnResponse(ctx, "POST", "/v1/normalize", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
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

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestPrometheusRecordsEvents(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	if err != nil {
		t.Fatalf("NewPrometheus error: %v", err)
	}

	p.OnOperationComplete(ctx, "normalize", 100, time.Millisecond, nil)
	p.OnOperationComplete(ctx, "normalize", 0, time.Millisecond, errors.New("bad"))
	p.OnRetrocycle(ctx, "normalize", 3, 1, 2, 1)
	p.OnCacheHit(ctx, "document")
	p.OnCacheMiss(ctx, "document")
	p.OnCacheMiss(ctx, "document")
	p.OnCacheSet(ctx, "graph", 10)
	p.OnResponse(ctx, "POST", "/v1/normalize", 200, time.Millisecond)

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"ok ops", p.operations.WithLabelValues("normalize", "ok"), 1},
		{"error ops", p.operations.WithLabelValues("normalize", "error"), 1},
		{"resolved", p.refs.WithLabelValues("normalize", "resolved"), 3},
		{"rejected", p.refs.WithLabelValues("normalize", "rejected"), 1},
		{"resurrected", p.classes.WithLabelValues("normalize", "resurrected"), 2},
		{"demoted", p.classes.WithLabelValues("normalize", "demoted"), 1},
		{"hits", p.cacheLookups.WithLabelValues("document", "hit"), 1},
		{"misses", p.cacheLookups.WithLabelValues("document", "miss"), 2},
		{"writes", p.cacheWrites.WithLabelValues("graph"), 1},
		{"requests", p.requests.WithLabelValues("POST", "/v1/normalize", "200"), 1},
	}
	for _, tt := range checks {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.c); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestPrometheusDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheus(reg); err != nil {
		t.Fatalf("first NewPrometheus error: %v", err)
	}
	if _, err := NewPrometheus(reg); err == nil {
		t.Error("second registration should fail")
	}
}

func TestPrometheusInstall(t *testing.T) {
	defer Reset()
	p, err := NewPrometheus(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	p.Install()
	if Pipeline() != PipelineHooks(p) || Cache() != CacheHooks(p) || HTTP() != HTTPHooks(p) {
		t.Error("Install should register p for every hook type")
	}
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
