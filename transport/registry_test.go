package transport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	service := &stubService{registry: testRegistry(t)}
	registry := NewDefaultRegistry(service)

	adapter, ok := registry.Get("HTTP")
	if !ok {
		t.Fatalf("expected http adapter lookup to be case-insensitive")
	}
	if adapter.Kind() != KindHTTP {
		t.Fatalf("unexpected adapter kind: %q", adapter.Kind())
	}
	if adapter.Handler() == nil {
		t.Fatalf("expected adapter handler")
	}

	if err := registry.Register(NewHTTPAdapter(service)); err == nil {
		t.Fatalf("expected duplicate kind rejection")
	}
}

func TestRegistry_BuildFallsBackToFactory(t *testing.T) {
	registry := NewRegistry()
	if err := registry.RegisterFactory("grpc", func(config map[string]any) (Adapter, error) {
		if config["port"] != 9090 {
			t.Fatalf("expected factory config passthrough, got %#v", config)
		}
		return &fakeAdapter{kind: "grpc"}, nil
	}); err != nil {
		t.Fatalf("register factory: %v", err)
	}

	adapter, err := registry.Build("grpc", map[string]any{"port": 9090})
	if err != nil {
		t.Fatalf("build from factory: %v", err)
	}
	if adapter.Kind() != "grpc" {
		t.Fatalf("unexpected built adapter: %q", adapter.Kind())
	}

	if _, err := registry.Build("soap", nil); err == nil {
		t.Fatalf("expected unknown kind rejection")
	}
}

func TestRegistry_BuildPrefersRegisteredAdapter(t *testing.T) {
	registry := NewRegistry()
	direct := &fakeAdapter{kind: "http"}
	if err := registry.Register(direct); err != nil {
		t.Fatalf("register adapter: %v", err)
	}
	if err := registry.RegisterFactory("http", func(map[string]any) (Adapter, error) {
		return nil, fmt.Errorf("factory must not run when adapter is registered")
	}); err != nil {
		t.Fatalf("register factory: %v", err)
	}

	adapter, err := registry.Build("http", nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if adapter != Adapter(direct) {
		t.Fatalf("expected registered adapter precedence")
	}
}

func TestRegistry_ListIsSortedByKind(t *testing.T) {
	registry := NewRegistry()
	for _, kind := range []string{"zz", "aa", "mm"} {
		if err := registry.Register(&fakeAdapter{kind: kind}); err != nil {
			t.Fatalf("register %q: %v", kind, err)
		}
	}
	listed := registry.List()
	if len(listed) != 3 {
		t.Fatalf("expected 3 adapters, got %d", len(listed))
	}
	if listed[0].Kind() != "aa" || listed[2].Kind() != "zz" {
		t.Fatalf("expected sorted kinds, got %q..%q", listed[0].Kind(), listed[2].Kind())
	}
}

func TestHTTPAdapter_ServesDispatchRoutes(t *testing.T) {
	service := &stubService{registry: testRegistry(t)}
	adapter := NewHTTPAdapter(service)

	recorder := httptest.NewRecorder()
	adapter.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resources", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected adapter to serve resource listing, got %d", recorder.Code)
	}
}

type fakeAdapter struct {
	kind string
}

func (a *fakeAdapter) Kind() string {
	return a.kind
}

func (a *fakeAdapter) Handler() http.Handler {
	return http.NotFoundHandler()
}
