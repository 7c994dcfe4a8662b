package resources

import (
	"context"
	"testing"
)

func TestFacadeDispatchRoundTrip(t *testing.T) {
	registry := NewRegistry()
	err := registry.Register(&ResourceType{
		Name:        "widget",
		ClassAccess: func(Permission, Environment) bool { return true },
		Methods: []MethodBinding{{
			MethodDescriptor: MethodDescriptor{
				Name:       "ping",
				MethodType: MethodTypeExecute,
				Exported:   true,
			},
			ClassFn: func(Args) (any, error) { return "pong", nil },
		}},
	}, false)
	if err != nil {
		t.Fatalf("register widget: %v", err)
	}

	svc, err := NewService(DefaultConfig(), WithRegistry(registry))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	resp, err := svc.Execute(context.Background(), "widget", []CallItem{Call("ping")}, Environment{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	results, ok := resp.Result.([]any)
	if !ok || len(results) != 1 || results[0] != "pong" {
		t.Fatalf("unexpected result: %#v", resp.Result)
	}
	if resp.Commit != nil {
		t.Fatalf("non-transactional dispatch must not commit")
	}

	_, err = svc.Execute(context.Background(), "ghost", []CallItem{Call("ping")}, Environment{})
	if !IsNotFound(err) {
		t.Fatalf("expected not found through facade predicates, got %v", err)
	}
}
