package core

import (
	"testing"
)

func minimalType(name string) *ResourceType {
	return &ResourceType{
		Name: name,
		Methods: []MethodBinding{
			{
				MethodDescriptor: MethodDescriptor{
					Name:       "find",
					MethodType: MethodTypeLookup,
					Exported:   true,
				},
				ClassFn: func(Args) (any, error) { return nil, nil },
			},
		},
	}
}

func TestResourceRegistry_RegisterAndResolve(t *testing.T) {
	registry := NewResourceRegistry()
	if err := registry.Register(minimalType("widget"), true); err != nil {
		t.Fatalf("register: %v", err)
	}

	registration, err := registry.Resolve("widget")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !registration.Transactional {
		t.Fatalf("expected transactional registration")
	}
	if _, ok := registration.Method("FIND"); !ok {
		t.Fatalf("method lookup must be case-insensitive")
	}
}

func TestResourceRegistry_ResolveUnknownIsNotFound(t *testing.T) {
	registry := NewResourceRegistry()
	if _, err := registry.Resolve("ghost"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResourceRegistry_RejectsDuplicateNames(t *testing.T) {
	registry := NewResourceRegistry()
	if err := registry.Register(minimalType("widget"), false); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(minimalType("widget"), false); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestResourceRegistry_RejectsReservedMethodNames(t *testing.T) {
	for _, reserved := range []string{"commit", "has_access", "has_class_access", "serialize"} {
		resourceType := minimalType("widget")
		resourceType.Methods[0].Name = reserved
		registry := NewResourceRegistry()
		if err := registry.Register(resourceType, false); err == nil {
			t.Fatalf("expected registration error for reserved name %q", reserved)
		}
	}
}

func TestResourceRegistry_RejectsAmbiguousScope(t *testing.T) {
	resourceType := minimalType("widget")
	resourceType.Methods[0].InstanceFn = func(Resource, Args) (any, error) { return nil, nil }

	registry := NewResourceRegistry()
	if err := registry.Register(resourceType, false); err == nil {
		t.Fatalf("expected error for method bound at both scopes")
	}
}

func TestResourceRegistry_RejectsMethodPropertyCollision(t *testing.T) {
	resourceType := minimalType("widget")
	resourceType.Properties = []PropertyBinding{
		{
			MethodDescriptor: MethodDescriptor{
				Name:       "Find",
				MethodType: MethodTypeRead,
				Exported:   true,
			},
			Get: func(Resource) (any, error) { return nil, nil },
		},
	}

	registry := NewResourceRegistry()
	if err := registry.Register(resourceType, false); err == nil {
		t.Fatalf("expected collision error for method and property sharing a name")
	}
}

func TestResourceRegistry_PropertyRequiresGetter(t *testing.T) {
	resourceType := minimalType("widget")
	resourceType.Properties = []PropertyBinding{
		{
			MethodDescriptor: MethodDescriptor{
				Name:       "title",
				MethodType: MethodTypeRead,
				Exported:   true,
			},
		},
	}

	registry := NewResourceRegistry()
	if err := registry.Register(resourceType, false); err == nil {
		t.Fatalf("expected error for property without getter")
	}
}

func TestResourceRegistry_PropertyParamsDefaultToOwnName(t *testing.T) {
	resourceType := minimalType("widget")
	resourceType.Properties = []PropertyBinding{
		{
			MethodDescriptor: MethodDescriptor{
				Name:       "title",
				MethodType: MethodTypeUpdate,
				Exported:   true,
			},
			Get: func(Resource) (any, error) { return "", nil },
			Set: func(Resource, any) error { return nil },
		},
	}

	registry := NewResourceRegistry()
	if err := registry.Register(resourceType, false); err != nil {
		t.Fatalf("register: %v", err)
	}
	registration, err := registry.Resolve("widget")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	property, ok := registration.Property("title")
	if !ok {
		t.Fatalf("expected title property")
	}
	if len(property.Params) != 1 || property.Params[0].Name != "title" {
		t.Fatalf("expected defaulted param schema, got %#v", property.Params)
	}
}

func TestResourceRegistry_ListIsSorted(t *testing.T) {
	registry := NewResourceRegistry()
	for _, name := range []string{"zebra", "apple", "mango"} {
		if err := registry.Register(minimalType(name), false); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	listed := registry.List()
	if len(listed) != 3 {
		t.Fatalf("expected three registrations, got %d", len(listed))
	}
	names := []string{listed[0].Type.Name, listed[1].Type.Name, listed[2].Type.Name}
	if names[0] != "apple" || names[1] != "mango" || names[2] != "zebra" {
		t.Fatalf("expected sorted names, got %v", names)
	}
}
