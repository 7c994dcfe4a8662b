package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Reserved wire-level method names. These correspond to the capability
// hooks (commit, access predicates, serializer) and may never be dispatched
// as caller-chosen methods nor exported as descriptors.
var reservedMethodNames = map[string]struct{}{
	"commit":           {},
	"has_access":       {},
	"has_class_access": {},
	"serialize":        {},
}

// IsReservedMethodName reports whether the name collides with a capability
// hook and is therefore never dispatchable.
func IsReservedMethodName(name string) bool {
	_, reserved := reservedMethodNames[strings.ToLower(strings.TrimSpace(name))]
	return reserved
}

// Registration is a resolved registry entry: the type, its transactional
// flag, and the case-insensitive member lookup tables compiled at
// registration time.
type Registration struct {
	Type          *ResourceType
	Transactional bool

	methods    map[string]*MethodBinding
	properties map[string]*PropertyBinding
}

// Method resolves an exported or unexported method binding by
// case-insensitive name.
func (r *Registration) Method(name string) (*MethodBinding, bool) {
	if r == nil {
		return nil, false
	}
	binding, ok := r.methods[strings.ToLower(strings.TrimSpace(name))]
	return binding, ok
}

// Property resolves a property binding by case-insensitive name.
func (r *Registration) Property(name string) (*PropertyBinding, bool) {
	if r == nil {
		return nil, false
	}
	binding, ok := r.properties[strings.ToLower(strings.TrimSpace(name))]
	return binding, ok
}

type ResourceRegistry struct {
	mu            sync.RWMutex
	registrations map[string]*Registration
}

func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{registrations: make(map[string]*Registration)}
}

// Register stores the type under its name and records the transactional
// flag. Descriptors are validated here, not per call: reserved names,
// unknown method types, and ambiguous bindings are registration errors.
func (r *ResourceRegistry) Register(resourceType *ResourceType, transactional bool) error {
	if resourceType == nil {
		return fmt.Errorf("core: resource type is nil")
	}
	name := strings.TrimSpace(resourceType.Name)
	if name == "" {
		return fmt.Errorf("core: resource name is required")
	}

	registration := &Registration{
		Type:          resourceType,
		Transactional: transactional,
		methods:       make(map[string]*MethodBinding, len(resourceType.Methods)),
		properties:    make(map[string]*PropertyBinding, len(resourceType.Properties)),
	}

	for i := range resourceType.Methods {
		binding := &resourceType.Methods[i]
		if err := validateMethodBinding(name, binding); err != nil {
			return err
		}
		key := strings.ToLower(strings.TrimSpace(binding.Name))
		if _, exists := registration.methods[key]; exists {
			return fmt.Errorf("core: resource %q declares method %q twice", name, key)
		}
		registration.methods[key] = binding
	}

	for i := range resourceType.Properties {
		binding := &resourceType.Properties[i]
		if err := binding.Validate(); err != nil {
			return err
		}
		if IsReservedMethodName(binding.Name) {
			return fmt.Errorf("core: resource %q cannot export reserved name %q", name, binding.Name)
		}
		if binding.Get == nil {
			return fmt.Errorf("core: resource %q property %q has no getter", name, binding.Name)
		}
		if len(binding.Params) == 0 {
			// Setter calls carry the value under the property's own name.
			binding.Params = []ParamSpec{{Name: binding.Name}}
		}
		key := strings.ToLower(strings.TrimSpace(binding.Name))
		if _, exists := registration.methods[key]; exists {
			return fmt.Errorf("core: resource %q declares %q as both method and property", name, key)
		}
		if _, exists := registration.properties[key]; exists {
			return fmt.Errorf("core: resource %q declares property %q twice", name, key)
		}
		registration.properties[key] = binding
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.registrations[name]; exists {
		return fmt.Errorf("core: resource already registered: %s", name)
	}
	r.registrations[name] = registration
	return nil
}

// Resolve returns the registration for name, or a NotFound error.
func (r *ResourceRegistry) Resolve(name string) (*Registration, error) {
	trimmed := strings.TrimSpace(name)
	r.mu.RLock()
	registration, ok := r.registrations[trimmed]
	r.mu.RUnlock()
	if !ok {
		return nil, newNotFoundError(nil, trimmed)
	}
	return registration, nil
}

func (r *ResourceRegistry) List() []*Registration {
	r.mu.RLock()
	names := make([]string, 0, len(r.registrations))
	for name := range r.registrations {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)

	out := make([]*Registration, 0, len(names))
	r.mu.RLock()
	for _, name := range names {
		out = append(out, r.registrations[name])
	}
	r.mu.RUnlock()
	return out
}

func validateMethodBinding(resource string, binding *MethodBinding) error {
	if err := binding.Validate(); err != nil {
		return err
	}
	if IsReservedMethodName(binding.Name) {
		return fmt.Errorf("core: resource %q cannot export reserved name %q", resource, binding.Name)
	}
	if binding.ClassFn == nil && binding.InstanceFn == nil {
		return fmt.Errorf("core: resource %q method %q has no implementation", resource, binding.Name)
	}
	if binding.ClassFn != nil && binding.InstanceFn != nil {
		return fmt.Errorf("core: resource %q method %q is bound at both class and instance scope", resource, binding.Name)
	}
	return nil
}
