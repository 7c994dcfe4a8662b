package core

import (
	"testing"
)

type probeResource struct {
	name   string
	grants map[Permission]bool
	best   func(env Environment) (Permission, bool)
	calls  []Permission
}

func (r *probeResource) ResourceName() string { return r.name }

func (r *probeResource) HasAccess(permission Permission, _ Environment) bool {
	r.calls = append(r.calls, permission)
	return r.grants[permission]
}

type leveledResource struct {
	probeResource
}

func (r *leveledResource) BestAccessLevel(env Environment) (Permission, bool) {
	return r.best(env)
}

func TestAccessEvaluator_OrderedProbeFirstGrantWins(t *testing.T) {
	resource := &probeResource{name: "doc", grants: map[Permission]bool{PermissionRead: true}}
	evaluator := NewAccessEvaluator()

	level, ok := evaluator.ResolveLevel(InstanceTarget(resource), Environment{})
	if !ok || level != PermissionRead {
		t.Fatalf("expected read level, got %q ok=%v", level, ok)
	}
	// Default order probes write before read.
	if len(resource.calls) != 2 || resource.calls[0] != PermissionWrite || resource.calls[1] != PermissionRead {
		t.Fatalf("expected write-first probe, got %v", resource.calls)
	}
}

func TestAccessEvaluator_ProbeStopsAtFirstGrant(t *testing.T) {
	resource := &probeResource{name: "doc", grants: map[Permission]bool{PermissionWrite: true, PermissionRead: true}}
	evaluator := NewAccessEvaluator()

	level, ok := evaluator.ResolveLevel(InstanceTarget(resource), Environment{})
	if !ok || level != PermissionWrite {
		t.Fatalf("expected write level, got %q ok=%v", level, ok)
	}
	if len(resource.calls) != 1 {
		t.Fatalf("expected a single probe, got %v", resource.calls)
	}
}

func TestAccessEvaluator_CustomOrder(t *testing.T) {
	resource := &probeResource{name: "doc", grants: map[Permission]bool{PermissionWrite: true, PermissionRead: true}}
	evaluator := NewAccessEvaluator(PermissionRead, PermissionWrite)

	level, ok := evaluator.ResolveLevel(InstanceTarget(resource), Environment{})
	if !ok || level != PermissionRead {
		t.Fatalf("expected read-first order to win, got %q", level)
	}
}

func TestAccessEvaluator_BestLevelHookOwnsResolution(t *testing.T) {
	resource := &leveledResource{probeResource: probeResource{name: "doc", grants: map[Permission]bool{PermissionWrite: true}}}
	resource.best = func(Environment) (Permission, bool) {
		return PermissionRead, true
	}
	evaluator := NewAccessEvaluator()

	level, ok := evaluator.ResolveLevel(InstanceTarget(resource), Environment{})
	if !ok || level != PermissionRead {
		t.Fatalf("best-level hook must own resolution, got %q", level)
	}
	if len(resource.calls) != 0 {
		t.Fatalf("predicate must not be probed when a best-level hook exists, got %v", resource.calls)
	}
}

func TestAccessEvaluator_NoGrantResolvesToNothing(t *testing.T) {
	resource := &probeResource{name: "doc", grants: map[Permission]bool{}}
	evaluator := NewAccessEvaluator()

	if _, ok := evaluator.ResolveLevel(InstanceTarget(resource), Environment{}); ok {
		t.Fatalf("expected no level")
	}
}

func TestAccessEvaluator_CheckAccessRequiresPredicate(t *testing.T) {
	evaluator := NewAccessEvaluator()

	_, err := evaluator.CheckAccess(AccessTarget{}, PermissionRead, Environment{})
	if !IsMethodNotFound(err) {
		t.Fatalf("expected method not found for missing predicate, got %v", err)
	}
}

func TestClassTarget_UsesClassHooks(t *testing.T) {
	resourceType := &ResourceType{
		Name: "doc",
		ClassAccess: func(permission Permission, _ Environment) bool {
			return permission == PermissionRead
		},
	}
	evaluator := NewAccessEvaluator()

	granted, err := evaluator.CheckAccess(ClassTarget(resourceType), PermissionRead, Environment{})
	if err != nil || !granted {
		t.Fatalf("expected class read grant, err=%v granted=%v", err, granted)
	}
	granted, err = evaluator.CheckAccess(ClassTarget(resourceType), PermissionWrite, Environment{})
	if err != nil || granted {
		t.Fatalf("expected class write denial, err=%v granted=%v", err, granted)
	}
}
