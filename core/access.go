package core

// AccessTarget abstracts the subject of an access decision: the class hooks
// of a resource type for class-scoped operations, or a constructed instance
// for instance-scoped ones.
type AccessTarget struct {
	resource string
	check    func(permission Permission, env Environment) bool
	best     func(env Environment) (Permission, bool)
}

// ClassTarget builds the access target for class-scoped dispatch
// (create/lookup/execute).
func ClassTarget(resourceType *ResourceType) AccessTarget {
	target := AccessTarget{}
	if resourceType == nil {
		return target
	}
	target.resource = resourceType.Name
	target.check = resourceType.ClassAccess
	target.best = resourceType.ClassAccessLevel
	return target
}

// InstanceTarget builds the access target for instance-scoped dispatch
// (read/update/delete) from the instance's capability interfaces.
func InstanceTarget(instance Resource) AccessTarget {
	target := AccessTarget{}
	if instance == nil {
		return target
	}
	target.resource = instance.ResourceName()
	if controlled, ok := instance.(AccessControlled); ok {
		target.check = controlled.HasAccess
	}
	if leveler, ok := instance.(AccessLeveler); ok {
		target.best = leveler.BestAccessLevel
	}
	return target
}

// DefaultPermissionOrder probes the most permissive level first.
var DefaultPermissionOrder = []Permission{PermissionWrite, PermissionRead}

// AccessEvaluator resolves the single most-applicable permission a viewer
// holds against a resource, and gates individual method calls.
type AccessEvaluator struct {
	PermissionOrder []Permission
}

func NewAccessEvaluator(order ...Permission) *AccessEvaluator {
	if len(order) == 0 {
		order = DefaultPermissionOrder
	}
	return &AccessEvaluator{PermissionOrder: append([]Permission(nil), order...)}
}

func (e *AccessEvaluator) order() []Permission {
	if e == nil || len(e.PermissionOrder) == 0 {
		return DefaultPermissionOrder
	}
	return e.PermissionOrder
}

// ResolveLevel returns the access level the environment grants against the
// target. A best-level hook owns the semantics entirely when present;
// otherwise the access predicate is probed once per permission in
// configured order and the first accepted permission wins. The returned
// bool is false when no level is granted. This resolution feeds encoding
// only; it is not the per-method gate.
func (e *AccessEvaluator) ResolveLevel(target AccessTarget, env Environment) (Permission, bool) {
	if target.best != nil {
		return target.best(env)
	}
	if target.check == nil {
		return "", false
	}
	for _, permission := range e.order() {
		if target.check(permission, env) {
			return permission, true
		}
	}
	return "", false
}

// CheckAccess calls the target's access predicate once for the specific
// permission a method descriptor requires. A target with no predicate is a
// MethodNotFound condition, mirroring a resource missing its access method.
func (e *AccessEvaluator) CheckAccess(target AccessTarget, permission Permission, env Environment) (bool, error) {
	if target.check == nil {
		return false, newMethodNotFoundError(nil, target.resource, "", "resource is missing an access predicate")
	}
	return target.check(permission, env), nil
}
