package core

import (
	"fmt"
	"strings"
)

// Permission is the coarse access level a method descriptor requires and a
// resource's access predicate grants.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

func (p Permission) Valid() bool {
	switch p {
	case PermissionRead, PermissionWrite:
		return true
	}
	return false
}

// MethodType is the operation category a method is tagged with. Dispatch
// entry points restrict which method types they may invoke.
type MethodType string

const (
	MethodTypeCreate  MethodType = "create"
	MethodTypeRead    MethodType = "read"
	MethodTypeUpdate  MethodType = "update"
	MethodTypeDelete  MethodType = "delete"
	MethodTypeLookup  MethodType = "lookup"
	MethodTypeExecute MethodType = "execute"
)

func (t MethodType) Valid() bool {
	switch t {
	case MethodTypeCreate, MethodTypeRead, MethodTypeUpdate,
		MethodTypeDelete, MethodTypeLookup, MethodTypeExecute:
		return true
	}
	return false
}

// DefaultMethodPermission returns the permission a method of the given type
// requires when the descriptor does not declare one.
func DefaultMethodPermission(t MethodType) Permission {
	switch t {
	case MethodTypeRead, MethodTypeLookup:
		return PermissionRead
	default:
		return PermissionWrite
	}
}

// Environment is the host-trusted context supplied out-of-band by the
// transport layer. It is never caller-controlled, and its values override
// identically named caller-supplied arguments during binding.
type Environment map[string]any

// Args is a caller-controlled argument mapping.
type Args map[string]any

const privateParamPrefix = "_"

// ParamSpec declares one parameter of an exported method, property, or
// constructor. Type is an optional codec type name applied to
// caller-supplied values; host-supplied environment values are trusted
// as-is.
type ParamSpec struct {
	Name string
	Type string
}

// Private reports whether the parameter may only be filled from the
// environment, never from caller-supplied arguments.
func (p ParamSpec) Private() bool {
	return strings.HasPrefix(p.Name, privateParamPrefix)
}

// Param declares an untyped parameter.
func Param(name string) ParamSpec {
	return ParamSpec{Name: name}
}

// TypedParam declares a parameter whose caller-supplied value is coerced to
// the named codec type before binding.
func TypedParam(name string, typeName string) ParamSpec {
	return ParamSpec{Name: name, Type: typeName}
}

// MethodDescriptor is the registration record for one exported method or
// settable property.
type MethodDescriptor struct {
	Name       string
	Permission Permission
	MethodType MethodType
	Params     []ParamSpec
	Exported   bool
}

func (d MethodDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("core: method name is required")
	}
	if !d.MethodType.Valid() {
		return fmt.Errorf("core: method %q has invalid method type %q", d.Name, d.MethodType)
	}
	if d.Permission != "" && !d.Permission.Valid() {
		return fmt.Errorf("core: method %q has invalid permission %q", d.Name, d.Permission)
	}
	return nil
}

// RequiredPermission resolves the declared permission, falling back to the
// default for the method type.
func (d MethodDescriptor) RequiredPermission() Permission {
	if d.Permission.Valid() {
		return d.Permission
	}
	return DefaultMethodPermission(d.MethodType)
}

// CallItem is one entry of a dispatch batch: a method name plus optional
// caller-supplied arguments. Method names match case-insensitively.
type CallItem struct {
	Method string `json:"method"`
	Args   Args   `json:"args,omitempty"`
}

// Call builds a bare call item with no caller arguments.
func Call(method string) CallItem {
	return CallItem{Method: method}
}

// DispatchResponse is the envelope returned by every dispatch operation.
// Result holds the ordered encoded call results ([]any for batches, a
// single unwrapped value for Delete). Commit is present only for write and
// create operations against a transactional resource with a commit hook;
// for all other dispatches the field is absent, not null.
type DispatchResponse struct {
	Result any  `json:"result"`
	Commit *any `json:"commit,omitempty"`
}
