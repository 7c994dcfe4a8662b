package core

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Resource is a dispatchable resource instance. Instances are constructed
// per dispatch call and never retained by the engine; persistence beyond
// the call is the resource's own responsibility via its commit hook.
type Resource interface {
	ResourceName() string
}

// AccessControlled gates instance-scoped operations (read/update/delete).
// The predicate is trusted: the evaluator returns the first permission it
// accepts during ordered probing.
type AccessControlled interface {
	HasAccess(permission Permission, env Environment) bool
}

// AccessLeveler optionally short-circuits ordered permission probing by
// returning the single most permissive level the environment grants.
type AccessLeveler interface {
	BestAccessLevel(env Environment) (Permission, bool)
}

// Serializable produces the transport-safe representation of a resource for
// a given viewer access level. The returned value is itself recursively
// encoded.
type Serializable interface {
	Serialize(permission Permission, env Environment) any
}

// Committable is the optional post-mutation commit hook, invoked at most
// once per dispatch call and only when the type is registered as
// transactional. Arguments are bound from the environment only.
type Committable interface {
	Commit(env Environment) (any, error)
}

// ClassFunc is a class-scoped exported method (create/lookup/execute).
type ClassFunc func(args Args) (any, error)

// InstanceFunc is an instance-scoped exported method.
type InstanceFunc func(receiver Resource, args Args) (any, error)

// ConstructorFunc builds a resource instance from binder-filled
// construction arguments.
type ConstructorFunc func(args Args) (Resource, error)

// GetterFunc reads an exported settable property.
type GetterFunc func(receiver Resource) (any, error)

// SetterFunc writes an exported settable property.
type SetterFunc func(receiver Resource, value any) error

// MethodBinding attaches a descriptor to its implementation. Exactly one of
// ClassFn and InstanceFn must be set; it determines the scope the method
// dispatches in.
type MethodBinding struct {
	MethodDescriptor
	ClassFn    ClassFunc
	InstanceFn InstanceFunc
}

// PropertyBinding attaches a descriptor to an exported settable property.
// A zero-argument call reads the property; a call supplying a value under
// the property's own name writes it.
type PropertyBinding struct {
	MethodDescriptor
	Get GetterFunc
	Set SetterFunc
}

// ResourceType is the registration record for one named resource type: its
// class-level access hooks, constructor, and exported members. Instance
// access hooks live on the instances themselves via the capability
// interfaces.
type ResourceType struct {
	Name              string
	Constructor       ConstructorFunc
	ConstructorParams []ParamSpec
	ClassAccess       func(permission Permission, env Environment) bool
	ClassAccessLevel  func(env Environment) (Permission, bool)
	Methods           []MethodBinding
	Properties        []PropertyBinding
}

// Registry resolves resource names to registered types. Registration
// happens at process start; lookups are read-only afterwards.
type Registry interface {
	Register(resourceType *ResourceType, transactional bool) error
	Resolve(name string) (*Registration, error)
	List() []*Registration
}

// ArgumentConverter coerces a caller-supplied raw value into the declared
// codec type. The codec package supplies the default implementation.
type ArgumentConverter interface {
	Convert(raw any, typeName string) (any, error)
}

// DispatchActivity is the audit record emitted once per dispatch call.
type DispatchActivity struct {
	ID        string
	Operation string
	Resource  string
	Status    string
	Error     string
	CallCount int
	Committed bool
	Duration  time.Duration
	CreatedAt time.Time
}

// ActivityRecorder receives one DispatchActivity per dispatch call.
// Recording is best-effort: failures are logged, never propagated to the
// caller.
type ActivityRecorder interface {
	RecordDispatch(ctx context.Context, activity DispatchActivity) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// DispatchService is the full dispatch surface the engine exposes to
// transports and command handlers.
type DispatchService interface {
	Lookup(ctx context.Context, name string, batch []CallItem, env Environment) (DispatchResponse, error)
	Execute(ctx context.Context, name string, batch []CallItem, env Environment) (DispatchResponse, error)
	Create(ctx context.Context, name string, createMethod string, createArgs Args, batch []CallItem, env Environment) (DispatchResponse, error)
	Read(ctx context.Context, name string, batch []CallItem, ctorArgs Args, env Environment) (DispatchResponse, error)
	Update(ctx context.Context, name string, batch []CallItem, ctorArgs Args, env Environment) (DispatchResponse, error)
	Delete(ctx context.Context, name string, call CallItem, ctorArgs Args, env Environment) (DispatchResponse, error)
}

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
