package resources

import "github.com/goliatone/go-resources/core"

type Config = core.Config

type EncodingConfig = core.EncodingConfig

type Option = core.Option

type Service = core.Service

type Permission = core.Permission
type MethodType = core.MethodType
type Environment = core.Environment
type Args = core.Args
type ParamSpec = core.ParamSpec
type CallItem = core.CallItem
type DispatchResponse = core.DispatchResponse

type Resource = core.Resource
type AccessControlled = core.AccessControlled
type AccessLeveler = core.AccessLeveler
type Serializable = core.Serializable
type Committable = core.Committable

type ResourceType = core.ResourceType
type MethodBinding = core.MethodBinding
type PropertyBinding = core.PropertyBinding
type MethodDescriptor = core.MethodDescriptor
type Registry = core.Registry
type Registration = core.Registration

type DispatchActivity = core.DispatchActivity
type ActivityRecorder = core.ActivityRecorder
type MetricsRecorder = core.MetricsRecorder

const (
	PermissionRead  = core.PermissionRead
	PermissionWrite = core.PermissionWrite
)

const (
	MethodTypeLookup  = core.MethodTypeLookup
	MethodTypeExecute = core.MethodTypeExecute
	MethodTypeCreate  = core.MethodTypeCreate
	MethodTypeRead    = core.MethodTypeRead
	MethodTypeUpdate  = core.MethodTypeUpdate
	MethodTypeDelete  = core.MethodTypeDelete
)

var Call = core.Call

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithRegistry          = core.WithRegistry
	WithAccessEvaluator   = core.WithAccessEvaluator
	WithArgumentConverter = core.WithArgumentConverter
	WithActivityRecorder  = core.WithActivityRecorder
)

var (
	IsNotFound       = core.IsNotFound
	IsMethodNotFound = core.IsMethodNotFound
	IsNotAllowed     = core.IsNotAllowed
	IsAccessDenied   = core.IsAccessDenied
	IsMethodFailed   = core.IsMethodFailed
	IsEncodingError  = core.IsEncodingError
	IsTypeMismatch   = core.IsTypeMismatch
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func NewRegistry() *core.ResourceRegistry {
	return core.NewResourceRegistry()
}
