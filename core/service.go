package core

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-resources/codec"
)

var errNilConstructorResult = errors.New("core: constructor returned no instance")

// Service is the dispatch engine: it resolves resource types, gates every
// method invocation behind the resource's access predicate, binds call
// arguments from environment and caller payload, encodes results, and
// coordinates the post-mutation commit step.
//
// Dispatch is purely synchronous: every call executes to completion on the
// caller's goroutine, batch items run strictly in request order, and the
// first failure aborts the batch. Already-applied in-process mutations from
// earlier items are not rolled back.
type Service struct {
	config           Config
	logger           Logger
	loggerProvider   LoggerProvider
	metricsRecorder  MetricsRecorder
	errorFactory     ErrorFactory
	errorMapper      ErrorMapper
	registry         Registry
	evaluator        *AccessEvaluator
	encoder          *Encoder
	converter        ArgumentConverter
	activityRecorder ActivityRecorder
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("resources", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("resources"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.registry == nil {
		builder.registry = NewResourceRegistry()
	}
	if builder.converter == nil {
		builder.converter = codec.NewDecoder()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	evaluator := builder.evaluator
	if evaluator == nil {
		evaluator = NewAccessEvaluator(finalConfig.permissionOrder()...)
	}

	encoder := NewEncoder(evaluator, finalConfig.Encoding.WrapEnvelopes)
	encoder.errorFactory = builder.errorFactory

	return &Service{
		config:           finalConfig,
		logger:           logger,
		loggerProvider:   provider,
		metricsRecorder:  builder.metricsRecorder,
		errorFactory:     builder.errorFactory,
		errorMapper:      builder.errorMapper,
		registry:         builder.registry,
		evaluator:        evaluator,
		encoder:          encoder,
		converter:        builder.converter,
		activityRecorder: builder.activityRecorder,
	}, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper != nil {
		if mapped := mapper(err); mapped != nil {
			return mapped
		}
	}
	return err
}

// Config returns the resolved service configuration.
func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

// Registry returns the registry dispatch resolves against.
func (s *Service) Registry() Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

// Lookup runs a class-scoped batch restricted to lookup methods.
func (s *Service) Lookup(ctx context.Context, name string, batch []CallItem, env Environment) (DispatchResponse, error) {
	startedAt := time.Now()
	response, err := s.classDispatch(name, batch, env, methodTypeSet(MethodTypeLookup))
	s.finishDispatch(ctx, startedAt, "lookup", name, len(batch), response, err)
	return response, err
}

// Execute runs a class-scoped batch restricted to execute methods.
func (s *Service) Execute(ctx context.Context, name string, batch []CallItem, env Environment) (DispatchResponse, error) {
	startedAt := time.Now()
	response, err := s.classDispatch(name, batch, env, methodTypeSet(MethodTypeExecute))
	s.finishDispatch(ctx, startedAt, "execute", name, len(batch), response, err)
	return response, err
}

// Read constructs an instance from ctorArgs and runs a read-only batch
// against it. No commit is attempted on read paths.
func (s *Service) Read(ctx context.Context, name string, batch []CallItem, ctorArgs Args, env Environment) (DispatchResponse, error) {
	startedAt := time.Now()
	response, err := s.instanceDispatch(name, batch, ctorArgs, env, methodTypeSet(MethodTypeRead), false)
	s.finishDispatch(ctx, startedAt, "read", name, len(batch), response, err)
	return response, err
}

// Update constructs an instance and runs a write batch (read, update, and
// delete methods) against it, committing once afterwards if the resource is
// transactional. Failure aborts the batch without rolling back mutations
// already applied by earlier items.
func (s *Service) Update(ctx context.Context, name string, batch []CallItem, ctorArgs Args, env Environment) (DispatchResponse, error) {
	startedAt := time.Now()
	response, err := s.instanceDispatch(name, batch, ctorArgs, env, methodTypeSet(MethodTypeRead, MethodTypeUpdate, MethodTypeDelete), true)
	s.finishDispatch(ctx, startedAt, "update", name, len(batch), response, err)
	return response, err
}

// Delete is Update specialized to a single delete-typed call; the single
// result is unwrapped from its one-element sequence.
func (s *Service) Delete(ctx context.Context, name string, call CallItem, ctorArgs Args, env Environment) (DispatchResponse, error) {
	startedAt := time.Now()
	response, err := s.instanceDispatch(name, []CallItem{call}, ctorArgs, env, methodTypeSet(MethodTypeDelete), true)
	if err == nil {
		if results, ok := response.Result.([]any); ok && len(results) == 1 {
			response.Result = results[0]
		}
	}
	s.finishDispatch(ctx, startedAt, "delete", name, 1, response, err)
	return response, err
}

// Create is the two-phase variant: phase one invokes exactly one
// class-scoped creation method and verifies it returned an instance of the
// resource type; phase two runs the remaining batch against that instance
// with read and update methods allowed. The encoded instance leads the
// result sequence, followed by the batch results in request order. Commit
// follows on transactional resources.
func (s *Service) Create(ctx context.Context, name string, createMethod string, createArgs Args, batch []CallItem, env Environment) (DispatchResponse, error) {
	startedAt := time.Now()
	response, err := s.create(name, createMethod, createArgs, batch, env)
	s.finishDispatch(ctx, startedAt, "create", name, len(batch)+1, response, err)
	return response, err
}

func (s *Service) classDispatch(name string, batch []CallItem, env Environment, allowed map[MethodType]struct{}) (DispatchResponse, error) {
	registration, err := s.registry.Resolve(name)
	if err != nil {
		return DispatchResponse{}, s.mapError(err)
	}

	target := ClassTarget(registration.Type)
	results, err := s.callBatch(registration, nil, target, batch, allowed, env)
	if err != nil {
		return DispatchResponse{}, s.mapError(err)
	}

	encoded, err := s.encodeResults(results, target, env)
	if err != nil {
		return DispatchResponse{}, s.mapError(err)
	}
	return DispatchResponse{Result: encoded}, nil
}

func (s *Service) instanceDispatch(name string, batch []CallItem, ctorArgs Args, env Environment, allowed map[MethodType]struct{}, withCommit bool) (DispatchResponse, error) {
	registration, err := s.registry.Resolve(name)
	if err != nil {
		return DispatchResponse{}, s.mapError(err)
	}

	instance, err := s.construct(registration, ctorArgs, env)
	if err != nil {
		return DispatchResponse{}, s.mapError(err)
	}

	target := InstanceTarget(instance)
	results, err := s.callBatch(registration, instance, target, batch, allowed, env)
	if err != nil {
		return DispatchResponse{}, s.mapError(err)
	}

	encoded, err := s.encodeResults(results, target, env)
	if err != nil {
		return DispatchResponse{}, s.mapError(err)
	}

	response := DispatchResponse{Result: encoded}
	if withCommit {
		commit, err := s.commitResult(registration, instance, target, env)
		if err != nil {
			return DispatchResponse{}, s.mapError(err)
		}
		response.Commit = commit
	}
	return response, nil
}

func (s *Service) create(name string, createMethod string, createArgs Args, batch []CallItem, env Environment) (DispatchResponse, error) {
	registration, err := s.registry.Resolve(name)
	if err != nil {
		return DispatchResponse{}, s.mapError(err)
	}

	classTarget := ClassTarget(registration.Type)
	created, err := s.callBatch(
		registration,
		nil,
		classTarget,
		[]CallItem{{Method: createMethod, Args: createArgs}},
		methodTypeSet(MethodTypeCreate),
		env,
	)
	if err != nil {
		return DispatchResponse{}, s.mapError(err)
	}

	instance, ok := created[0].(Resource)
	if !ok || instance.ResourceName() != registration.Type.Name {
		return DispatchResponse{}, s.mapError(newMethodNotFoundError(s.errorFactory,
			registration.Type.Name, createMethod,
			"'"+createMethod+"' did not produce a '"+registration.Type.Name+"' instance",
		))
	}

	target := InstanceTarget(instance)
	followUp := []any{}
	if len(batch) > 0 {
		followUp, err = s.callBatch(registration, instance, target, batch, methodTypeSet(MethodTypeRead, MethodTypeUpdate), env)
		if err != nil {
			return DispatchResponse{}, s.mapError(err)
		}
	}

	results := append([]any{any(instance)}, followUp...)
	encoded, err := s.encodeResults(results, target, env)
	if err != nil {
		return DispatchResponse{}, s.mapError(err)
	}

	response := DispatchResponse{Result: encoded}
	commit, err := s.commitResult(registration, instance, target, env)
	if err != nil {
		return DispatchResponse{}, s.mapError(err)
	}
	response.Commit = commit
	return response, nil
}

func (s *Service) construct(registration *Registration, ctorArgs Args, env Environment) (Resource, error) {
	resourceType := registration.Type
	if resourceType.Constructor == nil {
		return nil, newMethodNotFoundError(s.errorFactory, resourceType.Name, "", "resource has no constructor")
	}
	bound, err := BindCall(resourceType.ConstructorParams, ctorArgs, env, s.converter)
	if err != nil {
		return nil, err
	}
	instance, err := resourceType.Constructor(bound)
	if err != nil {
		return nil, newMethodFailedError(resourceType.Name, "constructor", bound, err)
	}
	if instance == nil {
		return nil, newMethodFailedError(resourceType.Name, "constructor", bound, errNilConstructorResult)
	}
	return instance, nil
}

// callBatch runs the requested calls strictly in request order and fails
// fast: results for items after the failing one never materialize.
func (s *Service) callBatch(registration *Registration, receiver Resource, target AccessTarget, batch []CallItem, allowed map[MethodType]struct{}, env Environment) ([]any, error) {
	results := make([]any, 0, len(batch))
	for _, item := range batch {
		result, err := s.callOne(registration, receiver, target, item, allowed, env)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Service) callOne(registration *Registration, receiver Resource, target AccessTarget, item CallItem, allowed map[MethodType]struct{}, env Environment) (any, error) {
	resource := registration.Type.Name
	method := item.Method
	if method == "" {
		return nil, newMethodNotFoundError(s.errorFactory, resource, method, "method name is required")
	}
	if IsReservedMethodName(method) {
		return nil, newMethodNotFoundError(s.errorFactory, resource, method, "cannot dispatch reserved method '"+method+"'")
	}

	if receiver != nil {
		if property, ok := registration.Property(method); ok {
			return s.callProperty(resource, receiver, target, property, item, allowed, env)
		}
	}

	binding, ok := registration.Method(method)
	if !ok || !binding.Exported {
		return nil, newMethodNotFoundError(s.errorFactory, resource, method, "")
	}
	if receiver == nil && binding.ClassFn == nil {
		return nil, newMethodNotFoundError(s.errorFactory, resource, method, "'"+method+"' is not a class-scoped method")
	}
	if receiver != nil && binding.InstanceFn == nil {
		return nil, newMethodNotFoundError(s.errorFactory, resource, method, "'"+method+"' is not an instance-scoped method")
	}
	if _, ok := allowed[binding.MethodType]; !ok {
		return nil, newNotAllowedError(s.errorFactory, resource, method, binding.MethodType)
	}

	permission := binding.RequiredPermission()
	granted, err := s.evaluator.CheckAccess(target, permission, env)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, newAccessDeniedError(s.errorFactory, resource, method, permission)
	}

	bound, err := BindCall(binding.Params, item.Args, env, s.converter)
	if err != nil {
		return nil, err
	}

	var result any
	if receiver == nil {
		result, err = binding.ClassFn(bound)
	} else {
		result, err = binding.InstanceFn(receiver, bound)
	}
	if err != nil {
		return nil, newMethodFailedError(resource, method, bound, err)
	}
	return result, nil
}

// callProperty implements single-field setter semantics: a call supplying a
// value under the property's own name writes it, a bare call reads it.
func (s *Service) callProperty(resource string, receiver Resource, target AccessTarget, property *PropertyBinding, item CallItem, allowed map[MethodType]struct{}, env Environment) (any, error) {
	method := item.Method
	if !property.Exported {
		return nil, newMethodNotFoundError(s.errorFactory, resource, method, "")
	}
	if _, ok := allowed[property.MethodType]; !ok {
		return nil, newNotAllowedError(s.errorFactory, resource, method, property.MethodType)
	}

	permission := property.RequiredPermission()
	granted, err := s.evaluator.CheckAccess(target, permission, env)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, newAccessDeniedError(s.errorFactory, resource, method, permission)
	}

	bound, err := BindCall(property.Params, item.Args, env, s.converter)
	if err != nil {
		return nil, err
	}

	if value, ok := bound[property.Name]; ok {
		if property.Set == nil {
			return nil, newMethodNotFoundError(s.errorFactory, resource, method, "property '"+property.Name+"' is read-only")
		}
		if err := property.Set(receiver, value); err != nil {
			return nil, newMethodFailedError(resource, method, bound, err)
		}
		return value, nil
	}

	value, err := property.Get(receiver)
	if err != nil {
		return nil, newMethodFailedError(resource, method, nil, err)
	}
	return value, nil
}

// commitResult invokes the commit hook at most once, strictly after every
// method in the batch has completed. Non-transactional resources and
// resources without a hook yield an absent commit slot.
func (s *Service) commitResult(registration *Registration, instance Resource, target AccessTarget, env Environment) (*any, error) {
	if registration == nil || !registration.Transactional {
		return nil, nil
	}
	committer, ok := instance.(Committable)
	if !ok {
		return nil, nil
	}
	result, err := committer.Commit(env)
	if err != nil {
		return nil, newMethodFailedError(registration.Type.Name, "commit", nil, err)
	}
	if s.config.Encoding.EncodeResults {
		encoded, err := s.encoder.Encode(result, target, env)
		if err != nil {
			return nil, err
		}
		result = encoded
	}
	return &result, nil
}

func (s *Service) encodeResults(results []any, target AccessTarget, env Environment) (any, error) {
	if !s.config.Encoding.EncodeResults {
		return results, nil
	}
	return s.encoder.Encode(results, target, env)
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func methodTypeSet(types ...MethodType) map[MethodType]struct{} {
	set := make(map[MethodType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}
