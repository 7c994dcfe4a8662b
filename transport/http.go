package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-resources/core"
)

const (
	opLookup  = "lookup"
	opExecute = "execute"
	opCreate  = "create"
	opRead    = "read"
	opUpdate  = "update"
	opDelete  = "delete"
)

const defaultRequestBodyLimit int64 = 1 << 20 // 1 MiB

// Dispatcher is the engine surface the HTTP handler delegates to,
// satisfied by core.Service.
type Dispatcher interface {
	Lookup(ctx context.Context, name string, batch []core.CallItem, env core.Environment) (core.DispatchResponse, error)
	Execute(ctx context.Context, name string, batch []core.CallItem, env core.Environment) (core.DispatchResponse, error)
	Create(ctx context.Context, name string, createMethod string, createArgs core.Args, batch []core.CallItem, env core.Environment) (core.DispatchResponse, error)
	Read(ctx context.Context, name string, batch []core.CallItem, ctorArgs core.Args, env core.Environment) (core.DispatchResponse, error)
	Update(ctx context.Context, name string, batch []core.CallItem, ctorArgs core.Args, env core.Environment) (core.DispatchResponse, error)
	Delete(ctx context.Context, name string, call core.CallItem, ctorArgs core.Args, env core.Environment) (core.DispatchResponse, error)
	Registry() core.Registry
}

// EnvironmentFunc resolves the trusted caller environment from the
// incoming request. Values it returns always win over request payload
// arguments inside the engine.
type EnvironmentFunc func(r *http.Request) (core.Environment, error)

type dispatchRequest struct {
	Batch           []core.CallItem `json:"batch,omitempty"`
	Call            *core.CallItem  `json:"call,omitempty"`
	ConstructorArgs core.Args       `json:"constructor_args,omitempty"`
	CreateMethod    string          `json:"create_method,omitempty"`
	CreateArgs      core.Args       `json:"create_args,omitempty"`
}

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Message  string         `json:"message"`
	Category string         `json:"category,omitempty"`
	TextCode string         `json:"text_code,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type HTTPHandler struct {
	service     Dispatcher
	basePath    string
	environment EnvironmentFunc
	maxBody     int64
}

type HTTPHandlerOption func(*HTTPHandler)

func WithBasePath(path string) HTTPHandlerOption {
	return func(h *HTTPHandler) {
		h.basePath = "/" + strings.Trim(strings.TrimSpace(path), "/")
	}
}

func WithEnvironmentFunc(fn EnvironmentFunc) HTTPHandlerOption {
	return func(h *HTTPHandler) {
		if fn != nil {
			h.environment = fn
		}
	}
}

func WithMaxBodyBytes(limit int64) HTTPHandlerOption {
	return func(h *HTTPHandler) {
		if limit > 0 {
			h.maxBody = limit
		}
	}
}

func NewHTTPHandler(service Dispatcher, options ...HTTPHandlerOption) *HTTPHandler {
	handler := &HTTPHandler{
		service:  service,
		basePath: "/resources",
		environment: func(*http.Request) (core.Environment, error) {
			return core.Environment{}, nil
		},
		maxBody: defaultRequestBodyLimit,
	}
	for _, option := range options {
		if option != nil {
			option(handler)
		}
	}
	return handler
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		writeError(w, transportInternal("transport: handler is not configured", nil))
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, h.basePath)
	if !ok {
		writeError(w, transportError("transport: unknown path", goerrors.CategoryNotFound, http.StatusNotFound, map[string]any{
			"path": r.URL.Path,
		}))
		return
	}
	segments := splitPath(rest)

	switch {
	case r.Method == http.MethodGet && len(segments) == 0:
		h.listResources(w)
	case r.Method == http.MethodGet && len(segments) == 1:
		h.describeResource(w, segments[0])
	case r.Method == http.MethodPost && len(segments) == 2:
		h.dispatch(w, r, segments[0], segments[1])
	default:
		writeError(w, transportError("transport: unsupported route", goerrors.CategoryBadInput, http.StatusMethodNotAllowed, map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		}))
	}
}

func (h *HTTPHandler) dispatch(w http.ResponseWriter, r *http.Request, resource string, operation string) {
	payload, err := h.decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	env, err := h.environment(r)
	if err != nil {
		writeError(w, transportWrapError(err, goerrors.CategoryAuthz, "transport: resolve environment", http.StatusForbidden, map[string]any{
			"resource": resource,
		}))
		return
	}

	ctx := r.Context()
	var response core.DispatchResponse
	switch strings.ToLower(operation) {
	case opLookup:
		response, err = h.service.Lookup(ctx, resource, payload.Batch, env)
	case opExecute:
		response, err = h.service.Execute(ctx, resource, payload.Batch, env)
	case opCreate:
		response, err = h.service.Create(ctx, resource, payload.CreateMethod, payload.CreateArgs, payload.Batch, env)
	case opRead:
		response, err = h.service.Read(ctx, resource, payload.Batch, payload.ConstructorArgs, env)
	case opUpdate:
		response, err = h.service.Update(ctx, resource, payload.Batch, payload.ConstructorArgs, env)
	case opDelete:
		if payload.Call == nil {
			writeError(w, transportBadInput("transport: delete requires a call payload", map[string]any{
				"resource": resource,
			}))
			return
		}
		response, err = h.service.Delete(ctx, resource, *payload.Call, payload.ConstructorArgs, env)
	default:
		writeError(w, transportBadInput("transport: unknown operation", map[string]any{
			"resource":  resource,
			"operation": operation,
		}))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *HTTPHandler) listResources(w http.ResponseWriter) {
	registry := h.service.Registry()
	if registry == nil {
		writeError(w, transportInternal("transport: registry is not configured", nil))
		return
	}
	names := []string{}
	for _, registration := range registry.List() {
		if registration == nil || registration.Type == nil {
			continue
		}
		names = append(names, registration.Type.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": names})
}

func (h *HTTPHandler) describeResource(w http.ResponseWriter, name string) {
	registry := h.service.Registry()
	if registry == nil {
		writeError(w, transportInternal("transport: registry is not configured", nil))
		return
	}
	registration, err := registry.Resolve(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describeRegistration(registration))
}

func describeRegistration(registration *core.Registration) map[string]any {
	methods := []map[string]any{}
	for _, binding := range registration.Type.Methods {
		if !binding.Exported {
			continue
		}
		methods = append(methods, describeDescriptor(binding.MethodDescriptor))
	}
	properties := []map[string]any{}
	for _, binding := range registration.Type.Properties {
		if !binding.Exported {
			continue
		}
		properties = append(properties, describeDescriptor(binding.MethodDescriptor))
	}
	return map[string]any{
		"name":          registration.Type.Name,
		"transactional": registration.Transactional,
		"methods":       methods,
		"properties":    properties,
	}
}

func describeDescriptor(descriptor core.MethodDescriptor) map[string]any {
	params := []map[string]any{}
	for _, param := range descriptor.Params {
		if param.Private() {
			continue
		}
		entry := map[string]any{"name": param.Name}
		if param.Type != "" {
			entry["type"] = param.Type
		}
		params = append(params, entry)
	}
	return map[string]any{
		"name":        descriptor.Name,
		"permission":  string(descriptor.Permission),
		"method_type": string(descriptor.MethodType),
		"params":      params,
	}
}

func (h *HTTPHandler) decodeBody(r *http.Request) (dispatchRequest, error) {
	payload := dispatchRequest{}
	if r.Body == nil {
		return payload, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody+1))
	if err != nil {
		return payload, transportWrapError(err, goerrors.CategoryBadInput, "transport: read request body", http.StatusBadRequest, nil)
	}
	if int64(len(body)) > h.maxBody {
		return payload, transportBadInput("transport: request body exceeds limit", map[string]any{
			"limit_bytes": h.maxBody,
		})
	}
	if len(body) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, transportWrapError(err, goerrors.CategoryBadInput, "transport: decode request payload", http.StatusBadRequest, nil)
	}
	return payload, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	payload := errorPayload{Message: "internal error"}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		if rich.Code > 0 {
			status = rich.Code
		}
		payload = errorPayload{
			Message:  rich.Message,
			Category: string(rich.Category),
			TextCode: rich.TextCode,
			Metadata: rich.Metadata,
		}
	} else if err != nil {
		payload.Message = err.Error()
	}
	writeJSON(w, status, errorEnvelope{Error: payload})
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

var _ http.Handler = (*HTTPHandler)(nil)
var _ Dispatcher = (*core.Service)(nil)
