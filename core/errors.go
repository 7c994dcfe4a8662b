package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ResourceErrorNotFound       = "RESOURCE_NOT_FOUND"
	ResourceErrorMethodNotFound = "RESOURCE_METHOD_NOT_FOUND"
	ResourceErrorNotAllowed     = "RESOURCE_NOT_ALLOWED"
	ResourceErrorAccessDenied   = "RESOURCE_ACCESS_DENIED"
	ResourceErrorMethodFailed   = "RESOURCE_METHOD_FAILED"
	ResourceErrorEncoding       = "RESOURCE_ENCODING_FAILED"
	ResourceErrorTypeMismatch   = "RESOURCE_TYPE_MISMATCH"
	ResourceErrorBadInput       = "RESOURCE_BAD_INPUT"
	ResourceErrorInternal       = "RESOURCE_INTERNAL_ERROR"
)

// errorFactoryOrDefault lets components without a configured factory fall
// back to the stock constructor.
func errorFactoryOrDefault(factory ErrorFactory) ErrorFactory {
	if factory == nil {
		return goerrors.New
	}
	return factory
}

func newNotFoundError(factory ErrorFactory, name string) error {
	return errorFactoryOrDefault(factory)("core: '"+name+"' is not a registered resource", goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(ResourceErrorNotFound).
		WithMetadata(map[string]any{"resource": name})
}

func newMethodNotFoundError(factory ErrorFactory, resource string, method string, reason string) error {
	message := "core: '" + resource + "' has no exported method '" + method + "'"
	if reason != "" {
		message = "core: '" + resource + "': " + reason
	}
	return errorFactoryOrDefault(factory)(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(ResourceErrorMethodNotFound).
		WithMetadata(map[string]any{"resource": resource, "method": method})
}

func newNotAllowedError(factory ErrorFactory, resource string, method string, methodType MethodType) error {
	return errorFactoryOrDefault(factory)("core: '"+resource+"' is not allowed to invoke '"+method+"' in this manner", goerrors.CategoryOperation).
		WithCode(http.StatusMethodNotAllowed).
		WithTextCode(ResourceErrorNotAllowed).
		WithMetadata(map[string]any{
			"resource":    resource,
			"method":      method,
			"method_type": string(methodType),
		})
}

func newAccessDeniedError(factory ErrorFactory, resource string, method string, permission Permission) error {
	return errorFactoryOrDefault(factory)("core: '"+resource+"' has denied access to '"+method+"'", goerrors.CategoryAuthz).
		WithCode(http.StatusForbidden).
		WithTextCode(ResourceErrorAccessDenied).
		WithMetadata(map[string]any{
			"resource":   resource,
			"method":     method,
			"permission": string(permission),
		})
}

// newMethodFailedError wraps the underlying cause and preserves the method
// name and supplied arguments for diagnostics.
func newMethodFailedError(resource string, method string, args Args, cause error) error {
	err := goerrors.Wrap(cause, goerrors.CategoryOperation, "core: '"+resource+"."+method+"' failed").
		WithCode(http.StatusInternalServerError).
		WithTextCode(ResourceErrorMethodFailed)
	metadata := map[string]any{"resource": resource, "method": method}
	if len(args) > 0 {
		metadata["args"] = map[string]any(args)
	}
	return err.WithMetadata(metadata)
}

func newEncodingError(factory ErrorFactory, resource string) error {
	return errorFactoryOrDefault(factory)("core: unable to serialize: resource '"+resource+"' has no serializer", goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ResourceErrorEncoding).
		WithMetadata(map[string]any{"resource": resource})
}

func hasTextCode(err error, textCode string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCode
}

// IsNotFound reports an unknown resource name.
func IsNotFound(err error) bool { return hasTextCode(err, ResourceErrorNotFound) }

// IsMethodNotFound reports a method that is absent, not exported, reserved,
// or a failed construction lookup.
func IsMethodNotFound(err error) bool { return hasTextCode(err, ResourceErrorMethodNotFound) }

// IsNotAllowed reports a method type not permitted for the invoked
// operation.
func IsNotAllowed(err error) bool { return hasTextCode(err, ResourceErrorNotAllowed) }

// IsAccessDenied reports a permission predicate that returned false.
func IsAccessDenied(err error) bool { return hasTextCode(err, ResourceErrorAccessDenied) }

// IsMethodFailed reports an underlying method or property invocation error.
func IsMethodFailed(err error) bool { return hasTextCode(err, ResourceErrorMethodFailed) }

// IsEncodingError reports a resource that lacks a serializer.
func IsEncodingError(err error) bool { return hasTextCode(err, ResourceErrorEncoding) }

// IsTypeMismatch reports an argument decode that produced the wrong runtime
// type.
func IsTypeMismatch(err error) bool { return hasTextCode(err, ResourceErrorTypeMismatch) }

func resourceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureResourceErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not a registered resource"):
		return newResourceError(err.Error(), goerrors.CategoryNotFound, ResourceErrorNotFound)
	case strings.Contains(msg, "no exported method"), strings.Contains(msg, "reserved"):
		return newResourceError(err.Error(), goerrors.CategoryNotFound, ResourceErrorMethodNotFound)
	case strings.Contains(msg, "denied access"):
		return newResourceError(err.Error(), goerrors.CategoryAuthz, ResourceErrorAccessDenied)
	case strings.Contains(msg, "in this manner"):
		return newResourceError(err.Error(), goerrors.CategoryOperation, ResourceErrorNotAllowed)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newResourceError(err.Error(), goerrors.CategoryBadInput, ResourceErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureResourceErrorEnvelope(mapped)
}

func newResourceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureResourceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureResourceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = resourceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultResourceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultResourceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ResourceErrorBadInput
	case goerrors.CategoryNotFound:
		return ResourceErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ResourceErrorAccessDenied
	case goerrors.CategoryOperation:
		return ResourceErrorMethodFailed
	default:
		return ResourceErrorInternal
	}
}

func resourceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
