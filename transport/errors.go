package transport

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-resources/core"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	if source == nil {
		return transportError(message, category, code, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.ResourceErrorBadInput
	case goerrors.CategoryNotFound:
		return core.ResourceErrorNotFound
	case goerrors.CategoryAuthz:
		return core.ResourceErrorAccessDenied
	case goerrors.CategoryOperation:
		return core.ResourceErrorMethodFailed
	default:
		return core.ResourceErrorInternal
	}
}

func transportBadInput(message string, metadata map[string]any) error {
	return transportError(message, goerrors.CategoryBadInput, http.StatusBadRequest, metadata)
}

func transportInternal(message string, metadata map[string]any) error {
	return transportError(message, goerrors.CategoryInternal, http.StatusInternalServerError, metadata)
}
