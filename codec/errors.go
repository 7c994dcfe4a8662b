package codec

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes mirror the core error taxonomy; codec sits beneath core and
// cannot import it.
const (
	CodecErrorTypeMismatch = "RESOURCE_TYPE_MISMATCH"
	CodecErrorBadInput     = "RESOURCE_BAD_INPUT"
)

func typeMismatchError(typeName string, value any) error {
	return goerrors.New("codec: expecting type '"+typeName+"'", goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(CodecErrorTypeMismatch).
		WithMetadata(map[string]any{
			"expected_type": typeName,
			"actual_type":   runtimeTypeName(value),
		})
}

func convertError(err error, typeName string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "codec: cannot convert value to '"+typeName+"'").
		WithCode(http.StatusBadRequest).
		WithTextCode(CodecErrorBadInput)
}

// IsTypeMismatch reports a conversion whose result type did not match the
// declared type name.
func IsTypeMismatch(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == CodecErrorTypeMismatch
}
