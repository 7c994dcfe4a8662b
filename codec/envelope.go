package codec

import (
	"reflect"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Envelope tags used when boxing non-JSON-native scalar values.
const (
	TagDatetime  = "datetime"
	TagSet       = "set"
	TagException = "exception"
	TagType      = "type"
)

// Envelope is the tagged wrapper carrying a non-primitive scalar value
// through transport.
type Envelope struct {
	Tag   string `json:"type"`
	Value any    `json:"value"`
}

// Wrap boxes a value under a tag.
func Wrap(tag string, value any) Envelope {
	return Envelope{Tag: tag, Value: value}
}

// AsEnvelope recognizes envelopes in decoded wire payloads: the Envelope
// struct itself, a pointer to it, or the generic map shape a JSON decoder
// produces.
func AsEnvelope(value any) (Envelope, bool) {
	switch v := value.(type) {
	case Envelope:
		return v, true
	case *Envelope:
		if v == nil {
			return Envelope{}, false
		}
		return *v, true
	case map[string]any:
		rawTag, ok := v["type"]
		if !ok {
			return Envelope{}, false
		}
		tag, ok := rawTag.(string)
		if !ok || tag == "" {
			return Envelope{}, false
		}
		return Envelope{Tag: tag, Value: v["value"]}, true
	}
	return Envelope{}, false
}

// FormatTime renders a timestamp in the wire format (ISO-8601 / RFC 3339).
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ErrorPayload produces the structured payload for an exception envelope.
// Rich errors contribute their category, text code, and metadata; plain
// errors carry only their message.
func ErrorPayload(err error) map[string]any {
	if err == nil {
		return nil
	}
	payload := map[string]any{"message": err.Error()}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		payload["message"] = rich.Message
		payload["category"] = string(rich.Category)
		if rich.TextCode != "" {
			payload["text_code"] = rich.TextCode
		}
		if rich.Code != 0 {
			payload["code"] = rich.Code
		}
		if len(rich.Metadata) > 0 {
			payload["metadata"] = rich.Metadata
		}
	}
	return payload
}

// FormatType renders a type reference for transport.
func FormatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
