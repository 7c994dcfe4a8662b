package codec

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestEnvelope_JSONShape(t *testing.T) {
	payload, err := json.Marshal(Wrap(TagSet, []any{1, 2}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"type":"set","value":[1,2]}` {
		t.Fatalf("unexpected envelope shape: %s", payload)
	}
}

func TestAsEnvelope_RecognizedShapes(t *testing.T) {
	direct := Wrap(TagDatetime, "now")
	if envelope, ok := AsEnvelope(direct); !ok || envelope.Tag != TagDatetime {
		t.Fatalf("expected direct envelope recognition")
	}
	if envelope, ok := AsEnvelope(&direct); !ok || envelope.Value != "now" {
		t.Fatalf("expected pointer envelope recognition")
	}
	if envelope, ok := AsEnvelope(map[string]any{"type": "set", "value": []any{}}); !ok || envelope.Tag != "set" {
		t.Fatalf("expected map envelope recognition")
	}
}

func TestAsEnvelope_RejectsNonEnvelopes(t *testing.T) {
	if _, ok := AsEnvelope("scalar"); ok {
		t.Fatalf("scalar must not read as envelope")
	}
	if _, ok := AsEnvelope(map[string]any{"value": 1}); ok {
		t.Fatalf("map without tag must not read as envelope")
	}
	if _, ok := AsEnvelope(map[string]any{"type": 7, "value": 1}); ok {
		t.Fatalf("non-string tag must not read as envelope")
	}
}

func TestErrorPayload_PlainError(t *testing.T) {
	payload := ErrorPayload(fmt.Errorf("plain failure"))
	if payload["message"] != "plain failure" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if _, ok := payload["category"]; ok {
		t.Fatalf("plain errors carry no category")
	}
}

func TestErrorPayload_RichError(t *testing.T) {
	rich := goerrors.New("dispatch rejected", goerrors.CategoryAuthz).
		WithCode(http.StatusForbidden).
		WithTextCode("RESOURCE_ACCESS_DENIED").
		WithMetadata(map[string]any{"resource": "doc"})

	payload := ErrorPayload(rich)
	if payload["message"] != "dispatch rejected" {
		t.Fatalf("unexpected message: %#v", payload["message"])
	}
	if payload["category"] != string(goerrors.CategoryAuthz) {
		t.Fatalf("unexpected category: %#v", payload["category"])
	}
	if payload["text_code"] != "RESOURCE_ACCESS_DENIED" {
		t.Fatalf("unexpected text code: %#v", payload["text_code"])
	}
	if payload["code"] != http.StatusForbidden {
		t.Fatalf("unexpected code: %#v", payload["code"])
	}
	metadata := payload["metadata"].(map[string]any)
	if metadata["resource"] != "doc" {
		t.Fatalf("unexpected metadata: %#v", metadata)
	}
}
