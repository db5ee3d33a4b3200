package bwrt

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestNewErrorPayload(t *testing.T) {
	t.Parallel()

	payload := newErrorPayload(errors.New("boom"), handlerErrorType)
	if payload.ErrorMessage != "boom" {
		t.Errorf("ErrorMessage = %q, want boom", payload.ErrorMessage)
	}
	if payload.ErrorType != handlerErrorType {
		t.Errorf("ErrorType = %q, want %q", payload.ErrorType, handlerErrorType)
	}
	if len(payload.StackTrace) == 0 {
		t.Error("StackTrace empty for an error with a captured stack")
	}
}

func TestNewErrorPayloadNoStack(t *testing.T) {
	t.Parallel()

	// Plain errors carry no stack; the field must be omitted, not emptied.
	payload := newErrorPayload(fmt.Errorf("plain failure"), initErrorType)
	if payload.StackTrace != nil {
		t.Errorf("StackTrace = %v, want nil for a stackless error", payload.StackTrace)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(body), "stackTrace") {
		t.Errorf("serialized payload %s contains stackTrace for a stackless error", body)
	}
}

func TestErrorPayloadWireShape(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(ErrorPayload{
		ErrorMessage: "m",
		ErrorType:    "T",
		StackTrace:   []string{"f1", "f2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"errorMessage":"m","errorType":"T","stackTrace":["f1","f2"]}`
	if string(body) != want {
		t.Errorf("payload = %s, want %s", body, want)
	}
}

func TestMarkerErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	markers := []error{ErrConfig, ErrInit, ErrMissingRequestID, ErrTransport}
	for i, a := range markers {
		for j, b := range markers {
			if i != j && errors.Is(a, b) {
				t.Errorf("marker %v matches %v; channels must never be conflated", a, b)
			}
		}
	}
}
