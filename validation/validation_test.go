package validation

import (
	"strings"
	"testing"

	"github.com/fxgurv/ALONE/errors"
)

func TestValidatorRequired(t *testing.T) {
	if New().Required("payload", "a cat").HasErrors() {
		t.Error("expected no errors for valid input")
	}
	if !New().Required("payload", "").HasErrors() {
		t.Error("expected error for empty required field")
	}
	if !New().Required("payload", "   ").HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorOneOf(t *testing.T) {
	voices := []string{"alloy", "echo"}
	if New().OneOf("voice", "alloy", voices).HasErrors() {
		t.Error("expected alloy to be accepted")
	}
	if New().OneOf("voice", "", voices).HasErrors() {
		t.Error("expected empty value to be skipped")
	}
	v := New().OneOf("voice", "bogus", voices)
	if !v.HasErrors() {
		t.Fatal("expected error for value outside the set")
	}
	if msg := v.Validate().Message; !strings.Contains(msg, "voice: must be one of: alloy, echo") {
		t.Errorf("expected allowed values in message, got %q", msg)
	}
}

func TestValidatorMaxLengthAndCustom(t *testing.T) {
	appErr := New().MaxLength("text", "abcdef", 3).Custom(false, "model", "unsupported").Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	fields, _ := appErr.Details["fields"].([]FieldError)
	if len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %v", appErr.Details)
	}
	if !strings.Contains(appErr.Message, "text: must be 3 characters or less; model: unsupported") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Validate() != nil {
		t.Error("expected nil when no errors")
	}
	appErr := New().Required("destination_path", "").Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidResponse {
		t.Errorf("expected INVALID_RESPONSE, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "destination_path: is required") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

type request struct {
	ProviderID string `json:"provider_id" validate:"required"`
	Payload    string `json:"payload" validate:"notblank"`
	Voice      string `json:"voice" validate:"omitempty,oneof=alloy echo"`
	BaseHost   string `validate:"omitempty,url"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      request
		wantErr []string
	}{
		{"valid", request{ProviderID: "dalle", Payload: "a fox"}, nil},
		{"missing provider", request{Payload: "a fox"}, []string{"provider_id: is required"}},
		{"blank payload", request{ProviderID: "dalle", Payload: "  "}, []string{"payload: is required"}},
		{"bad voice", request{ProviderID: "x", Payload: "y", Voice: "nova"}, []string{"voice: must be one of: alloy echo"}},
		{"untagged field uses snake case", request{ProviderID: "x", Payload: "y", BaseHost: "not a url"}, []string{"base_host: must be a valid URL"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if len(tc.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			for _, want := range tc.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("expected %q in %q", want, err.Error())
				}
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("DestinationPath"); got != "destination_path" {
		t.Errorf("expected destination_path, got %q", got)
	}
}
