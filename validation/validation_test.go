package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/iockit/errors"
)

func TestValidatorManagedName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"simple", "userRepository", false},
		{"dotted", "app.user.repository", false},
		{"empty", "", true},
		{"whitespace", "user repo", true},
		{"factory prefix", "&factory", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := New().ManagedName("name", tc.value).HasErrors(); got != tc.wantErr {
				t.Errorf("ManagedName(%q) errors = %v, want %v", tc.value, got, tc.wantErr)
			}
		})
	}
}

func TestValidatorValidate(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Errorf("expected nil for clean validator, got %v", err)
	}

	v := New().ManagedName("name", "").Custom(false, "factory", "is required")
	err := v.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidDefinition {
		t.Errorf("expected INVALID_DEFINITION, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "name: is required") || !strings.Contains(appErr.Message, "factory: is required") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", appErr.Details["fields"])
	}
}

type sample struct {
	Name    string `mapstructure:"name" validate:"required,managedname"`
	Timeout int    `mapstructure:"timeout" validate:"min=0"`
	Kind    string `validate:"omitempty,oneof=a b"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		in        sample
		wantErr   bool
		wantField string
	}{
		{"valid", sample{Name: "svc", Timeout: 1}, false, ""},
		{"missing name", sample{}, true, "name"},
		{"bad name", sample{Name: "a b"}, true, "name"},
		{"negative timeout", sample{Name: "svc", Timeout: -1}, true, "timeout"},
		{"bad kind", sample{Name: "svc", Kind: "c"}, true, "kind"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(&tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tc.wantField+":") {
				t.Errorf("expected field %q in %q", tc.wantField, err.Error())
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("ShutdownTimeout"); got != "shutdown_timeout" {
		t.Errorf("expected shutdown_timeout, got %s", got)
	}
}
