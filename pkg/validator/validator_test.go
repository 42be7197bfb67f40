package validator_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgvalidator "github.com/ghuser/contractflow/pkg/validator"
)

type sampleStruct struct {
	ContractID string `validate:"required,uuid"`
	Kind       string `validate:"required,min=1,max=10"`
	Email      string `validate:"omitempty,email"`
}

const validID = "550e8400-e29b-41d4-a716-446655440000"

func TestValidate_valid(t *testing.T) {
	s := sampleStruct{ContractID: validID, Kind: "bolletta"}
	if err := pkgvalidator.Validate(&s); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    sampleStruct
		field string
		want  string
	}{
		{"required", sampleStruct{Kind: "x"}, "ContractID", "This field is required"},
		{"uuid", sampleStruct{ContractID: "not-a-uuid", Kind: "x"}, "ContractID", "Must be a valid UUID"},
		{"max", sampleStruct{ContractID: validID, Kind: "12345678901"}, "Kind", "Maximum length is 10"},
		{"email", sampleStruct{ContractID: validID, Kind: "x", Email: "nope"}, "Email", "Must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&tt.in))
			if m[tt.field] != tt.want {
				t.Fatalf("%s: got %q, want %q", tt.field, m[tt.field], tt.want)
			}
		})
	}
}

func TestFormatValidationErrors_nonValidationError(t *testing.T) {
	m := pkgvalidator.FormatValidationErrors(http.ErrNoCookie)
	if len(m) != 0 {
		t.Errorf("expected empty map for non-validation error, got %v", m)
	}
}

// --- ValidateRequest ---

type createUserReq struct {
	Name  string `json:"nome"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"ruolo" validate:"required,oneof=admin consulente"`
}

func TestValidateRequest_valid(t *testing.T) {
	body := `{"nome":"Anna","email":"anna@example.it","ruolo":"admin"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	req, ok := pkgvalidator.ValidateRequest[createUserReq](w, r)
	if !ok {
		t.Fatalf("expected ok=true, got false. Response: %s", w.Body.String())
	}
	if req.Name != "Anna" {
		t.Errorf("unexpected Name: %q", req.Name)
	}
}

func TestValidateRequest_invalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{bad json"))
	w := httptest.NewRecorder()

	if _, ok := pkgvalidator.ValidateRequest[createUserReq](w, r); ok {
		t.Fatal("expected ok=false for malformed JSON")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid JSON") {
		t.Errorf("expected 'Invalid JSON' in body, got: %s", w.Body.String())
	}
}

func TestValidateRequest_missingFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ruolo":"guest"}`))
	w := httptest.NewRecorder()

	if _, ok := pkgvalidator.ValidateRequest[createUserReq](w, r); ok {
		t.Fatal("expected ok=false")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var body pkgvalidator.FieldErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Success {
		t.Error("success must be false")
	}
	if body.Fields["nome"] != "This field is required" {
		t.Errorf("nome: %q", body.Fields["nome"])
	}
	if body.Fields["ruolo"] != "Must be one of: admin consulente" {
		t.Errorf("ruolo: %q", body.Fields["ruolo"])
	}
	if !strings.HasPrefix(body.Details, "email: ") {
		t.Errorf("details should list fields in order, got %q", body.Details)
	}
}
