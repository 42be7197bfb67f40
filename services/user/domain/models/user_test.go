package models

import (
	"testing"
	"time"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	valid := func() NewUserInput {
		return NewUserInput{
			Name:              " Giulia Verdi ",
			Email:             "Giulia.Verdi@Example.com",
			Role:              "Consulente",
			AssignedProviders: []string{"ENEL", " ", "A2A"},
		}
	}

	u, err := NewUser(valid(), "hash", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Name != "Giulia Verdi" || u.Email != "giulia.verdi@example.com" {
		t.Fatalf("unexpected normalisation: %q %q", u.Name, u.Email)
	}
	if u.Role != RoleConsultant || u.Status != StatusActive {
		t.Fatalf("unexpected role/status %q/%q", u.Role, u.Status)
	}
	if len(u.AssignedProviders) != 2 {
		t.Fatalf("expected blank providers dropped, got %v", u.AssignedProviders)
	}

	tests := []struct {
		name   string
		mutate func(*NewUserInput)
		hash   string
	}{
		{"missing name", func(in *NewUserInput) { in.Name = "  " }, "hash"},
		{"bad email", func(in *NewUserInput) { in.Email = "not-an-email" }, "hash"},
		{"unknown role", func(in *NewUserInput) { in.Role = "guest" }, "hash"},
		{"unknown status", func(in *NewUserInput) { in.Status = "deleted" }, "hash"},
		{"missing hash", func(*NewUserInput) {}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			if _, err := NewUser(in, tt.hash, now); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{
		"admin":       RoleAdmin,
		"BACK OFFICE": RoleBackOffice,
		" master ":    RoleMaster,
	} {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Fatalf("ParseRole(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}
