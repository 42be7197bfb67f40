package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the organisational role stored in utenti.ruolo.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleBackOffice Role = "back office"
	RoleConsultant Role = "consulente"
	RoleMaster     Role = "master"
)

// ParseRole matches s case-insensitively against the known roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleBackOffice, RoleConsultant, RoleMaster:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Status is whether the account may sign in.
type Status string

const (
	StatusActive    Status = "attivo"
	StatusSuspended Status = "sospeso"
)

// ParseStatus defaults an empty status to active.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StatusActive, nil
	case StatusActive, StatusSuspended:
		return st, nil
	default:
		return "", fmt.Errorf("unknown user status %q", s)
	}
}

// User is an operator or consultant account.
type User struct {
	ID                uuid.UUID
	Name              string
	Email             string
	PasswordHash      string
	Role              Role
	Status            Status
	CompensationPlan  string
	AssignedProviders []string
	// MasterID links a consultant to the master who manages them.
	MasterID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUserInput carries the account data submitted by an admin.
type NewUserInput struct {
	Name              string
	Email             string
	Role              string
	Status            string
	CompensationPlan  string
	AssignedProviders []string
	MasterID          string
}

// NewUser validates in and builds a User around an already hashed password.
// Emails are stored lower-cased.
func NewUser(in NewUserInput, passwordHash string, now time.Time) (*User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}
	role, err := ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	status, err := ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password is required")
	}

	providers := make([]string, 0, len(in.AssignedProviders))
	for _, p := range in.AssignedProviders {
		if p = strings.TrimSpace(p); p != "" {
			providers = append(providers, p)
		}
	}

	return &User{
		ID:                uuid.New(),
		Name:              name,
		Email:             strings.ToLower(addr.Address),
		PasswordHash:      passwordHash,
		Role:              role,
		Status:            status,
		CompensationPlan:  strings.TrimSpace(in.CompensationPlan),
		AssignedProviders: providers,
		MasterID:          strings.TrimSpace(in.MasterID),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}
