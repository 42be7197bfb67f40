package models

import (
	"fmt"
	"strings"
)

// Role is the organisational role of an actor.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleBackOffice Role = "back office"
	RoleConsultant Role = "consulente"
	RoleMaster     Role = "master"
)

// ParseRole normalises case and surrounding whitespace before matching.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleBackOffice, "backoffice", "back_office":
		return RoleBackOffice, nil
	case RoleConsultant:
		return RoleConsultant, nil
	case RoleMaster:
		return RoleMaster, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Actor identifies who performed an action: the consultant who created a
// contract, the operator holding a lock, the author of a history entry.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
	Role Role   `json:"ruolo,omitempty"`
}

// NewActor validates the identity and role of an actor.
func NewActor(id, name, role string) (Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Actor{}, fmt.Errorf("actor id is required")
	}
	r, err := ParseRole(role)
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: id, Name: strings.TrimSpace(name), Role: r}, nil
}

// SystemActor is recorded on history entries produced by automated transitions.
func SystemActor() Actor {
	return Actor{ID: "system", Name: "Sistema"}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
