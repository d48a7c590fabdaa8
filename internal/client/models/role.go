package models

import "strings"

// Role is the canonical account kind. Every role string coming from the
// server passes through NormalizeRole before anything else looks at it.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleRecipient Role = "recipient"
	RoleBloodBank Role = "bloodbank"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleRecipient, RoleBloodBank:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts the spellings used across the API and the forms
// ("bloodbank", "blood-bank", "blood_bank", any case).
func ParseRole(s string) (Role, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", "_", "", " ", "").Replace(norm)
	r := Role(norm)
	return r, r.Valid()
}

// NormalizeRole derives the role of a profile: the "role" field wins, then
// the legacy "userType" field, then fallback. An unrecognised non-empty
// value is kept as-is so callers can reject it as an invalid role.
func NormalizeRole(fields map[string]any, fallback Role) Role {
	for _, key := range []string{"role", "userType"} {
		raw, ok := fields[key].(string)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		if r, ok := ParseRole(raw); ok {
			return r
		}
		return Role(raw)
	}
	return fallback
}

// ProfilePath is the profile endpoint of the role.
func (r Role) ProfilePath() (string, bool) {
	base, ok := r.resource()
	if !ok {
		return "", false
	}
	return base + "/profile", true
}

// DeactivatePath is the deactivation endpoint of the role.
func (r Role) DeactivatePath() (string, bool) {
	base, ok := r.resource()
	if !ok {
		return "", false
	}
	return base + "/deactivate", true
}

// RegisterPath is the registration endpoint; donors use the unsuffixed one.
func (r Role) RegisterPath() string {
	if r == "" || r == RoleDonor {
		return "/auth/register"
	}
	return "/auth/register/" + string(r)
}

func (r Role) resource() (string, bool) {
	switch r {
	case RoleDonor:
		return "/donors", true
	case RoleRecipient:
		return "/recipients", true
	case RoleBloodBank:
		return "/blood-banks", true
	}
	return "", false
}
