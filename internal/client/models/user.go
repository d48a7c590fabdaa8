package models

import (
	"fmt"
	"maps"
	"sort"
)

// User is the signed-in profile: a canonical role plus every field the
// server returned for it.
type User struct {
	Role   Role
	Fields map[string]any
}

// NewUser normalises the role of a server profile. The stored field map
// carries the canonical role under "role".
func NewUser(fields map[string]any, fallback Role) *User {
	f := make(map[string]any, len(fields)+1)
	maps.Copy(f, fields)
	role := NormalizeRole(f, fallback)
	f["role"] = string(role)
	return &User{Role: role, Fields: f}
}

// Merge returns a copy of u with patch applied on top. Fields absent from
// patch keep their current value. The role is re-derived only when the
// patch carries one.
func (u *User) Merge(patch map[string]any) *User {
	f := make(map[string]any, len(u.Fields)+len(patch))
	maps.Copy(f, u.Fields)
	maps.Copy(f, patch)

	role := u.Role
	if _, ok := patch["role"]; ok {
		role = NormalizeRole(patch, u.Role)
	} else if _, ok := patch["userType"]; ok {
		role = NormalizeRole(map[string]any{"userType": patch["userType"]}, u.Role)
	}
	f["role"] = string(role)
	return &User{Role: role, Fields: f}
}

// Clone returns a deep-enough copy for handing out snapshots: the field map
// is copied, nested values are shared.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	return &User{Role: u.Role, Fields: maps.Clone(u.Fields)}
}

// String returns a field as text, or "" when it is missing.
func (u *User) String(key string) string {
	v, ok := u.Fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (u *User) Name() string  { return u.String("name") }
func (u *User) Email() string { return u.String("email") }

// Keys lists field names in sorted order.
func (u *User) Keys() []string {
	keys := make([]string, 0, len(u.Fields))
	for k := range u.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
