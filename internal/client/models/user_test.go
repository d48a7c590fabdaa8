package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_NormalizesRoleAndCopies(t *testing.T) {
	src := map[string]any{"name": "Ann", "userType": "recipient"}
	u := NewUser(src, RoleDonor)

	assert.Equal(t, RoleRecipient, u.Role)
	assert.Equal(t, "recipient", u.Fields["role"])
	_, touched := src["role"]
	assert.False(t, touched, "source map must not be modified")
}

func TestUser_Merge_IsAdditive(t *testing.T) {
	u := NewUser(map[string]any{
		"name":       "Ann",
		"email":      "ann@example.org",
		"bloodGroup": "O+",
		"role":       "donor",
	}, RoleDonor)

	merged := u.Merge(map[string]any{"bloodGroup": "A-", "phone": "555"})

	assert.Equal(t, "Ann", merged.Name())
	assert.Equal(t, "ann@example.org", merged.Email())
	assert.Equal(t, "A-", merged.String("bloodGroup"))
	assert.Equal(t, "555", merged.String("phone"))
	assert.Equal(t, RoleDonor, merged.Role)

	assert.Equal(t, "O+", u.String("bloodGroup"), "original must stay unchanged")
}

func TestUser_Merge_RoleOnlyChangesWhenPatched(t *testing.T) {
	u := NewUser(map[string]any{"role": "recipient"}, RoleDonor)

	assert.Equal(t, RoleRecipient, u.Merge(map[string]any{"name": "x"}).Role)
	assert.Equal(t, RoleBloodBank, u.Merge(map[string]any{"role": "bloodbank"}).Role)
	assert.Equal(t, RoleDonor, u.Merge(map[string]any{"userType": "donor"}).Role)
}

func TestUser_CloneAndKeys(t *testing.T) {
	var nilUser *User
	require.Nil(t, nilUser.Clone())

	u := NewUser(map[string]any{"b": 1, "a": "x"}, RoleDonor)
	c := u.Clone()
	c.Fields["a"] = "changed"

	assert.Equal(t, "x", u.String("a"))
	assert.Equal(t, "1", u.String("b"))
	assert.Equal(t, "", u.String("missing"))
	assert.Equal(t, []string{"a", "b", "role"}, u.Keys())
}
