package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bloodlink/internal/common"
)

func validRegistration() RegistrationForm {
	return RegistrationForm{
		UserType:        RoleDonor,
		Name:            "Ann",
		Email:           "ann@example.org",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		BloodGroup:      "O+",
	}
}

func TestRegistrationForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *RegistrationForm)
		wantErr string
	}{
		{name: "valid", mutate: func(f *RegistrationForm) {}},
		{name: "bad email", mutate: func(f *RegistrationForm) { f.Email = "nope" }, wantErr: "field 'Email' must be a valid email address"},
		{name: "short password", mutate: func(f *RegistrationForm) { f.Password, f.ConfirmPassword = "abc", "abc" }, wantErr: "field 'Password' must be at least 6 characters"},
		{name: "mismatch", mutate: func(f *RegistrationForm) { f.ConfirmPassword = "other1" }, wantErr: "field 'ConfirmPassword' must match Password"},
		{name: "bad group", mutate: func(f *RegistrationForm) { f.BloodGroup = "C+" }, wantErr: "field 'BloodGroup' must be one of"},
		{name: "bloodbank needs price", mutate: func(f *RegistrationForm) { f.UserType = RoleBloodBank }, wantErr: "PricePerUnit"},
		{name: "bloodbank with price", mutate: func(f *RegistrationForm) { f.UserType = RoleBloodBank; f.PricePerUnit = 1200 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validRegistration()
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, common.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistrationForm_Payload(t *testing.T) {
	f := validRegistration()
	f.Extra = map[string]any{
		"bloodStock": map[string]any{"A+": 3},
		"name":       "shadowed",
	}

	p, err := f.Payload()
	require.NoError(t, err)

	assert.Equal(t, "Ann", p["name"])
	assert.Equal(t, "donor", p["userType"])
	assert.Equal(t, map[string]any{"A+": 3}, p["bloodStock"])
	assert.NotContains(t, p, "ConfirmPassword")
	assert.NotContains(t, p, "confirmPassword")
	assert.NotContains(t, p, "pricePerUnit")
}

func TestLoginForm_Validate(t *testing.T) {
	require.NoError(t, LoginForm{Email: "a@b.co", Password: "x", UserType: RoleRecipient}.Validate())

	err := LoginForm{Email: "a@b.co", UserType: Role("admin")}.Validate()
	require.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Contains(t, err.Error(), "field 'Password' is required")
	assert.Contains(t, err.Error(), "field 'UserType' must be one of")
}
