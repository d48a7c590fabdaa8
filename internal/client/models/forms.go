package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/bloodlink/internal/common"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoginForm is the payload of POST /auth/login.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	UserType Role   `json:"userType" validate:"required,oneof=donor recipient bloodbank"`
}

// Validate checks the form before it is sent.
func (f LoginForm) Validate() error {
	return validationError(validate.Struct(f))
}

// RegistrationForm is the payload of POST /auth/register[/{type}]. Extra
// carries role-specific fields (bloodStock, pricePerUnit, location, ...)
// and is flattened into the JSON body.
type RegistrationForm struct {
	UserType        Role           `json:"userType" validate:"required,oneof=donor recipient bloodbank"`
	Name            string         `json:"name" validate:"required"`
	Email           string         `json:"email" validate:"required,email"`
	Password        string         `json:"password" validate:"required,min=6"`
	ConfirmPassword string         `json:"-" validate:"required,eqfield=Password"`
	Phone           string         `json:"phone,omitempty"`
	Address         string         `json:"address,omitempty"`
	BloodGroup      string         `json:"bloodGroup,omitempty" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	PricePerUnit    float64        `json:"pricePerUnit,omitempty"`
	Extra           map[string]any `json:"-"`
}

// Validate checks the form before it is sent. Blood banks must state a
// positive price per unit.
func (f RegistrationForm) Validate() error {
	if err := validationError(validate.Struct(f)); err != nil {
		return err
	}
	if f.UserType == RoleBloodBank && f.PricePerUnit <= 0 {
		return fmt.Errorf("%w: field 'PricePerUnit' must be greater than 0", common.ErrInvalidInput)
	}
	return nil
}

// Payload flattens the form into the request body. Known fields win over
// Extra entries of the same name.
func (f RegistrationForm) Payload() (map[string]any, error) {
	type plain RegistrationForm
	b, err := json.Marshal(plain(f))
	if err != nil {
		return nil, err
	}
	var known map[string]any
	if err := json.Unmarshal(b, &known); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(known)+len(f.Extra))
	maps.Copy(out, f.Extra)
	maps.Copy(out, known)
	if f.UserType == "" {
		out["userType"] = string(RoleDonor)
	}
	return out, nil
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", fe.Field(), msgForTag(fe)))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidInput, strings.Join(msgs, "; "))
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
