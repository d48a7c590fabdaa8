package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/bloodlink/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// roleArg reads the optional role argument of login/register. No argument
// means donor.
func roleArg(args []string) (models.Role, error) {
	if len(args) == 0 {
		return models.RoleDonor, nil
	}
	r, ok := models.ParseRole(args[0])
	if !ok {
		return "", fmt.Errorf("unknown role %q, use donor, recipient or bloodbank", args[0])
	}
	return r, nil
}

// Register collects the registration form for the requested role, checks it
// locally and creates the account. The new account is signed in.
func (a *App) Register(ctx context.Context, args []string) error {
	role, err := roleArg(args)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	form, err := a.readRegistrationForm(role)
	if err != nil {
		return err
	}
	if err := form.Validate(); err != nil {
		printlnFn(err.Error())
		return err
	}

	user, err := a.session.Register(ctx, form)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s! Registered as %s.", displayName(user), user.Role))
	return nil
}

func (a *App) readRegistrationForm(role models.Role) (models.RegistrationForm, error) {
	form := models.RegistrationForm{UserType: role}

	var err error
	if form.Name, err = getSimpleText(a.reader, "Enter name", a.out); err != nil {
		return form, err
	}
	if form.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return form, err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return form, err
	}
	form.Password = string(password)
	clear(password)

	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return form, err
	}
	form.ConfirmPassword = string(confirm)
	clear(confirm)

	if form.Phone, err = getSimpleText(a.reader, "Enter phone (optional)", a.out); err != nil {
		return form, err
	}
	if form.Address, err = getSimpleText(a.reader, "Enter address (optional)", a.out); err != nil {
		return form, err
	}

	if role == models.RoleBloodBank {
		raw, err := getSimpleText(a.reader, "Enter price per unit", a.out)
		if err != nil {
			return form, err
		}
		if raw != "" {
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				printlnFn("Price per unit must be a number")
				return form, err
			}
			form.PricePerUnit = price
		}
		return form, nil
	}

	if form.BloodGroup, err = getSimpleText(a.reader, "Enter blood group (optional)", a.out); err != nil {
		return form, err
	}
	return form, nil
}

// Login prompts for credentials and signs in. The optional role argument
// is the account kind used when the server profile does not name one.
//
// The password is wiped before returning. A failed login leaves the
// previous session as it was.
func (a *App) Login(ctx context.Context, args []string) error {
	role, err := roleArg(args)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer clear(password)

	form := models.LoginForm{Email: email, Password: string(password), UserType: role}
	if err := form.Validate(); err != nil {
		printlnFn(err.Error())
		return err
	}

	user, err := a.session.Login(ctx, form.Email, form.Password, role)
	if err != nil {
		a.log.Debug(ctx, "login unsuccessful", "error", err)
		printlnFn(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Login successful. Signed in as %s (%s).", displayName(user), user.Role))
	return nil
}

// Logout signs out and forgets the stored credential.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out")
	return nil
}
