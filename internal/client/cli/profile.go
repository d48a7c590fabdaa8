package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/bloodlink/internal/client/models"
	"github.com/dmitrijs2005/bloodlink/internal/client/services"
)

var errFieldFormat = errors.New("field must be name=value")

// hiddenFields are never printed in profile summaries.
var hiddenFields = map[string]bool{"password": true, "__v": true}

// WhoAmI prints the signed-in profile.
func (a *App) WhoAmI(ctx context.Context) error {
	st := a.session.State()
	if !st.IsAuthenticated || st.User == nil {
		printlnFn("Not logged in")
		return services.ErrNotAuthenticated
	}
	printProfile(st.User)
	return nil
}

// Refresh reloads the profile of the current token.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.session.LoadUser(ctx); err != nil {
		printlnFn(err.Error())
		return err
	}
	st := a.session.State()
	if !st.IsAuthenticated {
		printlnFn("Not logged in")
		return nil
	}
	printlnFn("Profile reloaded")
	return nil
}

// Update reads name=value lines and sends them as a partial profile
// update.
func (a *App) Update(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn(services.MsgUpdateNotLoggedIn)
		return services.ErrNotAuthenticated
	}

	lines, err := getFields(a.reader, a.out)
	if err != nil {
		return err
	}
	partial, err := ParseFields(lines)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if len(partial) == 0 {
		printlnFn("Nothing to update")
		return nil
	}

	user, err := a.session.UpdateProfile(ctx, partial)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Profile updated")
	printProfile(user)
	return nil
}

// Deactivate asks for confirmation and deactivates the account. A
// deactivated account is signed out.
func (a *App) Deactivate(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn(services.MsgDeactivateNoLogin)
		return services.ErrNotAuthenticated
	}

	answer, err := getSimpleText(a.reader, "Type 'yes' to deactivate your account", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		printlnFn("Cancelled")
		return nil
	}

	if err := a.session.DeactivateAccount(ctx); err != nil {
		printlnFn(err.Error())
		return err
	}
	printlnFn("Account deactivated")
	return nil
}

// getFields is swapped in tests.
var getFields = GetFields

// ParseFields turns name=value lines into a partial profile. Objects,
// arrays, quoted strings and true/false are decoded as JSON; everything
// else, numbers included, stays a string so phone numbers and postcodes
// keep their digits.
func ParseFields(lines []string) (map[string]any, error) {
	out := make(map[string]any, len(lines))
	for _, line := range lines {
		name, raw, ok := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", errFieldFormat, line)
		}
		raw = strings.TrimSpace(raw)

		out[name] = fieldValue(raw)
	}
	return out, nil
}

func fieldValue(raw string) any {
	switch {
	case raw == "true":
		return true
	case raw == "false":
		return false
	case strings.HasPrefix(raw, "{"), strings.HasPrefix(raw, "["), strings.HasPrefix(raw, `"`):
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return raw
}

func printProfile(u *models.User) {
	printlnFn(fmt.Sprintf("%s (%s)", displayName(u), u.Role))
	for _, k := range u.Keys() {
		if hiddenFields[k] || k == "role" {
			continue
		}
		printlnFn(fmt.Sprintf("  %s: %s", k, formatValue(u.Fields[k])))
	}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, formatValue(t[k])))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}
