package cli

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bloodlink/internal/client/chat"
	"github.com/dmitrijs2005/bloodlink/internal/client/guard"
	"github.com/dmitrijs2005/bloodlink/internal/client/models"
	"github.com/dmitrijs2005/bloodlink/internal/client/services"
)

func TestIsLoggedIn(t *testing.T) {
	a, _ := newTestApp(t, &fakeSession{}, "")
	assert.False(t, a.isLoggedIn())

	a, _ = newTestApp(t, signedIn(models.RoleDonor, nil), "")
	assert.True(t, a.isLoggedIn())
}

func TestStatus_Guest(t *testing.T) {
	a, _ := newTestApp(t, &fakeSession{}, "")
	assert.Equal(t, "(guest)", a.status())
}

func TestStatus_Loading(t *testing.T) {
	a, _ := newTestApp(t, &fakeSession{state: services.State{Token: "tok", Loading: true}}, "")
	assert.Equal(t, "(loading)", a.status())
}

func TestStatus_SignedInWithExpiryAndChat(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).
		SignedString([]byte("test-key"))
	require.NoError(t, err)

	f := signedIn(models.RoleRecipient, map[string]any{"name": "Rita"})
	f.state.Token = token
	a, _ := newTestApp(t, f, "")
	a.setChatStatus(chat.StatusError)

	want := "(Rita@recipient until " + exp.Local().Format("15:04") + " chat error)"
	assert.Equal(t, want, a.status())
}

func TestStatus_OpaqueTokenHasNoExpiry(t *testing.T) {
	a, _ := newTestApp(t, signedIn(models.RoleBloodBank, map[string]any{"email": "bank@example.org"}), "")
	assert.Equal(t, "(bank@example.org@bloodbank)", a.status())
}

func TestGuardSession(t *testing.T) {
	a, _ := newTestApp(t, signedIn(models.RoleRecipient, nil), "")
	want := guard.Session{IsAuthenticated: true, Role: models.RoleRecipient}
	if diff := cmp.Diff(want, a.guardSession()); diff != "" {
		t.Fatalf("guard session mismatch (-want +got):\n%s", diff)
	}

	a, _ = newTestApp(t, &fakeSession{state: services.State{Loading: true}}, "")
	assert.Equal(t, guard.Session{Loading: true}, a.guardSession())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "", displayName(nil))
	assert.Equal(t, "Ann", displayName(models.NewUser(map[string]any{"name": "Ann", "email": "a@x.io"}, models.RoleDonor)))
	assert.Equal(t, "a@x.io", displayName(models.NewUser(map[string]any{"email": "a@x.io"}, models.RoleDonor)))
}
