package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bloodlink/internal/client/models"
)

var (
	signedOut = Session{}
	loading   = Session{Loading: true}
	donor     = Session{IsAuthenticated: true, Role: models.RoleDonor}
	recipient = Session{IsAuthenticated: true, Role: models.RoleRecipient}
	bloodBank = Session{IsAuthenticated: true, Role: models.RoleBloodBank}
)

func TestResolve_PublicRoutesRenderForEveryone(t *testing.T) {
	r := Default()
	cases := map[string]View{
		"/":                   ViewHome,
		"/register":           ViewRegister,
		"/login":              ViewLogin,
		"/recipient-login":    ViewRecipientLogin,
		"/recipient-register": ViewRecipientRegister,
		"/bloodbank-login":    ViewBloodBankLogin,
		"/bloodbank-register": ViewBloodBankRegister,
		"/unauthorized":       ViewUnauthorized,
	}
	for path, view := range cases {
		for _, s := range []Session{signedOut, loading, recipient} {
			d := r.Resolve(path, s)
			assert.Equal(t, KindRender, d.Kind, path)
			assert.Equal(t, view, d.View, path)
		}
	}
}

func TestResolve_ProtectedWhileLoading(t *testing.T) {
	r := Default()
	for _, path := range []string{"/dashboard", "/profile", "/recipient", "/bloodbank"} {
		d := r.Resolve(path, loading)
		assert.Equal(t, KindLoading, d.Kind, path)
		assert.Empty(t, d.Location, path)
	}
}

func TestResolve_UnauthenticatedRedirectsToLogin(t *testing.T) {
	r := Default()
	for _, path := range []string{"/dashboard", "/profile", "/request", "/blood-bank-results", "/bloodbank"} {
		d := r.Resolve(path, signedOut)
		assert.Equal(t, KindRedirect, d.Kind, path)
		assert.Equal(t, PathLogin, d.Location, path)
	}
}

func TestResolve_WrongRoleRedirectsToUnauthorized(t *testing.T) {
	r := Default()

	d := r.Resolve("/bloodbank", recipient)
	require.Equal(t, KindRedirect, d.Kind)
	require.Equal(t, PathUnauthorized, d.Location)

	d = r.Resolve("/request", donor)
	require.Equal(t, KindRedirect, d.Kind)
	require.Equal(t, PathUnauthorized, d.Location)

	d = r.Resolve("/recipient", bloodBank)
	require.Equal(t, PathUnauthorized, d.Location)
}

func TestResolve_RoleRoutesRenderForTheirRole(t *testing.T) {
	r := Default()

	assert.Equal(t, ViewRecipientDashboard, r.Resolve("/recipient", recipient).View)
	assert.Equal(t, ViewRequestBlood, r.Resolve("/request", recipient).View)
	assert.Equal(t, ViewBloodBankResults, r.Resolve("/blood-bank-results", recipient).View)
	assert.Equal(t, ViewBloodBankDashboard, r.Resolve("/bloodbank", bloodBank).View)
}

func TestResolve_PolymorphicRoutes(t *testing.T) {
	r := Default()
	cases := []struct {
		s         Session
		dashboard View
		profile   View
	}{
		{donor, ViewDonorDashboard, ViewDonorProfile},
		{recipient, ViewRecipientDashboard, ViewRecipientProfile},
		{bloodBank, ViewBloodBankDashboard, ViewBloodBankProfile},
		{Session{IsAuthenticated: true}, ViewDonorDashboard, ViewDonorProfile},
		{Session{IsAuthenticated: true, Role: "admin"}, ViewDonorDashboard, ViewDonorProfile},
	}
	for _, tc := range cases {
		t.Run(string(tc.s.Role), func(t *testing.T) {
			assert.Equal(t, tc.dashboard, r.Resolve("/dashboard", tc.s).View)
			assert.Equal(t, tc.profile, r.Resolve("/profile", tc.s).View)
		})
	}
}

func TestResolve_UnknownPathIsNotFound(t *testing.T) {
	r := Default()
	for _, s := range []Session{signedOut, loading, donor} {
		d := r.Resolve("/no/such/page", s)
		assert.Equal(t, KindRender, d.Kind)
		assert.Equal(t, ViewNotFound, d.View)
	}
}

func TestResolve_NormalisesPath(t *testing.T) {
	r := Default()

	d := r.Resolve("dashboard/", donor)
	require.Equal(t, "/dashboard", d.Path)
	require.Equal(t, ViewDonorDashboard, d.View)

	d = r.Resolve("", signedOut)
	require.Equal(t, ViewHome, d.View)
}

func TestResolve_KeepsQuery(t *testing.T) {
	d := Default().Resolve("/blood-bank-results?lat=51.5&lng=-0.12&bloodGroup=O%2B", recipient)
	require.Equal(t, ViewBloodBankResults, d.View)
	require.Equal(t, "51.5", d.Query.Get("lat"))
	require.Equal(t, "O+", d.Query.Get("bloodGroup"))
}

func TestResolve_QueryKeepsLiteralPlus(t *testing.T) {
	d := Default().Resolve("/blood-bank-results?lat=51.5&lng=-0.12&bloodGroup=A+", recipient)
	require.Equal(t, "A+", d.Query.Get("bloodGroup"))
	require.Equal(t, "-0.12", d.Query.Get("lng"))

	d = Default().Resolve("/blood-bank-results?bloodGroup=AB%2B&note=a%20b", recipient)
	require.Equal(t, "AB+", d.Query.Get("bloodGroup"))
	require.Equal(t, "a b", d.Query.Get("note"))
}

func TestFollow_EndsOnLoginView(t *testing.T) {
	r := Default()

	d := r.Follow("/bloodbank", signedOut)
	require.Equal(t, KindRender, d.Kind)
	require.Equal(t, ViewLogin, d.View)

	d = r.Follow("/bloodbank", recipient)
	require.Equal(t, ViewUnauthorized, d.View)
}

func TestViewTitles(t *testing.T) {
	assert.Equal(t, "Blood Bank Dashboard", ViewBloodBankDashboard.Title())
	assert.Equal(t, "Page Not Found", ViewNotFound.Title())
	assert.Equal(t, "custom", View("custom").Title())
}
