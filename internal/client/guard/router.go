// Package guard decides what a navigation shows. Every decision is a pure
// function of the requested path and a session snapshot: render a view,
// wait for the session to settle, or redirect.
package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/bloodlink/internal/client/models"
)

const (
	PathLogin        = "/login"
	PathUnauthorized = "/unauthorized"

	maxRedirects = 4
)

// Access is the protection level of a route.
type Access int

const (
	Public Access = iota
	Protected
	RoleOnly
)

// Route binds a path pattern to a view. ByRole makes the route
// role-polymorphic; roles missing from it get View.
type Route struct {
	Pattern string
	Access  Access
	Role    models.Role
	View    View
	ByRole  map[models.Role]View
}

// Session is the part of the session state the guard looks at.
type Session struct {
	Loading         bool
	IsAuthenticated bool
	Role            models.Role
}

// Kind is the outcome of a navigation.
type Kind int

const (
	KindLoading Kind = iota
	KindRender
	KindRedirect
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindRender:
		return "render"
	case KindRedirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is what a navigation resolves to. Location is set for
// redirects; Query carries the query string of the requested path.
type Decision struct {
	Kind     Kind
	Path     string
	View     View
	Location string
	Query    url.Values
}

// Router matches paths against a route table on a chi tree.
type Router struct {
	mux    *chi.Mux
	routes map[string]Route
}

// NewRouter builds a router over routes. Unmatched paths render
// ViewNotFound.
func NewRouter(routes []Route) *Router {
	r := &Router{mux: chi.NewRouter(), routes: make(map[string]Route, len(routes))}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, rt := range routes {
		r.mux.Method(http.MethodGet, rt.Pattern, noop)
		r.routes[rt.Pattern] = rt
	}
	return r
}

// DefaultRoutes is the route table of the client.
func DefaultRoutes() []Route {
	return []Route{
		{Pattern: "/", Access: Public, View: ViewHome},
		{Pattern: "/register", Access: Public, View: ViewRegister},
		{Pattern: "/login", Access: Public, View: ViewLogin},
		{Pattern: "/recipient-login", Access: Public, View: ViewRecipientLogin},
		{Pattern: "/recipient-register", Access: Public, View: ViewRecipientRegister},
		{Pattern: "/bloodbank-login", Access: Public, View: ViewBloodBankLogin},
		{Pattern: "/bloodbank-register", Access: Public, View: ViewBloodBankRegister},
		{Pattern: "/unauthorized", Access: Public, View: ViewUnauthorized},

		{Pattern: "/profile", Access: Protected, View: ViewDonorProfile, ByRole: map[models.Role]View{
			models.RoleRecipient: ViewRecipientProfile,
			models.RoleBloodBank: ViewBloodBankProfile,
		}},
		{Pattern: "/dashboard", Access: Protected, View: ViewDonorDashboard, ByRole: map[models.Role]View{
			models.RoleRecipient: ViewRecipientDashboard,
			models.RoleBloodBank: ViewBloodBankDashboard,
		}},

		{Pattern: "/recipient", Access: RoleOnly, Role: models.RoleRecipient, View: ViewRecipientDashboard},
		{Pattern: "/request", Access: RoleOnly, Role: models.RoleRecipient, View: ViewRequestBlood},
		{Pattern: "/blood-bank-results", Access: RoleOnly, Role: models.RoleRecipient, View: ViewBloodBankResults},
		{Pattern: "/bloodbank", Access: RoleOnly, Role: models.RoleBloodBank, View: ViewBloodBankDashboard},
	}
}

// Default returns a router over DefaultRoutes.
func Default() *Router {
	return NewRouter(DefaultRoutes())
}

// Resolve decides a single navigation to target without following
// redirects.
func (r *Router) Resolve(target string, s Session) Decision {
	path, query := splitTarget(target)
	d := Decision{Path: path, Query: query}

	rt, ok := r.match(path)
	if !ok {
		d.Kind, d.View = KindRender, ViewNotFound
		return d
	}

	switch rt.Access {
	case Protected, RoleOnly:
		if s.Loading {
			d.Kind = KindLoading
			return d
		}
		if !s.IsAuthenticated {
			d.Kind, d.Location = KindRedirect, PathLogin
			return d
		}
		if rt.Access == RoleOnly && s.Role != rt.Role {
			d.Kind, d.Location = KindRedirect, PathUnauthorized
			return d
		}
	}

	d.Kind, d.View = KindRender, rt.viewFor(s.Role)
	return d
}

// Follow resolves target and follows redirects until a view renders or the
// session is loading.
func (r *Router) Follow(target string, s Session) Decision {
	d := r.Resolve(target, s)
	for i := 0; d.Kind == KindRedirect && i < maxRedirects; i++ {
		d = r.Resolve(d.Location, s)
	}
	return d
}

func (r *Router) match(path string) (Route, bool) {
	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) {
		return Route{}, false
	}
	rt, ok := r.routes[rctx.RoutePattern()]
	return rt, ok
}

func (rt Route) viewFor(role models.Role) View {
	if v, ok := rt.ByRole[role]; ok {
		return v
	}
	return rt.View
}

func splitTarget(target string) (string, url.Values) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "/", url.Values{}
	}
	u, err := url.Parse(target)
	if err != nil {
		return target, url.Values{}
	}
	path := u.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path, parseQuery(u.RawQuery)
}

// parseQuery decodes a typed query string. '+' is kept literally since
// blood groups such as "A+" are written unescaped.
func parseQuery(raw string) url.Values {
	v, _ := url.ParseQuery(strings.ReplaceAll(raw, "+", "%2B"))
	if v == nil {
		return url.Values{}
	}
	return v
}
