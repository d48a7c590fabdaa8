package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/bloodlink/internal/client/guard"
	"github.com/dmitrijs2005/bloodlink/internal/client/models"
)

var errTooManyRedirects = errors.New("too many redirects")

// Open navigates to target and prints the view the guard lets through.
func (a *App) Open(ctx context.Context, target string) error {
	d := a.router.Follow(target, a.guardSession())

	switch d.Kind {
	case guard.KindLoading:
		printlnFn("Loading...")
		return nil
	case guard.KindRedirect:
		printlnFn(fmt.Sprintf("Cannot open %s: %s", target, errTooManyRedirects))
		return errTooManyRedirects
	}

	return a.render(ctx, d)
}

func (a *App) render(ctx context.Context, d guard.Decision) error {
	printlnFn(fmt.Sprintf("== %s ==", d.View.Title()))

	switch d.View {
	case guard.ViewHome:
		printlnFn("Donate blood, find blood banks near you and talk to our assistant.")
		printlnFn("Start with: register, login, banks <lat> <lng>, chat")

	case guard.ViewLogin:
		printlnFn("Use: login")
	case guard.ViewRecipientLogin:
		printlnFn("Use: login recipient")
	case guard.ViewBloodBankLogin:
		printlnFn("Use: login bloodbank")

	case guard.ViewRegister:
		printlnFn("Use: register")
	case guard.ViewRecipientRegister:
		printlnFn("Use: register recipient")
	case guard.ViewBloodBankRegister:
		printlnFn("Use: register bloodbank")

	case guard.ViewUnauthorized:
		printlnFn("You do not have permission to view this page.")

	case guard.ViewNotFound:
		printlnFn(fmt.Sprintf("Nothing at %s", d.Path))

	case guard.ViewDonorDashboard, guard.ViewRecipientDashboard, guard.ViewBloodBankDashboard,
		guard.ViewDonorProfile, guard.ViewRecipientProfile, guard.ViewBloodBankProfile:
		st := a.session.State()
		if st.User != nil {
			printProfile(st.User)
		}
		if d.View == guard.ViewRecipientDashboard {
			printlnFn("Find blood: open /request")
		}

	case guard.ViewRequestBlood:
		printlnFn("Search blood banks with:")
		printlnFn("  open /blood-bank-results?lat=<lat>&lng=<lng>&bloodGroup=<group>")
		printlnFn(fmt.Sprintf("Blood groups: %v", models.BloodGroups))

	case guard.ViewBloodBankResults:
		q, err := queryFromValues(d.Query)
		if err != nil {
			printlnFn(err.Error())
			return err
		}
		return a.searchAndPrint(ctx, q)
	}
	return nil
}

// queryFromValues reads search filters from a results URL. Missing
// coordinates stay 0, which the search treats as no location.
func queryFromValues(v url.Values) (models.BloodBankQuery, error) {
	var q models.BloodBankQuery

	floats := []struct {
		key string
		dst *float64
	}{
		{"lat", &q.Lat},
		{"lng", &q.Lng},
		{"radius", &q.Radius},
		{"maxTravelTime", &q.MaxTravelTime},
		{"maxPrice", &q.MaxPrice},
	}
	for _, f := range floats {
		raw := v.Get(f.key)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("invalid %s %q", f.key, raw)
		}
		*f.dst = n
	}
	q.BloodGroup = v.Get("bloodGroup")
	return q, nil
}
