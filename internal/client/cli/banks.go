package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/bloodlink/internal/client/models"
)

var errCoordinates = errors.New("usage: <lat> <lng>")

// Banks searches blood banks around a point: banks <lat> <lng> [group].
func (a *App) Banks(ctx context.Context, args []string) error {
	lat, lng, err := parseCoordinates(args)
	if err != nil {
		printlnFn("Usage: banks <lat> <lng> [bloodGroup]")
		return err
	}

	q := models.BloodBankQuery{Lat: lat, Lng: lng}
	if len(args) > 2 {
		q.BloodGroup = args[2]
	}
	return a.searchAndPrint(ctx, q)
}

// Geocode prints the address of a point.
func (a *App) Geocode(ctx context.Context, args []string) error {
	lat, lng, err := parseCoordinates(args)
	if err != nil {
		printlnFn("Usage: geocode <lat> <lng>")
		return err
	}
	printlnFn(a.banks.ResolveAddress(ctx, lat, lng))
	return nil
}

func (a *App) searchAndPrint(ctx context.Context, q models.BloodBankQuery) error {
	if q.Lat == 0 && q.Lng == 0 {
		printlnFn("Location required: pass lat and lng")
		return nil
	}

	printlnFn("Near: " + a.banks.ResolveAddress(ctx, q.Lat, q.Lng))

	banks, err := a.banks.Search(ctx, q)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if len(banks) == 0 {
		printlnFn("No blood banks found.")
		return nil
	}

	for i, b := range banks {
		printlnFn(formatBank(i+1, b))
	}
	return nil
}

func formatBank(n int, b models.BloodBank) string {
	avail := "available"
	if !b.Availability {
		avail = "unavailable"
	}
	s := fmt.Sprintf("%d. %s | %s | %.1f km | %.0f min | %.2f per unit | %s",
		n, b.Name, b.Address, b.Distance, b.TravelTime, b.Price, avail)
	if b.Phone != "" {
		s += " | " + b.Phone
	}
	return s
}

func parseCoordinates(args []string) (float64, float64, error) {
	if len(args) < 2 {
		return 0, 0, errCoordinates
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", errCoordinates, err)
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", errCoordinates, err)
	}
	return lat, lng, nil
}
