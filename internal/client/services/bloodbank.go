package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bloodlink/internal/client/client"
	"github.com/dmitrijs2005/bloodlink/internal/client/models"
	"github.com/dmitrijs2005/bloodlink/internal/logging"
)

// Search defaults applied to zero-valued filters.
const (
	DefaultSearchRadius  = 10
	DefaultMaxTravelTime = 100
	DefaultMaxPrice      = 2000
	DefaultBloodGroup    = "A+"
)

const (
	unknownBankName    = "Unknown Blood Bank"
	unknownBankAddress = "No address available"
	MsgSearchFailed    = "Error fetching blood banks. Please try again."
)

// BloodBankService finds blood banks near a point and turns coordinates
// into a printable address.
type BloodBankService struct {
	client client.Client
	log    logging.Logger
}

func NewBloodBankService(c client.Client, log logging.Logger) *BloodBankService {
	return &BloodBankService{client: c, log: log}
}

// Search queries blood banks around q. A query at 0,0 means no location
// and returns no results without a request.
func (s *BloodBankService) Search(ctx context.Context, q models.BloodBankQuery) ([]models.BloodBank, error) {
	if q.Lat == 0 && q.Lng == 0 {
		return nil, nil
	}
	q = withSearchDefaults(q)

	banks, err := s.client.SearchBloodBanks(ctx, q)
	if err != nil {
		s.log.Warn(ctx, "blood bank search failed", "error", err)
		return nil, &OpError{Message: MsgSearchFailed, Err: err}
	}

	for i := range banks {
		sanitizeBank(&banks[i])
	}
	return banks, nil
}

// ResolveAddress reverse-geocodes lat/lng. It never fails: without an
// answer it falls back to the coordinates.
func (s *BloodBankService) ResolveAddress(ctx context.Context, lat, lng float64) string {
	addr, err := s.client.ReverseGeocode(ctx, lat, lng)
	if err != nil || addr == nil {
		s.log.Debug(ctx, "reverse geocoding failed", "error", err)
		return fmt.Sprintf("Lat: %.4f, Lng: %.4f", lat, lng)
	}
	return FormatAddress(*addr)
}

// FormatAddress renders "locality, city postcode, country".
func FormatAddress(a models.Address) string {
	return strings.TrimSpace(fmt.Sprintf("%s, %s %s, %s", a.Locality, a.City, a.Postcode, a.CountryName))
}

func withSearchDefaults(q models.BloodBankQuery) models.BloodBankQuery {
	if q.Radius <= 0 {
		q.Radius = DefaultSearchRadius
	}
	if q.MaxTravelTime <= 0 {
		q.MaxTravelTime = DefaultMaxTravelTime
	}
	if q.MaxPrice <= 0 {
		q.MaxPrice = DefaultMaxPrice
	}
	if strings.TrimSpace(q.BloodGroup) == "" {
		q.BloodGroup = DefaultBloodGroup
	}
	return q
}

func sanitizeBank(b *models.BloodBank) {
	if strings.TrimSpace(b.Name) == "" {
		b.Name = unknownBankName
	}
	if strings.TrimSpace(b.Address) == "" {
		b.Address = unknownBankAddress
	}
	if b.Distance < 0 {
		b.Distance = 0
	}
	if b.TravelTime < 0 {
		b.TravelTime = 0
	}
	if b.Price < 0 {
		b.Price = 0
	}
}
