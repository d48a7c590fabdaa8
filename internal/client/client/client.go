package client

import (
	"context"

	"github.com/dmitrijs2005/bloodlink/internal/client/models"
)

// AuthResult is the answer of the login and register endpoints.
type AuthResult struct {
	Token   string
	Profile map[string]any
}

// Client is the REST API the session manager and the blood bank finder
// talk to. Authenticated calls take the bearer token explicitly so the
// caller decides which credential a request belongs to.
type Client interface {
	Register(ctx context.Context, role models.Role, payload map[string]any) (*AuthResult, error)
	Login(ctx context.Context, form models.LoginForm) (*AuthResult, error)
	Me(ctx context.Context, token string) (map[string]any, error)
	UpdateProfile(ctx context.Context, token, path string, data map[string]any) (map[string]any, error)
	Deactivate(ctx context.Context, token, path string) (bool, error)
	SearchBloodBanks(ctx context.Context, q models.BloodBankQuery) ([]models.BloodBank, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Address, error)
}
