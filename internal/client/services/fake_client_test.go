package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/bloodlink/internal/client/client"
	"github.com/dmitrijs2005/bloodlink/internal/client/models"
)

// fakeClient implements client.Client for unit tests. Unset funcs answer
// with a zero success.
type fakeClient struct {
	mu sync.Mutex

	LoginFn      func(ctx context.Context, form models.LoginForm) (*client.AuthResult, error)
	RegisterFn   func(ctx context.Context, role models.Role, payload map[string]any) (*client.AuthResult, error)
	MeFn         func(ctx context.Context, token string) (map[string]any, error)
	UpdateFn     func(ctx context.Context, token, path string, data map[string]any) (map[string]any, error)
	DeactivateFn func(ctx context.Context, token, path string) (bool, error)
	SearchFn     func(ctx context.Context, q models.BloodBankQuery) ([]models.BloodBank, error)
	GeocodeFn    func(ctx context.Context, lat, lng float64) (*models.Address, error)

	meCalls     int
	lastLogin   models.LoginForm
	lastRole    models.Role
	lastPayload map[string]any
	lastPath    string
	lastToken   string
	lastUpdate  map[string]any
	searchCalls int
	lastSearch  models.BloodBankQuery
}

func (f *fakeClient) Register(ctx context.Context, role models.Role, payload map[string]any) (*client.AuthResult, error) {
	f.mu.Lock()
	f.lastRole, f.lastPayload = role, payload
	fn := f.RegisterFn
	f.mu.Unlock()
	if fn == nil {
		return &client.AuthResult{Token: "tok", Profile: map[string]any{}}, nil
	}
	return fn(ctx, role, payload)
}

func (f *fakeClient) Login(ctx context.Context, form models.LoginForm) (*client.AuthResult, error) {
	f.mu.Lock()
	f.lastLogin = form
	fn := f.LoginFn
	f.mu.Unlock()
	if fn == nil {
		return &client.AuthResult{Token: "tok", Profile: map[string]any{}}, nil
	}
	return fn(ctx, form)
}

func (f *fakeClient) Me(ctx context.Context, token string) (map[string]any, error) {
	f.mu.Lock()
	f.meCalls++
	f.lastToken = token
	fn := f.MeFn
	f.mu.Unlock()
	if fn == nil {
		return map[string]any{}, nil
	}
	return fn(ctx, token)
}

func (f *fakeClient) UpdateProfile(ctx context.Context, token, path string, data map[string]any) (map[string]any, error) {
	f.mu.Lock()
	f.lastToken, f.lastPath, f.lastUpdate = token, path, data
	fn := f.UpdateFn
	f.mu.Unlock()
	if fn == nil {
		return data, nil
	}
	return fn(ctx, token, path, data)
}

func (f *fakeClient) Deactivate(ctx context.Context, token, path string) (bool, error) {
	f.mu.Lock()
	f.lastToken, f.lastPath = token, path
	fn := f.DeactivateFn
	f.mu.Unlock()
	if fn == nil {
		return true, nil
	}
	return fn(ctx, token, path)
}

func (f *fakeClient) SearchBloodBanks(ctx context.Context, q models.BloodBankQuery) ([]models.BloodBank, error) {
	f.mu.Lock()
	f.searchCalls++
	f.lastSearch = q
	fn := f.SearchFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, q)
}

func (f *fakeClient) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Address, error) {
	if f.GeocodeFn == nil {
		return &models.Address{}, nil
	}
	return f.GeocodeFn(ctx, lat, lng)
}

func (f *fakeClient) MeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meCalls
}
