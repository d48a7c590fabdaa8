package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/dmitrijs2005/bloodlink/internal/client/models"
	"github.com/dmitrijs2005/bloodlink/internal/common"
	"github.com/dmitrijs2005/bloodlink/internal/logging"
)

const maxErrorBody = 1 << 20

// envelope covers every response shape the API uses.
type envelope struct {
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// BreakerConfig controls the circuit breaker in front of the public read
// endpoints (blood bank search, geocoding).
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{ConsecutiveFailures: 3, OpenTimeout: 30 * time.Second}
}

// HTTPClient implements Client over the JSON REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	reads      *gobreaker.CircuitBreaker[[]byte]
	log        logging.Logger
	requestID  func() string
}

// NewHTTPClient builds a client for the API rooted at baseURL
// (e.g. "http://localhost:5000/api").
func NewHTTPClient(baseURL string, timeout time.Duration, bc BreakerConfig, log logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}

	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		requestID:  uuid.NewString,
	}

	c.reads = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "api-reads",
		Timeout: bc.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !(errors.Is(err, ErrUnavailable) || errors.Is(err, ErrServer))
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c, nil
}

func (c *HTTPClient) Register(ctx context.Context, role models.Role, payload map[string]any) (*AuthResult, error) {
	return c.authenticate(ctx, role.RegisterPath(), payload)
}

func (c *HTTPClient) Login(ctx context.Context, form models.LoginForm) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", form)
}

func (c *HTTPClient) authenticate(ctx context.Context, path string, body any) (*AuthResult, error) {
	raw, err := c.do(ctx, http.MethodPost, path, "", nil, body)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	profile, err := decodeObject(env.Data)
	if err != nil || env.Token == "" || profile == nil {
		return nil, fmt.Errorf("%w: missing token or profile", ErrInvalidResponse)
	}
	return &AuthResult{Token: env.Token, Profile: profile}, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (map[string]any, error) {
	return c.profileCall(ctx, http.MethodGet, "/auth/me", token, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, token, path string, data map[string]any) (map[string]any, error) {
	return c.profileCall(ctx, http.MethodPut, path, token, data)
}

func (c *HTTPClient) profileCall(ctx context.Context, method, path, token string, body any) (map[string]any, error) {
	raw, err := c.do(ctx, method, path, token, nil, body)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	profile, err := decodeObject(env.Data)
	if err != nil || profile == nil {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidResponse)
	}
	return profile, nil
}

func (c *HTTPClient) Deactivate(ctx context.Context, token, path string) (bool, error) {
	raw, err := c.do(ctx, http.MethodPut, path, token, nil, map[string]any{})
	if err != nil {
		return false, err
	}
	env, err := decodeEnvelope(raw)
	if err != nil {
		return false, err
	}
	return env.Success, nil
}

func (c *HTTPClient) SearchBloodBanks(ctx context.Context, q models.BloodBankQuery) ([]models.BloodBank, error) {
	params := url.Values{}
	params.Set("lat", formatFloat(q.Lat))
	params.Set("lng", formatFloat(q.Lng))
	params.Set("radius", formatFloat(q.Radius))
	params.Set("maxTravelTime", formatFloat(q.MaxTravelTime))
	params.Set("maxPrice", formatFloat(q.MaxPrice))
	params.Set("bloodGroup", q.BloodGroup)

	raw, err := c.read(ctx, "/blood-banks", params)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	var banks []models.BloodBank
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return banks, nil
	}
	if err := json.Unmarshal(env.Data, &banks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return banks, nil
}

func (c *HTTPClient) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Address, error) {
	params := url.Values{}
	params.Set("lat", formatFloat(lat))
	params.Set("lng", formatFloat(lng))

	raw, err := c.read(ctx, "/geocoding", params)
	if err != nil {
		return nil, err
	}
	var addr models.Address
	if err := json.Unmarshal(raw, &addr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &addr, nil
}

// read sends an unauthenticated GET through the circuit breaker.
func (c *HTTPClient) read(ctx context.Context, path string, params url.Values) ([]byte, error) {
	raw, err := c.reads.Execute(func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, "", params, nil)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return raw, err
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, params url.Values, body any) ([]byte, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	reqID := c.requestID()
	req.Header.Set(common.RequestIDHeaderName, reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug(ctx, "api request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug(ctx, "api request", "method", method, "path", path, "status", resp.StatusCode,
		"duration", time.Since(start), "request_id", reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseResponseError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	return raw, nil
}

// parseResponseError turns a non-2xx response into an *APIError, keeping
// the server's message from either {"message": ...} or
// {"error": {"message": ...}}.
func parseResponseError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Err: sentinelForStatus(resp.StatusCode)}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(b) == 0 {
		return apiErr
	}

	var env envelope
	if json.Unmarshal(b, &env) != nil {
		return apiErr
	}
	apiErr.Message = env.Message
	if apiErr.Message == "" && len(env.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(env.Error, &nested) == nil {
			apiErr.Message = nested.Message
		} else {
			var plain string
			if json.Unmarshal(env.Error, &plain) == nil {
				apiErr.Message = plain
			}
		}
	}
	return apiErr
}

func decodeEnvelope(raw []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &env, nil
}

func decodeObject(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
