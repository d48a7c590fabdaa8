package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/bloodlink/internal/client/chat"
	"github.com/dmitrijs2005/bloodlink/internal/client/config"
	"github.com/dmitrijs2005/bloodlink/internal/client/guard"
	"github.com/dmitrijs2005/bloodlink/internal/client/models"
	"github.com/dmitrijs2005/bloodlink/internal/client/services"
	"github.com/dmitrijs2005/bloodlink/internal/logging"
)

type fakeSession struct {
	state services.State

	loginEmail, loginPass string
	loginRole             models.Role
	loginUser             *models.User
	loginErr              error

	regForm *models.RegistrationForm
	regErr  error

	logoutCalled bool
	loadCalls    int
	loadErr      error

	updated   map[string]any
	updateErr error

	deactivated   bool
	deactivateErr error
}

func (f *fakeSession) State() services.State { return f.state }

func (f *fakeSession) Login(_ context.Context, email, password string, hint models.Role) (*models.User, error) {
	f.loginEmail, f.loginPass, f.loginRole = email, password, hint
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	u := f.loginUser
	if u == nil {
		u = models.NewUser(map[string]any{"email": email}, hint)
	}
	f.state = services.State{Token: "tok", User: u, IsAuthenticated: true}
	return u, nil
}

func (f *fakeSession) Register(_ context.Context, form models.RegistrationForm) (*models.User, error) {
	f.regForm = &form
	if f.regErr != nil {
		return nil, f.regErr
	}
	u := models.NewUser(map[string]any{"name": form.Name, "email": form.Email}, form.UserType)
	f.state = services.State{Token: "tok", User: u, IsAuthenticated: true}
	return u, nil
}

func (f *fakeSession) Logout(context.Context) {
	f.logoutCalled = true
	f.state = services.State{}
}

func (f *fakeSession) LoadUser(context.Context) error {
	f.loadCalls++
	return f.loadErr
}

func (f *fakeSession) UpdateProfile(_ context.Context, partial map[string]any) (*models.User, error) {
	f.updated = partial
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.state.User = f.state.User.Merge(partial)
	return f.state.User, nil
}

func (f *fakeSession) DeactivateAccount(context.Context) error {
	f.deactivated = true
	if f.deactivateErr != nil {
		return f.deactivateErr
	}
	f.state = services.State{}
	return nil
}

func signedIn(role models.Role, fields map[string]any) *fakeSession {
	return &fakeSession{state: services.State{
		Token:           "tok",
		User:            models.NewUser(fields, role),
		IsAuthenticated: true,
	}}
}

type fakeBanks struct {
	query   models.BloodBankQuery
	calls   int
	results []models.BloodBank
	err     error
	address string
}

func (f *fakeBanks) Search(_ context.Context, q models.BloodBankQuery) ([]models.BloodBank, error) {
	f.calls++
	f.query = q
	return f.results, f.err
}

func (f *fakeBanks) ResolveAddress(_ context.Context, lat, lng float64) string {
	if f.address != "" {
		return f.address
	}
	return fmt.Sprintf("Lat: %.4f, Lng: %.4f", lat, lng)
}

// syncBuffer is written from chat timer goroutines.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func newTestApp(t *testing.T, s sessionService, input string) (*App, *syncBuffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	out := &syncBuffer{}
	return &App{
		config:  cfg,
		log:     logging.NewDiscard(),
		session: s,
		banks:   &fakeBanks{},
		router:  guard.Default(),
		reader:  bufio.NewReader(strings.NewReader(input)),
		out:     out,
	}, out
}

// capturePrintln collects everything passed to printlnFn.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	var mu sync.Mutex
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

// stubInputs answers text prompts and password prompts from queues.
func stubInputs(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", fmt.Errorf("unexpected prompt %q", prompt)
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(_ io.Writer, prompt string) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, fmt.Errorf("unexpected password prompt %q", prompt)
		}
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type liveChannel struct {
	sink func(chat.Event)
}

func (c *liveChannel) Emit(_ context.Context, text string) error {
	c.sink(chat.Event{Kind: chat.EventMessage, Reply: "echo: " + text})
	return nil
}
func (c *liveChannel) Connected() bool { return true }
func (c *liveChannel) Close() error    { return nil }

// liveConnector completes the handshake synchronously and echoes messages.
func liveConnector(_ context.Context, sink func(chat.Event)) chat.Channel {
	sink(chat.Event{Kind: chat.EventConnected})
	return &liveChannel{sink: sink}
}

type deadChannel struct{}

func (deadChannel) Emit(context.Context, string) error { return io.ErrClosedPipe }
func (deadChannel) Connected() bool                    { return false }
func (deadChannel) Close() error                       { return nil }

func offlineConnector(_ context.Context, sink func(chat.Event)) chat.Channel {
	sink(chat.Event{Kind: chat.EventError, Err: io.ErrUnexpectedEOF})
	return deadChannel{}
}

func waitFor(t *testing.T, out *syncBuffer, substr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), substr) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("output never contained %q:\n%s", substr, out.String())
}
