package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/bloodlink/internal/client/chat"
	"github.com/dmitrijs2005/bloodlink/internal/client/client"
	"github.com/dmitrijs2005/bloodlink/internal/client/config"
	"github.com/dmitrijs2005/bloodlink/internal/client/guard"
	"github.com/dmitrijs2005/bloodlink/internal/client/models"
	"github.com/dmitrijs2005/bloodlink/internal/client/services"
	"github.com/dmitrijs2005/bloodlink/internal/logging"
)

// sessionService is the part of services.SessionManager the commands use.
type sessionService interface {
	State() services.State
	Login(ctx context.Context, email, password string, roleHint models.Role) (*models.User, error)
	Register(ctx context.Context, form models.RegistrationForm) (*models.User, error)
	Logout(ctx context.Context)
	LoadUser(ctx context.Context) error
	UpdateProfile(ctx context.Context, partial map[string]any) (*models.User, error)
	DeactivateAccount(ctx context.Context) error
}

type bankService interface {
	Search(ctx context.Context, q models.BloodBankQuery) ([]models.BloodBank, error)
	ResolveAddress(ctx context.Context, lat, lng float64) string
}

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	session sessionService
	banks   bankService
	router  *guard.Router
	connect chat.Connector
	reader  *bufio.Reader
	out     io.Writer

	mu         sync.Mutex
	chatStatus chat.Status
}

// NewApp opens the local store, builds the API and chat clients and
// restores the previous session, if any.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DataFile)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, client.BreakerConfig{
		ConsecutiveFailures: c.BreakerFailures,
		OpenTimeout:         c.BreakerOpenTimeout,
	}, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	connect, err := chat.WebSocketConnector(c.ChatBaseURL, c.ChatHandshakeTimeout, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sm := services.NewSessionManager(api, db, log)
	if err := sm.Init(ctx); err != nil {
		log.Warn(ctx, "could not restore session", "error", err)
	}

	return &App{
		config:  c,
		log:     log,
		db:      db,
		session: sm,
		banks:   services.NewBloodBankService(api, log),
		router:  guard.Default(),
		connect: connect,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run starts the REPL and blocks until the user leaves it.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	printlnFn("Welcome to BloodLink (type 'help' for commands)")
	if st := a.session.State(); st.IsAuthenticated && st.User != nil {
		printlnFn(fmt.Sprintf("Signed in as %s (%s)", displayName(st.User), st.Role()))
	}

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// Close releases the local store.
func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State().IsAuthenticated
}

func (a *App) setChatStatus(s chat.Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.chatStatus = s
}

func (a *App) lastChatStatus() chat.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chatStatus
}

// status renders the prompt prefix: who is signed in, until when, and how
// the last chat session ended up.
func (a *App) status() string {
	st := a.session.State()

	var parts []string
	switch {
	case st.Loading:
		parts = append(parts, "loading")
	case st.IsAuthenticated && st.User != nil:
		parts = append(parts, fmt.Sprintf("%s@%s", displayName(st.User), st.Role()))
		if exp, ok := services.TokenExpiry(st.Token); ok {
			parts = append(parts, "until "+exp.Local().Format("15:04"))
		}
	default:
		parts = append(parts, "guest")
	}
	if cs := a.lastChatStatus(); cs != "" {
		parts = append(parts, "chat "+string(cs))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) guardSession() guard.Session {
	st := a.session.State()
	return guard.Session{
		Loading:         st.Loading,
		IsAuthenticated: st.IsAuthenticated,
		Role:            st.Role(),
	}
}

func displayName(u *models.User) string {
	if u == nil {
		return ""
	}
	if n := u.Name(); n != "" {
		return n
	}
	return u.Email()
}
