// Package services contains application services for the bloodlink client.
// This file defines the session manager: token lifecycle, role derivation,
// profile mutations and the durable credential slot.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/bloodlink/internal/client/client"
	"github.com/dmitrijs2005/bloodlink/internal/client/models"
	"github.com/dmitrijs2005/bloodlink/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/bloodlink/internal/common"
	"github.com/dmitrijs2005/bloodlink/internal/dbx"
	"github.com/dmitrijs2005/bloodlink/internal/logging"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidRole      = errors.New("invalid user role")
	ErrSessionChanged   = errors.New("session changed during request")
)

// Human-readable messages stored in State.Error when the server sent none.
const (
	MsgLoginFailed       = "Login failed"
	MsgRegisterFailed    = "Registration failed"
	MsgLoadUserFailed    = "Failed to load user data"
	MsgUpdateFailed      = "Failed to update profile"
	MsgUpdateDataFailed  = "Failed to update user data"
	MsgDeactivateFailed  = "Failed to deactivate account"
	MsgUpdateNotLoggedIn = "You must be logged in to update your profile"
	MsgUpdateDataNoLogin = "You must be logged in to update user data"
	MsgDeactivateNoLogin = "You must be logged in to deactivate your account"
	MsgSessionChanged    = "Session changed, please try again"
)

const legacyProfileEndpoint = "/donors/profile"

// OpError is returned by the mutating operations. Message is what a form
// shows; Err is the underlying cause for errors.Is.
type OpError struct {
	Message string
	Err     error
}

func (e *OpError) Error() string { return e.Message }

func (e *OpError) Unwrap() error { return e.Err }

// State is a read-only snapshot of the session.
type State struct {
	Token           string
	User            *models.User
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// Role is the effective role of the snapshot, or "" when signed out.
func (s State) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// SessionManager owns the client session. It is safe for concurrent use:
// state is guarded by a mutex and network calls run without it. Results
// are applied only while the token they were issued with is still current,
// so a logout racing an in-flight request cannot bring the session back.
type SessionManager struct {
	client client.Client
	db     *sql.DB
	log    logging.Logger

	mu        sync.Mutex
	state     State
	booting   bool
	inflight  int
	listeners map[int]func(State)
	nextID    int
}

// NewSessionManager creates a signed-out session in the loading state.
// Init restores a persisted token.
func NewSessionManager(c client.Client, db *sql.DB, log logging.Logger) *SessionManager {
	return &SessionManager{
		client:    c,
		db:        db,
		log:       log,
		state:     State{Loading: true},
		booting:   true,
		listeners: make(map[int]func(State)),
	}
}

// State returns the current snapshot. The user is a copy.
func (s *SessionManager) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to be called after every state change. The
// returned function removes it.
func (s *SessionManager) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Init restores the persisted token and loads the user it belongs to.
func (s *SessionManager) Init(ctx context.Context) error {
	repo := metadata.NewSQLiteRepository(s.db)

	token, err := repo.Get(ctx, common.StorageKeyToken)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		s.log.Warn(ctx, "cannot read stored token", "error", err)
	}

	s.mu.Lock()
	if s.state.Token == "" {
		s.state.Token = token
	}
	s.mu.Unlock()

	return s.LoadUser(ctx)
}

// Login authenticates against the server. roleHint is the account kind the
// form was filled for; it is the last resort when the profile carries no
// role. On failure the previous session is left as it was.
func (s *SessionManager) Login(ctx context.Context, email, password string, roleHint models.Role) (*models.User, error) {
	if roleHint == "" {
		roleHint = models.RoleDonor
	}
	form := models.LoginForm{Email: email, Password: password, UserType: roleHint}

	res, err := s.client.Login(ctx, form)
	if err != nil {
		s.log.Debug(ctx, "login failed", "error", err)
		return nil, s.fail(MsgLoginFailed, err)
	}
	return s.establish(ctx, res, roleHint), nil
}

// Register creates an account and signs it in. The endpoint follows
// form.UserType.
func (s *SessionManager) Register(ctx context.Context, form models.RegistrationForm) (*models.User, error) {
	role := form.UserType
	if role == "" {
		role = models.RoleDonor
	}

	payload, err := form.Payload()
	if err != nil {
		return nil, s.fail(MsgRegisterFailed, err)
	}

	res, err := s.client.Register(ctx, role, payload)
	if err != nil {
		s.log.Debug(ctx, "registration failed", "role", role, "error", err)
		return nil, s.fail(MsgRegisterFailed, err)
	}
	return s.establish(ctx, res, role), nil
}

// Logout clears the session and the persisted credential. It never fails;
// storage errors are logged.
func (s *SessionManager) Logout(ctx context.Context) {
	s.mu.Lock()
	s.logoutLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// LoadUser fetches the profile of the current token. Without a token it
// only settles the signed-out state. A 401/403 signs out; other failures
// keep the token and record the error.
func (s *SessionManager) LoadUser(ctx context.Context) error {
	s.mu.Lock()
	token := s.state.Token
	if token == "" {
		s.booting = false
		s.state.IsAuthenticated = false
		s.state.User = nil
		s.state.Loading = s.loadingLocked()
		s.mu.Unlock()
		s.notify()
		return nil
	}
	s.beginLocked()
	s.mu.Unlock()
	s.notify()

	hint := s.storedRole(ctx)
	fields, err := s.client.Me(ctx, token)

	s.mu.Lock()
	s.booting = false
	s.endLocked()

	if s.state.Token != token {
		s.mu.Unlock()
		s.notify()
		s.log.Debug(ctx, "discarding profile of a replaced token")
		return nil
	}

	if err != nil {
		msg := messageFor(err, MsgLoadUserFailed)
		if client.IsAuthRejection(err) {
			s.log.Info(ctx, "stored token rejected, signing out")
			s.logoutLocked(ctx)
		} else {
			s.log.Warn(ctx, "cannot load user", "error", err)
			s.state.Error = msg
		}
		s.mu.Unlock()
		s.notify()
		return &OpError{Message: msg, Err: err}
	}

	user := models.NewUser(fields, hint)
	s.state.User = user
	s.state.IsAuthenticated = true
	s.state.Error = ""
	s.persistRoleLocked(ctx, user.Role)
	s.mu.Unlock()
	s.notify()
	return nil
}

// UpdateProfile sends partial to the profile endpoint of the current role
// and merges the server's answer into the user.
func (s *SessionManager) UpdateProfile(ctx context.Context, partial map[string]any) (*models.User, error) {
	s.mu.Lock()
	if !s.authenticatedLocked() {
		return nil, s.rejectLocked(MsgUpdateNotLoggedIn, ErrNotAuthenticated)
	}
	token, role := s.state.Token, s.state.User.Role
	path, ok := role.ProfilePath()
	if !ok {
		return nil, s.rejectLocked(MsgUpdateFailed, fmt.Errorf("%w: %q", ErrInvalidRole, role))
	}
	s.beginLocked()
	s.mu.Unlock()
	s.notify()

	return s.applyUpdate(ctx, token, path, partial, MsgUpdateFailed)
}

// UpdateUserData is the donor profile update: it always targets
// /donors/profile regardless of role.
func (s *SessionManager) UpdateUserData(ctx context.Context, partial map[string]any) (*models.User, error) {
	s.mu.Lock()
	if !s.authenticatedLocked() {
		return nil, s.rejectLocked(MsgUpdateDataNoLogin, ErrNotAuthenticated)
	}
	token := s.state.Token
	s.beginLocked()
	s.mu.Unlock()
	s.notify()

	return s.applyUpdate(ctx, token, legacyProfileEndpoint, partial, MsgUpdateDataFailed)
}

func (s *SessionManager) applyUpdate(ctx context.Context, token, path string, partial map[string]any, failMsg string) (*models.User, error) {
	fields, err := s.client.UpdateProfile(ctx, token, path, partial)

	s.mu.Lock()
	s.endLocked()

	if s.state.Token != token || s.state.User == nil {
		s.mu.Unlock()
		s.notify()
		return nil, &OpError{Message: MsgSessionChanged, Err: ErrSessionChanged}
	}

	if err != nil {
		return nil, s.failLocked(ctx, failMsg, err)
	}

	prev := s.state.User.Role
	s.state.User = s.state.User.Merge(fields)
	s.state.Error = ""
	if s.state.User.Role != prev {
		s.persistRoleLocked(ctx, s.state.User.Role)
	}
	user := s.state.User.Clone()
	s.mu.Unlock()
	s.notify()
	return user, nil
}

// DeactivateAccount deactivates the account of the current role and signs
// out when the server confirms.
func (s *SessionManager) DeactivateAccount(ctx context.Context) error {
	s.mu.Lock()
	if !s.authenticatedLocked() {
		return s.rejectLocked(MsgDeactivateNoLogin, ErrNotAuthenticated)
	}
	token, role := s.state.Token, s.state.User.Role
	path, ok := role.DeactivatePath()
	if !ok {
		return s.rejectLocked(MsgDeactivateFailed, fmt.Errorf("%w: %q", ErrInvalidRole, role))
	}
	s.beginLocked()
	s.mu.Unlock()
	s.notify()

	success, err := s.client.Deactivate(ctx, token, path)

	s.mu.Lock()
	s.endLocked()

	if s.state.Token != token {
		s.mu.Unlock()
		s.notify()
		return &OpError{Message: MsgSessionChanged, Err: ErrSessionChanged}
	}
	if err != nil {
		return s.failLocked(ctx, MsgDeactivateFailed, err)
	}
	if !success {
		return s.failLocked(ctx, MsgDeactivateFailed, client.ErrInvalidResponse)
	}

	s.log.Info(ctx, "account deactivated", "role", role)
	s.logoutLocked(ctx)
	s.mu.Unlock()
	s.notify()
	return nil
}

// establish installs a fresh authenticated session.
func (s *SessionManager) establish(ctx context.Context, res *client.AuthResult, hint models.Role) *models.User {
	user := models.NewUser(res.Profile, hint)

	s.mu.Lock()
	if err := s.saveCredentials(ctx, res.Token, user.Role); err != nil {
		s.log.Error(ctx, "cannot persist credentials", "error", err)
	}
	s.state.Token = res.Token
	s.state.User = user
	s.state.IsAuthenticated = true
	s.state.Error = ""
	s.settleBootLocked()
	out := user.Clone()
	s.mu.Unlock()

	s.log.Info(ctx, "signed in", "role", user.Role)
	s.notify()
	return out
}

// fail records a failed sign-in without touching the session.
func (s *SessionManager) fail(defaultMsg string, err error) error {
	msg := messageFor(err, defaultMsg)
	s.mu.Lock()
	s.state.Error = msg
	s.settleBootLocked()
	s.mu.Unlock()
	s.notify()
	return &OpError{Message: msg, Err: err}
}

// failLocked records a failed authenticated call; 401/403 signs out.
// It releases the lock.
func (s *SessionManager) failLocked(ctx context.Context, defaultMsg string, err error) error {
	msg := messageFor(err, defaultMsg)
	if client.IsAuthRejection(err) {
		s.log.Info(ctx, "token rejected, signing out", "error", err)
		s.logoutLocked(ctx)
	} else {
		s.state.Error = msg
	}
	s.mu.Unlock()
	s.notify()
	return &OpError{Message: msg, Err: err}
}

// rejectLocked fails an operation before any request. It releases the lock.
func (s *SessionManager) rejectLocked(msg string, err error) error {
	s.state.Error = msg
	s.mu.Unlock()
	s.notify()
	return &OpError{Message: msg, Err: err}
}

func (s *SessionManager) logoutLocked(ctx context.Context) {
	if err := s.clearCredentials(ctx); err != nil {
		s.log.Error(ctx, "cannot clear stored credentials", "error", err)
	}
	s.state.Token = ""
	s.state.User = nil
	s.state.IsAuthenticated = false
	s.state.Error = ""
	s.settleBootLocked()
}

// settleBootLocked ends the initial loading phase: a completed sign-in or
// sign-out is as good as a finished Init.
func (s *SessionManager) settleBootLocked() {
	s.booting = false
	s.state.Loading = s.loadingLocked()
}

func (s *SessionManager) authenticatedLocked() bool {
	return s.state.IsAuthenticated && s.state.User != nil && s.state.Token != ""
}

func (s *SessionManager) beginLocked() {
	s.inflight++
	s.state.Loading = true
}

func (s *SessionManager) endLocked() {
	if s.inflight > 0 {
		s.inflight--
	}
	s.state.Loading = s.loadingLocked()
}

func (s *SessionManager) loadingLocked() bool {
	return s.booting || s.inflight > 0
}

func (s *SessionManager) snapshotLocked() State {
	st := s.state
	st.User = s.state.User.Clone()
	return st
}

func (s *SessionManager) notify() {
	s.mu.Lock()
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *SessionManager) saveCredentials(ctx context.Context, token string, role models.Role) error {
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.StorageKeyToken, token); err != nil {
			return err
		}
		return repo.Set(ctx, common.StorageKeyUserRole, role.String())
	})
}

func (s *SessionManager) persistRoleLocked(ctx context.Context, role models.Role) {
	repo := metadata.NewSQLiteRepository(s.db)
	if err := repo.Set(ctx, common.StorageKeyUserRole, role.String()); err != nil {
		s.log.Error(ctx, "cannot persist role marker", "error", err)
	}
}

func (s *SessionManager) clearCredentials(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.StorageKeyToken); err != nil {
			return err
		}
		return repo.Delete(ctx, common.StorageKeyUserRole)
	})
}

// storedRole is the role marker left by the last session, used when the
// profile itself carries no role.
func (s *SessionManager) storedRole(ctx context.Context) models.Role {
	raw, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.StorageKeyUserRole)
	if err != nil {
		return models.RoleDonor
	}
	if r, ok := models.ParseRole(raw); ok {
		return r
	}
	return models.RoleDonor
}

func messageFor(err error, fallback string) string {
	if msg, ok := client.ServerMessage(err); ok {
		return msg
	}
	return fallback
}
