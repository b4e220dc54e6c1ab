package backoffice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hotelzen/backoffice/storage"
)

// Storage keys for the persisted session. The pair is written, read, and
// removed strictly together; a token without a user (or vice versa) is
// corruption and gets purged.
const (
	storageKeyUser  = "user"
	storageKeyToken = "token"
)

// Callbacks are optional hooks fired on session transitions. All fields may
// be nil.
type Callbacks struct {
	// OnLogin fires after a successful login has been persisted.
	OnLogin func(user *User)
	// OnLogout fires after an explicit logout.
	OnLogout func()
	// OnInvalidated fires when a 401 from the remote API force-ends the
	// session.
	OnInvalidated func()
}

// LoginResult is the outcome of a Login call. It is a value, never a thrown
// error: transport failures and credential rejections both land here.
type LoginResult struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegisterResult is the outcome of a Register call. Success carries the new
// user and token but, unlike login, implies no session change.
type RegisterResult struct {
	Success bool      `json:"success"`
	User    *User     `json:"user,omitempty"`
	Token   string    `json:"token,omitempty"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"type,omitempty"`
}

// SessionStore is the single source of truth for the current administrator
// session. It owns the persisted user/token pair exclusively; every other
// component reads session state through it.
//
// The store starts in the restoring state (loading=true) and stays there
// until Initialize has run. From then on it is either authenticated or
// anonymous; login and logout move between the two, and both states are
// reachable repeatedly.
type SessionStore struct {
	mu      sync.RWMutex
	user    *User
	token   string
	loading bool

	storage   storage.Interface
	client    *Client
	validate  *validator.Validate
	sealKey   *[32]byte
	callbacks Callbacks
}

func newSessionStore(st storage.Interface, client *Client, validate *validator.Validate, sealKey *[32]byte, callbacks Callbacks) *SessionStore {
	return &SessionStore{
		loading:   true,
		storage:   st,
		client:    client,
		validate:  validate,
		sealKey:   sealKey,
		callbacks: callbacks,
	}
}

// User returns the current session user, or nil when anonymous.
func (s *SessionStore) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the current bearer credential, or "" when anonymous.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Loading reports whether session restoration or an auth operation is in
// flight. The access guard renders its placeholder while this is true.
func (s *SessionStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Authenticated reports whether a user is currently signed in.
func (s *SessionStore) Authenticated() bool {
	return s.User() != nil
}

func (s *SessionStore) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// Initialize restores the persisted session, if any. It is purely local: no
// network call happens here. Missing or unparsable values leave the session
// anonymous and purge whatever half of the pair was stored, so a token never
// survives without its user. Initialize always ends the loading state; it is
// the only place that does so during startup.
func (s *SessionStore) Initialize(ctx context.Context) {
	defer s.setLoading(false)

	rawUser, okUser, presentUser := s.loadValue(ctx, storageKeyUser)
	rawToken, okToken, presentToken := s.loadValue(ctx, storageKeyToken)

	if !okUser || !okToken {
		if presentUser || presentToken {
			slog.Warn("Persisted session incomplete or unreadable, purging")
			s.purge(ctx)
		}
		return
	}

	var user User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		slog.Warn("Persisted user record unparsable, purging", "error", err)
		s.purge(ctx)
		return
	}

	s.mu.Lock()
	s.user = &user
	s.token = string(rawToken)
	s.mu.Unlock()

	slog.Info("Session restored from storage", "user_id", user.ID, "email", user.Email)
}

// Login authenticates against the remote API and, on success, persists and
// adopts the session. It never returns a raw transport error: every failure
// mode is folded into the result value, and the loading flag clears on every
// exit path.
func (s *SessionStore) Login(ctx context.Context, creds Credentials) LoginResult {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.validate.Struct(creds); err != nil {
		return LoginResult{Error: formatValidationErrors(err)}
	}

	payload, err := s.client.login(ctx, creds)
	if err != nil {
		slog.Error("Login call failed", "error", err)
		return LoginResult{Error: ErrConnection.Error()}
	}

	if !*payload.Success {
		slog.Debug("Login rejected", "email", creds.Email, "error", payload.Error)
		return LoginResult{Error: payload.Error}
	}

	s.persist(ctx, payload.User, payload.Token)

	s.mu.Lock()
	s.user = payload.User
	s.token = payload.Token
	s.mu.Unlock()

	slog.Info("Login succeeded", "user_id", payload.User.ID, "email", payload.User.Email)
	if s.callbacks.OnLogin != nil {
		s.callbacks.OnLogin(payload.User)
	}

	return LoginResult{Success: true, User: payload.User, Token: payload.Token}
}

// Register creates an account via the remote API. A created account is
// reported back with its user and token, but the session itself is left
// untouched: registering does not sign the new user in.
func (s *SessionStore) Register(ctx context.Context, profile Profile) RegisterResult {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.validate.Struct(profile); err != nil {
		return RegisterResult{Error: formatValidationErrors(err), Kind: validationKind(err)}
	}

	payload, status, errBody, err := s.client.register(ctx, profile)
	if err != nil {
		slog.Error("Register call failed", "error", err)
		return RegisterResult{Error: ErrConnection.Error(), Kind: KindGeneral}
	}

	if errBody != nil {
		message, kind := normalizeRegisterError(errBody)
		slog.Debug("Register rejected", "status", status, "error", message, "kind", kind)
		return RegisterResult{Error: message, Kind: kind}
	}

	slog.Info("Account registered", "user_id", payload.User.ID, "email", payload.User.Email)
	return RegisterResult{Success: true, User: payload.User, Token: payload.Token}
}

// Logout clears the session locally; no network call is involved. Calling it
// while already anonymous is a no-op.
func (s *SessionStore) Logout() {
	if !s.clear() {
		return
	}
	slog.Info("Logged out")
	if s.callbacks.OnLogout != nil {
		s.callbacks.OnLogout()
	}
}

// Invalidate ends the session in response to an authentication rejection
// from any API call. It behaves like Logout but fires the invalidation
// callback, and at most once per authenticated session.
func (s *SessionStore) Invalidate() {
	if !s.clear() {
		return
	}
	slog.Warn("Session invalidated by remote API")
	if s.callbacks.OnInvalidated != nil {
		s.callbacks.OnInvalidated()
	}
}

// clear wipes memory and storage. It reports whether there was a session to
// clear; the storage keys are removed unconditionally either way.
func (s *SessionStore) clear() bool {
	s.mu.Lock()
	had := s.user != nil || s.token != ""
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	s.purge(context.Background())
	return had
}

// persist writes the user/token pair to storage as a unit. Persistence
// failures are logged and self-healed by purging both keys; the in-memory
// session stays valid, it just will not survive a restart.
func (s *SessionStore) persist(ctx context.Context, user *User, token string) {
	encoded, err := json.Marshal(user)
	if err != nil {
		slog.Error("Failed to encode user for storage", "error", err)
		s.purge(ctx)
		return
	}

	if err := s.storeValue(ctx, storageKeyUser, encoded); err != nil {
		slog.Error("Failed to persist user record", "error", err)
		s.purge(ctx)
		return
	}
	if err := s.storeValue(ctx, storageKeyToken, []byte(token)); err != nil {
		slog.Error("Failed to persist token", "error", err)
		s.purge(ctx)
	}
}

// purge removes both storage keys together.
func (s *SessionStore) purge(ctx context.Context) {
	if err := s.storage.Delete(ctx, storageKeyUser); err != nil {
		slog.Error("Failed to remove stored user", "error", err)
	}
	if err := s.storage.Delete(ctx, storageKeyToken); err != nil {
		slog.Error("Failed to remove stored token", "error", err)
	}
}

// loadValue reads and, when sealing is configured, opens a stored value. ok
// means the value is usable; present means the key held something, usable or
// not, so the caller can tell corruption apart from a clean empty store.
func (s *SessionStore) loadValue(ctx context.Context, key string) (value []byte, ok, present bool) {
	value, err := s.storage.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Failed to read stored session value", "key", key, "error", err)
		}
		return nil, false, false
	}
	if s.sealKey != nil {
		opened, err := openValue(s.sealKey, value)
		if err != nil {
			slog.Warn("Stored session value unsealable", "key", key)
			return nil, false, true
		}
		return opened, true, true
	}
	return value, true, true
}

func (s *SessionStore) storeValue(ctx context.Context, key string, value []byte) error {
	if s.sealKey != nil {
		sealed, err := sealValue(s.sealKey, value)
		if err != nil {
			return err
		}
		value = sealed
	}
	return s.storage.Set(ctx, key, value)
}

// validationKind classifies a local validation failure the same way the
// remote API would.
func validationKind(err error) ErrorKind {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			if fieldError.Tag() == "eqfield" {
				return KindPasswordMismatch
			}
		}
	}
	return KindGeneral
}
