package session

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/you/cyberportal/domain"
)

// Storage keys. The admin flag is persisted as the strings "true" or
// "false", separately from the token, and the two are the only durable
// session state.
const (
	KeyToken   = "token"
	KeyIsAdmin = "isAdmin"
)

// Route targets used after session transitions.
const (
	RouteHome         = "/"
	RouteLogin        = "/login"
	RouteDashboard    = "/dashboard"
	RouteAdminLanding = "/admin"
)

// Store owns the authentication token and the projections derived from
// it. It mediates every call to the portal API's auth endpoints and is
// the single source of truth for the route guards.
//
// A Store is bound to one visitor: its storage, notifier and navigator
// are already namespaced when the Store is constructed. Operational
// failures (credential rejection, transport errors, storage trouble)
// never escape its methods; they are converted to notices and logged.
type Store struct {
	storage domain.SessionStorage
	api     domain.PortalAPI
	notify  domain.Notifier
	nav     domain.Navigator
	timeout time.Duration
	now     func() time.Time

	inflight atomic.Bool
	ready    bool
	account  *domain.Account
}

// New builds a session store over its collaborators. A zero timeout
// disables the client-side deadline on API calls.
func New(storage domain.SessionStorage, api domain.PortalAPI, notify domain.Notifier, nav domain.Navigator, timeout time.Duration) *Store {
	return &Store{
		storage: storage,
		api:     api,
		notify:  notify,
		nav:     nav,
		timeout: timeout,
		now:     time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Init resolves the persisted session exactly once, before any guarded
// route is evaluated. A malformed token clears the session silently; an
// expired token clears it and surfaces a session-expired notice. A
// valid token rebuilds the account projection from its claims, so the
// identity survives a restart along with the admin flag.
func (s *Store) Init(ctx context.Context) {
	defer func() { s.ready = true }()

	raw, err := s.storage.Get(ctx, KeyToken)
	if errors.Is(err, domain.ErrKeyNotFound) || raw == "" {
		return
	}
	if err != nil {
		log.Printf("SESSION_INIT_FAILED: error=%v", err)
		return
	}

	claims, err := DecodeToken(raw, s.now())
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		s.clear(ctx)
		s.notify.Info(ctx, "Your session has expired. Please log in again.")
		log.Printf("SESSION_EXPIRED: cleared stored credentials")
	case err != nil:
		s.clear(ctx)
		log.Printf("SESSION_TOKEN_MALFORMED: cleared stored credentials error=%v", err)
	default:
		s.account = claims.Account()
	}
}

// Ready reports whether Init has resolved. Guards must not make
// redirect decisions before this is true.
func (s *Store) Ready() bool { return s.ready }

// Login exchanges credentials for a bearer token. On success it
// persists the token and the derived admin flag, rebuilds the account
// projection, and navigates to the admin landing page or the user
// dashboard. On any failure the session state is left untouched and a
// failure notice is queued.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if !s.inflight.CompareAndSwap(false, true) {
		return domain.ErrOperationInFlight
	}
	defer s.inflight.Store(false)

	// Notices outlive the call deadline: a timed-out login still owes
	// the visitor its failure notice, and the flash write would fail
	// under the already-expired context.
	notifyCtx := context.WithoutCancel(ctx)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	payload, err := s.api.Login(ctx, email, password)
	if err != nil {
		log.Printf("LOGIN_FAILED: email=%s error=%v", email, err)
		s.notify.Error(notifyCtx, "Login failed. Please check your credentials.")
		return nil
	}

	if err := s.persist(ctx, payload); err != nil {
		log.Printf("LOGIN_PERSIST_FAILED: email=%s error=%v", email, err)
		s.notify.Error(notifyCtx, "Login failed. Please try again.")
		return nil
	}

	s.account = &payload.Account
	s.notify.Success(notifyCtx, "Logged in successfully!")
	s.navigateByRole(payload.Account.Role)
	return nil
}

// Register creates an account and signs the visitor in. The portal API
// reports a new-account payload in the same shape as login; a response
// missing the new user record is treated as a failure upstream and
// surfaces here as an error, leaving the session untouched.
func (s *Store) Register(ctx context.Context, name, email, mobile, password string) error {
	if !s.inflight.CompareAndSwap(false, true) {
		return domain.ErrOperationInFlight
	}
	defer s.inflight.Store(false)

	notifyCtx := context.WithoutCancel(ctx)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	payload, err := s.api.Register(ctx, name, email, mobile, password)
	if err != nil {
		log.Printf("REGISTRATION_FAILED: email=%s error=%v", email, err)
		s.notify.Error(notifyCtx, "Registration failed. Please try again.")
		return nil
	}

	if err := s.persist(ctx, payload); err != nil {
		log.Printf("REGISTRATION_PERSIST_FAILED: email=%s error=%v", email, err)
		s.notify.Error(notifyCtx, "Registration failed. Please try again.")
		return nil
	}

	s.account = &payload.Account
	s.notify.Success(notifyCtx, "Account created successfully!")
	s.navigateByRole(payload.Account.Role)
	return nil
}

// Logout unconditionally clears the session. It never calls the portal
// API: the bearer token simply expires on its own. Calling it on an
// anonymous session is a harmless no-op ending in the same state.
func (s *Store) Logout(ctx context.Context) {
	s.clear(ctx)
	s.notify.Info(ctx, "Logged out successfully")
	s.nav.Navigate(RouteHome)
}

// ForgotPassword asks the portal API to start a reset flow. Session
// state is never mutated here.
func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	if !s.inflight.CompareAndSwap(false, true) {
		return domain.ErrOperationInFlight
	}
	defer s.inflight.Store(false)

	notifyCtx := context.WithoutCancel(ctx)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.api.ForgotPassword(ctx, email); err != nil {
		log.Printf("PASSWORD_RESET_FAILED: email=%s error=%v", email, err)
		s.notify.Error(notifyCtx, "Failed to send reset link. Please try again.")
		return nil
	}

	s.notify.Success(notifyCtx, "Password reset link sent to your email!")
	s.nav.Navigate(RouteLogin)
	return nil
}

// IsAuthenticated re-derives the signed-in state from storage on every
// call, so it can never drift from what is actually persisted.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	v, err := s.storage.Get(ctx, KeyToken)
	return err == nil && v != ""
}

// IsAdmin reports whether the persisted admin flag equals "true".
func (s *Store) IsAdmin(ctx context.Context) bool {
	v, err := s.storage.Get(ctx, KeyIsAdmin)
	return err == nil && v == "true"
}

// Account returns the in-memory identity projection, or nil when the
// session is anonymous.
func (s *Store) Account() *domain.Account { return s.account }

// Token returns the stored bearer token, or "" for anonymous sessions.
// Feature handlers attach it to their portal API calls.
func (s *Store) Token(ctx context.Context) string {
	v, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		return ""
	}
	return v
}

func (s *Store) persist(ctx context.Context, payload *domain.AuthPayload) error {
	if err := s.storage.Set(ctx, KeyToken, payload.Token); err != nil {
		return err
	}
	if err := s.storage.Set(ctx, KeyIsAdmin, strconv.FormatBool(payload.Account.Role.IsAdmin())); err != nil {
		// Roll back the token write so the two keys never disagree.
		_ = s.storage.Delete(ctx, KeyToken)
		return err
	}
	return nil
}

func (s *Store) clear(ctx context.Context) {
	s.account = nil
	if err := s.storage.Delete(ctx, KeyToken, KeyIsAdmin); err != nil {
		log.Printf("SESSION_CLEAR_FAILED: error=%v", err)
	}
}

func (s *Store) navigateByRole(role domain.Role) {
	if role.IsAdmin() {
		s.nav.Navigate(RouteAdminLanding)
		return
	}
	s.nav.Navigate(RouteDashboard)
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
