package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/you/cyberportal/domain"
	"github.com/you/cyberportal/internal/infrastructure/notifications"
	"github.com/you/cyberportal/internal/mocks"
)

func newTestStore(t *testing.T) (*Store, *mocks.MockSessionStorage, *mocks.MockPortalAPI, *mocks.MockNotifier, *mocks.MockNavigator) {
	t.Helper()
	storage := mocks.NewMockSessionStorage()
	api := mocks.NewMockPortalAPI()
	notifier := mocks.NewMockNotifier()
	nav := mocks.NewMockNavigator()
	store := New(storage, api, notifier, nav, time.Second)
	return store, storage, api, notifier, nav
}

func adminPayload() *domain.AuthPayload {
	return &domain.AuthPayload{
		Account: domain.Account{ID: "a1", Name: "Admin", Email: "admin@x.com", Role: domain.RoleAdmin},
		Token:   "admin-token",
	}
}

func userPayload() *domain.AuthPayload {
	return &domain.AuthPayload{
		Account: domain.Account{ID: "u1", Name: "User", Email: "user@x.com", Role: domain.RoleUser},
		Token:   "user-token",
	}
}

func TestStore_Init(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name            string
		storedToken     string
		expectCleared   bool
		expectNotice    bool
		expectAccount   bool
		expectAuthState bool
	}{
		{
			name:            "no stored token resolves to anonymous",
			storedToken:     "",
			expectAuthState: false,
		},
		{
			name: "expired token clears storage and notifies",
			storedToken: mintToken(t, jwt.MapClaims{
				"id": "u1", "exp": now.Add(-time.Minute).Unix(),
			}),
			expectCleared:   true,
			expectNotice:    true,
			expectAuthState: false,
		},
		{
			name:            "malformed token clears storage silently",
			storedToken:     "garbage",
			expectCleared:   true,
			expectAuthState: false,
		},
		{
			name: "valid token rebuilds the account projection",
			storedToken: mintToken(t, jwt.MapClaims{
				"id": "u1", "name": "Asha", "email": "asha@x.com", "role": "admin",
				"exp": now.Add(time.Hour).Unix(),
			}),
			expectAccount:   true,
			expectAuthState: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, storage, _, notifier, _ := newTestStore(t)
			ctx := context.Background()
			if tt.storedToken != "" {
				storage.Data[KeyToken] = tt.storedToken
				storage.Data[KeyIsAdmin] = "true"
			}

			if store.Ready() {
				t.Fatal("store must not be ready before Init")
			}
			store.Init(ctx)
			if !store.Ready() {
				t.Fatal("store must be ready after Init")
			}

			if tt.expectCleared {
				if _, ok := storage.Data[KeyToken]; ok {
					t.Error("token key should have been cleared")
				}
				if _, ok := storage.Data[KeyIsAdmin]; ok {
					t.Error("admin flag should have been cleared")
				}
			}
			if tt.expectNotice && len(notifier.Notices) == 0 {
				t.Error("expected a session-expired notice")
			}
			if !tt.expectNotice && len(notifier.Notices) != 0 {
				t.Errorf("unexpected notices: %v", notifier.Notices)
			}
			if tt.expectAccount && store.Account() == nil {
				t.Error("expected account rebuilt from token claims")
			}
			if !tt.expectAccount && store.Account() != nil {
				t.Error("expected no account")
			}
			if got := store.IsAuthenticated(ctx); got != tt.expectAuthState {
				t.Errorf("IsAuthenticated = %v, expected %v", got, tt.expectAuthState)
			}
		})
	}
}

func TestStore_Login(t *testing.T) {
	tests := []struct {
		name          string
		loginErr      error
		payload       *domain.AuthPayload
		expectToken   string
		expectIsAdmin string
		expectRoute   string
		expectLevel   domain.FlashLevel
	}{
		{
			name:          "admin login persists flag true and lands on /admin",
			payload:       adminPayload(),
			expectToken:   "admin-token",
			expectIsAdmin: "true",
			expectRoute:   RouteAdminLanding,
			expectLevel:   domain.FlashSuccess,
		},
		{
			name:          "user login persists flag false and lands on /dashboard",
			payload:       userPayload(),
			expectToken:   "user-token",
			expectIsAdmin: "false",
			expectRoute:   RouteDashboard,
			expectLevel:   domain.FlashSuccess,
		},
		{
			name:        "rejected credentials leave storage untouched",
			loginErr:    domain.ErrInvalidCredentials,
			expectLevel: domain.FlashError,
		},
		{
			name:        "transport failure leaves storage untouched",
			loginErr:    domain.ErrBackendUnavailable,
			expectLevel: domain.FlashError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, storage, api, notifier, nav := newTestStore(t)
			ctx := context.Background()
			api.LoginFunc = func(ctx context.Context, email, password string) (*domain.AuthPayload, error) {
				if tt.loginErr != nil {
					return nil, tt.loginErr
				}
				return tt.payload, nil
			}

			if err := store.Login(ctx, "someone@x.com", "pw"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.loginErr != nil {
				if len(storage.Data) != 0 {
					t.Errorf("storage should be untouched, got %v", storage.Data)
				}
				if store.Account() != nil {
					t.Error("account should not be set on failure")
				}
				if nav.Last() != "" {
					t.Errorf("should not navigate on failure, went to %s", nav.Last())
				}
			} else {
				if storage.Data[KeyToken] != tt.expectToken {
					t.Errorf("token = %q, expected %q", storage.Data[KeyToken], tt.expectToken)
				}
				if storage.Data[KeyIsAdmin] != tt.expectIsAdmin {
					t.Errorf("admin flag = %q, expected %q", storage.Data[KeyIsAdmin], tt.expectIsAdmin)
				}
				if nav.Last() != tt.expectRoute {
					t.Errorf("navigated to %s, expected %s", nav.Last(), tt.expectRoute)
				}
				if store.Account() == nil {
					t.Fatal("account should be set after login")
				}
			}
			if notifier.Last().Level != tt.expectLevel {
				t.Errorf("notice level = %v, expected %v", notifier.Last().Level, tt.expectLevel)
			}
		})
	}
}

func TestStore_Login_CaseInsensitiveAdminRole(t *testing.T) {
	store, storage, api, _, nav := newTestStore(t)
	api.LoginFunc = func(ctx context.Context, email, password string) (*domain.AuthPayload, error) {
		// The wire boundary decodes "Admin" into the role enum.
		return &domain.AuthPayload{
			Account: domain.Account{ID: "a1", Email: email, Role: domain.ParseRole("Admin")},
			Token:   "tok",
		}, nil
	}

	if err := store.Login(context.Background(), "admin@x.com", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storage.Data[KeyIsAdmin] != "true" {
		t.Errorf("admin flag = %q, expected \"true\"", storage.Data[KeyIsAdmin])
	}
	if nav.Last() != RouteAdminLanding {
		t.Errorf("navigated to %s, expected %s", nav.Last(), RouteAdminLanding)
	}
}

func TestStore_Register_MissingNewUserIsFailure(t *testing.T) {
	store, storage, api, notifier, nav := newTestStore(t)
	api.RegisterFunc = func(ctx context.Context, name, email, phone, password string) (*domain.AuthPayload, error) {
		// The API client reports a success response without the nested
		// newUser record as a malformed response.
		return nil, domain.ErrMalformedResponse
	}

	if err := store.Register(context.Background(), "Asha", "asha@x.com", "9876543210", "pw123456"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(storage.Data) != 0 {
		t.Errorf("storage should be untouched, got %v", storage.Data)
	}
	if notifier.Last().Level != domain.FlashError {
		t.Error("expected a failure notice")
	}
	if nav.Last() != "" {
		t.Errorf("should not navigate, went to %s", nav.Last())
	}
}

func TestStore_Register_Success(t *testing.T) {
	store, storage, api, _, nav := newTestStore(t)
	api.RegisterFunc = func(ctx context.Context, name, email, phone, password string) (*domain.AuthPayload, error) {
		return userPayload(), nil
	}

	if err := store.Register(context.Background(), "User", "user@x.com", "9876543210", "pw123456"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storage.Data[KeyToken] != "user-token" {
		t.Error("token should be persisted after registration")
	}
	if storage.Data[KeyIsAdmin] != "false" {
		t.Errorf("admin flag = %q, expected \"false\"", storage.Data[KeyIsAdmin])
	}
	if nav.Last() != RouteDashboard {
		t.Errorf("navigated to %s, expected %s", nav.Last(), RouteDashboard)
	}
}

func TestStore_Logout_Idempotent(t *testing.T) {
	store, storage, _, notifier, nav := newTestStore(t)
	ctx := context.Background()
	storage.Data[KeyToken] = "tok"
	storage.Data[KeyIsAdmin] = "true"

	store.Logout(ctx)
	store.Logout(ctx)

	if store.IsAuthenticated(ctx) || store.IsAdmin(ctx) {
		t.Error("session should be fully anonymous after logout")
	}
	if len(storage.Data) != 0 {
		t.Errorf("storage should be empty, got %v", storage.Data)
	}
	if nav.Last() != RouteHome {
		t.Errorf("navigated to %s, expected %s", nav.Last(), RouteHome)
	}
	if len(notifier.Notices) != 2 {
		t.Errorf("expected one notice per logout call, got %d", len(notifier.Notices))
	}
}

func TestStore_ForgotPassword(t *testing.T) {
	t.Run("success notifies and navigates to login", func(t *testing.T) {
		store, storage, api, notifier, nav := newTestStore(t)
		api.ForgotPasswordFunc = func(ctx context.Context, email string) error { return nil }

		if err := store.ForgotPassword(context.Background(), "user@x.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if notifier.Last().Level != domain.FlashSuccess {
			t.Error("expected a success notice")
		}
		if nav.Last() != RouteLogin {
			t.Errorf("navigated to %s, expected %s", nav.Last(), RouteLogin)
		}
		if len(storage.Data) != 0 {
			t.Error("forgot-password must not touch session state")
		}
	})

	t.Run("failure notifies without navigating", func(t *testing.T) {
		store, _, api, notifier, nav := newTestStore(t)
		api.ForgotPasswordFunc = func(ctx context.Context, email string) error {
			return domain.ErrBackendUnavailable
		}

		if err := store.ForgotPassword(context.Background(), "user@x.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if notifier.Last().Level != domain.FlashError {
			t.Error("expected a failure notice")
		}
		if nav.Last() != "" {
			t.Error("should not navigate on failure")
		}
	})
}

// ctxHonoringStorage fails like the redis and gorm backends do once
// the request context is done.
func ctxHonoringStorage() *mocks.MockSessionStorage {
	storage := mocks.NewMockSessionStorage()
	storage.GetFunc = func(ctx context.Context, key string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		v, ok := storage.Data[key]
		if !ok {
			return "", domain.ErrKeyNotFound
		}
		return v, nil
	}
	storage.SetFunc = func(ctx context.Context, key, value string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		storage.Data[key] = value
		return nil
	}
	return storage
}

func TestStore_TimedOutLoginStillQueuesFailureNotice(t *testing.T) {
	storage := ctxHonoringStorage()
	api := mocks.NewMockPortalAPI()
	api.LoginFunc = func(ctx context.Context, email, password string) (*domain.AuthPayload, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	notifier := notifications.NewFlashService(storage)
	store := New(storage, api, notifier, mocks.NewMockNavigator(), 10*time.Millisecond)

	if err := store.Login(context.Background(), "a@x.com", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notices := notifier.Drain(context.Background())
	if len(notices) != 1 {
		t.Fatalf("expected the failure notice to survive the deadline, got %d", len(notices))
	}
	if notices[0].Level != domain.FlashError {
		t.Errorf("notice level = %v, expected %v", notices[0].Level, domain.FlashError)
	}
}

func TestStore_TimedOutResetRequestStillQueuesFailureNotice(t *testing.T) {
	storage := ctxHonoringStorage()
	api := mocks.NewMockPortalAPI()
	api.ForgotPasswordFunc = func(ctx context.Context, email string) error {
		<-ctx.Done()
		return ctx.Err()
	}
	notifier := notifications.NewFlashService(storage)
	store := New(storage, api, notifier, mocks.NewMockNavigator(), 10*time.Millisecond)

	if err := store.ForgotPassword(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if notices := notifier.Drain(context.Background()); len(notices) != 1 {
		t.Fatalf("expected the failure notice to survive the deadline, got %d", len(notices))
	}
}

func TestStore_OverlappingOperationsRejected(t *testing.T) {
	store, _, api, _, _ := newTestStore(t)
	started := make(chan struct{})
	release := make(chan struct{})
	api.LoginFunc = func(ctx context.Context, email, password string) (*domain.AuthPayload, error) {
		close(started)
		<-release
		return nil, domain.ErrInvalidCredentials
	}

	done := make(chan error, 1)
	go func() { done <- store.Login(context.Background(), "a@x.com", "pw") }()
	<-started

	if err := store.Login(context.Background(), "b@x.com", "pw"); !errors.Is(err, domain.ErrOperationInFlight) {
		t.Errorf("expected ErrOperationInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first login returned error: %v", err)
	}
}

func TestStore_InFlightFlagClearedWhenNavigationPanics(t *testing.T) {
	store, _, api, _, nav := newTestStore(t)
	api.LoginFunc = func(ctx context.Context, email, password string) (*domain.AuthPayload, error) {
		return userPayload(), nil
	}
	nav.NavigateFunc = func(path string) { panic("router torn down") }

	func() {
		defer func() { _ = recover() }()
		_ = store.Login(context.Background(), "user@x.com", "pw")
		t.Error("expected navigation panic to propagate")
	}()

	// The in-flight flag must have been released despite the panic.
	nav.NavigateFunc = nil
	if err := store.Login(context.Background(), "user@x.com", "pw"); err != nil {
		t.Errorf("store is stuck in-flight after panic: %v", err)
	}
}

func TestStore_Projections_ReadThrough(t *testing.T) {
	store, storage, _, _, _ := newTestStore(t)
	ctx := context.Background()

	if store.IsAuthenticated(ctx) {
		t.Error("empty storage should read as anonymous")
	}

	// Writes that bypass the store are still observed: projections are
	// re-derived from storage, never cached.
	storage.Data[KeyToken] = "tok"
	storage.Data[KeyIsAdmin] = "true"
	if !store.IsAuthenticated(ctx) || !store.IsAdmin(ctx) {
		t.Error("projections should read through to storage")
	}

	storage.Data[KeyIsAdmin] = "false"
	if store.IsAdmin(ctx) {
		t.Error("IsAdmin should track the stored flag")
	}
}
