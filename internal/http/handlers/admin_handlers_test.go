package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/cyberportal/domain"
	"github.com/you/cyberportal/internal/http/middleware"
	"github.com/you/cyberportal/internal/infrastructure/storage"
	"github.com/you/cyberportal/internal/mocks"
	"github.com/you/cyberportal/internal/session"
)

func adminTestServer(t *testing.T, api *mocks.MockPortalAPI) (*gin.Engine, *storage.MemoryProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := storage.NewMemoryProvider()
	sess := middleware.NewSessionMW(provider, api, time.Second)
	h := NewAdminHandlers(api)

	r := gin.New()
	r.Use(sess.Bind())
	r.GET("/admin/login", h.WizardState)
	r.POST("/admin/login/id", h.WizardBegin)
	r.POST("/admin/login/otp", h.WizardVerifyOTP)
	r.POST("/admin/login/password", h.WizardComplete)
	return r, provider
}

func adminAPI() *mocks.MockPortalAPI {
	api := mocks.NewMockPortalAPI()
	api.SendAdminOTPFunc = func(ctx context.Context, email string) error { return nil }
	api.VerifyAdminOTPFunc = func(ctx context.Context, email, code string) error { return nil }
	api.LoginFunc = func(ctx context.Context, email, password string) (*domain.AuthPayload, error) {
		if password != "correct" {
			return nil, domain.ErrInvalidCredentials
		}
		return &domain.AuthPayload{
			Account: domain.Account{ID: "a1", Email: email, Role: domain.RoleAdmin},
			Token:   "admin-tok",
		}, nil
	}
	return api
}

func TestAdminWizard_FullFlow(t *testing.T) {
	r, provider := adminTestServer(t, adminAPI())

	w := postForm(r, "/admin/login/id", url.Values{"email": {"admin@x.com"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = postForm(r, "/admin/login/otp", url.Values{"otp": {"123456"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = postForm(r, "/admin/login/password", url.Values{"password": {"correct"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, session.RouteAdminLanding, w.Header().Get("Location"))

	ctx := context.Background()
	s := provider.Visitor(testVisitor)
	flag, err := s.Get(ctx, session.KeyIsAdmin)
	require.NoError(t, err)
	assert.Equal(t, "true", flag)

	// A completed wizard resets to the first step.
	_, err = s.Get(ctx, "admin_wizard")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestAdminWizard_StepsOutOfOrder(t *testing.T) {
	r, _ := adminTestServer(t, adminAPI())

	t.Run("otp before id", func(t *testing.T) {
		w := postForm(r, "/admin/login/otp", url.Values{"otp": {"123456"}})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("password before otp", func(t *testing.T) {
		w := postForm(r, "/admin/login/password", url.Values{"password": {"correct"}})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAdminWizard_IncompleteOTPRejected(t *testing.T) {
	r, _ := adminTestServer(t, adminAPI())
	postForm(r, "/admin/login/id", url.Values{"email": {"admin@x.com"}})

	w := postForm(r, "/admin/login/otp", url.Values{"otp": {"123"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminWizard_WrongOTPKeepsStep(t *testing.T) {
	api := adminAPI()
	api.VerifyAdminOTPFunc = func(ctx context.Context, email, code string) error {
		return domain.ErrOTPInvalid
	}
	r, _ := adminTestServer(t, api)
	postForm(r, "/admin/login/id", url.Values{"email": {"admin@x.com"}})

	w := postForm(r, "/admin/login/otp", url.Values{"otp": {"000000"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Still at the OTP step, not bounced back to the start.
	state := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	req.AddCookie(&http.Cookie{Name: "cyberportal_visitor", Value: testVisitor})
	r.ServeHTTP(state, req)
	assert.Contains(t, state.Body.String(), "awaiting_otp")
}

func TestAdminWizard_WrongPasswordKeepsWizard(t *testing.T) {
	r, provider := adminTestServer(t, adminAPI())
	postForm(r, "/admin/login/id", url.Values{"email": {"admin@x.com"}})
	postForm(r, "/admin/login/otp", url.Values{"otp": {"123456"}})

	w := postForm(r, "/admin/login/password", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The wizard stays at the password step for another attempt.
	ctx := context.Background()
	s := provider.Visitor(testVisitor)
	raw, err := s.Get(ctx, "admin_wizard")
	require.NoError(t, err)
	assert.Contains(t, raw, "awaiting_password")
	_, err = s.Get(ctx, session.KeyToken)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}
