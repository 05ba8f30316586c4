package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/cyberportal/domain"
	"github.com/you/cyberportal/internal/infrastructure/notifications"
	"github.com/you/cyberportal/internal/session"
)

const (
	visitorCookie = "cyberportal_visitor"
	cookieMaxAge  = 7 * 24 * 60 * 60

	ctxSession  = "portal_session"
	ctxNotifier = "portal_notifier"
	ctxStorage  = "portal_storage"
)

// SessionMW binds a per-visitor session store to every request. The
// store is initialized (token decoded, expiry checked) before any
// guard or handler runs, which is what lets guards make redirect
// decisions without racing initialization.
type SessionMW struct {
	provider domain.StorageProvider
	api      domain.PortalAPI
	timeout  time.Duration
}

// NewSessionMW creates the session-binding middleware.
func NewSessionMW(provider domain.StorageProvider, api domain.PortalAPI, timeout time.Duration) *SessionMW {
	return &SessionMW{provider: provider, api: api, timeout: timeout}
}

// Bind returns the middleware handler.
func (m *SessionMW) Bind() gin.HandlerFunc {
	return func(c *gin.Context) {
		storage := m.provider.Visitor(m.visitorID(c))
		notifier := notifications.NewFlashService(storage)
		store := session.New(storage, m.api, notifier, &redirector{c: c}, m.timeout)
		store.Init(c.Request.Context())

		c.Set(ctxSession, store)
		c.Set(ctxNotifier, notifier)
		c.Set(ctxStorage, storage)
		c.Next()
	}
}

func (m *SessionMW) visitorID(c *gin.Context) string {
	if id, err := c.Cookie(visitorCookie); err == nil && id != "" {
		return id
	}
	id := newVisitorID()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(visitorCookie, id, cookieMaxAge, "/", "", false, true)
	return id
}

func newVisitorID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// An all-zero ID would be shared by every visitor.
		panic("failed to generate visitor id: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}

// Session returns the request's session store. Calling it on a request
// that never went through SessionMW is a programmer error and panics,
// so the mistake is caught in development rather than silently treated
// as an anonymous visitor.
func Session(c *gin.Context) *session.Store {
	v, ok := c.Get(ctxSession)
	if !ok {
		panic("middleware.Session called outside SessionMW scope")
	}
	return v.(*session.Store)
}

// Notifier returns the request's flash notifier.
func Notifier(c *gin.Context) domain.Notifier {
	v, ok := c.Get(ctxNotifier)
	if !ok {
		panic("middleware.Notifier called outside SessionMW scope")
	}
	return v.(domain.Notifier)
}

// Storage returns the request's visitor storage.
func Storage(c *gin.Context) domain.SessionStorage {
	v, ok := c.Get(ctxStorage)
	if !ok {
		panic("middleware.Storage called outside SessionMW scope")
	}
	return v.(domain.SessionStorage)
}

// redirector adapts gin redirects to the session store's Navigator.
type redirector struct {
	c *gin.Context
}

func (r *redirector) Navigate(path string) {
	r.c.Redirect(http.StatusSeeOther, path)
}
