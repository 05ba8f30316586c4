package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/cyberportal/domain"
	"github.com/you/cyberportal/internal/session"
)

// RoutePolicy is the role-on-route decision the guard consults after
// the session checks pass.
type RoutePolicy interface {
	Allow(role domain.Role, path, method string) (bool, error)
}

// Guard implements the route guard contract: every protected route
// performs the same synchronous check, redirecting anonymous (or
// non-admin) visitors to the login route and rendering nothing else.
// It must be installed after SessionMW, so the check never runs
// against an uninitialized session.
type Guard struct {
	policy RoutePolicy
}

// NewGuard creates the guard over a route policy.
func NewGuard(policy RoutePolicy) *Guard {
	return &Guard{policy: policy}
}

// RequireUser gates routes that need any signed-in visitor.
func (g *Guard) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := g.initialized(c)
		if !sess.IsAuthenticated(c.Request.Context()) {
			c.Redirect(http.StatusSeeOther, session.RouteLogin)
			c.Abort()
			return
		}
		g.enforce(c, sess)
	}
}

// RequireAdmin gates routes that need a signed-in admin.
func (g *Guard) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := g.initialized(c)
		ctx := c.Request.Context()
		if !sess.IsAuthenticated(ctx) || !sess.IsAdmin(ctx) {
			c.Redirect(http.StatusSeeOther, session.RouteLogin)
			c.Abort()
			return
		}
		g.enforce(c, sess)
	}
}

func (g *Guard) initialized(c *gin.Context) *session.Store {
	sess := Session(c)
	if !sess.Ready() {
		// Guards before initialization would bounce returning visitors
		// whose token is still being validated; that is a wiring bug,
		// not a runtime condition.
		panic("guard evaluated before session initialization")
	}
	return sess
}

func (g *Guard) enforce(c *gin.Context, sess *session.Store) {
	role := domain.RoleUser
	if sess.IsAdmin(c.Request.Context()) {
		role = domain.RoleAdmin
	}

	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}

	allowed, err := g.policy.Allow(role, path, c.Request.Method)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
		return
	}
	if !allowed {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	c.Next()
}
